package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"feedviz/internal/card"
	"feedviz/internal/classify"
	"feedviz/internal/config"
	"feedviz/internal/fonts"
	"feedviz/internal/output"
	"feedviz/internal/shaping"
	"feedviz/internal/table"
	"feedviz/internal/text"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

const feedbackCSV = `Name,Comment,ID
Alice,"The onboarding was smooth and the support team answered every question quickly.",101
Bob,,102
Chen,"Pricing is fair, but the reporting screens need better filters and exports.",103
Dana,"Great mobile app, I use it every day to check on the status of my orders.",104
Emre,   ,105
,"Setup took less than an hour and the documentation covered everything we needed.",106
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "cards")
	return cfg
}

func newDriver(t *testing.T, cfg *config.Config, opts ...DriverOption) *Driver {
	t.Helper()
	d, err := New(cfg, zap.NewNop(), append([]DriverOption{WithSeed(42)}, opts...)...)
	require.NoError(t, err)
	return d
}

func fileNames(paths []string) []string {
	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	return names
}

type panickingShaper struct{}

func (panickingShaper) Shape(string) shaping.Shaped { panic("boom") }

func (panickingShaper) ShapeParagraph(string, shaping.Direction) shaping.Shaped { panic("boom") }

func TestRun_NumbersCardsWithoutGaps(t *testing.T) {
	cfg := testConfig(t)
	d := newDriver(t, cfg)

	sum, err := d.Run(context.Background(), writeFile(t, "feedback.csv", feedbackCSV), Options{})
	require.NoError(t, err)

	assert.Equal(t, 6, sum.Total)
	assert.Equal(t, 4, sum.Generated)
	assert.Equal(t, 2, sum.Skipped)

	want := []string{output.Name(1), output.Name(2), output.Name(3), output.Name(4)}
	if diff := cmp.Diff(want, fileNames(sum.Files)); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(cfg.Output.Dir)
	require.NoError(t, err)
	var onDisk []string
	for _, e := range entries {
		onDisk = append(onDisk, e.Name())
	}
	assert.ElementsMatch(t, want, onDisk)

	var rows []int
	for _, s := range sum.Skips {
		rows = append(rows, s.Row)
		assert.Equal(t, ReasonEmptyFeedback, s.Reason)
	}
	assert.Equal(t, []int{2, 5}, rows)
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeFile(t, "feedback.csv", feedbackCSV)

	seqCfg := testConfig(t)
	seq, err := newDriver(t, seqCfg).Run(context.Background(), path, Options{})
	require.NoError(t, err)

	parCfg := testConfig(t)
	parCfg.Render.Workers = 3
	par, err := newDriver(t, parCfg).Run(context.Background(), path, Options{})
	require.NoError(t, err)

	assert.Equal(t, seq.Generated, par.Generated)
	assert.Equal(t, fileNames(seq.Files), fileNames(par.Files))

	// Same rows, same order: card sizes line up file by file.
	for i := range seq.Files {
		a, err := os.Stat(seq.Files[i])
		require.NoError(t, err)
		b, err := os.Stat(par.Files[i])
		require.NoError(t, err)
		assert.Greater(t, a.Size(), int64(0))
		assert.Greater(t, b.Size(), int64(0))
	}
}

func TestRun_Progress(t *testing.T) {
	d := newDriver(t, testConfig(t))

	var calls [][2]int
	_, err := d.Run(context.Background(), writeFile(t, "feedback.csv", feedbackCSV), Options{
		Progress: func(done, total int) { calls = append(calls, [2]int{done, total}) },
	})
	require.NoError(t, err)

	want := [][2]int{{1, 4}, {2, 4}, {3, 4}, {4, 4}}
	assert.Equal(t, want, calls)
}

func TestRun_Overrides(t *testing.T) {
	path := writeFile(t, "feedback.csv", feedbackCSV)

	t.Run("unknown column is fatal", func(t *testing.T) {
		d := newDriver(t, testConfig(t))
		_, err := d.Run(context.Background(), path, Options{AuthorColumn: "Nickname"})
		assert.True(t, errors.Is(err, ErrFatalConfig))
		assert.True(t, errors.Is(err, classify.ErrUnknownColumn))
	})

	t.Run("review replaces the result", func(t *testing.T) {
		d := newDriver(t, testConfig(t))
		var reviewed classify.Result
		_, err := d.Run(context.Background(), path, Options{
			Review: func(_ *table.Table, res classify.Result) (classify.Result, error) {
				reviewed = res
				res.Author = ""
				return res, nil
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "Comment", reviewed.Feedback)
		assert.Equal(t, "Name", reviewed.Author)
	})

	t.Run("review error aborts", func(t *testing.T) {
		cfg := testConfig(t)
		d := newDriver(t, cfg)
		abort := errors.New("operator aborted")
		_, err := d.Run(context.Background(), path, Options{
			Review: func(*table.Table, classify.Result) (classify.Result, error) {
				return classify.Result{}, abort
			},
		})
		assert.ErrorIs(t, err, abort)
		_, statErr := os.Stat(cfg.Output.Dir)
		assert.True(t, os.IsNotExist(statErr), "no output before review succeeds")
	})
}

func TestRun_NoTextColumn(t *testing.T) {
	d := newDriver(t, testConfig(t))
	path := writeFile(t, "numbers.csv", "ID,Score\n1,4.5\n2,3.0\n")

	_, err := d.Run(context.Background(), path, Options{})
	assert.True(t, errors.Is(err, classify.ErrNoTextColumn))
}

func TestRun_MissingInputIsFatal(t *testing.T) {
	d := newDriver(t, testConfig(t))

	_, err := d.Run(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Options{})
	assert.True(t, errors.Is(err, ErrFatalConfig))
}

func TestRun_Canceled(t *testing.T) {
	d := newDriver(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := d.Run(ctx, writeFile(t, "feedback.csv", feedbackCSV), Options{})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, sum.Generated)
}

func TestRun_CompositionFailureSkipsRecord(t *testing.T) {
	cfg := testConfig(t)
	d := newDriver(t, cfg, WithShaper(panickingShaper{}))

	sum, err := d.Run(context.Background(), writeFile(t, "feedback.csv", feedbackCSV), Options{})
	require.NoError(t, err)

	assert.Zero(t, sum.Generated)
	assert.Equal(t, 6, sum.Skipped)

	var composeSkips int
	for _, s := range sum.Skips {
		if s.Reason == ReasonCompose {
			composeSkips++
			assert.True(t, errors.Is(s, card.ErrRender))
		}
	}
	assert.Equal(t, 4, composeSkips)
}

func TestNew_FatalConfig(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Render.Workers = 0
		_, err := New(cfg, nil)
		assert.True(t, errors.Is(err, ErrFatalConfig))
	})

	t.Run("missing font", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Fonts.Regular = filepath.Join(t.TempDir(), "missing.ttf")
		_, err := New(cfg, nil)
		assert.True(t, errors.Is(err, ErrFatalConfig))
		assert.True(t, errors.Is(err, fonts.ErrFontUnavailable))
	})
}

func TestNewShaper(t *testing.T) {
	set := fonts.Default()
	for _, engine := range []string{config.ShaperFont, config.ShaperTable} {
		t.Run(engine, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Text.Shaper = engine
			s := newShaper(cfg, set, zap.NewNop())
			require.NotNil(t, s)
			assert.Equal(t, shaping.New().Shape("مَرحبا سلام"), s.Shape("مَرحبا سلام"))
		})
	}
}

func TestExtract(t *testing.T) {
	tbl := table.New("t", []string{"Comment", "Name"}, [][]string{
		{"<p>Loved the <b>fast</b> delivery</p>", "  zoe "},
		{"", "Yan"},
		{"42", "Xi"},
		{"Friendly staff", ""},
		{"<br>", "Wu"},
	})
	res := classify.Result{Feedback: "Comment", Author: "Name"}

	records, skips := Extract(tbl, res, text.New(true), "Anonymous")

	want := []card.Record{
		{Row: 1, Feedback: "Loved the fast delivery", Author: "zoe"},
		{Row: 4, Feedback: "Friendly staff", Author: "Anonymous"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	var got []string
	for _, s := range skips {
		got = append(got, s.Error())
	}
	assert.Equal(t, []string{
		"row 2 skipped: empty feedback",
		"row 3 skipped: feedback is not text",
		"row 5 skipped: empty feedback",
	}, got)
}

func TestExtract_NoAuthorColumn(t *testing.T) {
	tbl := table.New("t", []string{"Comment", "Name"}, [][]string{{"Nice", "Ann"}})

	records, _ := Extract(tbl, classify.Result{Feedback: "Comment"}, text.New(false), "Someone")
	require.Len(t, records, 1)
	assert.Equal(t, "Someone", records[0].Author)
}

func TestSkipError(t *testing.T) {
	cause := errors.New("disk full")
	err := &SkipError{Row: 3, Reason: ReasonWrite, Err: cause}

	assert.True(t, errors.Is(err, cause))
	assert.True(t, strings.Contains(err.Error(), "row 3"))
	assert.True(t, strings.Contains(err.Error(), "disk full"))
}
