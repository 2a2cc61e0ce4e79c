// Package pipeline drives a feedviz run: load the table, detect the feedback
// and author columns, compose one card per usable row and write the cards in
// row order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"feedviz/internal/card"
	"feedviz/internal/classify"
	"feedviz/internal/config"
	"feedviz/internal/fonts"
	"feedviz/internal/logging"
	"feedviz/internal/output"
	"feedviz/internal/shaping"
	"feedviz/internal/table"
	"feedviz/internal/text"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Summary reports the outcome of a run.
type Summary struct {
	Total     int // data rows in the table
	Generated int
	Skipped   int
	Skips     []*SkipError
	Files     []string
	OutputDir string
	Duration  time.Duration
}

// Options adjust a single run.
type Options struct {
	FeedbackColumn string // override; empty keeps the detected column
	AuthorColumn   string // override; classify.NoAuthor drops the author

	// Review is called once columns are known and may replace them, for
	// instance after asking the operator.
	Review func(*table.Table, classify.Result) (classify.Result, error)

	// Progress is called after every record with the number of records
	// handled so far and the number of records to render.
	Progress func(done, total int)
}

// Driver runs the pipeline. Fonts are parsed once and shared by all composers.
type Driver struct {
	cfg     *config.Config
	fonts   *fonts.Set
	shaper  shaping.Shaper
	cleaner *text.Cleaner
	logger  *zap.Logger
	seed    *uint64
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithSeed makes avatar colors reproducible.
func WithSeed(seed uint64) DriverOption {
	return func(d *Driver) { d.seed = &seed }
}

// WithShaper replaces the default bidi shaper.
func WithShaper(s shaping.Shaper) DriverOption {
	return func(d *Driver) { d.shaper = s }
}

// New validates cfg and loads the fonts. Any failure wraps ErrFatalConfig.
func New(cfg *config.Config, logger *zap.Logger, opts ...DriverOption) (*Driver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fatal(err)
	}

	set, err := fonts.Load(cfg.Fonts.Regular, cfg.Fonts.Bold)
	if err != nil {
		return nil, fatal(err)
	}
	logging.Get(logger, logging.CategoryFonts).Debug("fonts loaded",
		zap.String("regular", cfg.Fonts.Regular),
		zap.String("bold", cfg.Fonts.Bold),
	)

	d := &Driver{
		cfg:     cfg,
		fonts:   set,
		shaper:  newShaper(cfg, set, logger),
		cleaner: text.New(cfg.Text.StripHTML),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// newShaper builds the configured shaper. A regular font the HarfBuzz reader
// cannot open degrades to the table shaper rather than failing the run.
func newShaper(cfg *config.Config, set *fonts.Set, logger *zap.Logger) shaping.Shaper {
	if cfg.Text.Shaper != config.ShaperFont {
		return shaping.New()
	}
	s, err := shaping.NewFontShaper(set.Data(fonts.Regular))
	if err != nil {
		logging.Get(logger, logging.CategoryFonts).Warn("font shaping unavailable, using table joiner",
			zap.String("font", cfg.Fonts.Regular),
			zap.Error(err),
		)
		return shaping.New()
	}
	return s
}

// Load reads the input table.
func (d *Driver) Load(path string) (*table.Table, error) {
	log := logging.Get(d.logger, logging.CategoryInput)
	t, err := table.Load(path, table.Options{Sheet: d.cfg.Input.Sheet, Delimiter: d.cfg.Delimiter()})
	if err != nil {
		return nil, fatal(err)
	}
	log.Info("table loaded",
		zap.String("source", t.Name),
		zap.Int("rows", t.NumRows()),
		zap.Strings("columns", t.Names()),
	)
	return t, nil
}

// Classify detects the feedback and author columns and applies overrides.
func (d *Driver) Classify(t *table.Table, opts Options) (classify.Result, error) {
	c := classify.New(classify.Options{
		ShortTextThreshold: d.cfg.Classifier.ShortTextThreshold,
		TextShare:          d.cfg.Classifier.TextShare,
	}, logging.Get(d.logger, logging.CategoryClassify))

	res, err := c.Classify(t)
	if err != nil {
		return res, err
	}
	if res, err = classify.Override(res, opts.FeedbackColumn, opts.AuthorColumn); err != nil {
		return res, fatal(err)
	}
	if opts.Review != nil {
		if res, err = opts.Review(t, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Run performs a complete run over the table at path.
func (d *Driver) Run(ctx context.Context, path string, opts Options) (Summary, error) {
	t, err := d.Load(path)
	if err != nil {
		return Summary{}, err
	}
	res, err := d.Classify(t, opts)
	if err != nil {
		return Summary{}, err
	}

	records, skips := Extract(t, res, d.cleaner, d.cfg.Text.AnonymousAuthor)
	log := logging.Get(d.logger, logging.CategoryPipeline)
	for _, s := range skips {
		log.Debug("row skipped", zap.Int("row", s.Row), zap.String("reason", s.Reason))
	}

	sum, err := d.Render(ctx, records, opts.Progress)
	sum.Total = t.NumRows()
	sum.Skips = append(skips, sum.Skips...)
	sum.Skipped = len(sum.Skips)
	return sum, err
}

// Render composes and writes records in order. Cards are numbered from 1 in
// the order they are written. A record that fails is skipped; only
// cancellation or a fatal setup error stops the loop.
func (d *Driver) Render(ctx context.Context, records []card.Record, progress func(done, total int)) (Summary, error) {
	start := time.Now()
	log := logging.Get(d.logger, logging.CategoryPipeline)

	sum := Summary{Total: len(records), OutputDir: d.cfg.Output.Dir}

	w, err := output.New(d.cfg.Output.Dir, logging.Get(d.logger, logging.CategoryOutput))
	if err != nil {
		return sum, fatal(err)
	}
	sum.OutputDir = w.Dir()

	workers := max(d.cfg.Render.Workers, 1)
	composers := make([]*card.Composer, 0, workers)
	defer func() {
		for _, c := range composers {
			_ = c.Close()
		}
	}()
	for i := 0; i < workers; i++ {
		c, err := d.newComposer(i)
		if err != nil {
			return sum, fatal(err)
		}
		composers = append(composers, c)
	}

	log.Info("rendering started",
		zap.Int("records", len(records)),
		zap.Int("workers", workers),
		zap.String("output_dir", w.Dir()),
	)

	done := 0
	for lo := 0; lo < len(records); lo += workers {
		if err := ctx.Err(); err != nil {
			return d.finish(sum, start, err)
		}
		window := records[lo:min(lo+workers, len(records))]
		results, err := composeWindow(ctx, composers, window)
		if err != nil {
			return d.finish(sum, start, err)
		}

		for j, rec := range window {
			r := results[j]
			if r.err != nil {
				d.skip(&sum, &SkipError{Row: rec.Row, Reason: ReasonCompose, Err: r.err})
			} else if path, err := w.Write(ctx, r.card.Image); err != nil {
				if ctx.Err() != nil {
					return d.finish(sum, start, ctx.Err())
				}
				d.skip(&sum, &SkipError{Row: rec.Row, Reason: ReasonWrite, Err: err})
			} else {
				sum.Generated++
				sum.Files = append(sum.Files, path)
				log.Debug("card generated",
					zap.Int("row", rec.Row),
					zap.String("file", path),
					zap.Int("lines", len(r.card.Lines)),
				)
			}
			done++
			if progress != nil {
				progress(done, len(records))
			}
		}
	}
	return d.finish(sum, start, nil)
}

type composed struct {
	card card.Card
	err  error
}

// composeWindow composes up to len(composers) records at once. Record j of the
// window always uses composer j, so no composer is shared between goroutines.
func composeWindow(ctx context.Context, composers []*card.Composer, window []card.Record) ([]composed, error) {
	results := make([]composed, len(window))
	if len(composers) == 1 {
		for j, rec := range window {
			results[j].card, results[j].err = composers[0].Compose(rec)
		}
		return results, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(len(composers))
	for j, rec := range window {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			results[j].card, results[j].err = composers[j].Compose(rec)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (d *Driver) newComposer(i int) (*card.Composer, error) {
	opts := []card.Option{
		card.WithLogger(logging.Get(d.logger, logging.CategoryCompose)),
	}
	if d.seed != nil {
		opts = append(opts, card.WithRand(rand.New(rand.NewPCG(*d.seed, uint64(i)))))
	}
	c, err := card.New(d.cfg, d.fonts, d.shaper, opts...)
	if err != nil {
		return nil, fmt.Errorf("composer %d: %w", i, err)
	}
	return c, nil
}

func (d *Driver) skip(sum *Summary, s *SkipError) {
	sum.Skips = append(sum.Skips, s)
	sum.Skipped++
	logging.Get(d.logger, logging.CategoryPipeline).Warn("record skipped",
		zap.Int("row", s.Row),
		zap.String("reason", s.Reason),
		zap.Error(s.Err),
	)
}

func (d *Driver) finish(sum Summary, start time.Time, err error) (Summary, error) {
	sum.Duration = time.Since(start)
	log := logging.Get(d.logger, logging.CategoryPipeline)
	fields := []zap.Field{
		zap.Int("generated", sum.Generated),
		zap.Int("skipped", sum.Skipped),
		zap.String("output_dir", sum.OutputDir),
		zap.Duration("elapsed", sum.Duration),
	}
	switch {
	case err == nil:
		log.Info("rendering finished", fields...)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Warn("rendering interrupted", append(fields, zap.Error(err))...)
	default:
		log.Error("rendering failed", append(fields, zap.Error(err))...)
	}
	return sum, err
}
