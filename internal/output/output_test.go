package output

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestName(t *testing.T) {
	assert.Equal(t, "feedback_card_1.png", Name(1))
	assert.Equal(t, "feedback_card_12.png", Name(12))
}

func TestWriter_NumbersSequentially(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cards")
	w, err := New(dir, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		path, err := w.Write(ctx, solid(4, 3, color.White))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, Name(i+1)), path)
	}
	assert.Equal(t, 3, w.Written())

	want := []string{"feedback_card_1.png", "feedback_card_2.png", "feedback_card_3.png"}
	if diff := cmp.Diff(want, listDir(t, dir)); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestWriter_WritesDecodablePNG(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, nil)
	require.NoError(t, err)

	path, err := w.Write(context.Background(), solid(7, 5, color.RGBA{R: 0xAE, G: 0xC6, B: 0xCF, A: 0xff}))
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 7, 5), img.Bounds())

	r, g, b, _ := img.At(3, 2).RGBA()
	assert.Equal(t, [3]uint32{0xAE, 0xC6, 0xCF}, [3]uint32{r >> 8, g >> 8, b >> 8})
}

func TestWriter_FailureDoesNotConsumeNumber(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = w.Write(ctx, nil)
	require.Error(t, err)

	// An empty image cannot be PNG-encoded.
	_, err = w.Write(ctx, image.NewRGBA(image.Rect(0, 0, 0, 0)))
	require.Error(t, err)

	path, err := w.Write(ctx, solid(2, 2, color.Black))
	require.NoError(t, err)
	assert.Equal(t, Name(1), filepath.Base(path))

	for _, name := range listDir(t, dir) {
		assert.False(t, strings.HasPrefix(name, ".tmp-"), "temp file left behind: %s", name)
	}
	assert.Equal(t, []string{"feedback_card_1.png"}, listDir(t, dir))
}

func TestWriter_CanceledContext(t *testing.T) {
	w, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = w.Write(ctx, solid(2, 2, color.Black))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, w.Written())
}

func TestNew_InvalidDir(t *testing.T) {
	_, err := New("  ", nil)
	assert.True(t, errors.Is(err, ErrInvalidDir))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = New(file, nil)
	assert.True(t, errors.Is(err, ErrInvalidDir))
}
