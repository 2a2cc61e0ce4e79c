package avatar

import (
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"testing"

	"feedviz/internal/fonts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
)

func boldFaces(t *testing.T) FaceSource {
	t.Helper()
	faces := fonts.NewFaces(fonts.Default())
	t.Cleanup(func() { faces.Close() })
	return func(size float64) (font.Face, error) {
		return faces.Get(fonts.Bold, size)
	}
}

func TestLetter(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"latin", "alice", "A"},
		{"leading space", "  \tbob", "B"},
		{"empty", "", "?"},
		{"whitespace only", "  \n", "?"},
		{"arabic passes through", "محمد", "م"},
		{"cjk passes through", "李雷", "李"},
		{"combining mark kept", "éclair", "É"},
		{"emoji with modifier", "👍🏽 fan", "👍🏽"},
		{"greek", "ωmega", "Ω"},
		{"sharp s expands to one letter", "ßeta", "S"},
		{"ligature expands to one letter", "ﬁona", "F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Letter(tt.in, ""))
		})
	}
}

func TestLetter_CustomFallback(t *testing.T) {
	assert.Equal(t, "#", Letter("   ", "#"))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, boldFaces(t))
	assert.Error(t, err)

	_, err = New([]color.RGBA{{A: 0xff}}, nil)
	assert.Error(t, err)
}

func TestGenerate_InvalidSize(t *testing.T) {
	g, err := New([]color.RGBA{{R: 0xAE, G: 0xC6, B: 0xCF, A: 0xff}}, boldFaces(t))
	require.NoError(t, err)

	for _, size := range []int{0, -5} {
		_, err := g.Generate("A", size)
		assert.True(t, errors.Is(err, ErrInvalidSize), "size %d", size)
	}
}

func TestGenerate_CircleAndTransparency(t *testing.T) {
	fill := color.RGBA{R: 0, G: 0, B: 128, A: 0xff}
	g, err := New([]color.RGBA{fill}, boldFaces(t))
	require.NoError(t, err)

	img, err := g.Generate("A", 80)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 80, 80), img.Bounds())

	for _, p := range []image.Point{{0, 0}, {79, 0}, {0, 79}, {79, 79}} {
		_, _, _, a := img.At(p.X, p.Y).RGBA()
		assert.Zero(t, a, "corner %v should be transparent", p)
	}

	// Inside the circle, above the letter.
	got := color.RGBAModel.Convert(img.At(40, 4)).(color.RGBA)
	assert.InDelta(t, fill.B, got.B, 1)
	assert.InDelta(t, fill.R, got.R, 1)
	assert.Equal(t, uint8(0xff), got.A)
}

func TestGenerate_LetterIsCentered(t *testing.T) {
	g, err := New([]color.RGBA{{R: 0, G: 0, B: 128, A: 0xff}}, boldFaces(t))
	require.NoError(t, err)

	const size = 120
	img, err := g.Generate("H", size)
	require.NoError(t, err)

	minX, minY, maxX, maxY := size, size, -1, -1
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r>>8 > 128 {
				minX, maxX = min(minX, x), max(maxX, x)
				minY, maxY = min(minY, y), max(maxY, y)
			}
		}
	}
	require.GreaterOrEqual(t, maxX, 0, "letter was not drawn")

	cx := float64(minX+maxX+1) / 2
	cy := float64(minY+maxY+1) / 2
	assert.LessOrEqual(t, math.Abs(cx-size/2), 3.0, "horizontal center %.1f", cx)
	assert.LessOrEqual(t, math.Abs(cy-size/2), 3.0, "vertical center %.1f", cy)
}

func TestGenerate_SeededPaletteIsDeterministic(t *testing.T) {
	palette := []color.RGBA{
		{R: 1, A: 0xff}, {R: 2, A: 0xff}, {R: 3, A: 0xff}, {R: 4, A: 0xff},
	}
	a, err := New(palette, boldFaces(t), WithRand(rand.New(rand.NewPCG(7, 11))))
	require.NoError(t, err)
	b, err := New(palette, boldFaces(t), WithRand(rand.New(rand.NewPCG(7, 11))))
	require.NoError(t, err)

	seen := map[color.RGBA]bool{}
	for i := 0; i < 64; i++ {
		ca, cb := a.Pick(), b.Pick()
		assert.Equal(t, ca, cb)
		assert.Contains(t, palette, ca)
		seen[ca] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestGenerate_LetterColorOption(t *testing.T) {
	black := color.RGBA{A: 0xff}
	fill := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	g, err := New([]color.RGBA{fill}, boldFaces(t), WithLetterColor(black), WithLetterScale(0.8))
	require.NoError(t, err)

	img, err := g.Generate("W", 60)
	require.NoError(t, err)

	dark := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, a := img.At(x, y).RGBA()
			if a == 0xffff && r < 0x4000 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 0)
}
