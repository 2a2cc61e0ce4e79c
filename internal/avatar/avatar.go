// Package avatar draws the circular letter badge shown next to an author.
package avatar

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/rivo/uniseg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidSize is returned for a non-positive avatar size.
var ErrInvalidSize = errors.New("avatar size must be positive")

// DefaultFallback is the glyph used when a name has no visible character.
const DefaultFallback = "?"

// Letter returns the first visible grapheme cluster of name, upper-cased.
// Scripts without case pass through unchanged.
func Letter(name, fallback string) string {
	if fallback == "" {
		fallback = DefaultFallback
	}
	g := uniseg.NewGraphemes(name)
	for g.Next() {
		cluster := g.Str()
		if strings.TrimFunc(cluster, unicode.IsSpace) == "" {
			continue
		}
		// cases.Caser carries state and is not safe for concurrent use.
		upper := cases.Upper(language.Und).String(cluster)
		// Some letters expand when upper-cased ("ß" becomes "SS").
		first, _, _, _ := uniseg.FirstGraphemeClusterInString(upper, -1)
		return first
	}
	return fallback
}

// FaceSource returns a bold face at the requested pixel size.
type FaceSource func(size float64) (font.Face, error)

// Generator renders avatars. A Generator owns its random source and is not
// safe for concurrent use.
type Generator struct {
	palette     []color.RGBA
	letterColor color.Color
	letterScale float64
	faces       FaceSource
	rng         *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand replaces the random source used to pick palette colors.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithLetterScale sets the letter size as a fraction of the avatar size.
func WithLetterScale(scale float64) Option {
	return func(g *Generator) { g.letterScale = scale }
}

// WithLetterColor sets the letter color.
func WithLetterColor(c color.Color) Option {
	return func(g *Generator) { g.letterColor = c }
}

// New returns a generator over palette. faces supplies the bold letter face.
func New(palette []color.RGBA, faces FaceSource, opts ...Option) (*Generator, error) {
	if len(palette) == 0 {
		return nil, errors.New("avatar palette is empty")
	}
	if faces == nil {
		return nil, errors.New("avatar face source is nil")
	}
	g := &Generator{
		palette:     append([]color.RGBA(nil), palette...),
		letterColor: color.White,
		letterScale: 0.5,
		faces:       faces,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Pick returns the next palette color.
func (g *Generator) Pick() color.RGBA {
	return g.palette[g.rng.IntN(len(g.palette))]
}

// Generate draws letter centered on a filled circle of diameter size.
// Pixels outside the circle are fully transparent.
func (g *Generator) Generate(letter string, size int) (image.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	face, err := g.faces(float64(size) * g.letterScale)
	if err != nil {
		return nil, fmt.Errorf("avatar face: %w", err)
	}

	dc := gg.NewContext(size, size)
	r := float64(size) / 2
	dc.SetColor(g.Pick())
	dc.DrawCircle(r, r, r)
	dc.Fill()

	if letter != "" {
		dc.SetFontFace(face)
		dc.SetColor(g.letterColor)
		x, y := centerBaseline(face, letter, r)
		dc.DrawString(letter, x, y)
	}
	return dc.Image(), nil
}

// centerBaseline returns the pen origin that centers the ink box of s on (c, c).
func centerBaseline(face font.Face, s string, c float64) (float64, float64) {
	b, _ := font.BoundString(face, s)
	minX, maxX := fixedToFloat(b.Min.X), fixedToFloat(b.Max.X)
	minY, maxY := fixedToFloat(b.Min.Y), fixedToFloat(b.Max.Y)
	return c - (minX+maxX)/2, c - (minY+maxY)/2
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
