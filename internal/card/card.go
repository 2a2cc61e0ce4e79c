// Package card lays out and rasterizes one feedback card: a rounded panel
// with an avatar and author label in the header row and the wrapped feedback
// text below it.
package card

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"strings"

	"feedviz/internal/avatar"
	"feedviz/internal/config"
	"feedviz/internal/fonts"
	"feedviz/internal/shaping"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"
)

var (
	// ErrEmptyFeedback is returned for a record without visible feedback text.
	ErrEmptyFeedback = errors.New("feedback is empty")
	// ErrRender wraps failures raised while drawing a card.
	ErrRender = errors.New("card rendering failed")
)

// Record is one spreadsheet row reduced to what a card shows.
type Record struct {
	Row      int // 1-based data row, for diagnostics
	Feedback string
	Author   string
}

// Line is one wrapped feedback line as laid out on the card.
type Line struct {
	Text     string  // logical order, as wrapped
	Rendered string  // shaped for display
	X        float64 // left edge of the rendered text
	Baseline float64
	Width    float64
}

// Card is a composed card with its layout for diagnostics.
type Card struct {
	Image      image.Image
	Width      int
	Height     int
	Direction  shaping.Direction
	Header     int
	LineHeight int
	AvatarRect image.Rectangle
	Letter     string
	Author     string  // rendered author label, possibly shortened
	AuthorX    float64 // left edge of the author label
	Lines      []Line
}

// Composer turns records into cards. It owns font faces and a random source,
// so each goroutine needs its own Composer.
type Composer struct {
	card      config.CardConfig
	avatarCfg config.AvatarConfig
	anonymous string
	fallback  string

	shaper  shaping.Shaper
	faces   *fonts.Faces
	avatars *avatar.Generator
	logger  *zap.Logger

	background, surface color.RGBA
	authorInk, bodyInk  color.RGBA

	authorFace   font.Face
	feedbackFace font.Face
}

// Option configures a Composer.
type Option func(*options)

type options struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// WithRand fixes the random source used for avatar colors.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds a Composer. cfg must already be validated.
func New(cfg *config.Config, set *fonts.Set, shaper shaping.Shaper, opts ...Option) (*Composer, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if shaper == nil {
		shaper = shaping.New()
	}

	palette, err := cfg.Avatar.Colors()
	if err != nil {
		return nil, err
	}
	letterInk, err := config.ParseColor(cfg.Avatar.LetterColor)
	if err != nil {
		return nil, err
	}

	c := &Composer{
		card:       cfg.Card,
		avatarCfg:  cfg.Avatar,
		anonymous:  cfg.Text.AnonymousAuthor,
		fallback:   cfg.Text.FallbackAvatarGlyph,
		shaper:     shaper,
		faces:      fonts.NewFaces(set),
		logger:     o.logger,
		background: config.MustColor(cfg.Card.Background),
		surface:    config.MustColor(cfg.Card.Surface),
		authorInk:  config.MustColor(cfg.Card.AuthorColor),
		bodyInk:    config.MustColor(cfg.Card.FeedbackColor),
	}

	if c.authorFace, err = c.faces.Get(fonts.Bold, cfg.Card.AuthorFontSize); err != nil {
		return nil, err
	}
	if c.feedbackFace, err = c.faces.Get(fonts.Regular, cfg.Card.FeedbackFontSize); err != nil {
		return nil, err
	}

	genOpts := []avatar.Option{
		avatar.WithLetterColor(letterInk),
		avatar.WithLetterScale(cfg.Avatar.LetterScale),
	}
	if o.rng != nil {
		genOpts = append(genOpts, avatar.WithRand(o.rng))
	}
	boldAt := func(size float64) (font.Face, error) { return c.faces.Get(fonts.Bold, size) }
	if c.avatars, err = avatar.New(palette, boldAt, genOpts...); err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the composer's font faces.
func (c *Composer) Close() error {
	return c.faces.Close()
}

// Compose lays out and draws the card for rec. A panic while drawing is
// returned as an ErrRender error.
func (c *Composer) Compose(rec Record) (card Card, err error) {
	defer func() {
		if r := recover(); r != nil {
			card = Card{}
			err = fmt.Errorf("%w: row %d: %v", ErrRender, rec.Row, r)
		}
	}()

	feedback := strings.TrimSpace(rec.Feedback)
	if feedback == "" {
		return Card{}, ErrEmptyFeedback
	}
	author := strings.TrimSpace(rec.Author)
	if author == "" {
		author = c.anonymous
	}

	// The card follows the feedback's direction; the author's never changes it.
	dir := c.shaper.Shape(feedback).Direction

	l := c.layout(feedback, author, dir)
	img, err := c.draw(l)
	if err != nil {
		return Card{}, fmt.Errorf("%w: row %d: %v", ErrRender, rec.Row, err)
	}
	l.card.Image = img

	c.logger.Debug("card composed",
		zap.Int("row", rec.Row),
		zap.Stringer("direction", dir),
		zap.Int("lines", len(l.card.Lines)),
		zap.Int("height", l.card.Height),
	)
	return l.card, nil
}

func (c *Composer) draw(l layout) (image.Image, error) {
	cfg := c.card
	card := l.card
	m := float64(cfg.Margin)

	dc := gg.NewContext(card.Width, card.Height)
	dc.SetColor(c.background)
	dc.Clear()
	dc.SetColor(c.surface)
	dc.DrawRoundedRectangle(m, m, float64(card.Width)-2*m, float64(card.Height)-2*m, cfg.Radius)
	dc.Fill()

	av, err := c.avatars.Generate(card.Letter, c.avatarCfg.Size)
	if err != nil {
		return nil, err
	}
	dc.DrawImage(av, card.AvatarRect.Min.X, card.AvatarRect.Min.Y)

	if card.Author != "" {
		dc.SetFontFace(c.authorFace)
		dc.SetColor(c.authorInk)
		dc.DrawString(card.Author, card.AuthorX, l.authorBaseline)
	}

	dc.SetFontFace(c.feedbackFace)
	dc.SetColor(c.bodyInk)
	for _, line := range card.Lines {
		dc.DrawString(line.Rendered, line.X, line.Baseline)
	}
	return dc.Image(), nil
}
