package config

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// CardConfig holds the fixed card layout. All sizes are pixels.
type CardConfig struct {
	Width          int     `yaml:"width"`           // canvas width (social media standard)
	Margin         int     `yaml:"margin"`          // canvas edge to card edge
	Padding        int     `yaml:"padding"`         // card edge to content
	Radius         float64 `yaml:"radius"`          // card corner radius
	SectionSpacing int     `yaml:"section_spacing"` // header row to feedback block
	LineSpacing    int     `yaml:"line_spacing"`    // extra space between feedback lines
	NameSpacing    int     `yaml:"name_spacing"`    // avatar to author label

	AuthorFontSize   float64 `yaml:"author_font_size"`
	FeedbackFontSize float64 `yaml:"feedback_font_size"`

	Background    string `yaml:"background"`
	Surface       string `yaml:"surface"`
	AuthorColor   string `yaml:"author_color"`
	FeedbackColor string `yaml:"feedback_color"`
}

// AvatarConfig holds the letter avatar settings.
type AvatarConfig struct {
	Size        int      `yaml:"size"`
	LetterScale float64  `yaml:"letter_scale"` // letter font size as a fraction of Size
	LetterColor string   `yaml:"letter_color"`
	Palette     []string `yaml:"palette"`
}

// DefaultCardConfig returns the stock card layout.
func DefaultCardConfig() CardConfig {
	return CardConfig{
		Width:            1080,
		Margin:           40,
		Padding:          60,
		Radius:           30,
		SectionSpacing:   40,
		LineSpacing:      20,
		NameSpacing:      20,
		AuthorFontSize:   36,
		FeedbackFontSize: 42,
		Background:       "#F5F5F5",
		Surface:          "#FFFFFF",
		AuthorColor:      "#282828",
		FeedbackColor:    "#3C3C3C",
	}
}

// DefaultAvatarConfig returns the stock avatar settings with the pastel palette.
func DefaultAvatarConfig() AvatarConfig {
	return AvatarConfig{
		Size:        80,
		LetterScale: 0.5,
		LetterColor: "#FFFFFF",
		Palette: []string{
			"#AEC6CF", // pastel blue
			"#BDE0FE", // light blue
			"#A2D2DF", // sky blue
			"#BCE0BB", // pastel green
			"#FFDAC1", // peach
			"#FFCCE5", // pink
			"#E6BEFF", // lavender
			"#FFFFBA", // pale yellow
		},
	}
}

// InteriorWidth is the width available to text inside the card.
func (c CardConfig) InteriorWidth() int {
	return c.Width - 2*c.Margin - 2*c.Padding
}

// Validate checks that the layout leaves room for content.
func (c CardConfig) Validate() error {
	if c.Width <= 0 || c.Margin < 0 || c.Padding < 0 {
		return fmt.Errorf("card width must be > 0 and margin/padding >= 0")
	}
	if c.InteriorWidth() <= 0 {
		return fmt.Errorf("card interior width is %d; reduce margin or padding", c.InteriorWidth())
	}
	if c.Radius < 0 {
		return fmt.Errorf("card.radius must be >= 0")
	}
	if c.AuthorFontSize <= 0 || c.FeedbackFontSize <= 0 {
		return fmt.Errorf("card font sizes must be > 0")
	}
	for name, hex := range map[string]string{
		"background":     c.Background,
		"surface":        c.Surface,
		"author_color":   c.AuthorColor,
		"feedback_color": c.FeedbackColor,
	} {
		if _, err := ParseColor(hex); err != nil {
			return fmt.Errorf("card.%s: %w", name, err)
		}
	}
	return nil
}

// Validate checks the avatar settings and palette.
func (a AvatarConfig) Validate() error {
	if a.Size <= 0 {
		return fmt.Errorf("avatar.size must be > 0")
	}
	if a.LetterScale <= 0 || a.LetterScale > 1 {
		return fmt.Errorf("avatar.letter_scale must be in (0, 1]")
	}
	if _, err := ParseColor(a.LetterColor); err != nil {
		return fmt.Errorf("avatar.letter_color: %w", err)
	}
	if len(a.Palette) == 0 {
		return fmt.Errorf("avatar.palette must not be empty")
	}
	if _, err := a.Colors(); err != nil {
		return err
	}
	return nil
}

// Colors parses the palette.
func (a AvatarConfig) Colors() ([]color.RGBA, error) {
	out := make([]color.RGBA, 0, len(a.Palette))
	for i, hex := range a.Palette {
		c, err := ParseColor(hex)
		if err != nil {
			return nil, fmt.Errorf("avatar.palette[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseColor parses a "#RRGGBB" hex string into an opaque color.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// MustColor is ParseColor for values already checked by Validate.
func MustColor(hex string) color.RGBA {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}
