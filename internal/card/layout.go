package card

import (
	"image"

	"feedviz/internal/avatar"
	"feedviz/internal/shaping"

	"golang.org/x/image/font"
)

type layout struct {
	card           Card
	authorBaseline float64
}

// layout computes the card geometry. Feedback is wrapped in logical order;
// every candidate line is measured in its shaped form and every final line
// is shaped exactly once for drawing.
func (c *Composer) layout(feedback, author string, dir shaping.Direction) layout {
	cfg := c.card
	size := c.avatarCfg.Size
	interior := float64(cfg.InteriorWidth())

	shapeLine := func(s string) string { return c.shaper.ShapeParagraph(s, dir).Text }
	logical := wrap(feedback, interior, func(s string) float64 {
		return textWidth(c.feedbackFace, shapeLine(s))
	})

	lineH := lineHeight(c.feedbackFace)
	header := max(size, lineHeight(c.authorFace))
	n := len(logical)
	width := cfg.Width
	height := 2*cfg.Margin + 2*cfg.Padding + header + cfg.SectionSpacing + n*lineH + (n-1)*cfg.LineSpacing

	left := cfg.Margin + cfg.Padding
	right := width - cfg.Margin - cfg.Padding
	top := cfg.Margin + cfg.Padding

	avatarX := left
	if dir == shaping.RTL {
		avatarX = right - size
	}
	avatarY := top + (header-size)/2

	// Author label beside the avatar, on the inner side.
	authorDir := c.shaper.Shape(author).Direction
	avail := interior - float64(size+cfg.NameSpacing)
	label := ""
	if avail > 0 {
		label = ellipsis(author, func(s string) (string, bool) {
			r := c.shaper.ShapeParagraph(s, authorDir).Text
			return r, textWidth(c.authorFace, r) <= avail
		})
	}
	authorX := float64(left + size + cfg.NameSpacing)
	if dir == shaping.RTL {
		authorX = float64(right-size-cfg.NameSpacing) - textWidth(c.authorFace, label)
	}
	am := c.authorFace.Metrics()
	authorBaseline := float64(top) + float64(header)/2 + float64(am.Ascent.Ceil()-am.Descent.Ceil())/2

	lines := make([]Line, n)
	y0 := top + header + cfg.SectionSpacing
	ascent := c.feedbackFace.Metrics().Ascent.Ceil()
	for i, text := range logical {
		rendered := shapeLine(text)
		w := textWidth(c.feedbackFace, rendered)
		x := float64(left)
		if dir == shaping.RTL {
			x = float64(right) - w
		}
		lines[i] = Line{
			Text:     text,
			Rendered: rendered,
			X:        x,
			Baseline: float64(y0 + i*(lineH+cfg.LineSpacing) + ascent),
			Width:    w,
		}
	}

	return layout{
		card: Card{
			Width:      width,
			Height:     height,
			Direction:  dir,
			Header:     header,
			LineHeight: lineH,
			AvatarRect: image.Rect(avatarX, avatarY, avatarX+size, avatarY+size),
			Letter:     avatar.Letter(author, c.fallback),
			Author:     label,
			AuthorX:    authorX,
			Lines:      lines,
		},
		authorBaseline: authorBaseline,
	}
}

func textWidth(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

func lineHeight(face font.Face) int {
	m := face.Metrics()
	return m.Ascent.Ceil() + m.Descent.Ceil()
}
