// Package shaping turns logical-order text into the string a left-to-right
// glyph drawer must be given to show it correctly: Arabic-family letters are
// joined into their contextual forms and right-to-left runs are reordered into
// visual order.
package shaping

import (
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/bidi"
)

// Direction is the dominant direction of a piece of text.
type Direction int

const (
	LTR Direction = iota
	RTL
)

func (d Direction) String() string {
	if d == RTL {
		return "rtl"
	}
	return "ltr"
}

// Shaped is text ready to be drawn verbatim, left to right.
type Shaped struct {
	Text      string
	Direction Direction
}

// Shaper prepares text for drawing.
type Shaper interface {
	// Shape detects the paragraph direction from the text itself.
	Shape(raw string) Shaped
	// ShapeParagraph lays the text out in an imposed paragraph direction, as
	// needed for the wrapped lines of one card.
	ShapeParagraph(raw string, base Direction) Shaped
}

// Joiner replaces Arabic letters with their contextual presentation forms.
// The result stays in logical order.
type Joiner interface {
	Join(s string) string
}

// JoinFunc adapts a function to Joiner.
type JoinFunc func(string) string

// Join implements Joiner.
func (f JoinFunc) Join(s string) string { return f(s) }

// BidiShaper joins Arabic-family script and applies the Unicode bidirectional
// algorithm from golang.org/x/text.
type BidiShaper struct {
	joiner Joiner
}

// New returns the default shaper, which joins letters with Reshape.
func New() *BidiShaper { return NewWithJoiner(JoinFunc(Reshape)) }

// NewWithJoiner returns a shaper that joins letters with j.
func NewWithJoiner(j Joiner) *BidiShaper {
	if j == nil {
		j = JoinFunc(Reshape)
	}
	return &BidiShaper{joiner: j}
}

var _ Shaper = (*BidiShaper)(nil)

// Shape implements Shaper.
func (s *BidiShaper) Shape(raw string) Shaped {
	return s.ShapeParagraph(raw, Detect(raw))
}

// ShapeParagraph implements Shaper. It never fails: if reordering is not
// possible the joined text is returned in logical order.
func (s *BidiShaper) ShapeParagraph(raw string, base Direction) Shaped {
	out := Shaped{Text: raw, Direction: base}
	if !HasRTL(raw) {
		return out
	}
	joined := s.joiner.Join(raw)
	out.Text = joined
	if visual, ok := reorder(joined, base); ok {
		out.Text = visual
	}
	return out
}

// Detect returns the direction of the first strong character. Text without
// one (empty, digits, punctuation) is LTR.
func Detect(s string) Direction {
	for _, r := range s {
		switch class(r) {
		case bidi.L:
			return LTR
		case bidi.R, bidi.AL:
			return RTL
		}
	}
	return LTR
}

// HasRTL reports whether s contains any strong right-to-left character.
func HasRTL(s string) bool {
	for _, r := range s {
		if c := class(r); c == bidi.R || c == bidi.AL {
			return true
		}
	}
	return false
}

func class(r rune) bidi.Class {
	p, _ := bidi.LookupRune(r)
	return p.Class()
}

type run struct {
	text string
	dir  bidi.Direction
}

// reorder converts logical order to visual order. golang.org/x/text reports
// runs in logical order with their resolved direction; they are reversed here
// (rule L2) for the two embedding depths plain text produces.
func reorder(s string, base Direction) (visual string, ok bool) {
	defer func() {
		if recover() != nil {
			visual, ok = "", false
		}
	}()

	opt := bidi.DefaultDirection(bidi.LeftToRight)
	if base == RTL {
		opt = bidi.DefaultDirection(bidi.RightToLeft)
	}
	var p bidi.Paragraph
	if _, err := p.SetString(s, opt); err != nil {
		return "", false
	}
	o, err := p.Order()
	if err != nil {
		return "", false
	}

	runs := make([]run, 0, o.NumRuns())
	for i := 0; i < o.NumRuns(); i++ {
		r := o.Run(i)
		runs = append(runs, run{text: r.String(), dir: r.Direction()})
	}

	var b strings.Builder
	b.Grow(len(s))
	if base == RTL {
		// Whole paragraph is an RTL embedding: reverse the run order, then
		// each RTL run's characters. LTR runs (Latin words, numbers) keep
		// their internal order.
		for i := len(runs) - 1; i >= 0; i-- {
			writeRun(&b, runs[i])
		}
		return b.String(), true
	}

	// LTR paragraph: each maximal group of RTL runs, including numbers sitting
	// between them, is reversed as a unit.
	for i := 0; i < len(runs); {
		if runs[i].dir != bidi.RightToLeft {
			b.WriteString(runs[i].text)
			i++
			continue
		}
		j := i + 1
		for j < len(runs) {
			if runs[j].dir == bidi.RightToLeft {
				j++
				continue
			}
			if j+1 < len(runs) && runs[j+1].dir == bidi.RightToLeft && weakOnly(runs[j].text) {
				j += 2
				continue
			}
			break
		}
		for k := j - 1; k >= i; k-- {
			writeRun(&b, runs[k])
		}
		i = j
	}
	return b.String(), true
}

func writeRun(b *strings.Builder, r run) {
	if r.dir == bidi.RightToLeft {
		writeReversed(b, r.text)
		return
	}
	b.WriteString(r.text)
}

// writeReversed writes s with its grapheme clusters in reverse order. A base
// letter keeps its harakat and other combining marks after it.
func writeReversed(b *strings.Builder, s string) {
	var clusters []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}
	for i := len(clusters) - 1; i >= 0; i-- {
		b.WriteString(clusters[i])
	}
}

// weakOnly reports whether s has no strong characters, e.g. "12" or " 3.5 ".
func weakOnly(s string) bool {
	for _, r := range s {
		switch class(r) {
		case bidi.L, bidi.R, bidi.AL:
			return false
		}
	}
	return true
}
