package shaping

import (
	"bytes"
	"fmt"
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	tsshaping "github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// FontJoiner joins Arabic with HarfBuzz (github.com/go-text/typesetting),
// applying the font's own GSUB rules, and maps the chosen glyphs back to code
// points through the font's cmap. A word whose glyphs have no code point in
// the font (the Go fonts have no Arabic at all) is joined with Reshape.
//
// It is safe for concurrent use.
type FontJoiner struct {
	mu      sync.Mutex
	face    *font.Face
	hb      tsshaping.HarfbuzzShaper
	byGlyph map[font.GID]rune
}

// NewFontJoiner parses an OpenType font (TTF or OTF bytes).
func NewFontJoiner(data []byte) (*FontJoiner, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse font for shaping: %w", err)
	}
	return &FontJoiner{face: face, byGlyph: reverseCmap(face.Cmap)}, nil
}

// NewFontShaper returns a BidiShaper that joins letters with the font's rules.
func NewFontShaper(data []byte) (*BidiShaper, error) {
	j, err := NewFontJoiner(data)
	if err != nil {
		return nil, err
	}
	return NewWithJoiner(j), nil
}

// reverseCmap maps every glyph to one code point. When several code points
// share a glyph, a presentation form wins, then the lowest code point.
func reverseCmap(cmap font.Cmap) map[font.GID]rune {
	out := make(map[font.GID]rune)
	it := cmap.Iter()
	for it.Next() {
		r, gid := it.Char()
		if gid == 0 {
			continue
		}
		prev, ok := out[gid]
		if !ok || better(r, prev) {
			out[gid] = r
		}
	}
	return out
}

func better(r, prev rune) bool {
	rp, pp := isPresentation(r), isPresentation(prev)
	if rp != pp {
		return rp
	}
	return r < prev
}

// isPresentation reports whether r is a joined letter form. The spacing
// harakat forms at U+FE70..U+FE7F are excluded.
func isPresentation(r rune) bool {
	return (r >= 0xFB50 && r <= 0xFDFF) || (r >= 0xFE80 && r <= 0xFEFC)
}

// arabicLetter reports whether r takes part in a HarfBuzz-joined word. Tatweel
// is script Common but joins on both sides.
func arabicLetter(r rune) bool {
	if isPresentation(r) {
		return false
	}
	return r == 0x0640 || language.LookupScript(r) == language.Arabic
}

// Join implements Joiner.
func (j *FontJoiner) Join(s string) string {
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); {
		if !arabicLetter(runes[i]) {
			out = append(out, runes[i])
			i++
			continue
		}
		k := i + 1
		for k < len(runes) && (arabicLetter(runes[k]) || unicode.Is(unicode.Mn, runes[k])) {
			k++
		}
		out = append(out, j.word(runes, i, k)...)
		i = k
	}
	return string(out)
}

// word shapes runes[start:end] right to left and returns the joined runes in
// logical order.
func (j *FontJoiner) word(runes []rune, start, end int) []rune {
	j.mu.Lock()
	out := j.hb.Shape(tsshaping.Input{
		Text:      runes,
		RunStart:  start,
		RunEnd:    end,
		Direction: di.DirectionRTL,
		Face:      j.face,
		Size:      fixed.I(64),
		Script:    language.Arabic,
		Language:  language.NewLanguage("ar"),
	})
	j.mu.Unlock()

	// Right-to-left output is the logical sequence reversed, marks included.
	if len(out.Glyphs) == 0 {
		return []rune(Reshape(string(runes[start:end])))
	}
	joined := make([]rune, len(out.Glyphs))
	for n, g := range out.Glyphs {
		r, ok := j.byGlyph[g.GlyphID]
		if !ok {
			return []rune(Reshape(string(runes[start:end])))
		}
		joined[len(joined)-1-n] = r
	}
	return joined
}
