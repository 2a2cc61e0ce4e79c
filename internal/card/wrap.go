package card

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// measureFunc returns the rendered width of a logical string in pixels.
type measureFunc func(string) float64

// wrap breaks text into lines no wider than maxWidth. Lines are built in
// logical order; measure decides how wide each candidate renders. A word is
// only split when it does not fit on a line by itself, and then at the last
// grapheme boundary that fits. Every line holds at least one grapheme.
func wrap(text string, maxWidth float64, measure measureFunc) []string {
	var lines []string
	cur := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if cur != "" {
			candidate = cur + " " + word
		}
		if measure(candidate) <= maxWidth {
			cur = candidate
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
			cur = ""
		}
		if measure(word) <= maxWidth {
			cur = word
			continue
		}
		parts := splitWord(word, maxWidth, measure)
		lines = append(lines, parts[:len(parts)-1]...)
		cur = parts[len(parts)-1]
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func splitWord(word string, maxWidth float64, measure measureFunc) []string {
	var parts []string
	cur := ""
	g := uniseg.NewGraphemes(word)
	for g.Next() {
		cluster := g.Str()
		if cur != "" && measure(cur+cluster) > maxWidth {
			parts = append(parts, cur)
			cur = ""
		}
		cur += cluster
	}
	return append(parts, cur)
}

// ellipsis shortens s at a grapheme boundary until fit accepts it with a
// trailing "…". fit returns the rendered form and whether it fits.
func ellipsis(s string, fit func(string) (string, bool)) string {
	if out, ok := fit(s); ok {
		return out
	}
	var clusters []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}
	for n := len(clusters) - 1; n > 0; n-- {
		head := strings.TrimRightFunc(strings.Join(clusters[:n], ""), unicode.IsSpace)
		if head == "" {
			continue
		}
		if out, ok := fit(head + "…"); ok {
			return out
		}
	}
	out, _ := fit("…")
	return out
}
