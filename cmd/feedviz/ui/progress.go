package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

// Progress draws a static progress bar line, redrawn in place.
type Progress struct {
	bar progress.Model
	out io.Writer
}

// NewProgress returns a bar of the given width writing to out.
func NewProgress(out io.Writer, width int) *Progress {
	return &Progress{
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(width)),
		out: out,
	}
}

// View renders the bar for done of total.
func (p *Progress) View(done, total int) string {
	pct := 1.0
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	return fmt.Sprintf("%s %d/%d", p.bar.ViewAs(pct), done, total)
}

// Update redraws the bar. The line is finished once done reaches total.
func (p *Progress) Update(done, total int) {
	fmt.Fprintf(p.out, "\r%s", p.View(done, total))
	if done >= total {
		fmt.Fprintln(p.out)
	}
}
