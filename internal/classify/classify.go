// Package classify finds the feedback column and the author column of a table
// from the shape of its values alone.
//
// A column takes part when most of its non-empty cells are free text. The text
// column with the longest average value holds the feedback; the shortest text
// column that stays under the short-text threshold holds the author.
package classify

import (
	"errors"
	"unicode/utf8"

	"feedviz/internal/table"

	"go.uber.org/zap"
)

// ErrNoTextColumn is returned when no column qualifies as textual.
var ErrNoTextColumn = errors.New("no textual column found")

// Options tunes the heuristics.
type Options struct {
	// ShortTextThreshold is the exclusive upper bound on an author column's mean length.
	ShortTextThreshold float64
	// TextShare is the share of non-empty cells that must be text; a column
	// qualifies only when its share is strictly greater.
	TextShare float64
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{ShortTextThreshold: 30, TextShare: 0.5}
}

// Profile summarizes one column.
type Profile struct {
	Name       string
	Index      int
	NonEmpty   int      // non-empty cells of any kind
	TextCount  int      // non-empty text cells
	Values     []string // non-empty text values in row order
	MeanLength float64  // mean rune count over Values
	Qualifies  bool
}

// TextShare returns the share of non-empty cells that are text.
func (p Profile) TextShare() float64 {
	if p.NonEmpty == 0 {
		return 0
	}
	return float64(p.TextCount) / float64(p.NonEmpty)
}

// Result names the detected columns. Author is empty when absent.
type Result struct {
	Feedback string
	Author   string
	Profiles []Profile
}

// HasAuthor reports whether an author column was detected.
func (r Result) HasAuthor() bool { return r.Author != "" }

// Profile returns the profile of the named column.
func (r Result) Profile(name string) (Profile, bool) {
	for _, p := range r.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// Classifier detects feedback and author columns.
type Classifier struct {
	opts   Options
	logger *zap.Logger
}

// New creates a classifier. A nil logger disables the report.
func New(opts Options, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{opts: opts, logger: logger}
}

// Classify profiles every column and picks the roles.
func (c *Classifier) Classify(t *table.Table) (Result, error) {
	profiles := ProfileColumns(t, c.opts.TextShare)
	res := Result{Profiles: profiles}

	feedback := -1
	for i, p := range profiles {
		if !p.Qualifies {
			continue
		}
		// Strict comparison keeps the first column on ties.
		if feedback < 0 || p.MeanLength > profiles[feedback].MeanLength {
			feedback = i
		}
	}
	if feedback < 0 {
		c.logger.Error("no textual column qualifies",
			zap.String("table", t.Name),
			zap.Strings("columns", t.Names()))
		return res, ErrNoTextColumn
	}
	res.Feedback = profiles[feedback].Name

	author := -1
	for i, p := range profiles {
		if i == feedback || !p.Qualifies {
			continue
		}
		if p.MeanLength <= 0 || p.MeanLength >= c.opts.ShortTextThreshold {
			continue
		}
		if author < 0 || p.MeanLength < profiles[author].MeanLength {
			author = i
		}
	}
	if author >= 0 {
		res.Author = profiles[author].Name
	}

	c.report(t, res)
	return res, nil
}

// ProfileColumns computes a profile per column in table order.
func ProfileColumns(t *table.Table, textShare float64) []Profile {
	out := make([]Profile, len(t.Columns))
	for i, col := range t.Columns {
		p := Profile{Name: col.Name, Index: i}
		total := 0
		for _, cell := range col.Cells {
			if cell.Kind == table.KindEmpty {
				continue
			}
			p.NonEmpty++
			if cell.Kind == table.KindText {
				p.TextCount++
				p.Values = append(p.Values, cell.Text)
				total += utf8.RuneCountInString(cell.Text)
			}
		}
		if p.TextCount > 0 {
			p.MeanLength = float64(total) / float64(p.TextCount)
		}
		p.Qualifies = p.NonEmpty > 0 && p.TextShare() > textShare
		out[i] = p
	}
	return out
}

func (c *Classifier) report(t *table.Table, res Result) {
	for _, p := range res.Profiles {
		c.logger.Debug("column profiled",
			zap.String("column", p.Name),
			zap.Int("non_empty", p.NonEmpty),
			zap.Float64("text_share", p.TextShare()),
			zap.Float64("mean_length", p.MeanLength),
			zap.Bool("textual", p.Qualifies))
	}
	fb, _ := res.Profile(res.Feedback)
	fields := []zap.Field{
		zap.String("table", t.Name),
		zap.String("feedback", res.Feedback),
		zap.Float64("feedback_mean_length", fb.MeanLength),
	}
	if res.HasAuthor() {
		au, _ := res.Profile(res.Author)
		fields = append(fields, zap.String("author", res.Author), zap.Float64("author_mean_length", au.MeanLength))
		c.logger.Info("columns detected", fields...)
		return
	}
	c.logger.Warn("author column not detected; using placeholder", fields...)
}
