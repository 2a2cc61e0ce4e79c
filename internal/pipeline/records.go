package pipeline

import (
	"feedviz/internal/card"
	"feedviz/internal/classify"
	"feedviz/internal/table"
	"feedviz/internal/text"
)

// Extract turns table rows into card records using the detected columns.
// Rows whose feedback cell is empty or not text are returned as skips. Rows
// are numbered from 1 in data order.
func Extract(t *table.Table, res classify.Result, cleaner *text.Cleaner, anonymous string) ([]card.Record, []*SkipError) {
	var (
		records []card.Record
		skips   []*SkipError
	)
	for i := 0; i < t.NumRows(); i++ {
		row := i + 1
		cell := t.Cell(res.Feedback, i)
		switch cell.Kind {
		case table.KindEmpty:
			skips = append(skips, &SkipError{Row: row, Reason: ReasonEmptyFeedback})
			continue
		case table.KindText:
		default:
			skips = append(skips, &SkipError{Row: row, Reason: ReasonNonText})
			continue
		}
		feedback := cleaner.Clean(cell.Text)
		if feedback == "" {
			skips = append(skips, &SkipError{Row: row, Reason: ReasonEmptyFeedback})
			continue
		}

		author := anonymous
		if res.HasAuthor() {
			if a := cleaner.Clean(t.Cell(res.Author, i).Text); a != "" {
				author = a
			}
		}
		records = append(records, card.Record{Row: row, Feedback: feedback, Author: author})
	}
	return records, skips
}
