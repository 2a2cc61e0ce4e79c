package main

import (
	"fmt"
	"strings"
	"time"

	"feedviz/cmd/feedviz/ui"
	"feedviz/internal/classify"
	"feedviz/internal/pipeline"
	"feedviz/internal/table"
)

// columnsTable lists every column with its profile and detected role.
func columnsTable(t *table.Table, res classify.Result) *ui.SimpleTable {
	st := ui.NewSimpleTable(fmt.Sprintf("Columns in %s", t.Name),
		[]string{"Column", "Text share", "Mean length", "Role"})
	for i, p := range res.Profiles {
		role := "-"
		switch p.Name {
		case res.Feedback:
			role = "feedback"
			st.Highlight[i] = true
		case res.Author:
			role = "author"
			st.Highlight[i] = true
		}
		mean := "-"
		if p.TextCount > 0 {
			mean = fmt.Sprintf("%.1f", p.MeanLength)
		}
		st.AddRow(p.Name, fmt.Sprintf("%.0f%%", 100*p.TextShare()), mean, role)
	}
	return st
}

// summaryView renders the end-of-run report.
func summaryView(sum pipeline.Summary, styles ui.Styles) string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(styles.Badge.Render("feedviz"))
	sb.WriteString("\n")

	line := fmt.Sprintf("Generated %d of %d cards in %s", sum.Generated, sum.Total, sum.OutputDir)
	if sum.Generated > 0 {
		sb.WriteString(styles.Success.Render(line))
	} else {
		sb.WriteString(styles.Warning.Render(line))
	}
	sb.WriteString(styles.Muted.Render(fmt.Sprintf(" (%s)", sum.Duration.Round(time.Millisecond))))
	sb.WriteString("\n")

	if sum.Skipped > 0 {
		sb.WriteString(styles.Warning.Render(fmt.Sprintf("Skipped %d rows", sum.Skipped)))
		sb.WriteString("\n")
		st := ui.NewSimpleTable("", []string{"Row", "Reason"})
		for _, s := range sum.Skips {
			reason := s.Reason
			if s.Err != nil {
				reason = fmt.Sprintf("%s: %v", s.Reason, s.Err)
			}
			st.AddRow(fmt.Sprint(s.Row), reason)
		}
		sb.WriteString(st.View(styles))
	}
	return sb.String()
}
