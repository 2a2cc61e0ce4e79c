package main

import (
	"fmt"

	"feedviz/cmd/feedviz/ui"
	"feedviz/internal/classify"
	"feedviz/internal/logging"
	"feedviz/internal/table"

	"github.com/spf13/cobra"
)

// classifyCmd prints the detected columns without rendering
var classifyCmd = &cobra.Command{
	Use:   "classify <input>",
	Short: "Show which columns would be used as feedback and author",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&sheetName, "sheet", "", "Worksheet to read (default: first sheet)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	if sheetName != "" {
		cfg.Input.Sheet = sheetName
	}

	t, err := table.Load(args[0], table.Options{Sheet: cfg.Input.Sheet, Delimiter: cfg.Delimiter()})
	if err != nil {
		return err
	}

	c := classify.New(classify.Options{
		ShortTextThreshold: cfg.Classifier.ShortTextThreshold,
		TextShare:          cfg.Classifier.TextShare,
	}, logging.Get(logger, logging.CategoryClassify))
	res, err := c.Classify(t)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styles := ui.DefaultStyles()
	fmt.Fprint(out, columnsTable(t, res).View(styles))
	if !res.HasAuthor() {
		fmt.Fprintln(out, styles.Muted.Render(
			fmt.Sprintf("No author column; cards will show %q.", cfg.Text.AnonymousAuthor)))
	}
	return nil
}
