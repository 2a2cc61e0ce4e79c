package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"feedviz/cmd/feedviz/ui"
	"feedviz/internal/classify"
	"feedviz/internal/pipeline"
	"feedviz/internal/table"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	outputDir      string
	sheetName      string
	feedbackColumn string
	authorColumn   string
	interactive    bool
	workers        int
	fontRegular    string
	fontBold       string
	noProgress     bool
)

// renderCmd renders one card per feedback row
var renderCmd = &cobra.Command{
	Use:   "render <input>",
	Short: "Render feedback cards from an .xlsx, .csv or .tsv file",
	Long: `Loads the table, detects the feedback and author columns, and writes
feedback_card_1.png, feedback_card_2.png, ... to the output directory.

Rows without feedback text are skipped and listed in the summary.

Examples:
  feedviz render responses.xlsx
  feedviz render survey.csv --output cards --author-column "Full name"
  feedviz render survey.xlsx --sheet "Form Responses 1" --interactive`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&outputDir, "output", "o", "", "Output directory (default from config: output_cards)")
	f.StringVar(&sheetName, "sheet", "", "Worksheet to read (default: first sheet)")
	f.StringVar(&feedbackColumn, "feedback-column", "", "Use this column as feedback instead of the detected one")
	f.StringVar(&authorColumn, "author-column", "", `Use this column as author ("-" for none)`)
	f.BoolVarP(&interactive, "interactive", "i", false, "Confirm the detected columns before rendering")
	f.IntVarP(&workers, "workers", "w", 0, "Cards composed in parallel (default from config: 1)")
	f.StringVar(&fontRegular, "font-regular", "", "Regular font: TTF/OTF path or goregular, gomedium, gomono")
	f.StringVar(&fontBold, "font-bold", "", "Bold font: TTF/OTF path or gobold")
	f.BoolVar(&noProgress, "no-progress", false, "Do not draw the progress bar")
}

// applyRenderFlags layers command-line flags over the loaded config.
func applyRenderFlags() {
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if sheetName != "" {
		cfg.Input.Sheet = sheetName
	}
	if workers > 0 {
		cfg.Render.Workers = workers
	}
	if fontRegular != "" {
		cfg.Fonts.Regular = fontRegular
	}
	if fontBold != "" {
		cfg.Fonts.Bold = fontBold
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	applyRenderFlags()
	out := cmd.OutOrStdout()
	styles := ui.DefaultStyles()

	driver, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		FeedbackColumn: feedbackColumn,
		AuthorColumn:   authorColumn,
		Review: func(t *table.Table, res classify.Result) (classify.Result, error) {
			fmt.Fprint(out, columnsTable(t, res).View(styles))
			if !interactive {
				return res, nil
			}
			res, err := promptColumns(t, res)
			if err != nil {
				return res, err
			}
			logger.Info("columns confirmed",
				zap.String("feedback", res.Feedback),
				zap.String("author", res.Author),
			)
			return res, nil
		},
	}
	if !noProgress {
		bar := ui.NewProgress(out, 40)
		opts.Progress = bar.Update
	}

	sum, err := driver.Run(ctx, args[0], opts)
	if err != nil && errors.Is(err, pipeline.ErrFatalConfig) {
		return err
	}
	if sum.Total > 0 || sum.Generated > 0 {
		fmt.Fprint(out, summaryView(sum, styles))
	}
	return err
}

// promptColumns lets the operator confirm or change the detected columns.
func promptColumns(t *table.Table, res classify.Result) (classify.Result, error) {
	names := t.Names()

	feedback := res.Feedback
	if err := survey.AskOne(&survey.Select{
		Message: "Feedback column:",
		Options: names,
		Default: res.Feedback,
	}, &feedback); err != nil {
		return res, err
	}

	authorOpts := []string{classify.NoAuthor}
	for _, n := range names {
		if n != feedback {
			authorOpts = append(authorOpts, n)
		}
	}
	author := res.Author
	if author == "" || author == feedback {
		author = classify.NoAuthor
	}
	if err := survey.AskOne(&survey.Select{
		Message: "Author column (- for none):",
		Options: authorOpts,
		Default: author,
	}, &author); err != nil {
		return res, err
	}

	res, err := classify.Override(res, feedback, author)
	if err != nil {
		return res, fmt.Errorf("%w: %w", pipeline.ErrFatalConfig, err)
	}
	return res, nil
}
