package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/joey/internal/textutil"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <utterance>",
	Short: "Show how the intent classifier scores an utterance",
	Long: `Prints the raw best prediction and the accepted match. Overrides are
not consulted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clf := newClassifier(cfg)
		if err := clf.Build(); err != nil {
			return fmt.Errorf("building classifier: %w", err)
		}

		text := textutil.Normalize(strings.Join(args, " "))
		pred, err := clf.Predict(text)
		if err != nil {
			return err
		}
		match := clf.Classify(text)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "utterance:  %s\n", text)
		fmt.Fprintf(out, "best:       %s (%.3f) via %q\n", pred.Tag, pred.Confidence, pred.Example)
		fmt.Fprintf(out, "accepted:   %s (%.3f)\n", match.Intent, match.Confidence)
		return nil
	},
}
