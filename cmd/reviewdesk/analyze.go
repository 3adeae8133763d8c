package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"basegraph.app/reviewdesk/internal/review"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [review text]",
		Short: "Extract sentiment, summary, key issues and urgency from a review",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, a.in)
			if err != nil {
				return err
			}

			analysis, err := a.services.Review().Analyze(cmd.Context(), text)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(analysis.Record)
			}
			fmt.Fprint(a.out, a.render(formatAnalysis(analysis)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	return cmd
}

func formatAnalysis(analysis *review.Analysis) string {
	record := analysis.Record

	var b strings.Builder
	fmt.Fprintf(&b, "**Sentiment:** %s\n\n", record.Sentiment)
	urgent := "no"
	if record.IsUrgent {
		urgent = "yes"
	}
	fmt.Fprintf(&b, "**Urgent:** %s\n\n", urgent)
	fmt.Fprintf(&b, "**Summary:** %s\n\n", record.Summary)

	b.WriteString("**Key issues:**\n\n")
	if len(record.KeyIssues) == 0 {
		b.WriteString("- none\n")
	}
	for _, issue := range record.KeyIssues {
		fmt.Fprintf(&b, "- %s\n", issue)
	}

	if analysis.Degraded() {
		b.WriteString("\n_The model did not return structured output; showing its raw reply as the summary._\n")
	}
	return b.String()
}
