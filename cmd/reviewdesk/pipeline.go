package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"basegraph.app/reviewdesk/internal/pipeline"
)

func newPipelineCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "pipeline [review text]",
		Short: "Analyze a review, detect its language and draft a reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, a.in)
			if err != nil {
				return err
			}

			result, err := a.services.Review().RunPipeline(cmd.Context(), text)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, string(data))
				return nil
			}
			fmt.Fprint(a.out, a.render(formatResult(result)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stage outputs as a JSON object")
	return cmd
}

func formatResult(result *pipeline.Result) string {
	var b strings.Builder
	for _, key := range result.Keys() {
		value, _ := result.Get(key)
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", key, strings.TrimSpace(value))
	}
	return b.String()
}
