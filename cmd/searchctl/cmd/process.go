package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <query...>",
	Short: "Run the query pipeline on input",
	Long:  "Normalizes digits and letters, corrects spelling against the dictionary and expands synonyms.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProcess,
}

type processOutput struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	Final      string `json:"final"`
	Suggestion string `json:"suggestion,omitempty"`
	Expanded   string `json:"expanded"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	_, processor, err := loadPipeline()
	if err != nil {
		return err
	}

	q := processor.Process(strings.Join(args, " "))
	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, processOutput{
			Raw:        q.Raw,
			Normalized: q.Normalized,
			Final:      q.Final,
			Suggestion: q.Suggestion,
			Expanded:   q.Expanded,
		})
	}

	fmt.Fprintf(out, "normalized: %s\n", q.Normalized)
	fmt.Fprintf(out, "final:      %s\n", q.Final)
	if q.HasSuggestion() {
		fmt.Fprintf(out, "did you mean: %s\n", q.Suggestion)
	}
	fmt.Fprintf(out, "expanded:   %s\n", q.Expanded)
	return nil
}
