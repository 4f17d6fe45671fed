package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/storesearch/internal/usecase/tablefilter"
)

var filterCmd = &cobra.Command{
	Use:   "filter <query...>",
	Short: "Filter stdin lines with fuzzy matching",
	Long:  "Reads one row per line from stdin and prints the rows that approximately contain every query token or one of its synonyms.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFilter,
}

func runFilter(cmd *cobra.Command, args []string) error {
	vocab, processor, err := loadPipeline()
	if err != nil {
		return err
	}

	var rows []string
	sc := bufio.NewScanner(cmd.InOrStdin())
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			rows = append(rows, line)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read rows: %w", err)
	}

	q := processor.Process(strings.Join(args, " "))
	kept := tablefilter.Filter(tablefilter.NewMatcher(vocab.Synonyms), rows, func(s string) string { return s }, q)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, kept)
	}
	for _, row := range kept {
		fmt.Fprintln(out, row)
	}
	return nil
}
