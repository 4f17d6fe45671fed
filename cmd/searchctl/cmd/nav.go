package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/storesearch/internal/usecase/navindex"
)

var navRole string

var navCmd = &cobra.Command{
	Use:   "nav [query...]",
	Short: "Search the navigation menu as a role",
	Long:  "Filters the menu by the role's access rules and lists matching entries. No query lists the start of the menu.",
	RunE:  runNav,
}

func init() {
	navCmd.Flags().StringVarP(&navRole, "role", "r", "", "Role to search as (default: the rules' default role)")
}

func runNav(cmd *cobra.Command, args []string) error {
	vocab, processor, err := loadPipeline()
	if err != nil {
		return err
	}
	role := navRole
	if role == "" {
		role = vocab.Access.DefaultRole
	}

	catalog := navindex.NewCatalog(vocab.Nav, vocab.Access, logger)
	entries := catalog.ForRole(role).Search(processor.Process(strings.Join(args, " ")))

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, entries)
	}
	for _, e := range entries {
		if e.ParentTitle != "" {
			fmt.Fprintf(out, "%-24s %s › %s\n", e.Path, e.ParentTitle, e.Title)
		} else {
			fmt.Fprintf(out, "%-24s %s\n", e.Path, e.Title)
		}
	}
	return nil
}
