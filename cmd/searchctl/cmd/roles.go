package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List roles and their access rules",
	Args:  cobra.NoArgs,
	RunE:  runRoles,
}

func runRoles(cmd *cobra.Command, _ []string) error {
	vocab, _, err := loadPipeline()
	if err != nil {
		return err
	}

	rules := vocab.Access
	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, rules)
	}
	for _, name := range rules.RoleNames() {
		p := rules.Roles[name]
		marker := ""
		if name == rules.DefaultRole {
			marker = " (default)"
		}
		fmt.Fprintf(out, "%s%s\n  allow: %s\n", name, marker, strings.Join(p.Allow, ", "))
		if len(p.Deny) > 0 {
			fmt.Fprintf(out, "  deny:  %s\n", strings.Join(p.Deny, ", "))
		}
	}
	return nil
}
