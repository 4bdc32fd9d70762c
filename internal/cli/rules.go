package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/plugins"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "rules", Short: "List available rules"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in detectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, d := range plugins.Builtin(plugins.Options{}) {
				m := d.Meta()
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.ID, m.Severity, m.Name)
			}
			return nil
		},
	})
	return cmd
}
