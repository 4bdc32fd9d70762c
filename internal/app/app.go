package app

import (
	"github.com/spf13/cobra"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/cli"
)

func BuildRoot() *cobra.Command {
	root := &cobra.Command{Use: "anchor-shield", Short: "Security scanner for Solana Anchor programs"}
	cli.AddCommands(root)
	return root
}
