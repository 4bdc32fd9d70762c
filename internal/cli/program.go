package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/engine"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/logging"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/report"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/solana"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/verify"
)

func newProgramCmd() *cobra.Command {
	var (
		network  string
		infoOnly bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "program <program-id>",
		Short: "Scan a deployed program via its verified source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			programID := args[0]
			if !solana.ValidProgramID(programID) {
				return fmt.Errorf("%s is not a valid program address", programID)
			}
			log := logging.New("anchor-shield")

			if infoOnly {
				client := solana.NewClient(network, log)
				risk := client.CheckProgramRisk(programID)
				if asJSON {
					data, err := json.MarshalIndent(risk, "", "  ")
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Program:    %s\n", risk.ProgramID)
				fmt.Fprintf(cmd.OutOrStdout(), "Network:    %s\n", risk.Network)
				fmt.Fprintf(cmd.OutOrStdout(), "Risk level: %s\n", risk.RiskLevel)
				if info := risk.ProgramInfo; info != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Executable: %v\n", info.Executable)
					fmt.Fprintf(cmd.OutOrStdout(), "Upgradeable: %v\n", info.IsUpgradeable)
					if info.UpgradeAuthority != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "Upgrade authority: %s\n", info.UpgradeAuthority)
					}
				}
				for _, w := range risk.Warnings {
					fmt.Fprintf(cmd.OutOrStdout(), "  ! %s\n", w)
				}
				for _, r := range risk.Recommendations {
					fmt.Fprintf(cmd.OutOrStdout(), "  > %s\n", r)
				}
				return nil
			}

			scanner := verify.NewScanner(engine.New(), log)
			result := scanner.ScanProgram(cmd.Context(), programID)

			if asJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Program: %s\n", result.ProgramID)
			fmt.Fprintf(cmd.OutOrStdout(), "Verified: %v (%s)\n", result.Verification.IsVerified, result.Verification.Message)
			if result.Error != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Error: %s\n", result.Error)
				return nil
			}
			for _, r := range result.ScanReports {
				fmt.Fprintln(cmd.OutOrStdout(), report.RenderTerminal(r))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&network, "network", "mainnet-beta", "Solana cluster: mainnet-beta|devnet|testnet")
	cmd.Flags().BoolVar(&infoOnly, "info", false, "Only fetch on-chain deployment info, skip source scan")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}
