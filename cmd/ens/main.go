package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const defaultConfigPath = "ensemble.yaml"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ens",
		Short: "Ensemble, a group chat with AI personas",
		Long:  "Ensemble runs a group conversation between you and a roster of AI agents, with voice previews and live calls.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// API keys may live in a local .env; a missing file is fine.
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newCallCmd())
	cmd.AddCommand(newAgentCmd())
	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newKeyCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newBridgeCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ens %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func addConfigFlag(cmd *cobra.Command, configPath *string) {
	cmd.Flags().StringVarP(configPath, "config", "c", defaultConfigPath, "path to Ensemble config file")
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
