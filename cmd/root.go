package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mezonai/powchain/config"
	"github.com/mezonai/powchain/logx"
)

var (
	nodeConfigPath string
	powConfigPath  string
	debugLogging   bool
)

var rootCmd = &cobra.Command{
	Use:           "powchain",
	Short:         "powchain proof-of-work node CLI",
	Long:          "Command line interface for mining, inspecting and serving a single proof-of-work chain.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugLogging {
			logx.SetDebug(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&nodeConfigPath, "config", config.DefaultNodeConfigPath, "Path to node YAML configuration")
	rootCmd.PersistentFlags().StringVar(&powConfigPath, "pow-config", config.DefaultPowConfigPath, "Path to proof-of-work INI configuration")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging")
}

// Execute runs the CLI with ctx, which the caller cancels on shutdown
// signals. A failed command exits the process with status 1.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logx.Error("CMD", "Command execution failed: ", err)
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
