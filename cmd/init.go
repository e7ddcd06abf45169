package cmd

import (
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the block store and mine the genesis block",
	Long: `Initialize a node by:
- Opening (or creating) the configured block store
- Mining the genesis block when the store is empty
The command is idempotent: on an existing chain it prints the frontier.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.close()

		frontier, err := n.service.Init(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), frontier)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
