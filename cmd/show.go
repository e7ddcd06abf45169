package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mezonai/powchain/api"
	"github.com/mezonai/powchain/block"
)

var recentLimit int

var showCmd = &cobra.Command{
	Use:   "show [hash]",
	Short: "Print a block, or the frontier when no hash is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.close()

		var b *block.Block
		if len(args) == 0 {
			b = n.service.Frontier()
			if b == nil {
				return fmt.Errorf("chain has no frontier, run init first")
			}
		} else {
			b = n.service.Block(block.Hash(args[0]))
			if b == nil {
				return fmt.Errorf("block %s not found", args[0])
			}
		}
		return printJSON(cmd.OutOrStdout(), b)
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Print the latest blocks of the frontier chain, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if recentLimit < 1 || recentLimit > api.MaxRecentLimit {
			return fmt.Errorf("--limit must be between 1 and %d", api.MaxRecentLimit)
		}
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.close()
		return printJSON(cmd.OutOrStdout(), n.service.Recent(recentLimit))
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(recentCmd)

	recentCmd.Flags().IntVar(&recentLimit, "limit", api.DefaultRecentLimit, "Number of blocks to print")
}
