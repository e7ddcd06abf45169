package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-validate the whole frontier chain from genesis",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.close()

		count, err := n.service.Verify()
		if err != nil {
			return fmt.Errorf("chain invalid: %w", err)
		}
		frontier := n.service.Frontier()
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %d blocks, height %d, acc_diff %d\n", count, frontier.Index, frontier.AccDiff)
		return err
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
