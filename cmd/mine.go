package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mezonai/powchain/ledger"
)

var (
	mineData  string
	mineBits  uint32
	mineCount int
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine blocks on top of the frontier",
	RunE: func(cmd *cobra.Command, args []string) error {
		if mineBits > ledger.MaxDiffBits {
			return fmt.Errorf("--bits %d above %d", mineBits, ledger.MaxDiffBits)
		}
		if mineCount < 1 {
			return fmt.Errorf("--count must be at least 1")
		}

		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.close()

		if _, err := n.service.Init(cmd.Context()); err != nil {
			return err
		}
		var explicit *uint32
		if cmd.Flags().Changed("bits") {
			explicit = &mineBits
		}
		bits := n.diffBits(explicit)
		for i := 0; i < mineCount; i++ {
			b, err := n.service.MineNext(cmd.Context(), mineData, bits)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), b); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)

	mineCmd.Flags().StringVar(&mineData, "data", "", "Payload stored in each mined block")
	mineCmd.Flags().Uint32Var(&mineBits, "bits", 0, "Difficulty in leading zero bits (default_diff_bits when unset)")
	mineCmd.Flags().IntVar(&mineCount, "count", 1, "Number of blocks to mine")
}
