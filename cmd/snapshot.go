package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mezonai/powchain/service"
	"github.com/mezonai/powchain/snapshot"
)

var (
	snapshotDir  string
	snapshotFile string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export or restore every stored block",
}

var snapshotWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write all stored blocks to <dir>/" + snapshot.FileName,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.close()

		path, err := snapshot.WriteSnapshot(snapshotDir, n.store)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Validate and import the blocks of a snapshot file",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := snapshot.ReadSnapshot(snapshotFile)
		if err != nil {
			return err
		}
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.close()

		added, err := snapshot.Restore(snap, n.service.Submit, func(err error) bool {
			return errors.Is(err, service.ErrDuplicateBlock)
		})
		if err != nil {
			return err
		}
		if err := snapshot.RestoreTarget(snap, n.service.Frontier()); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "restored %d blocks\n", added)
		return err
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotWriteCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)

	snapshotWriteCmd.Flags().StringVar(&snapshotDir, "dir", snapshot.DefaultDirectory, "Directory to write the snapshot to")
	snapshotRestoreCmd.Flags().StringVar(&snapshotFile, "file", snapshot.DefaultDirectory+"/"+snapshot.FileName, "Snapshot file to restore")
}
