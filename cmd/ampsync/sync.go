package main

import (
	"context"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload local partitions to the remote store and clean up",
	Long: `Sync uploads every local partition not already present in the remote
store, then deletes the local files. Partitions that already exist remotely
are dropped locally without re-uploading.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.finish()

	return rt.pipe.Sync(context.Background())
}
