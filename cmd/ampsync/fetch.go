package main

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	fetchStart string
	fetchEnd   string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch missing hourly partitions from the export API",
	Long: `Fetch computes the hourly partitions the requested range needs, skips
hours already stored locally or already synced to the remote store, and
fetches only the rest.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchStart, "start", "", "range start (YYYYMMDDTHH or \"YYYY-MM-DD HH\")")
	fetchCmd.Flags().StringVar(&fetchEnd, "end", "", "range end (YYYYMMDDTHH or \"YYYY-MM-DD HH\")")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.finish()

	start, end, err := rt.resolveRange(fetchStart, fetchEnd)
	if err != nil {
		return err
	}

	return rt.pipe.Fetch(context.Background(), start, end)
}
