package main

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	completeStart string
	completeEnd   string
)

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Run the full pipeline: fetch then sync",
	RunE:  runComplete,
}

func init() {
	completeCmd.Flags().StringVar(&completeStart, "start", "", "range start (YYYYMMDDTHH or \"YYYY-MM-DD HH\")")
	completeCmd.Flags().StringVar(&completeEnd, "end", "", "range end (YYYYMMDDTHH or \"YYYY-MM-DD HH\")")

	rootCmd.AddCommand(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.finish()

	start, end, err := rt.resolveRange(completeStart, completeEnd)
	if err != nil {
		return err
	}

	return rt.pipe.Complete(context.Background(), start, end)
}
