package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	devMode bool
)

var rootCmd = &cobra.Command{
	Use:   "ampsync",
	Short: "ampsync - incremental Amplitude export and S3 sync",
	Long: `ampsync exports hourly event data from the Amplitude export API into
local JSONL partitions and syncs them to S3, fetching only the hours that
are not already stored locally or remotely.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "use the local s3_dev/ tree instead of S3")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
