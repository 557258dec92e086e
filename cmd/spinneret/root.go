package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "spinneret",
	Short: "A concurrent, priority-driven web crawler",
	Long: `spinneret crawls the web with a pool of workers draining a shared
priority queue. Handlers are selected by URL pattern and may yield
follow-up tasks; a filter chain dedups and scopes admission.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (YAML)")
	rootCmd.AddCommand(crawlCmd)
}
