package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "gatedbus",
	Short:         "Gated publish/subscribe bus with middleware and pending queues",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.AddCommand(newRunCmd())
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
