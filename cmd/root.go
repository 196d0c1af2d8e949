// Package cmd implements the askbot command line.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/askbot/internal/config"
)

// NewRootCmd creates the askbot root command.
func NewRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "askbot",
		Short: "Chat bot that answers mentions and thread replies with a completion model",
		Long: `askbot answers questions it is mentioned with, and keeps answering in the
thread that follows. Configuration comes from the environment, optionally
loaded from a .env file first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "File with environment variables to load")

	root.AddCommand(NewServeCmd())
	root.AddCommand(NewConfigureCmd())
	root.AddCommand(NewTokensCmd())
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
