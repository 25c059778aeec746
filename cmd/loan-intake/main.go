// cmd/loan-intake/main.go
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath overrides the configs/config.yaml lookup
	configPath string
	version    = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "loan-intake",
		Short: "Conversational home-loan intake",
		Long: `loan-intake collects a home-loan application through conversation and
issues a loan offer once every required detail is known.

It runs as an interactive chat, an HTTP API, or a set of Zeebe job workers.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default: configs/config.yaml)")

	root.AddCommand(newChatCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newWorkerCmd())
	root.AddCommand(newTasksCmd())
	return root
}
