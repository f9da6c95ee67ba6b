// Package main provides the entry point for the docpipe CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0-dev"
	globalEnv  string
	globalConf string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "docpipe",
		Short:   "LLM document extraction and reconciliation for workshop paperwork",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if globalEnv != "" {
				if err := godotenv.Load(globalEnv); err != nil {
					return fmt.Errorf("loading env file: %w", err)
				}
			} else {
				_ = godotenv.Load()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&globalEnv, "env-file", "", "Path to a .env file to load")
	rootCmd.PersistentFlags().StringVarP(&globalConf, "config", "c", "", "Path to a YAML config file")

	rootCmd.AddCommand(
		newExtractCmd(),
		newBatchCmd(),
		newExportCmd(),
		newCatalogCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
