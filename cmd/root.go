package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fretsource/guitar-scout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "guitar-scout",
	Short: "Guitar recommendation pipeline",
	Long:  "Turns a free-text guitar request into ranked, listing-backed recommendations via staged Claude analysis over live catalog data.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is a development convenience; absence is not an error.
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
