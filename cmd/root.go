package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orestack/minereport/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "minereport",
	Short: "Mining technical report ingestion and normalization",
	Long:  "Ingests technical reports in any supported format, normalizes them into a canonical schema, routes low-confidence fields to review, and exports under any registered reporting standard.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
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
