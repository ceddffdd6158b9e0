package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scopify/benchmark-agent/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "benchmark-agent",
	Short: "Market benchmark research pipeline",
	Long:  "Runs multi-vector market research for a company: web search across six benchmark vectors, curation, per-topic briefings, and a compiled markdown report, served over HTTP with live progress streaming.",
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
