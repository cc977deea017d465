package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanggf8/travel-2026/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "travel-scraper",
	Short: "Travel package scraper for Taiwan-Japan OTAs",
	Long:  "Scrapes flight and package details from Taiwanese travel sites (喜鴻, 雄獅, 五福, 東南, 虎航, 易遊網) into a canonical JSON schema, with per-URL caching.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
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
