package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/yanggf8/travel-2026/internal/cache"
	"github.com/yanggf8/travel-2026/internal/registry"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry count and size",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cache.New(cfg.Cache.Dir, cache.WithTTL(cfg.Cache.TTL()))
		if err != nil {
			return eris.Wrap(err, "init cache")
		}
		entries, bytes, err := c.Stats()
		if err != nil {
			return eris.Wrap(err, "cache stats")
		}
		fmt.Printf("dir:     %s\n", cfg.Cache.Dir)
		fmt.Printf("ttl:     %s\n", cfg.Cache.TTL())
		fmt.Printf("entries: %d\n", entries)
		fmt.Printf("size:    %.1f KiB\n", float64(bytes)/1024)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [source]",
	Short: "Delete cached results, optionally for one source only",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cache.New(cfg.Cache.Dir, cache.WithTTL(cfg.Cache.TTL()))
		if err != nil {
			return eris.Wrap(err, "init cache")
		}
		source := ""
		if len(args) > 0 {
			source = args[0]
		}
		if err := c.Clear(source); err != nil {
			return eris.Wrap(err, "clear cache")
		}
		return nil
	},
}

var (
	invalidateSource string
	invalidateExtras []string
)

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <url>",
	Short: "Drop the cached result for one URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]

		source := invalidateSource
		if source == "" {
			detected, ok := registry.DetectOTA(url)
			if !ok {
				return eris.Errorf("no known OTA matches %s; pass --source", url)
			}
			source = string(detected)
		}

		extras, err := parseExtras(invalidateExtras)
		if err != nil {
			return err
		}

		c, err := cache.New(cfg.Cache.Dir, cache.WithTTL(cfg.Cache.TTL()))
		if err != nil {
			return eris.Wrap(err, "init cache")
		}
		c.Invalidate(source, url, extras)
		return nil
	},
}

func init() {
	cacheInvalidateCmd.Flags().StringVar(&invalidateSource, "source", "", "source id when URL detection cannot determine it")
	cacheInvalidateCmd.Flags().StringArrayVar(&invalidateExtras, "extra", nil, "cache identity parameter as key=value (repeatable)")
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cacheInvalidateCmd)
	rootCmd.AddCommand(cacheCmd)
}
