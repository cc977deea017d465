package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yanggf8/travel-2026/internal/cache"
	"github.com/yanggf8/travel-2026/internal/parsers"
	"github.com/yanggf8/travel-2026/internal/registry"
	"github.com/yanggf8/travel-2026/internal/scraper"
)

var (
	batchFile    string
	batchOutDir  string
	batchNoCache bool
	batchLegacy  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Scrape a list of URLs concurrently",
	Long:  "Reads URLs one per line (blank lines and # comments skipped), detects the vendor parser for each, and scrapes them under the configured concurrency and rate limits.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		urls, err := readURLFile(batchFile)
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			zap.L().Info("no urls to scrape")
			return nil
		}

		if batchOutDir != "" {
			if err := os.MkdirAll(batchOutDir, 0755); err != nil {
				return eris.Wrapf(err, "create %s", batchOutDir)
			}
		}

		engine, err := initEngine()
		if err != nil {
			return err
		}

		factory, err := openPageFactory(ctx)
		if err != nil {
			return err
		}
		defer factory.close()

		return processBatch(ctx, engine, factory, parsers.DefaultRegistry(), urls)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "file of URLs, one per line (required)")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "directory for per-URL result JSON files")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "skip the cache and always navigate")
	batchCmd.Flags().BoolVar(&batchLegacy, "legacy", false, "emit the flat legacy JSON layout")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return urls, nil
}

// processBatch scrapes urls concurrently. Individual failures are logged
// and counted, never abort the batch.
func processBatch(ctx context.Context, engine *scraper.Engine, factory *pageFactory, reg *registry.Registry, urls []string) error {
	zap.L().Info("processing batch",
		zap.Int("urls", len(urls)),
		zap.Int("concurrency", cfg.Batch.Concurrency),
		zap.Float64("rate_per_sec", cfg.Batch.RatePerSec),
	)

	limiter := rate.NewLimiter(rate.Limit(cfg.Batch.RatePerSec), 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Batch.Concurrency)

	var succeeded, failed atomic.Int64

	for _, url := range urls {
		g.Go(func() error {
			log := zap.L().With(zap.String("url", url))

			p, source, err := reg.ParserForURL(url)
			if err != nil {
				failed.Add(1)
				log.Error("no parser for url", zap.Error(err))
				return nil
			}

			if err := limiter.Wait(gctx); err != nil {
				return err
			}

			page, closePage := factory.newPage()
			defer closePage()

			opts := scraper.DefaultOptions()
			opts.UseCache = !batchNoCache
			result := engine.Scrape(gctx, page, p, url, opts)
			attachValidation(result)

			if result.Success {
				succeeded.Add(1)
			} else {
				failed.Add(1)
			}
			logResultSummary(result)

			if batchOutDir == "" {
				return nil
			}

			var data []byte
			if batchLegacy {
				data, err = result.EncodeLegacy()
			} else {
				data, err = result.Encode()
			}
			if err != nil {
				log.Error("encode result", zap.Error(err))
				return nil
			}
			name := string(source) + "-" + cache.Key(string(source), url, nil) + ".json"
			if err := os.WriteFile(filepath.Join(batchOutDir, name), data, 0644); err != nil {
				log.Error("write result", zap.Error(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch scrape")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
