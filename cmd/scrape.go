package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanggf8/travel-2026/internal/parsers"
	"github.com/yanggf8/travel-2026/internal/registry"
	"github.com/yanggf8/travel-2026/internal/scraper"
)

var (
	scrapeURL     string
	scrapeSource  string
	scrapeExtras  []string
	scrapeNoCache bool
	scrapeLegacy  bool
	scrapeOut     string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a single package or flight URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg := parsers.DefaultRegistry()

		p, err := resolveParser(reg, scrapeSource, scrapeURL)
		if err != nil {
			return err
		}

		extras, err := parseExtras(scrapeExtras)
		if err != nil {
			return err
		}

		engine, err := initEngine()
		if err != nil {
			return err
		}

		session, err := openPage(ctx)
		if err != nil {
			return err
		}
		defer session.close()

		opts := scraper.DefaultOptions()
		opts.UseCache = !scrapeNoCache
		opts.Extras = extras

		result := engine.Scrape(ctx, session.page, p, scrapeURL, opts)
		attachValidation(result)
		logResultSummary(result)

		var data []byte
		if scrapeLegacy {
			data, err = result.EncodeLegacy()
		} else {
			data, err = result.Encode()
		}
		if err != nil {
			return eris.Wrap(err, "encode result")
		}

		if scrapeOut != "" {
			if err := os.WriteFile(scrapeOut, data, 0644); err != nil {
				return eris.Wrapf(err, "write %s", scrapeOut)
			}
			zap.L().Info("result written", zap.String("path", scrapeOut))
			return nil
		}

		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	},
}

// resolveParser picks the vendor parser: a forced source id, URL detection,
// or the generic fallback for unrecognized sites. Forcing an unknown source
// is an error; an unknown URL is not.
func resolveParser(reg *registry.Registry, source, url string) (scraper.Parser, error) {
	if source != "" {
		return reg.Parser(registry.Source(source))
	}
	if p, _, err := reg.ParserForURL(url); err == nil {
		return p, nil
	}
	zap.L().Warn("no vendor parser for url, falling back to generic scrape",
		zap.String("url", url))
	return &parsers.Generic{}, nil
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "package or flight URL (required)")
	scrapeCmd.Flags().StringVar(&scrapeSource, "source", "", "force a vendor parser instead of URL detection")
	scrapeCmd.Flags().StringArrayVar(&scrapeExtras, "extra", nil, "cache identity parameter as key=value (repeatable)")
	scrapeCmd.Flags().BoolVar(&scrapeNoCache, "no-cache", false, "skip the cache and always navigate")
	scrapeCmd.Flags().BoolVar(&scrapeLegacy, "legacy", false, "emit the flat legacy JSON layout")
	scrapeCmd.Flags().StringVar(&scrapeOut, "out", "", "write the result JSON to a file instead of stdout")
	_ = scrapeCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(scrapeCmd)
}
