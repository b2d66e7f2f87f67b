package handlers

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"seosuite/internal/config"
	"seosuite/internal/core"
	"seosuite/internal/exchange"
	"seosuite/internal/fetch"
	"seosuite/internal/logger"
	"seosuite/internal/metrics"
	"seosuite/internal/parser"
	"seosuite/internal/report"
	"seosuite/internal/services"
	"seosuite/internal/store"
)

// NewKeywordsCmd creates the keywords command group
func NewKeywordsCmd() *cobra.Command {
	keywordsCmd := &cobra.Command{
		Use:   "keywords",
		Short: "Extract ranked keyword candidates from pages",
	}

	keywordsCmd.AddCommand(newKeywordsExtractCmd())

	return keywordsCmd
}

type extractOptions struct {
	urls        []string
	urlsFile    string
	sitemap     string
	output      string
	format      string
	project     string
	maxPerURL   int
	minLength   int
	exclude     []string
	keepNumbers bool
	noCache     bool
}

func newKeywordsExtractCmd() *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Fetch pages and rank their keyword phrases",
		Long: `Fetch each page, pull its title, meta description, headings and body text,
and rank one to three word phrases. Pages that cannot be fetched fall back to a
keyword derived from the URL slug.

Examples:
  seosuite keywords extract --url https://example.com/blog/outdoor-cameras
  seosuite keywords extract --urls-file urls.txt -o keywords.xlsx
  seosuite keywords extract --sitemap https://example.com/sitemap.xml --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeywordsExtract(cmd, opts, args)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.urls, "url", "u", nil, "page URL (repeatable; positional arguments work too)")
	cmd.Flags().StringVar(&opts.urlsFile, "urls-file", "", "file with URLs, one or more per line (markdown links allowed)")
	cmd.Flags().StringVar(&opts.sitemap, "sitemap", "", "sitemap or sitemap index URL")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write results to this file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "csv, xlsx, json or text (default from the output extension)")
	cmd.Flags().StringVarP(&opts.project, "project", "p", "", "save inputs and results to this project ID, or \"active\"")
	cmd.Flags().IntVar(&opts.maxPerURL, "max", 0, "keywords per URL, 1-20 (default from config)")
	cmd.Flags().IntVar(&opts.minLength, "min-length", 0, "minimum word length, 2-50 (default from config)")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil, "extra words to exclude")
	cmd.Flags().BoolVar(&opts.keepNumbers, "keep-numbers", false, "keep purely numeric words")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "always fetch pages instead of using the page cache")

	return cmd
}

// extractRequest builds the batch request from config defaults and flags.
func extractRequest(cmd *cobra.Command, opts *extractOptions, args []string) (fetch.Request, error) {
	req := fetch.Request{Config: config.GetKeywords()}

	if opts.maxPerURL != 0 {
		req.Config.MaxKeywordsPerURL = opts.maxPerURL
	}
	if opts.minLength != 0 {
		req.Config.MinKeywordLength = opts.minLength
	}
	if len(opts.exclude) > 0 {
		req.Config.ManualExcludedWords = append(append([]string{}, req.Config.ManualExcludedWords...), opts.exclude...)
	}
	if opts.keepNumbers {
		req.Config.ExcludeNumbers = false
	}

	if opts.sitemap != "" {
		req.Config.InputType = core.InputSitemap
		req.SitemapURL = opts.sitemap
		return req, nil
	}

	req.Config.InputType = core.InputURLs
	req.URLs = append(append(req.URLs, opts.urls...), args...)
	if opts.urlsFile != "" {
		data, err := readInput(cmd, opts.urlsFile)
		if err != nil {
			return req, err
		}
		req.URLs = append(req.URLs, parser.NewParser().ParseURLList(string(data))...)
	}
	if len(req.URLs) == 0 {
		return req, fmt.Errorf("no URLs given; use --url, --urls-file or --sitemap")
	}
	return req, nil
}

func runKeywordsExtract(cmd *cobra.Command, opts *extractOptions, args []string) error {
	ctx := cmd.Context()

	req, err := extractRequest(cmd, opts, args)
	if err != nil {
		return err
	}

	format := exchange.FormatText
	if opts.output != "" {
		format = exchange.FormatFromPath(opts.output)
	}
	if opts.format != "" {
		if format, err = exchange.ParseFormat(opts.format); err != nil {
			return err
		}
	}

	var st *store.Store
	if !opts.noCache || opts.project != "" {
		st, err = openStore()
		if err != nil {
			if opts.project != "" {
				return err
			}
			logger.Warn("Page cache unavailable, fetching every page", "error", err)
			st = nil
		} else {
			defer closeStore(st)
		}
	}

	cacheStore := st
	if opts.noCache {
		cacheStore = nil
	}
	extractor := services.NewBatchExtractor(config.GetFetch(), cacheStore, metrics.New(nil))

	batch, err := extractor.Run(ctx, req)
	if err != nil {
		return err
	}

	if opts.project != "" {
		project, err := resolveProject(ctx, st, opts.project)
		if err != nil {
			return err
		}
		state, err := st.LoadState(ctx, project.ID)
		if err != nil {
			return err
		}
		state.Extractor = store.ExtractorState{URLs: req.URLs, SitemapURL: req.SitemapURL, Config: req.Config, Results: &batch}
		if err := st.SaveState(ctx, project.ID, state); err != nil {
			return err
		}
		logger.Info("Saved keyword results to project", "project", project.Name, "urls", len(batch.Results))
	}

	return withOutput(cmd, opts.output, func(w io.Writer) error {
		if format == exchange.FormatText {
			report.New(w).Keywords(batch)
			return nil
		}
		return exchange.WriteResults(w, batch, format)
	})
}
