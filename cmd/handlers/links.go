package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"seosuite/internal/config"
	"seosuite/internal/exchange"
	"seosuite/internal/logger"
	"seosuite/internal/metrics"
	"seosuite/internal/parser"
	"seosuite/internal/report"
	"seosuite/internal/services"
	"seosuite/internal/store"
)

type linkOptions struct {
	input         string
	project       string
	pillarTitle   string
	pillarURL     string
	pillarKeyword string
	strategy      string
	links         int
	templates     []string
	format        string
	locale        string
	seed          int64
	output        string
	csvPath       string
	jsonOutput    bool
}

// NewLinksCmd creates the links command group
func NewLinksCmd() *cobra.Command {
	linksCmd := &cobra.Command{
		Use:   "links",
		Short: "Plan internal links between a pillar page and its articles",
		Long: `Build an internal linking map, render the link paragraphs and report
how evenly links are spread.

Articles are read from a bulk text file ("title | url | keyword" per line),
a CSV or XLSX file with title, url and keyword columns, or a saved project.`,
	}

	linksCmd.AddCommand(newLinksGenerateCmd())
	linksCmd.AddCommand(newLinksClustersCmd())
	linksCmd.AddCommand(newLinksStatsCmd())

	return linksCmd
}

func addInputFlags(cmd *cobra.Command, opts *linkOptions) {
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "articles file (.txt bulk, .csv, .xlsx) or - for stdin")
	cmd.Flags().StringVarP(&opts.project, "project", "p", "", "project ID to read inputs from, or \"active\"")
}

func addLinkFlags(cmd *cobra.Command, opts *linkOptions) {
	addInputFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.pillarTitle, "pillar-title", "", "pillar page title")
	cmd.Flags().StringVar(&opts.pillarURL, "pillar-url", "", "pillar page URL")
	cmd.Flags().StringVar(&opts.pillarKeyword, "pillar-keyword", "", "pillar page focus keyword")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "linking strategy: balanced, authority or cluster (default from config)")
	cmd.Flags().IntVarP(&opts.links, "links", "l", 0, "links per article (default from config)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed for reproducible maps")
}

func newLinksGenerateCmd() *cobra.Command {
	opts := &linkOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a linking map and its link paragraphs",
		Long: `Generate a linking map and render one link paragraph per article.

Examples:
  # Balanced map from a bulk file
  seosuite links generate -i articles.txt \
    --pillar-title "Home Security Guide" \
    --pillar-url https://example.com/guide \
    --pillar-keyword "home security"

  # Markdown paragraphs plus a CSV of every link
  seosuite links generate -i articles.csv --format markdown --csv links.csv ...

  # Regenerate the active project's map and save it back
  seosuite links generate -p active`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinksGenerate(cmd, opts)
		},
	}

	addLinkFlags(cmd, opts)
	cmd.Flags().StringArrayVarP(&opts.templates, "template", "t", nil, "paragraph template containing {links} (repeatable)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "link format: html or markdown (default from config)")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "list wording: en or ar (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write paragraphs to this file instead of stdout")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "also export every link to this CSV file")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the full result as JSON")

	return cmd
}

func newLinksClustersCmd() *cobra.Command {
	opts := &linkOptions{}

	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Group articles by shared keyword words",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, ps, err := buildLinkRequest(cmd.Context(), cmd, opts)
			defer ps.close()
			if err != nil {
				return err
			}
			clusters, err := newLinker().Clusters(req)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), clusters)
			}
			report.New(cmd.OutOrStdout()).Clusters(clusters)
			return nil
		},
	}

	addInputFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print clusters as JSON")

	return cmd
}

func newLinksStatsCmd() *cobra.Command {
	opts := &linkOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the linking dashboard without rendering paragraphs",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, ps, err := buildLinkRequest(cmd.Context(), cmd, opts)
			defer ps.close()
			if err != nil {
				return err
			}
			result, err := newLinker().Generate(req)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result.Stats)
			}
			report.New(cmd.OutOrStdout()).Dashboard(result.Stats)
			return nil
		},
	}

	addLinkFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print stats as JSON")

	return cmd
}

func newLinker() *services.Linker {
	return services.NewLinker(config.GetLinking(), metrics.New(nil))
}

// projectState ties a request to the project it was read from.
type projectState struct {
	store   *store.Store
	project store.Project
	state   store.ProjectState
}

func (ps *projectState) close() {
	if ps != nil {
		closeStore(ps.store)
	}
}

// buildLinkRequest merges project state, the input file and flags, in that
// order. The returned projectState is nil unless --project was given; its
// store must be closed by the caller.
func buildLinkRequest(ctx context.Context, cmd *cobra.Command, opts *linkOptions) (services.LinkRequest, *projectState, error) {
	var (
		req services.LinkRequest
		ps  *projectState
	)

	if opts.project != "" {
		st, err := openStore()
		if err != nil {
			return req, nil, err
		}
		project, err := resolveProject(ctx, st, opts.project)
		if err != nil {
			closeStore(st)
			return req, nil, err
		}
		state, err := st.LoadState(ctx, project.ID)
		if err != nil {
			closeStore(st)
			return req, nil, err
		}
		ps = &projectState{store: st, project: project, state: state}

		saved := state.Linking
		req.Pillar = saved.Pillar
		req.Articles = saved.Articles
		req.BulkInput = saved.BulkInput
		req.Strategy = saved.Strategy
		req.LinksPerArticle = saved.LinksPerArticle
		req.Templates = saved.Templates
	}

	switch opts.input {
	case "":
		if ps == nil {
			return req, nil, fmt.Errorf("an articles file (--input) or a project (--project) is required")
		}
	case "-":
		data, err := readInput(cmd, opts.input)
		if err != nil {
			return req, ps, err
		}
		req.Articles = nil
		req.BulkInput = string(data)
	default:
		articles, err := exchange.ReadArticlesFile(opts.input)
		if err != nil {
			return req, ps, err
		}
		req.Articles = articles
		req.BulkInput = ""
	}

	if opts.pillarTitle != "" {
		req.Pillar.Title = opts.pillarTitle
	}
	if opts.pillarURL != "" {
		req.Pillar.URL = opts.pillarURL
	}
	if opts.pillarKeyword != "" {
		req.Pillar.Keyword = opts.pillarKeyword
	}
	if opts.strategy != "" {
		req.Strategy = opts.strategy
	}
	if opts.links != 0 {
		req.LinksPerArticle = opts.links
	}
	if len(opts.templates) > 0 {
		req.Templates = opts.templates
	}
	req.Format = opts.format
	req.Locale = opts.locale
	req.Seed = opts.seed

	return req, ps, nil
}

func runLinksGenerate(cmd *cobra.Command, opts *linkOptions) error {
	ctx := cmd.Context()

	req, ps, err := buildLinkRequest(ctx, cmd, opts)
	defer ps.close()
	if err != nil {
		return err
	}

	linker := newLinker()
	result, err := linker.Generate(req)
	if err != nil {
		return err
	}

	if opts.csvPath != "" {
		err := withOutput(cmd, opts.csvPath, func(w io.Writer) error {
			return exchange.WriteLinksCSV(w, result.Map)
		})
		if err != nil {
			return err
		}
	}

	if ps != nil {
		linkingState := ps.state.Linking
		linkingState.Pillar = req.Pillar
		articles := linker.Articles(req)
		linkingState.Articles = articles
		linkingState.BulkInput = parser.FormatBulk(articles)
		linkingState.Strategy = result.Map.Strategy
		linkingState.LinksPerArticle = result.Map.LinksPerArticle
		linkingState.Templates = req.Templates
		linkingState.LinkingMap = &result.Map
		ps.state.Linking = linkingState

		if err := ps.store.SaveState(ctx, ps.project.ID, ps.state); err != nil {
			return err
		}
		logger.Info("Saved linking map to project", "project", ps.project.Name, "entries", len(result.Map.Entries))
	}

	if opts.jsonOutput {
		return withOutput(cmd, opts.output, func(w io.Writer) error {
			return writeJSON(w, result)
		})
	}

	reporter := report.New(cmd.OutOrStdout())
	reporter.LinkingMap(result.Map)

	err = withOutput(cmd, opts.output, func(w io.Writer) error {
		for _, entry := range result.Rendered {
			if _, err := fmt.Fprintf(w, "%s (%s)\n%s\n\n", entry.Article.Title, entry.Article.URL, entry.Text); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	reporter.Dashboard(result.Stats)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
