package services

import (
	"math/rand"
	"strings"

	"seosuite/internal/clustering"
	"seosuite/internal/config"
	"seosuite/internal/core"
	"seosuite/internal/linking"
	"seosuite/internal/metrics"
	"seosuite/internal/parser"
	"seosuite/internal/render"
)

// LinkRequest is one linking run. Zero-valued settings fall back to the
// configured defaults. Articles take precedence over BulkInput and Manual.
type LinkRequest struct {
	Pillar          core.PillarPage      `json:"pillar"`
	Articles        []core.Article       `json:"articles,omitempty"`
	BulkInput       string               `json:"bulk_input,omitempty"`
	Manual          []parser.ManualEntry `json:"manual,omitempty"`
	Strategy        string               `json:"strategy,omitempty"`
	LinksPerArticle int                  `json:"links_per_article,omitempty"`
	Templates       []string             `json:"templates,omitempty"`
	Format          string               `json:"format,omitempty"`
	Locale          string               `json:"locale,omitempty"`
	Seed            int64                `json:"seed,omitempty"`
}

// LinkResult holds the linking map, its rendered link text and dashboard stats.
type LinkResult struct {
	Map      core.LinkingMap `json:"linking_map"`
	Rendered []render.Entry  `json:"rendered"`
	Stats    linking.Stats   `json:"stats"`
}

// Linker runs the linking engine and renderer with configured defaults.
// It builds a fresh engine per call and is safe for concurrent use.
type Linker struct {
	defaults config.Linking
	metrics  *metrics.Metrics
}

// NewLinker creates a Linker. m may be nil.
func NewLinker(defaults config.Linking, m *metrics.Metrics) *Linker {
	return &Linker{defaults: defaults, metrics: m}
}

// Articles resolves the request's article list.
func (l *Linker) Articles(req LinkRequest) []core.Article {
	if len(req.Articles) > 0 {
		return req.Articles
	}
	p := parser.NewParser()
	articles := p.ParseBulk(req.BulkInput)
	return append(articles, p.ParseManual(req.Manual)...)
}

// Generate builds the linking map, renders link text for every entry and
// computes the dashboard.
func (l *Linker) Generate(req LinkRequest) (LinkResult, error) {
	rng := l.rand(req.Seed)

	renderer, err := l.renderer(req, rng)
	if err != nil {
		return LinkResult{}, err
	}

	strategy := req.Strategy
	if strings.TrimSpace(strategy) == "" {
		strategy = l.defaults.Strategy
	}
	perArticle := req.LinksPerArticle
	if perArticle == 0 {
		perArticle = l.defaults.LinksPerArticle
	}

	articles := l.Articles(req)
	m, err := l.engine(rng).Generate(linking.Request{
		Articles:        articles,
		Pillar:          req.Pillar,
		Strategy:        linking.Strategy(strategy),
		LinksPerArticle: perArticle,
	})
	if err != nil {
		return LinkResult{}, err
	}

	rendered := renderer.RenderMap(m)
	l.metrics.ObserveLinkRun(m.Strategy, len(articles))
	l.metrics.ObserveRendered(len(rendered))

	return LinkResult{Map: m, Rendered: rendered, Stats: linking.Analyze(articles, m)}, nil
}

// Clusters groups the request's articles by shared keyword words.
func (l *Linker) Clusters(req LinkRequest) ([]core.Cluster, error) {
	articles := l.Articles(req)
	if len(articles) == 0 {
		return nil, core.NewValidationError("articles", "no articles were parsed; expected lines of the form title | url | keyword")
	}
	return l.engine(nil).Clusters(articles), nil
}

func (l *Linker) engine(rng *rand.Rand) *linking.Engine {
	opts := []linking.Option{linking.WithClusterer(clustering.NewClusterer(l.defaults.Cluster))}
	if rng != nil {
		opts = append(opts, linking.WithRand(rng))
	}
	return linking.NewEngine(opts...)
}

func (l *Linker) renderer(req LinkRequest, rng *rand.Rand) (*render.Renderer, error) {
	templates := req.Templates
	if len(templates) == 0 {
		templates = l.defaults.Templates
	}
	format := req.Format
	if format == "" {
		format = l.defaults.Format
	}

	var (
		locale render.Locale
		err    error
	)
	if req.Locale != "" {
		locale, err = render.LocaleByName(req.Locale)
	} else {
		locale, err = l.defaults.RenderLocale()
	}
	if err != nil {
		return nil, err
	}

	return render.NewRenderer(render.Options{Templates: templates, Locale: locale, Format: render.Format(format)}, rng)
}

// rand returns a seeded source, or nil to let each component seed from the clock.
func (l *Linker) rand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = l.defaults.Seed
	}
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewSource(seed))
}
