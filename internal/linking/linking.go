package linking

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"seosuite/internal/clustering"
	"seosuite/internal/core"
)

// Strategy selects how link targets are allocated.
type Strategy string

const (
	StrategyBalanced  Strategy = "balanced"
	StrategyAuthority Strategy = "authority"
	StrategyCluster   Strategy = "cluster"
)

// AuthorityCount is the number of leading articles the authority strategy favours.
const AuthorityCount = 3

// Strategies lists the supported strategies in display order.
func Strategies() []Strategy {
	return []Strategy{StrategyBalanced, StrategyAuthority, StrategyCluster}
}

// ParseStrategy converts a name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	switch s {
	case StrategyBalanced, StrategyAuthority, StrategyCluster:
		return s, nil
	case "":
		return StrategyBalanced, nil
	}
	return "", core.NewConfigurationError("strategy", "unknown strategy %q (supported: balanced, authority, cluster)", name)
}

// Request describes one linking run.
type Request struct {
	Articles        []core.Article  `json:"articles"`
	Pillar          core.PillarPage `json:"pillar"`
	Strategy        Strategy        `json:"strategy"`
	LinksPerArticle int             `json:"links_per_article"`
}

// Engine allocates internal links between articles.
// An Engine holds a random source and is not safe for concurrent use.
type Engine struct {
	clusterer *clustering.Clusterer
	rng       *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used by the cluster strategy.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// WithSeed seeds the random source used by the cluster strategy.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithClusterer replaces the default keyword clusterer.
func WithClusterer(c *clustering.Clusterer) Option {
	return func(e *Engine) {
		e.clusterer = c
	}
}

// NewEngine creates an engine. Without WithRand or WithSeed it seeds from the clock.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.clusterer == nil {
		e.clusterer = clustering.NewClusterer(clustering.DefaultOptions())
	}
	return e
}

// Validate checks a request before any links are generated.
func (e *Engine) Validate(req Request) error {
	if req.LinksPerArticle < 1 {
		return core.NewConfigurationError("links_per_article", "must be at least 1, got %d", req.LinksPerArticle)
	}
	if _, err := ParseStrategy(string(req.Strategy)); err != nil {
		return err
	}

	if strings.TrimSpace(req.Pillar.Title) == "" {
		return core.NewValidationError("pillar.title", "is required")
	}
	if strings.TrimSpace(req.Pillar.URL) == "" {
		return core.NewValidationError("pillar.url", "is required")
	}
	if strings.TrimSpace(req.Pillar.Keyword) == "" {
		return core.NewValidationError("pillar.keyword", "is required")
	}

	if len(req.Articles) == 0 {
		return core.NewValidationError("articles", "no articles were parsed; expected lines of the form title | url | keyword")
	}
	if len(req.Articles) < req.LinksPerArticle {
		return core.NewValidationError("articles",
			"%d articles is fewer than the %d links requested per article", len(req.Articles), req.LinksPerArticle)
	}

	seen := make(map[string]bool, len(req.Articles))
	for i, a := range req.Articles {
		if a.ID == "" {
			return core.NewValidationError(fmt.Sprintf("articles[%d].id", i), "is required")
		}
		if a.ID == core.PillarID {
			return core.NewValidationError(fmt.Sprintf("articles[%d].id", i), "%q is reserved for the pillar page", core.PillarID)
		}
		if seen[a.ID] {
			return core.NewValidationError(fmt.Sprintf("articles[%d].id", i), "duplicate id %q", a.ID)
		}
		seen[a.ID] = true
	}

	return nil
}

// Generate builds the linking map for the request. Every entry starts with the
// pillar page, holds at most LinksPerArticle targets, never targets its own
// article and never repeats a target.
func (e *Engine) Generate(req Request) (core.LinkingMap, error) {
	if err := e.Validate(req); err != nil {
		return core.LinkingMap{}, err
	}
	strategy, _ := ParseStrategy(string(req.Strategy))

	var entries []core.LinkEntry
	switch strategy {
	case StrategyBalanced:
		entries = e.balanced(req)
	case StrategyAuthority:
		entries = e.authority(req)
	case StrategyCluster:
		entries = e.cluster(req)
	}

	return core.LinkingMap{
		Strategy:        string(strategy),
		LinksPerArticle: req.LinksPerArticle,
		Entries:         entries,
	}, nil
}

// Clusters exposes the topical grouping used by the cluster strategy.
func (e *Engine) Clusters(articles []core.Article) []core.Cluster {
	return e.clusterer.Cluster(articles)
}

// balanced walks the corpus circularly from (i × budget) mod N so that start
// offsets differ by a fixed stride and mentions spread evenly.
func (e *Engine) balanced(req Request) []core.LinkEntry {
	articles := req.Articles
	n := len(articles)
	budget := req.LinksPerArticle - 1 // one slot belongs to the pillar

	entries := make([]core.LinkEntry, 0, n)
	for i, a := range articles {
		list := newTargetList(req.Pillar)
		start := (i * budget) % n
		selected := 0
		for step := 0; step < n && selected < budget; step++ {
			candidate := articles[(start+step)%n]
			if candidate.ID == a.ID {
				continue
			}
			if list.add(candidate) {
				selected++
			}
		}
		entries = append(entries, list.entry(a))
	}
	return entries
}

// authority links every article to the first AuthorityCount articles, then fills
// from the rest of the corpus in order. The cap is checked against the whole
// list length, pillar included.
func (e *Engine) authority(req Request) []core.LinkEntry {
	articles := req.Articles
	split := AuthorityCount
	if split > len(articles) {
		split = len(articles)
	}
	priority, rest := articles[:split], articles[split:]

	entries := make([]core.LinkEntry, 0, len(articles))
	for _, a := range articles {
		list := newTargetList(req.Pillar)
		for _, p := range priority {
			if p.ID != a.ID && list.size() < req.LinksPerArticle {
				list.add(p)
			}
		}
		for _, o := range rest {
			if o.ID != a.ID && list.size() < req.LinksPerArticle {
				list.add(o)
			}
		}
		entries = append(entries, list.entry(a))
	}
	return entries
}

// cluster links same-cluster peers first, in cluster order, then fills any
// remaining slots from a shuffled copy of the out-of-cluster articles.
func (e *Engine) cluster(req Request) []core.LinkEntry {
	articles := req.Articles
	clusters := e.clusterer.Cluster(articles)
	index := clustering.Index(clusters)

	entries := make([]core.LinkEntry, 0, len(articles))
	for _, a := range articles {
		list := newTargetList(req.Pillar)
		own := clusters[index[a.ID]]

		for _, peer := range own.Articles {
			if peer.ID != a.ID && list.size() < req.LinksPerArticle {
				list.add(peer)
			}
		}

		if list.size() < req.LinksPerArticle {
			var outside []core.Article
			for _, o := range articles {
				if o.ID != a.ID && !own.Contains(o.ID) {
					outside = append(outside, o)
				}
			}
			e.rng.Shuffle(len(outside), func(i, j int) {
				outside[i], outside[j] = outside[j], outside[i]
			})
			for _, o := range outside {
				if list.size() >= req.LinksPerArticle {
					break
				}
				list.add(o)
			}
		}

		entries = append(entries, list.entry(a))
	}
	return entries
}

// targetList is an ordered, duplicate-free list of link targets headed by the pillar.
type targetList struct {
	targets []core.Target
	seen    map[string]bool
}

func newTargetList(pillar core.PillarPage) *targetList {
	return &targetList{
		targets: []core.Target{pillar.Target()},
		seen:    map[string]bool{core.PillarID: true},
	}
}

func (l *targetList) add(a core.Article) bool {
	if l.seen[a.ID] {
		return false
	}
	l.seen[a.ID] = true
	l.targets = append(l.targets, core.TargetFromArticle(a))
	return true
}

func (l *targetList) size() int {
	return len(l.targets)
}

func (l *targetList) entry(a core.Article) core.LinkEntry {
	return core.LinkEntry{Article: a, LinkedArticles: l.targets}
}
