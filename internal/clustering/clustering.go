package clustering

import (
	"strings"
	"unicode/utf8"

	"seosuite/internal/core"
)

// Options controls when a candidate article joins a seed's cluster.
type Options struct {
	// MinSharedWords is the number of distinct keyword tokens a candidate must share with the seed.
	MinSharedWords int `mapstructure:"min_shared_words"`
	// MinWordLength is the shortest token (in characters) that counts towards overlap.
	MinWordLength int `mapstructure:"min_word_length"`
	// JaccardThreshold, when > 0, also admits candidates whose token-set similarity
	// with the seed reaches the threshold.
	JaccardThreshold float64 `mapstructure:"jaccard_threshold"`
}

// DefaultOptions clusters on two shared words longer than two characters.
func DefaultOptions() Options {
	return Options{
		MinSharedWords: 2,
		MinWordLength:  3,
	}
}

// Clusterer groups articles by the words their keywords share.
type Clusterer struct {
	opts Options
}

// NewClusterer creates a clusterer. Zero-valued options fall back to the defaults.
func NewClusterer(opts Options) *Clusterer {
	defaults := DefaultOptions()
	if opts.MinSharedWords <= 0 {
		opts.MinSharedWords = defaults.MinSharedWords
	}
	if opts.MinWordLength <= 0 {
		opts.MinWordLength = defaults.MinWordLength
	}
	return &Clusterer{opts: opts}
}

// Cluster partitions articles in a single greedy pass. Each unassigned article
// seeds a new cluster and absorbs every later unassigned article that matches
// the seed. Candidates are compared with the seed only, never with other members,
// so the result depends on input order.
func (c *Clusterer) Cluster(articles []core.Article) []core.Cluster {
	assigned := make([]bool, len(articles))
	tokens := make([]map[string]struct{}, len(articles))
	for i, a := range articles {
		tokens[i] = c.tokenSet(a.Keyword)
	}

	var clusters []core.Cluster
	for i, seed := range articles {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		cluster := core.Cluster{Articles: []core.Article{seed}}

		for j := i + 1; j < len(articles); j++ {
			if assigned[j] {
				continue
			}
			if c.matches(tokens[i], tokens[j]) {
				cluster.Articles = append(cluster.Articles, articles[j])
				assigned[j] = true
			}
		}
		clusters = append(clusters, cluster)
	}

	return clusters
}

func (c *Clusterer) matches(seed, candidate map[string]struct{}) bool {
	if overlap(seed, candidate) >= c.opts.MinSharedWords {
		return true
	}
	if c.opts.JaccardThreshold > 0 && Jaccard(seed, candidate) >= c.opts.JaccardThreshold {
		return true
	}
	return false
}

// SharedWords returns the number of distinct significant tokens two keywords have in common.
func (c *Clusterer) SharedWords(a, b string) int {
	return overlap(c.tokenSet(a), c.tokenSet(b))
}

func (c *Clusterer) tokenSet(keyword string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(keyword)) {
		if utf8.RuneCountInString(word) >= c.opts.MinWordLength {
			set[word] = struct{}{}
		}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

// Jaccard returns |a ∩ b| / |a ∪ b| for two token sets, or 0 when both are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	union := len(a) + len(b)
	if union == 0 {
		return 0
	}
	shared := overlap(a, b)
	return float64(shared) / float64(union-shared)
}

// Index maps each article ID to the position of its cluster.
func Index(clusters []core.Cluster) map[string]int {
	idx := make(map[string]int)
	for i, cl := range clusters {
		for _, a := range cl.Articles {
			idx[a.ID] = i
		}
	}
	return idx
}

// Cluster groups articles with the default options.
func Cluster(articles []core.Article) []core.Cluster {
	return NewClusterer(DefaultOptions()).Cluster(articles)
}
