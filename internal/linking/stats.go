package linking

import (
	"seosuite/internal/core"
)

// ArticleStats holds link counts for one article of a linking map.
type ArticleStats struct {
	Article  core.Article `json:"article"`
	Outbound int          `json:"outbound"`
	Inbound  int          `json:"inbound"`
	Orphan   bool         `json:"orphan"`
}

// Stats summarises a linking map.
type Stats struct {
	TotalArticles   int            `json:"total_articles"`
	TotalLinks      int            `json:"total_links"`
	AverageMentions float64        `json:"average_mentions"`
	MentionSpread   int            `json:"mention_spread"` // max - min mentions across mentioned targets
	Orphans         int            `json:"orphans"`
	Mentions        map[string]int `json:"mentions"` // target ID -> times linked, pillar included
	Articles        []ArticleStats `json:"articles"`
}

// Analyze derives inbound and outbound counts from a linking map. Outbound counts
// every target including the pillar; inbound counts links from other entries.
// Articles missing from the map have zero outbound links.
func Analyze(articles []core.Article, m core.LinkingMap) Stats {
	stats := Stats{
		TotalArticles: len(articles),
		Mentions:      make(map[string]int),
		Articles:      make([]ArticleStats, len(articles)),
	}

	pos := make(map[string]int, len(articles))
	for i, a := range articles {
		pos[a.ID] = i
		stats.Articles[i] = ArticleStats{Article: a}
	}

	for _, entry := range m.Entries {
		if i, ok := pos[entry.Article.ID]; ok {
			stats.Articles[i].Outbound = len(entry.LinkedArticles)
		}
		stats.TotalLinks += len(entry.LinkedArticles)

		for _, target := range entry.LinkedArticles {
			stats.Mentions[target.ID]++
			if target.Pillar {
				continue
			}
			if i, ok := pos[target.ID]; ok {
				stats.Articles[i].Inbound++
			}
		}
	}

	for i := range stats.Articles {
		if stats.Articles[i].Inbound == 0 {
			stats.Articles[i].Orphan = true
			stats.Orphans++
		}
	}

	if len(stats.Mentions) > 0 {
		total := 0
		lowest, highest := -1, 0
		for _, n := range stats.Mentions {
			total += n
			if n > highest {
				highest = n
			}
			if lowest < 0 || n < lowest {
				lowest = n
			}
		}
		stats.AverageMentions = float64(total) / float64(len(stats.Mentions))
		stats.MentionSpread = highest - lowest
	}

	return stats
}

// OrphanArticles returns the articles nobody links to.
func (s Stats) OrphanArticles() []core.Article {
	var out []core.Article
	for _, a := range s.Articles {
		if a.Orphan {
			out = append(out, a.Article)
		}
	}
	return out
}
