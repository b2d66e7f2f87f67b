// Package report prints linking maps, dashboards, clusters, keyword batches
// and projects as terminal tables.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"seosuite/internal/core"
	"seosuite/internal/linking"
	"seosuite/internal/store"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

// Reporter writes tables to w.
type Reporter struct {
	w io.Writer
}

// New returns a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	return t
}

func (r *Reporter) heading(text string) {
	fmt.Fprintln(r.w, headingStyle.Render(text))
}

// LinkingMap prints each article with the keywords it links to, pillar first.
func (r *Reporter) LinkingMap(m core.LinkingMap) {
	r.heading(fmt.Sprintf("Linking map (%s, %d links per article)", m.Strategy, m.LinksPerArticle))

	t := r.newTable()
	t.AppendHeader(table.Row{"ID", "Article", "Keyword", "Links to"})
	for _, e := range m.Entries {
		targets := make([]string, len(e.LinkedArticles))
		for i, target := range e.LinkedArticles {
			if target.Pillar {
				targets[i] = "[pillar] " + target.Keyword
				continue
			}
			targets[i] = fmt.Sprintf("#%s %s", target.ID, target.Keyword)
		}
		t.AppendRow(table.Row{e.Article.ID, e.Article.Title, e.Article.Keyword, strings.Join(targets, "\n")})
	}
	t.Render()
}

// Dashboard prints the summary and per-article counts of a linking map.
func (r *Reporter) Dashboard(s linking.Stats) {
	r.heading("Linking dashboard")
	fmt.Fprintf(r.w, "Articles: %d  Links: %d  Avg mentions: %.2f  Spread: %d  Orphans: %s\n",
		s.TotalArticles, s.TotalLinks, s.AverageMentions, s.MentionSpread, orphanBadge(s.Orphans))

	t := r.newTable()
	t.AppendHeader(table.Row{"ID", "Article", "Outbound", "Inbound", "Status"})
	for _, a := range s.Articles {
		status := okStyle.Render("linked")
		if a.Orphan {
			status = warnStyle.Render("orphan")
		}
		t.AppendRow(table.Row{a.Article.ID, a.Article.Title, a.Outbound, a.Inbound, status})
	}
	t.Render()

	if len(s.Mentions) == 0 {
		return
	}
	ids := make([]string, 0, len(s.Mentions))
	for id := range s.Mentions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if s.Mentions[ids[i]] != s.Mentions[ids[j]] {
			return s.Mentions[ids[i]] > s.Mentions[ids[j]]
		}
		return ids[i] < ids[j]
	})

	mentions := r.newTable()
	mentions.AppendHeader(table.Row{"Target", "Mentions"})
	for _, id := range ids {
		mentions.AppendRow(table.Row{id, s.Mentions[id]})
	}
	mentions.Render()
}

func orphanBadge(n int) string {
	if n == 0 {
		return okStyle.Render("0")
	}
	return warnStyle.Render(fmt.Sprint(n))
}

// Clusters prints each cluster with its seed first.
func (r *Reporter) Clusters(clusters []core.Cluster) {
	r.heading(fmt.Sprintf("Topical clusters (%d)", len(clusters)))

	t := r.newTable()
	t.AppendHeader(table.Row{"#", "Seed", "Members"})
	for i, c := range clusters {
		if len(c.Articles) == 0 {
			continue
		}
		members := make([]string, 0, len(c.Articles)-1)
		for _, a := range c.Articles[1:] {
			members = append(members, a.Keyword)
		}
		t.AppendRow(table.Row{i + 1, c.Seed().Keyword, strings.Join(members, ", ")})
	}
	t.Render()
}

// Keywords prints the outcome of an extraction batch.
func (r *Reporter) Keywords(batch core.BatchResult) {
	md := batch.Metadata
	r.heading("Keyword extraction")
	fmt.Fprintf(r.w, "URLs: %d  Successful: %s  Failed: %s  Duration: %s\n",
		md.TotalURLs,
		okStyle.Render(fmt.Sprint(md.SuccessfulExtractions)),
		failedBadge(md.FailedExtractions),
		md.Duration.Round(time.Millisecond))

	t := r.newTable()
	t.AppendHeader(table.Row{"URL", "Status", "Keywords"})
	for _, res := range batch.Results {
		kws := make([]string, len(res.Keywords))
		for i, kw := range res.Keywords {
			kws[i] = fmt.Sprintf("%s (%d, %.2f)", kw.Keyword, kw.Frequency, kw.Score)
		}
		t.AppendRow(table.Row{res.URL, status(res), strings.Join(kws, "\n")})
	}
	t.Render()
}

func status(res core.URLResult) string {
	switch {
	case !res.Success:
		return errStyle.Render("failed")
	case res.Fallback:
		return warnStyle.Render("slug")
	default:
		return okStyle.Render("ok")
	}
}

func failedBadge(n int) string {
	if n == 0 {
		return mutedStyle.Render("0")
	}
	return errStyle.Render(fmt.Sprint(n))
}

// Projects prints the project list, marking the active one.
func (r *Reporter) Projects(projects []store.Project, activeID string) {
	t := r.newTable()
	t.AppendHeader(table.Row{"", "ID", "Name", "Updated"})
	for _, p := range projects {
		marker := ""
		if p.ID == activeID {
			marker = okStyle.Render("*")
		}
		t.AppendRow(table.Row{marker, p.ID, p.Name, p.UpdatedAt.Local().Format("2006-01-02 15:04")})
	}
	t.Render()
}

// MasterKeywords prints a project's keywords in order.
func (r *Reporter) MasterKeywords(keywords []store.MasterKeyword) {
	t := r.newTable()
	t.AppendHeader(table.Row{"#", "Keyword", "Intent", "ID"})
	for i, k := range keywords {
		t.AppendRow(table.Row{i + 1, k.Keyword, k.Intent, mutedStyle.Render(k.ID)})
	}
	t.Render()
}
