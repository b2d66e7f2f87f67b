package render

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"seosuite/internal/core"
)

func targets(keywords ...string) []core.Target {
	out := make([]core.Target, len(keywords))
	for i, kw := range keywords {
		out[i] = core.Target{ID: kw, Keyword: kw, URL: "https://example.com/" + kw}
	}
	return out
}

func TestJoinList(t *testing.T) {
	tests := []struct {
		name     string
		items    []string
		locale   Locale
		expected string
	}{
		{name: "empty", items: nil, locale: EnglishLocale(), expected: ""},
		{name: "single", items: []string{"A"}, locale: EnglishLocale(), expected: "A"},
		{name: "pair english", items: []string{"A", "B"}, locale: EnglishLocale(), expected: "A and B"},
		{name: "many english", items: []string{"A", "B", "C"}, locale: EnglishLocale(), expected: "A, B, and C"},
		{name: "pair arabic", items: []string{"A", "B"}, locale: ArabicLocale(), expected: "A وB"},
		{name: "many arabic", items: []string{"A", "B", "C", "D"}, locale: ArabicLocale(), expected: "A، B، C، وD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinList(tt.items, tt.locale); got != tt.expected {
				t.Errorf("JoinList(%q) = %q, expected %q", tt.items, got, tt.expected)
			}
		})
	}
}

func TestRenderWithTemplateHTML(t *testing.T) {
	r, err := NewRenderer(Options{Locale: ArabicLocale()}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	got := r.RenderWithTemplate(targets("cams", "locks"), "See {links}.")
	expected := `<p>See <a href="https://example.com/cams" target="_blank">cams</a> و<a href="https://example.com/locks" target="_blank">locks</a>.</p>`
	if got != expected {
		t.Errorf("Unexpected HTML:\n got: %s\nwant: %s", got, expected)
	}

	escaped := r.RenderWithTemplate([]core.Target{{Keyword: `<b>"x"</b>`, URL: `https://example.com/?a=1&b="2"`}}, "{links}")
	if strings.Contains(escaped, "<b>") || !strings.Contains(escaped, "&amp;b=&#34;2&#34;") {
		t.Errorf("Anchor parts should be escaped: %s", escaped)
	}
}

func TestRenderWithTemplateMarkdown(t *testing.T) {
	r, err := NewRenderer(Options{Format: FormatMarkdown}, nil)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	got := r.RenderWithTemplate(targets("cams", "locks", "alarms"), "Read {links} next. {links}")
	expected := "Read [cams](https://example.com/cams), [locks](https://example.com/locks), and [alarms](https://example.com/alarms) next. {links}"
	if got != expected {
		t.Errorf("Unexpected markdown:\n got: %s\nwant: %s", got, expected)
	}
}

func TestRenderUsesDefaultTemplate(t *testing.T) {
	r, _ := NewRenderer(Options{Format: FormatMarkdown, Templates: []string{"", "   "}}, nil)
	got := r.Render(targets("cams"))
	if got != "You can also read about [cams](https://example.com/cams)." {
		t.Errorf("Unexpected default rendering: %q", got)
	}

	ar, _ := NewRenderer(Options{Format: FormatMarkdown, Locale: ArabicLocale()}, nil)
	if got := ar.Render(targets("cams")); !strings.HasPrefix(got, "يمكنك الاطلاع") {
		t.Errorf("Expected Arabic fallback template, got %q", got)
	}
}

func TestRenderPicksFromPool(t *testing.T) {
	pool := []string{"One {links}", "Two {links}", "Three {links}"}
	r, err := NewRenderer(Options{Templates: pool, Format: FormatMarkdown}, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		text := r.Render(targets("cams"))
		seen[strings.Fields(text)[0]] = true
	}
	if len(seen) < 2 {
		t.Errorf("Expected several templates to be used, got %v", seen)
	}

	// Same seed, same choices
	a, _ := NewRenderer(Options{Templates: pool}, rand.New(rand.NewSource(9)))
	b, _ := NewRenderer(Options{Templates: pool}, rand.New(rand.NewSource(9)))
	for i := 0; i < 10; i++ {
		if a.Render(targets("x")) != b.Render(targets("x")) {
			t.Fatal("Seeded renderers diverged")
		}
	}
}

func TestNewRendererValidation(t *testing.T) {
	if _, err := NewRenderer(Options{Format: "pdf"}, nil); !core.IsConfiguration(err) {
		t.Errorf("Expected configuration error for unknown format, got %v", err)
	}
	if _, err := NewRenderer(Options{Templates: []string{"no placeholder"}}, nil); !core.IsConfiguration(err) {
		t.Errorf("Expected configuration error for template without placeholder, got %v", err)
	}
	if _, err := LocaleByName("fr"); !core.IsConfiguration(err) {
		t.Errorf("Expected configuration error for unknown locale, got %v", err)
	}
}

func TestRenderMap(t *testing.T) {
	m := core.LinkingMap{Entries: []core.LinkEntry{
		{Article: core.Article{ID: "1"}, LinkedArticles: targets("pillar", "b")},
		{Article: core.Article{ID: "2"}, LinkedArticles: targets("pillar", "a")},
	}}
	r, _ := NewRenderer(Options{Templates: []string{"{links}"}, Format: FormatMarkdown}, nil)

	entries := r.RenderMap(m)
	if len(entries) != 2 || entries[0].Article.ID != "1" || entries[1].Article.ID != "2" {
		t.Fatalf("Unexpected entries: %+v", entries)
	}
	if entries[1].Text != "[pillar](https://example.com/pillar) and [a](https://example.com/a)" {
		t.Errorf("Unexpected text: %q", entries[1].Text)
	}
}

func TestParseTemplates(t *testing.T) {
	got := ParseTemplates("First {links}\n\n  Second {links}  \n")
	if len(got) != 2 || got[1] != "Second {links}" {
		t.Errorf("Unexpected templates: %q", got)
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteFile("<p>hi</p>", dir, "links.html")
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "<p>hi</p>" {
		t.Errorf("Unexpected file content %q (%v)", data, err)
	}
}
