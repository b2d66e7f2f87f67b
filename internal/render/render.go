package render

import (
	"fmt"
	"html"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"seosuite/internal/core"
)

// Placeholder is replaced by the joined link list in every template.
const Placeholder = "{links}"

// DefaultTemplate is used when no templates are configured.
const DefaultTemplate = "You can also read about " + Placeholder + "."

// Format selects the anchor markup.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ParseFormat converts a name into a Format. Empty means html.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatHTML:
		return FormatHTML, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", core.NewConfigurationError("linking.format", "unknown format %q (supported: html, markdown)", name)
	}
}

// Locale holds the words used to join a list of links.
type Locale struct {
	Separator   string `json:"separator" yaml:"separator" mapstructure:"separator"`
	Conjunction string `json:"conjunction" yaml:"conjunction" mapstructure:"conjunction"`
	// Template replaces DefaultTemplate when no templates are configured.
	Template string `json:"template,omitempty" yaml:"template,omitempty" mapstructure:"template"`
}

// EnglishLocale joins as "A, B, and C".
func EnglishLocale() Locale {
	return Locale{Separator: ", ", Conjunction: "and "}
}

// ArabicLocale joins as "A، B، وC".
func ArabicLocale() Locale {
	return Locale{
		Separator:   "، ",
		Conjunction: "و",
		Template:    "يمكنك الاطلاع على خدماتنا الأخرى مثل " + Placeholder + ".",
	}
}

// LocaleByName returns a preset locale ("en" or "ar").
func LocaleByName(name string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "en", "english":
		return EnglishLocale(), nil
	case "ar", "arabic":
		return ArabicLocale(), nil
	default:
		return Locale{}, core.NewConfigurationError("linking.locale", "unknown locale %q (supported: en, ar)", name)
	}
}

// JoinList joins items with the locale's separator and conjunction:
// one item is returned as is, two become "A <conj>B" and more become
// "A<sep>B<sep><conj>C".
func JoinList(items []string, loc Locale) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " " + loc.Conjunction + items[1]
	default:
		last := len(items) - 1
		return strings.Join(items[:last], loc.Separator) + loc.Separator + loc.Conjunction + items[last]
	}
}

// Options configures a Renderer.
type Options struct {
	Templates []string
	Locale    Locale
	Format    Format
}

// Renderer turns link target lists into paragraphs of anchor text.
// It holds a random source and is not safe for concurrent use.
type Renderer struct {
	templates []string
	locale    Locale
	format    Format
	rng       *rand.Rand
}

// Entry is the rendered link text for one article.
type Entry struct {
	Article core.Article `json:"article"`
	Text    string       `json:"text"`
}

// NewRenderer validates opts. Blank templates are ignored; a nil rng is seeded from the clock.
func NewRenderer(opts Options, rng *rand.Rand) (*Renderer, error) {
	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}

	var templates []string
	for _, t := range opts.Templates {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.Contains(t, Placeholder) {
			return nil, core.NewConfigurationError("linking.templates", "template %q has no %s placeholder", t, Placeholder)
		}
		templates = append(templates, t)
	}
	if len(templates) == 0 {
		fallback := opts.Locale.Template
		if fallback == "" {
			fallback = DefaultTemplate
		}
		templates = []string{fallback}
	}

	if opts.Locale.Separator == "" && opts.Locale.Conjunction == "" {
		opts.Locale = EnglishLocale()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Renderer{templates: templates, locale: opts.Locale, format: format, rng: rng}, nil
}

// ParseTemplates splits newline separated templates, dropping blank lines.
func ParseTemplates(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Render fills a randomly chosen template with links to targets.
func (r *Renderer) Render(targets []core.Target) string {
	return r.RenderWithTemplate(targets, r.templates[r.rng.Intn(len(r.templates))])
}

// RenderWithTemplate fills template with links to targets, using each target's
// keyword as anchor text.
func (r *Renderer) RenderWithTemplate(targets []core.Target, template string) string {
	anchors := make([]string, len(targets))
	for i, t := range targets {
		anchors[i] = r.anchor(t)
	}

	text := strings.Replace(template, Placeholder, JoinList(anchors, r.locale), 1)
	if r.format == FormatHTML {
		return "<p>" + text + "</p>"
	}
	return text
}

// RenderMap renders every entry of m in map order.
func (r *Renderer) RenderMap(m core.LinkingMap) []Entry {
	out := make([]Entry, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = Entry{Article: e.Article, Text: r.Render(e.LinkedArticles)}
	}
	return out
}

func (r *Renderer) anchor(t core.Target) string {
	if r.format == FormatMarkdown {
		label := strings.NewReplacer("[", `\[`, "]", `\]`).Replace(t.Keyword)
		link := strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29").Replace(t.URL)
		return fmt.Sprintf("[%s](%s)", label, link)
	}
	return fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, html.EscapeString(t.URL), html.EscapeString(t.Keyword))
}

// WriteFile writes content to filename inside outputDir, creating the directory.
func WriteFile(content, outputDir, filename string) (string, error) {
	if outputDir == "" {
		outputDir = "."
	}

	err := os.MkdirAll(outputDir, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, filename)

	err = os.WriteFile(filePath, []byte(content), 0644)
	if err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", filePath, err)
	}

	return filePath, nil
}
