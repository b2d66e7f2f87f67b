package keywords

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	emailRegex       = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	linkRegex        = regexp.MustCompile(`https?://\S+`)
	digitRegex       = regexp.MustCompile(`\p{Nd}+`)
	punctuationRegex = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s-]+`)
	joinerRegex      = regexp.MustCompile(`[-_]+`)

	// tldRegex matches tokens that look like bare domain suffixes.
	tldRegex = regexp.MustCompile(`(?i)^(com|net|org|edu|gov|mil|biz|info|name|museum|coop|aero|[a-z]{2,3})$`)
)

// Tokenize lowercases text and splits it into words. Emails and links are
// removed, digit runs too when excludeNumbers is set, and punctuation other
// than hyphens and underscores becomes whitespace before those are collapsed.
func Tokenize(text string, excludeNumbers bool) []string {
	text = strings.ToLower(norm.NFC.String(text))
	text = emailRegex.ReplaceAllString(text, " ")
	text = linkRegex.ReplaceAllString(text, " ")
	if excludeNumbers {
		text = digitRegex.ReplaceAllString(text, " ")
	}
	text = punctuationRegex.ReplaceAllString(text, " ")
	text = joinerRegex.ReplaceAllString(text, " ")
	return strings.Fields(text)
}

// NGrams returns every run of n adjacent tokens joined by a single space.
// Runs made of one repeated word are skipped.
func NGrams(tokens []string, n int) []string {
	if n < 1 || len(tokens) < n {
		return nil
	}

	grams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		window := tokens[i : i+n]
		if n > 1 && allSame(window) {
			continue
		}
		grams = append(grams, strings.Join(window, " "))
	}
	return grams
}

func allSame(words []string) bool {
	for _, w := range words[1:] {
		if w != words[0] {
			return false
		}
	}
	return true
}
