package slug

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var separatorRun = regexp.MustCompile(`[-_]+`)

// Keyword turns the last path segment of rawURL into a space separated phrase.
// "https://example.com/blog/best-cctv-cameras/" yields "best cctv cameras".
// It returns "" when the URL cannot be parsed or has no path segment.
func Keyword(rawURL string) string {
	segment := LastSegment(rawURL)
	if segment == "" {
		return ""
	}

	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return ""
	}

	decoded = norm.NFC.String(decoded)
	return strings.TrimSpace(separatorRun.ReplaceAllString(decoded, " "))
}

// LastSegment returns the raw (still percent-encoded) last path segment of an absolute URL.
func LastSegment(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	path := u.EscapedPath()
	path = strings.Trim(path, "/")
	if path == "" {
		return ""
	}

	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}
