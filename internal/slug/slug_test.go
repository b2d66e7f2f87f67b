package slug

import (
	"testing"
)

func TestKeyword(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "hyphenated slug",
			input:    "https://example.com/best-cctv-cameras",
			expected: "best cctv cameras",
		},
		{
			name:     "trailing slash",
			input:    "https://example.com/blog/best-cctv-cameras/",
			expected: "best cctv cameras",
		},
		{
			name:     "underscores and repeated separators",
			input:    "https://example.com/home__security_tips",
			expected: "home security tips",
		},
		{
			name:     "percent encoded arabic",
			input:    "https://example.com/%D9%83%D8%A7%D9%85%D9%8A%D8%B1%D8%A7%D8%AA-%D9%85%D8%B1%D8%A7%D9%82%D8%A8%D8%A9",
			expected: "كاميرات مراقبة",
		},
		{
			name:     "query string ignored",
			input:    "https://example.com/seo-tools?utm_source=x",
			expected: "seo tools",
		},
		{
			name:     "root path",
			input:    "https://example.com/",
			expected: "",
		},
		{
			name:     "relative url",
			input:    "/just/a/path",
			expected: "",
		},
		{
			name:     "garbage",
			input:    "::not a url",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Keyword(tt.input)
			if result != tt.expected {
				t.Errorf("Keyword(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLastSegment(t *testing.T) {
	if got := LastSegment("https://example.com/a/b/c-d"); got != "c-d" {
		t.Errorf("Expected c-d, got %q", got)
	}
	if got := LastSegment("https://example.com"); got != "" {
		t.Errorf("Expected empty segment, got %q", got)
	}
}
