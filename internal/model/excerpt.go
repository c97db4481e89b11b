package model

import (
	"regexp"
	"strings"
)

var (
	markdownMarks = regexp.MustCompile("[#*_`]")
	htmlTags      = regexp.MustCompile("<[^>]*>")
	multiSpace    = regexp.MustCompile(`\s+`)
)

// Excerpt produces a short plain-text preview of note content: markdown
// markers and HTML tags stripped, whitespace collapsed, cut at the last
// word boundary before maxLen characters.
func Excerpt(content string, maxLen int) string {
	plain := markdownMarks.ReplaceAllString(content, "")
	plain = htmlTags.ReplaceAllString(plain, "")
	plain = strings.ReplaceAll(plain, "\n", " ")
	plain = strings.TrimSpace(multiSpace.ReplaceAllString(plain, " "))
	runes := []rune(plain)
	if len(runes) <= maxLen {
		return plain
	}
	truncated := string(runes[:maxLen])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
