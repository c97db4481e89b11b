package model

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestExcerptStripsMarkup(t *testing.T) {
	got := Excerpt("# Heading\n\nSome **bold** and `code` with <em>markup</em>.", 160)
	require.Equal(t, "Heading Some bold and code with markup.", got)
}

func TestExcerptShortContentUntouched(t *testing.T) {
	require.Equal(t, "plain text", Excerpt("plain text", 160))
	require.Equal(t, "", Excerpt("", 160))
	require.Equal(t, "", Excerpt("   \n\t  ", 160))
}

func TestExcerptCutsAtWordBoundary(t *testing.T) {
	content := strings.Repeat("word ", 50)
	got := Excerpt(content, 23)
	require.Equal(t, "word word word word...", got)
	require.LessOrEqual(t, len(got), 23+3)
}

func TestExcerptCutsOnRuneBoundary(t *testing.T) {
	got := Excerpt(strings.Repeat("Я", 100), 21)
	require.True(t, utf8.ValidString(got))
	require.Equal(t, strings.Repeat("Я", 21)+"...", got)

	// A word boundary before the cut still wins over the hard limit.
	got = Excerpt("Привет мир "+strings.Repeat("Я", 50), 10)
	require.Equal(t, "Привет...", got)
}

func TestExcerptCollapsesWhitespace(t *testing.T) {
	got := Excerpt("one\n\ntwo   three\tfour", 160)
	require.Equal(t, "one two three four", got)
}
