package ui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"almanah/internal/storage"
)

func TestSnippet(t *testing.T) {
	assert.Equal(t, "Went walking.", snippet("  Went walking.\nSaw a heron.\n"))
	assert.Empty(t, snippet("   "))

	long := strings.Repeat("á", 100)
	s := snippet(long)
	assert.Equal(t, snippetLength+1, utf8.RuneCountInString(s))
	assert.True(t, strings.HasSuffix(s, "…"))
}

func TestDaysText(t *testing.T) {
	assert.Equal(t, "Entries this month: 3, 7, 21", daysText([]int{3, 7, 21}))
	assert.Equal(t, "No entries this month", daysText(nil))
}

func TestStatisticsText(t *testing.T) {
	text := statisticsText(storage.Statistics{Entries: 4, Links: 2, ImportantEntries: 1})
	assert.Equal(t, "Entries: 4\nLinks: 2\nImportant entries: 1", text)
}
