package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntry_IsEmpty(t *testing.T) {
	assert.True(t, Entry{}.IsEmpty())
	assert.True(t, Entry{Content: "  \n\t"}.IsEmpty(), "whitespace only content is empty")
	assert.False(t, Entry{Content: "Went for a walk"}.IsEmpty())
	assert.False(t, Entry{Links: []StoredLink{{ID: "1", Type: "file", Value: "/tmp/a"}}}.IsEmpty())
}

func TestDay(t *testing.T) {
	local := time.FixedZone("UTC+9", 9*60*60)
	in := time.Date(2024, time.March, 5, 23, 30, 0, 0, local)

	day := Day(in)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), day, "calendar day is taken from the input's own zone")
	assert.Equal(t, "2024-03-05", DayKey(in))
}
