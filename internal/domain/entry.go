package domain

import (
	"strings"
	"time"
)

// Entry is one day of the diary.
type Entry struct {
	// Date is the calendar day the entry belongs to, normalised by Day.
	Date time.Time `json:"date"`

	// Content is the text the user wrote for the day.
	Content string `json:"content"`

	// Important marks entries the user flagged for later.
	Important bool `json:"important"`

	// LastEdited is stamped by the storage manager on every save.
	LastEdited time.Time `json:"last_edited"`

	// Links are owned by the entry and deleted with it.
	Links []StoredLink `json:"links,omitempty"`
}

// StoredLink is the persisted form of a link attached to an entry.
type StoredLink struct {
	// ID identifies the link within its entry.
	ID string `json:"id"`

	// Type is the registered link type ID, e.g. "calendar-task".
	Type string `json:"type"`

	// Value is the primary payload (task UID, file path, URL).
	Value string `json:"value"`

	// Value2 is the optional secondary payload (summary, title).
	Value2 string `json:"value2,omitempty"`
}

// IsEmpty reports whether the entry carries nothing worth storing.
func (e Entry) IsEmpty() bool {
	return strings.TrimSpace(e.Content) == "" && len(e.Links) == 0
}

// Day returns midnight UTC of t's calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayKey renders the day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return Day(t).Format(time.DateOnly)
}
