package storage

import (
	"context"
	"errors"
	"time"

	"almanah/internal/domain"
)

var (
	ErrNotConnected     = errors.New("storage manager is not connected")
	ErrAlreadyConnected = errors.New("storage manager is already connected")
)

// DisconnectResult reports how the final flush and close of the encrypted
// store went. Empty strings mean nothing to report.
type DisconnectResult struct {
	Error   string
	Warning string
}

// HasProblems reports whether the user should be told about the result.
func (r DisconnectResult) HasProblems() bool {
	return r.Error != "" || r.Warning != ""
}

// Statistics summarises the diary.
type Statistics struct {
	Entries          int
	Links            int
	ImportantEntries int
}

// Manager is the storage manager the application owns.
// This allows the application controller to be tested against a fake while
// the real implementation sits on BadgerDB.
type Manager interface {
	// Connect opens the store. It is called once, before the UI is shown.
	Connect(ctx context.Context) error

	// Disconnect flushes and closes the store in the background. The returned
	// channel delivers exactly one result and is then closed.
	Disconnect(ctx context.Context) <-chan DisconnectResult

	// GetEntry returns the entry for date's day, or an empty entry for that day.
	GetEntry(ctx context.Context, date time.Time) (domain.Entry, error)

	// SetEntry stores the entry, deleting it when it is empty.
	SetEntry(ctx context.Context, entry domain.Entry) error

	// DeleteEntry removes the entry for date's day along with its links.
	DeleteEntry(ctx context.Context, date time.Time) error

	// EntryDays lists the days of a month that have entries, ascending.
	EntryDays(ctx context.Context, year int, month time.Month) ([]int, error)

	// Search returns entries whose content or links contain query, newest first.
	Search(ctx context.Context, query string) ([]domain.Entry, error)

	Statistics(ctx context.Context) (Statistics, error)
}
