package ui

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almanah/internal/app"
	"almanah/internal/config"
	"almanah/internal/domain"
	"almanah/internal/events"
	"almanah/internal/link"
	"almanah/internal/storage"
)

// recordingStorage is a real badger store that also remembers every entry
// handed to SetEntry.
type recordingStorage struct {
	*storage.BadgerManager

	mu    sync.Mutex
	saved []domain.Entry
}

func (s *recordingStorage) SetEntry(ctx context.Context, entry domain.Entry) error {
	s.mu.Lock()
	entry.Links = append([]domain.StoredLink(nil), entry.Links...)
	s.saved = append(s.saved, entry)
	s.mu.Unlock()
	return s.BadgerManager.SetEntry(ctx, entry)
}

func (s *recordingStorage) lastSaved(t *testing.T) domain.Entry {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.saved, "nothing was saved")
	return s.saved[len(s.saved)-1]
}

func (s *recordingStorage) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func newTestMainWindow(t *testing.T) (*MainWindow, *recordingStorage) {
	t.Helper()
	fyneApp := test.NewTempApp(t)

	log := logrus.New()
	log.SetOutput(io.Discard)

	registry := link.NewDefaultRegistry(link.DefaultCommands)
	tk := NewToolkit(fyneApp, registry, link.NewExecLauncher(log), nil, log)

	store := &recordingStorage{}
	a := app.New(app.Deps{
		Toolkit:   tk,
		Logger:    log,
		ConfigDir: t.TempDir(),
		DataDir:   filepath.Join(t.TempDir(), "data"),
		OpenSettings: func(dir string) (*config.Settings, error) {
			return config.Open(dir)
		},
		NewStorage: func(path, key string, log logrus.FieldLogger) storage.Manager {
			store.BadgerManager = storage.NewBadgerManager(path, key, log)
			return store
		},
		NewEvents: func(*config.Settings, logrus.FieldLogger) *events.Manager { return nil },
		Exit:      func(code int) { t.Fatalf("unexpected exit %d", code) },
	})
	require.NoError(t, a.Startup(context.Background()))
	t.Cleanup(func() { <-store.Disconnect(context.Background()) })

	mw := tk.NewMainWindow(a).(*MainWindow)
	return mw, store
}

func TestMainWindow_SavesOnDateChange(t *testing.T) {
	mw, store := newTestMainWindow(t)
	day := mw.entry.Date

	test.Type(mw.content, "Walked to the lake")
	mw.load(day.AddDate(0, 0, 1))

	saved := store.lastSaved(t)
	assert.True(t, saved.Date.Equal(day))
	assert.Equal(t, "Walked to the lake", saved.Content)

	got, err := store.GetEntry(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, "Walked to the lake", got.Content)

	assert.True(t, mw.entry.Date.Equal(day.AddDate(0, 0, 1)))
	assert.Empty(t, mw.content.Text, "the next day starts blank")
}

func TestMainWindow_FlushStoresPendingEdit(t *testing.T) {
	mw, store := newTestMainWindow(t)

	test.Type(mw.content, "Late entry")
	mw.important.SetChecked(true)
	mw.Flush()

	saved := store.lastSaved(t)
	assert.Equal(t, "Late entry", saved.Content)
	assert.True(t, saved.Important)
	assert.False(t, mw.dirty)

	mw.Flush()
	assert.Equal(t, 1, store.saveCount(), "an unchanged entry is not written again")
}

func TestMainWindow_AddLink(t *testing.T) {
	mw, store := newTestMainWindow(t)

	mw.addLink(link.NewCalendarTask("123", "Buy milk"))

	require.Len(t, mw.entry.Links, 1)
	stored := mw.entry.Links[0]
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, link.CalendarTaskTypeID, stored.Type)
	assert.Equal(t, "123", stored.Value)
	assert.Equal(t, "Buy milk", stored.Value2)
	require.Len(t, mw.links, 1)
	assert.Equal(t, "Buy milk (Calendar Task)", mw.linkText(0))

	got, err := store.GetEntry(context.Background(), mw.entry.Date)
	require.NoError(t, err)
	assert.Equal(t, []domain.StoredLink{stored}, got.Links)
}

func TestMainWindow_RemovingLastLinkDeletesEmptyEntry(t *testing.T) {
	mw, store := newTestMainWindow(t)
	ctx := context.Background()

	mw.addLink(link.NewCalendarTask("123", "Buy milk"))
	stats, err := store.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Entries)

	mw.linkList.Select(0)
	require.Equal(t, 0, mw.selectedLink)
	mw.removeSelectedLink()

	assert.Empty(t, mw.entry.Links)
	assert.Empty(t, store.lastSaved(t).Links)

	stats, err = store.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries, "an entry with no text and no links is not kept")

	days, err := store.EntryDays(ctx, mw.entry.Date.Year(), mw.entry.Date.Month())
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestMainWindow_EditsSurviveReload(t *testing.T) {
	mw, _ := newTestMainWindow(t)
	day := mw.entry.Date

	test.Type(mw.content, "Rain all day")
	mw.load(day.AddDate(0, 0, -1))
	mw.load(day)

	assert.Equal(t, "Rain all day", mw.content.Text)
	assert.False(t, mw.dirty, "loading is not an edit")
}
