package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Defaults(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err, "a missing settings file must not be an error")

	assert.Equal(t, "", s.String(KeyEncryptionKey))
	assert.Equal(t, "evolution", s.String(KeyCalendarCommand))
	assert.Equal(t, "xdg-open", s.String(KeyOpenCommand))
	assert.Empty(t, s.Strings(KeyEventsCommand))
	assert.False(t, s.Bool(KeyFetchLinkTitles))
}

func TestSettings_SetStringPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "almanah")

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.SetString(KeyEncryptionKey, "correct horse"))
	assert.FileExists(t, s.Path())

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, "correct horse", reopened.String(KeyEncryptionKey))
}

func TestSettings_EnvOverride(t *testing.T) {
	t.Setenv("ALMANAH_CALENDAR_COMMAND", "gnome-calendar")

	s, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "gnome-calendar", s.String(KeyCalendarCommand))
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "share", "almanah")

	require.NoError(t, EnsureDir(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	// Existing directories are left alone.
	require.NoError(t, os.Chmod(path, 0o755))
	require.NoError(t, EnsureDir(path))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	assert.Error(t, EnsureDir(file))
}

func TestDataDir(t *testing.T) {
	t.Setenv("ALMANAH_DATA_DIR", "")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/xdg/data", dir)

	t.Setenv("ALMANAH_DATA_DIR", "/override")
	dir, err = DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/override", dir)
}
