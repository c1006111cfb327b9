package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Setting keys.
const (
	KeyEncryptionKey   = "encryption-key"
	KeyCalendarCommand = "calendar-command"
	KeyOpenCommand     = "open-command"
	KeyEventsCommand   = "events-command"
	KeyFetchLinkTitles = "fetch-link-titles"
)

const (
	appDirName   = "almanah"
	settingsName = "settings"
	settingsType = "yaml"
)

// Settings is the persistent settings store.
// Values come from settings.yaml in the config directory, overridden by
// ALMANAH_* environment variables.
type Settings struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// Open reads the settings file in dir. A missing file is not an error; it is
// written on the first SetString.
func Open(dir string) (*Settings, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(settingsName)
	v.SetConfigType(settingsType)

	v.SetEnvPrefix("ALMANAH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyEncryptionKey, "")
	v.SetDefault(KeyCalendarCommand, "evolution")
	v.SetDefault(KeyOpenCommand, "xdg-open")
	v.SetDefault(KeyEventsCommand, []string{})
	v.SetDefault(KeyFetchLinkTitles, false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading settings file: %w", err)
		}
	}

	return &Settings{
		v:    v,
		path: filepath.Join(dir, settingsName+"."+settingsType),
	}, nil
}

// Path returns the settings file location.
func (s *Settings) Path() string {
	return s.path
}

func (s *Settings) String(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(key)
}

func (s *Settings) Bool(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetBool(key)
}

func (s *Settings) Strings(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetStringSlice(key)
}

// SetString stores value under key and writes the settings file.
func (s *Settings) SetString(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(key, value)
	if err := EnsureDir(filepath.Dir(s.path)); err != nil {
		return err
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings to %s: %w", s.path, err)
	}
	return nil
}

// ConfigDir returns the directory holding settings.yaml.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// DataDir returns the per-user data directory the diary database lives in:
// $ALMANAH_DATA_DIR, else $XDG_DATA_HOME, else ~/.local/share.
func DataDir() (string, error) {
	if dir := os.Getenv("ALMANAH_DATA_DIR"); dir != "" {
		return dir, nil
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine data directory: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

// RuntimeDir returns where the single-instance socket is created.
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// EnsureDir creates path with owner-only permissions if it does not exist.
func EnsureDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf("%s exists and is not a directory", path)
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to check %s: %w", path, err)
	}

	if err := os.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return nil
}
