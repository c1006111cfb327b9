package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"almanah/internal/domain"
)

const (
	entryPrefix    = "entry:"
	indexCacheSize = 64 << 20
	gcDiscardRatio = 0.5
)

// BadgerManager implements Manager on BadgerDB with encryption at rest.
type BadgerManager struct {
	path          string
	encryptionKey string
	log           logrus.FieldLogger

	mu sync.RWMutex
	db *badger.DB
}

// NewBadgerManager prepares a manager for the database directory at path.
// An empty encryptionKey leaves the database unencrypted.
func NewBadgerManager(path, encryptionKey string, logger logrus.FieldLogger) *BadgerManager {
	return &BadgerManager{
		path:          path,
		encryptionKey: encryptionKey,
		log:           logger.WithField("component", "storage"),
	}
}

// Connect opens the database.
func (m *BadgerManager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return ErrAlreadyConnected
	}

	opts := badger.DefaultOptions(m.path)
	opts.Logger = &badgerLogger{m.log.WithField("component", "badgerdb")}

	if m.encryptionKey != "" {
		key, err := deriveKey(m.encryptionKey, m.path+".salt")
		if err != nil {
			return fmt.Errorf("failed to derive encryption key: %w", err)
		}
		opts = opts.WithEncryptionKey(key).WithIndexCacheSize(indexCacheSize)
	}

	db, err := badger.Open(opts)
	if err != nil {
		m.log.WithError(err).Error("Failed to open BadgerDB")
		return fmt.Errorf("failed to open database at %s: %w", m.path, err)
	}
	m.db = db

	m.log.WithFields(logrus.Fields{
		"path":      m.path,
		"encrypted": m.encryptionKey != "",
	}).Info("Database opened")
	return nil
}

// Disconnect flushes and closes the database off the calling goroutine.
func (m *BadgerManager) Disconnect(ctx context.Context) <-chan DisconnectResult {
	result := make(chan DisconnectResult, 1)

	m.mu.Lock()
	db := m.db
	m.db = nil
	m.mu.Unlock()

	if db == nil {
		result <- DisconnectResult{}
		close(result)
		return result
	}

	go func() {
		defer close(result)
		result <- m.closeDB(db)
	}()
	return result
}

func (m *BadgerManager) closeDB(db *badger.DB) DisconnectResult {
	var res DisconnectResult

	m.log.Info("Closing database...")
	if err := db.Sync(); err != nil {
		m.log.WithError(err).Error("Failed to sync database")
		res.Error = fmt.Sprintf("Failed to write the diary to disk: %v", err)
	}

	err := db.RunValueLogGC(gcDiscardRatio)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
		m.log.WithError(err).Warn("Value log garbage collection failed")
		res.Warning = fmt.Sprintf("The diary could not be compacted: %v", err)
	}

	if err := db.Close(); err != nil {
		m.log.WithError(err).Error("Error closing database")
		msg := fmt.Sprintf("Failed to close the encrypted diary: %v", err)
		if res.Error != "" {
			msg = res.Error + " " + msg
		}
		res.Error = msg
		return res
	}

	m.log.Info("Database closed.")
	return res
}

func (m *BadgerManager) view(fn func(txn *badger.Txn) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.db == nil {
		return ErrNotConnected
	}
	return m.db.View(fn)
}

func (m *BadgerManager) update(fn func(txn *badger.Txn) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.db == nil {
		return ErrNotConnected
	}
	return m.db.Update(fn)
}

// entryKey creates the key an entry is stored under.
// Format: entry:{YYYY-MM-DD}
func entryKey(date time.Time) []byte {
	return []byte(entryPrefix + domain.DayKey(date))
}

// monthPrefix creates a key prefix for scanning the entries of one month.
// Format: entry:{YYYY-MM}-
func monthPrefix(year int, month time.Month) []byte {
	return []byte(fmt.Sprintf("%s%04d-%02d-", entryPrefix, year, int(month)))
}

func (m *BadgerManager) GetEntry(ctx context.Context, date time.Time) (domain.Entry, error) {
	day := domain.Day(date)
	entry := domain.Entry{Date: day}

	err := m.view(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(day))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Entry{Date: day}, nil
	}
	if err != nil {
		return domain.Entry{}, fmt.Errorf("failed to get entry for %s: %w", domain.DayKey(day), err)
	}
	return entry, nil
}

func (m *BadgerManager) SetEntry(ctx context.Context, entry domain.Entry) error {
	entry.Date = domain.Day(entry.Date)
	log := m.log.WithField("date", domain.DayKey(entry.Date))

	if entry.IsEmpty() {
		log.Debug("Entry is empty, deleting it")
		return m.DeleteEntry(ctx, entry.Date)
	}

	entry.LastEdited = time.Now().UTC()
	entryBytes, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	err = m.update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(entryKey(entry.Date), entryBytes))
	})
	if err != nil {
		log.WithError(err).Error("Failed to save entry")
		return fmt.Errorf("failed to save entry: %w", err)
	}

	log.WithField("link_count", len(entry.Links)).Debug("Entry saved")
	return nil
}

func (m *BadgerManager) DeleteEntry(ctx context.Context, date time.Time) error {
	err := m.update(func(txn *badger.Txn) error {
		return txn.Delete(entryKey(date))
	})
	if err != nil {
		return fmt.Errorf("failed to delete entry for %s: %w", domain.DayKey(date), err)
	}
	return nil
}

func (m *BadgerManager) EntryDays(ctx context.Context, year int, month time.Month) ([]int, error) {
	var days []int

	prefix := monthPrefix(year, month)
	err := m.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			day, err := strconv.Atoi(string(it.Item().Key()[len(prefix):]))
			if err != nil {
				return fmt.Errorf("malformed entry key %q: %w", it.Item().Key(), err)
			}
			days = append(days, day)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for %04d-%02d: %w", year, int(month), err)
	}
	return days, nil
}

// eachEntry decodes every stored entry in key order.
func (m *BadgerManager) eachEntry(fn func(domain.Entry)) error {
	prefix := []byte(entryPrefix)
	return m.view(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var entry domain.Entry
				if err := json.Unmarshal(val, &entry); err != nil {
					return fmt.Errorf("failed to unmarshal entry for key %s: %w", string(item.Key()), err)
				}
				fn(entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (m *BadgerManager) Search(ctx context.Context, query string) ([]domain.Entry, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	var found []domain.Entry
	err := m.eachEntry(func(entry domain.Entry) {
		if matches(entry, query) {
			found = append(found, entry)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Date.After(found[j].Date)
	})
	m.log.WithField("result_count", len(found)).Debug("Search completed")
	return found, nil
}

func matches(entry domain.Entry, query string) bool {
	if strings.Contains(strings.ToLower(entry.Content), query) {
		return true
	}
	for _, l := range entry.Links {
		if strings.Contains(strings.ToLower(l.Value), query) || strings.Contains(strings.ToLower(l.Value2), query) {
			return true
		}
	}
	return false
}

func (m *BadgerManager) Statistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	err := m.eachEntry(func(entry domain.Entry) {
		stats.Entries++
		stats.Links += len(entry.Links)
		if entry.Important {
			stats.ImportantEntries++
		}
	})
	if err != nil {
		return Statistics{}, fmt.Errorf("failed to compute statistics: %w", err)
	}
	return stats, nil
}

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
