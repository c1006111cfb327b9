package events

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"almanah/internal/domain"
)

// Manager routes event queries to every registered factory.
type Manager struct {
	factories []Factory
	log       logrus.FieldLogger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewManager(logger logrus.FieldLogger, factories ...Factory) *Manager {
	return &Manager{
		factories: factories,
		log:       logger.WithField("component", "events"),
	}
}

// Query asks all factories concurrently. A failing factory is logged and
// skipped; the others still contribute.
func (m *Manager) Query(ctx context.Context, date time.Time) ([]Event, error) {
	results := make([][]Event, len(m.factories))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range m.factories {
		g.Go(func() error {
			evs, err := f.Query(gctx, date)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				m.log.WithError(err).WithFields(logrus.Fields{
					"factory": f.Name(),
					"date":    domain.DayKey(date),
				}).Warn("Event factory failed")
				return nil
			}
			for j := range evs {
				evs[j].Factory = f.Name()
			}
			results[i] = evs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []Event
	for _, evs := range results {
		all = append(all, evs...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].Start.Equal(all[j].Start) {
			return all[i].Start.Before(all[j].Start)
		}
		return all[i].Summary < all[j].Summary
	})
	return all, nil
}

// QueryAsync runs Query in the background and hands the events to fn.
// Starting a new query cancels the previous one, whose fn is then never
// called.
func (m *Manager) QueryAsync(date time.Time, fn func([]Event)) {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = cancel
	m.mu.Unlock()

	go func() {
		defer cancel()
		evs, err := m.Query(ctx, date)
		if err != nil {
			m.log.WithError(err).Debug("Event query abandoned")
			return
		}
		if ctx.Err() != nil {
			return
		}
		fn(evs)
	}()
}

// Close cancels any in-flight query.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}
