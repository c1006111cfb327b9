// Package events finds things that happened on a diary day outside the
// diary itself, such as calendar tasks.
package events

import (
	"context"
	"time"

	"almanah/internal/link"
)

// Event kinds.
const (
	KindTask        = "task"
	KindAppointment = "appointment"
)

// Event is one item reported by a Factory for a day.
type Event struct {
	Factory string    `json:"-"`
	Kind    string    `json:"kind"`
	UID     string    `json:"uid"`
	Summary string    `json:"summary"`
	Start   time.Time `json:"start"`
}

// Link converts a task event into a calendar task link. Other kinds have no
// link representation.
func (e Event) Link(r *link.Registry) (link.Link, bool) {
	if e.Kind != KindTask {
		return nil, false
	}
	l, err := r.Build(link.CalendarTaskTypeID, e.UID, e.Summary)
	if err != nil {
		return nil, false
	}
	return l, true
}

// Factory is a source of events.
type Factory interface {
	Name() string

	// Query returns the events falling on date's day.
	Query(ctx context.Context, date time.Time) ([]Event, error)
}
