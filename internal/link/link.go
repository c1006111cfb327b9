// Package link implements the links a diary entry can carry to resources
// outside the diary. Each kind of link is a Type registered in a Registry;
// adding a kind never touches a central switch.
package link

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"almanah/internal/domain"
)

var (
	ErrUnknownType   = errors.New("unknown link type")
	ErrDuplicateType = errors.New("link type already registered")
	ErrMissingValue  = errors.New("missing link value")
	ErrInvalidValue  = errors.New("invalid link value")
)

// Link is a reference from a diary entry to an external resource.
type Link interface {
	// Type returns the metadata the link was built from.
	Type() Type

	// FormatValue renders the payload for display. It never fails.
	FormatValue() string

	// Values returns the payload in its persisted form.
	Values() (value, value2 string)

	// View performs the link's primary action, typically launching an
	// external program through l.
	View(ctx context.Context, l Launcher) error
}

// Field describes one of the two value entries in the link dialog.
type Field struct {
	Label    string
	Visible  bool
	Required bool
}

// Type is the metadata of a link kind.
type Type struct {
	ID          string
	Name        string
	Description string
	Icon        string

	Value  Field
	Value2 Field

	// New builds a link of this type from the dialog values.
	New func(value, value2 string) (Link, error)
}

// Validate checks the values against the type's field definitions.
func (t Type) Validate(value, value2 string) error {
	if t.Value.Required && strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingValue, t.Value.Label)
	}
	if t.Value2.Visible && t.Value2.Required && strings.TrimSpace(value2) == "" {
		return fmt.Errorf("%w: %s", ErrMissingValue, t.Value2.Label)
	}
	return nil
}

// Registry holds the known link types in registration order.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
	order []string
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Type)}
}

// Register adds t. IDs must be unique and New must be set.
func (r *Registry) Register(t Type) error {
	if t.ID == "" || t.New == nil {
		return fmt.Errorf("link type %q is incomplete", t.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[t.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, t.ID)
	}
	r.types[t.ID] = t
	r.order = append(r.order, t.ID)
	return nil
}

func (r *Registry) Lookup(id string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[id]
	return t, ok
}

// Types returns all registered types in registration order.
func (r *Registry) Types() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]Type, 0, len(r.order))
	for _, id := range r.order {
		types = append(types, r.types[id])
	}
	return types
}

// Build validates the values and constructs a link of type id.
func (r *Registry) Build(id, value, value2 string) (Link, error) {
	t, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, id)
	}
	if err := t.Validate(value, value2); err != nil {
		return nil, err
	}
	return t.New(value, value2)
}

// FromStored rebuilds a link loaded from storage.
func (r *Registry) FromStored(s domain.StoredLink) (Link, error) {
	return r.Build(s.Type, s.Value, s.Value2)
}

// ToStored converts l to its persisted form under a fresh ID.
func ToStored(l Link) domain.StoredLink {
	value, value2 := l.Values()
	return domain.StoredLink{
		ID:     uuid.NewString(),
		Type:   l.Type().ID,
		Value:  value,
		Value2: value2,
	}
}

// Commands names the external programs the built-in types launch.
type Commands struct {
	Calendar string
	Open     string
}

// DefaultCommands are used when no setting overrides them.
var DefaultCommands = Commands{
	Calendar: "evolution",
	Open:     "xdg-open",
}

// NewDefaultRegistry registers the built-in link types.
func NewDefaultRegistry(cmds Commands) *Registry {
	if cmds.Calendar == "" {
		cmds.Calendar = DefaultCommands.Calendar
	}
	if cmds.Open == "" {
		cmds.Open = DefaultCommands.Open
	}

	r := NewRegistry()
	for _, t := range []Type{
		CalendarTaskType(cmds.Calendar),
		FileType(cmds.Open),
		URIType(cmds.Open),
	} {
		// IDs are distinct constants; Register cannot fail here.
		_ = r.Register(t)
	}
	return r
}
