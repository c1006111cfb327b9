// Package linkdialog holds the toolkit-independent state of the "add link"
// dialog.
package linkdialog

import (
	"errors"
	"fmt"

	"almanah/internal/link"
)

// State of the dialog.
type State int

const (
	Hidden State = iota
	TypeSelected
	ValuesEntered
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case TypeSelected:
		return "type-selected"
	case ValuesEntered:
		return "values-entered"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var ErrNoTypeSelected = errors.New("no link type selected")

// Controller mediates the dialog. It is created once and reused for every
// link-creation request.
type Controller struct {
	registry *link.Registry

	state         State
	selected      link.Type
	hasSelection  bool
	value         string
	value2        string
	value2Visible bool
}

func New(registry *link.Registry) *Controller {
	return &Controller{registry: registry}
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Visible() bool { return c.state != Hidden }

// Selected returns the selected type, if any.
func (c *Controller) Selected() (link.Type, bool) {
	return c.selected, c.hasSelection
}

func (c *Controller) Value() string { return c.value }

func (c *Controller) Value2() string { return c.value2 }

// Value2Visible reports whether the selected type uses a second value.
func (c *Controller) Value2Visible() bool { return c.value2Visible }

// Show makes the dialog visible. The first registered type is preselected
// the first time round.
func (c *Controller) Show() {
	if !c.hasSelection {
		if types := c.registry.Types(); len(types) > 0 {
			c.selectType(types[0])
		}
	}
	c.state = TypeSelected
	if c.value != "" {
		c.state = ValuesEntered
	}
}

// CloseRequest hides the dialog without discarding it.
func (c *Controller) CloseRequest() {
	c.state = Hidden
}

// SelectType switches the link type and shows or hides the second value
// according to the type's metadata.
func (c *Controller) SelectType(id string) error {
	t, ok := c.registry.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", link.ErrUnknownType, id)
	}
	c.selectType(t)
	return nil
}

func (c *Controller) selectType(t link.Type) {
	c.selected = t
	c.hasSelection = true
	c.value2Visible = t.Value2.Visible
	if c.state == Hidden {
		return
	}
	c.state = TypeSelected
	if c.value != "" {
		c.state = ValuesEntered
	}
}

func (c *Controller) SetValue(v string) {
	c.value = v
	if c.state == Hidden {
		return
	}
	if v == "" {
		c.state = TypeSelected
	} else {
		c.state = ValuesEntered
	}
}

func (c *Controller) SetValue2(v string) {
	c.value2 = v
}

// Confirm builds the link from the current values. A hidden second value is
// cleared first so stale text never reaches the link. On error the dialog
// stays open.
func (c *Controller) Confirm() (link.Link, error) {
	if !c.value2Visible {
		c.value2 = ""
	}
	if !c.hasSelection {
		return nil, ErrNoTypeSelected
	}

	l, err := c.registry.Build(c.selected.ID, c.value, c.value2)
	if err != nil {
		return nil, err
	}

	c.state = Hidden
	c.value = ""
	c.value2 = ""
	return l, nil
}
