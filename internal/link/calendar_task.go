package link

import (
	"context"
	"fmt"
)

const CalendarTaskTypeID = "calendar-task"

// CalendarTask links to a task on an Evolution calendar.
type CalendarTask struct {
	uid     string
	summary string
	command string
}

// NewCalendarTask returns a task link viewed with the default calendar
// command.
func NewCalendarTask(uid, summary string) *CalendarTask {
	return &CalendarTask{
		uid:     uid,
		summary: summary,
		command: DefaultCommands.Calendar,
	}
}

// CalendarTaskType describes task links viewed with command.
func CalendarTaskType(command string) Type {
	return Type{
		ID:          CalendarTaskTypeID,
		Name:        "Calendar Task",
		Description: "A task on an Evolution calendar.",
		Icon:        "stock_task",
		Value:       Field{Label: "Task UID", Visible: true, Required: true},
		Value2:      Field{Label: "Summary", Visible: true},
		New: func(value, value2 string) (Link, error) {
			t := NewCalendarTask(value, value2)
			t.command = command
			return t, nil
		},
	}
}

func (t *CalendarTask) Type() Type {
	return CalendarTaskType(t.command)
}

func (t *CalendarTask) UID() string { return t.uid }

// FormatValue returns the task summary, falling back to the UID.
func (t *CalendarTask) FormatValue() string {
	if t.summary == "" {
		return t.uid
	}
	return t.summary
}

func (t *CalendarTask) Values() (string, string) {
	return t.uid, t.summary
}

// View opens the task in the calendar application.
func (t *CalendarTask) View(ctx context.Context, l Launcher) error {
	if err := l.Launch(ctx, t.command, "task:"+t.uid); err != nil {
		return fmt.Errorf("error launching calendar: %w", err)
	}
	return nil
}
