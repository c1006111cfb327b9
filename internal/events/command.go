package events

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"almanah/internal/domain"
)

var ErrNoCommand = errors.New("events command is empty")

// CommandFactory reads events from an external program. The program is run
// with the day (YYYY-MM-DD) appended to its arguments and must print one
// JSON object per line: {"kind":"task","uid":"…","summary":"…","start":"RFC3339"}.
type CommandFactory struct {
	argv []string
	run  func(ctx context.Context, argv []string) ([]byte, error)
}

func NewCommandFactory(argv []string) (*CommandFactory, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, ErrNoCommand
	}
	return &CommandFactory{argv: argv, run: runCommand}, nil
}

func (f *CommandFactory) Name() string {
	return "command:" + f.argv[0]
}

func (f *CommandFactory) Query(ctx context.Context, date time.Time) ([]Event, error) {
	argv := append(append([]string(nil), f.argv...), domain.DayKey(date))
	out, err := f.run(ctx, argv)
	if err != nil {
		return nil, err
	}
	return parseEvents(bytes.NewReader(out))
}

func runCommand(ctx context.Context, argv []string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("events command %s failed: %w: %s", argv[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func parseEvents(r io.Reader) ([]Event, error) {
	var evs []Event
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return nil, fmt.Errorf("malformed event on line %d: %w", line, err)
		}
		if ev.Kind == "" {
			ev.Kind = KindTask
		}
		evs = append(evs, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return evs, nil
}
