package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"fyne.io/fyne/v2/lang"

	"almanah/internal/events"
	"almanah/internal/storage"
)

const snippetLength = 60

func dateTitle(t time.Time) string {
	return t.Format("Monday, 2 January 2006")
}

// snippet returns the first line of content, shortened for a result list.
func snippet(content string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	if utf8.RuneCountInString(line) <= snippetLength {
		return line
	}
	runes := []rune(line)
	return strings.TrimSpace(string(runes[:snippetLength])) + "…"
}

func eventText(ev events.Event) string {
	switch {
	case ev.Kind == events.KindAppointment && !ev.Start.IsZero():
		return ev.Start.Local().Format("15:04") + " " + ev.Summary
	case ev.Kind == events.KindTask:
		return lang.L("Task") + ": " + ev.Summary
	default:
		return ev.Summary
	}
}

func statisticsText(s storage.Statistics) string {
	return fmt.Sprintf("%s: %d\n%s: %d\n%s: %d",
		lang.L("Entries"), s.Entries,
		lang.L("Links"), s.Links,
		lang.L("Important entries"), s.ImportantEntries)
}

func daysText(days []int) string {
	if len(days) == 0 {
		return lang.L("No entries this month")
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = fmt.Sprint(d)
	}
	return lang.L("Entries this month") + ": " + strings.Join(parts, ", ")
}
