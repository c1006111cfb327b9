package ui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"almanah/internal/app"
	"almanah/internal/config"
	"almanah/internal/domain"
	"almanah/internal/events"
	"almanah/internal/link"
	"almanah/internal/scraper"
	"almanah/internal/storage"
)

const (
	storageTimeout = 10 * time.Second
	scrapeTimeout  = 30 * time.Second
)

// MainWindow edits one diary day at a time.
type MainWindow struct {
	app      *app.Application
	win      fyne.Window
	registry *link.Registry
	launcher link.Launcher
	scraper  scraper.Scraper
	storage  storage.Manager
	events   *events.Manager
	log      logrus.FieldLogger

	entry domain.Entry
	links []link.Link // parallel to entry.Links; nil for unknown types
	dirty bool

	dateLabel    *widget.Label
	daysLabel    *widget.Label
	content      *widget.Entry
	important    *widget.Check
	linkList     *widget.List
	selectedLink int
	dayEvents    []events.Event
	eventList    *widget.List
	linkDialog   *LinkDialog
}

var _ app.MainWindow = (*MainWindow)(nil)

func newMainWindow(t *Toolkit, a *app.Application) *MainWindow {
	m := &MainWindow{
		app:          a,
		win:          t.fyneApp.NewWindow(lang.L(app.Name)),
		registry:     t.registry,
		launcher:     t.launcher,
		scraper:      t.scraper,
		storage:      a.StorageManager(),
		events:       a.EventManager(),
		log:          t.log.WithField("window", "main"),
		selectedLink: -1,
	}

	m.linkDialog = newLinkDialog(m.win, m.registry, m.addLink)
	m.win.SetContent(m.build())
	m.win.SetMainMenu(m.menu())
	m.win.SetCloseIntercept(a.Quit)
	m.win.SetMaster()
	m.win.Resize(fyne.NewSize(760, 520))

	m.load(time.Now())
	return m
}

func (m *MainWindow) build() fyne.CanvasObject {
	m.dateLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	m.daysLabel = widget.NewLabel("")
	m.daysLabel.Wrapping = fyne.TextWrapWord

	nav := container.NewBorder(nil, nil,
		widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() { m.load(m.entry.Date.AddDate(0, 0, -1)) }),
		container.NewHBox(
			widget.NewButtonWithIcon(lang.L("Today"), theme.HomeIcon(), func() { m.load(time.Now()) }),
			widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() { m.load(m.entry.Date.AddDate(0, 0, 1)) }),
		),
		m.dateLabel,
	)

	m.content = widget.NewMultiLineEntry()
	m.content.Wrapping = fyne.TextWrapWord
	m.content.SetPlaceHolder(lang.L("Write about your day…"))
	m.content.OnChanged = func(string) { m.dirty = true }

	m.important = widget.NewCheck(lang.L("Important"), func(bool) { m.dirty = true })

	m.linkList = widget.NewList(
		func() int { return len(m.entry.Links) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(m.linkText(id))
		},
	)
	m.linkList.OnSelected = func(id widget.ListItemID) { m.selectedLink = id }
	m.linkList.OnUnselected = func(widget.ListItemID) { m.selectedLink = -1 }

	linkButtons := container.NewHBox(
		widget.NewButtonWithIcon(lang.L("Add"), theme.ContentAddIcon(), m.linkDialog.Show),
		widget.NewButtonWithIcon(lang.L("View"), theme.VisibilityIcon(), m.viewSelectedLink),
		widget.NewButtonWithIcon(lang.L("Remove"), theme.ContentRemoveIcon(), m.removeSelectedLink),
	)

	m.eventList = widget.NewList(
		func() int { return len(m.dayEvents) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(eventText(m.dayEvents[id]))
		},
	)
	m.eventList.OnSelected = func(id widget.ListItemID) {
		if l, ok := m.dayEvents[id].Link(m.registry); ok {
			m.addLink(l)
		}
		m.eventList.UnselectAll()
	}

	side := container.NewVSplit(
		container.NewBorder(widget.NewLabelWithStyle(lang.L("Links"), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), linkButtons, nil, nil, m.linkList),
		container.NewBorder(widget.NewLabelWithStyle(lang.L("Events"), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), nil, nil, nil, m.eventList),
	)

	split := container.NewHSplit(
		container.NewBorder(nil, m.important, nil, nil, m.content),
		side,
	)
	split.Offset = 0.65

	return container.NewBorder(nav, m.daysLabel, nil, nil, split)
}

func (m *MainWindow) menu() *fyne.MainMenu {
	quit := fyne.NewMenuItem(lang.L("Quit"), m.app.Quit)
	quit.IsQuit = true

	diary := fyne.NewMenu(lang.L("Diary"),
		fyne.NewMenuItem(lang.L("Search…"), m.showSearch),
		fyne.NewMenuItem(lang.L("Statistics"), m.showStatistics),
		fyne.NewMenuItemSeparator(),
		quit,
	)
	return fyne.NewMainMenu(diary)
}

func (m *MainWindow) ShowAll() { m.win.Show() }

func (m *MainWindow) Present() {
	m.win.Show()
	m.win.RequestFocus()
}

// Flush stores the day being edited.
func (m *MainWindow) Flush() { m.save() }

func (m *MainWindow) linkText(id int) string {
	if id >= len(m.entry.Links) {
		return ""
	}
	if l := m.links[id]; l != nil {
		return fmt.Sprintf("%s (%s)", l.FormatValue(), l.Type().Name)
	}
	s := m.entry.Links[id]
	return fmt.Sprintf("%s (%s)", s.Value, s.Type)
}

// load saves the current day and switches to date's day.
func (m *MainWindow) load(date time.Time) {
	m.save()

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	day := domain.Day(date)
	entry, err := m.storage.GetEntry(ctx, day)
	if err != nil {
		m.log.WithError(err).WithField("date", domain.DayKey(day)).Error("Failed to load entry")
		dialog.ShowError(err, m.win)
		entry = domain.Entry{Date: day}
	}

	m.entry = entry
	m.links = make([]link.Link, len(entry.Links))
	for i, s := range entry.Links {
		l, err := m.registry.FromStored(s)
		if err != nil {
			m.log.WithError(err).WithField("link_id", s.ID).Warn("Keeping link of unknown type")
			continue
		}
		m.links[i] = l
	}

	m.dateLabel.SetText(dateTitle(day))
	m.content.SetText(entry.Content)
	m.important.SetChecked(entry.Important)
	m.selectedLink = -1
	m.linkList.UnselectAll()
	m.linkList.Refresh()
	m.dirty = false

	m.refreshDays(ctx)
	m.queryEvents(day)
}

func (m *MainWindow) refreshDays(ctx context.Context) {
	day := m.entry.Date
	days, err := m.storage.EntryDays(ctx, day.Year(), day.Month())
	if err != nil {
		m.log.WithError(err).Warn("Failed to list days with entries")
		return
	}
	m.daysLabel.SetText(daysText(days))
}

func (m *MainWindow) queryEvents(day time.Time) {
	m.dayEvents = nil
	m.eventList.Refresh()
	if m.events == nil {
		return
	}
	m.events.QueryAsync(day, func(evs []events.Event) {
		fyne.Do(func() {
			if !m.entry.Date.Equal(day) {
				return
			}
			m.dayEvents = evs
			m.eventList.Refresh()
		})
	})
}

func (m *MainWindow) save() {
	if !m.dirty || m.entry.Date.IsZero() {
		return
	}
	m.entry.Content = m.content.Text
	m.entry.Important = m.important.Checked

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	if err := m.storage.SetEntry(ctx, m.entry); err != nil {
		m.log.WithError(err).WithField("date", domain.DayKey(m.entry.Date)).Error("Failed to save entry")
		dialog.ShowError(err, m.win)
		return
	}
	m.dirty = false
	m.refreshDays(ctx)
}

func (m *MainWindow) addLink(l link.Link) {
	stored := link.ToStored(l)
	m.entry.Links = append(m.entry.Links, stored)
	m.links = append(m.links, l)
	m.dirty = true
	m.linkList.Refresh()
	m.save()

	if u, ok := l.(*link.URI); ok && u.Title() == "" && m.fetchTitles() {
		m.fetchTitle(m.entry.Date, stored.ID, u.URI())
	}
}

func (m *MainWindow) fetchTitles() bool {
	s := m.app.Settings()
	return s != nil && s.Bool(config.KeyFetchLinkTitles)
}

// fetchTitle scrapes the page title in the background and stores it on the
// link if the day is still open.
func (m *MainWindow) fetchTitle(day time.Time, id, uri string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
		defer cancel()

		title, _, err := m.scraper.ScrapeMetadata(ctx, uri)
		if err != nil || title == "" {
			m.log.WithError(err).WithField("uri", uri).Debug("No title for link")
			return
		}

		fyne.Do(func() {
			if !m.entry.Date.Equal(day) {
				return
			}
			for i, s := range m.entry.Links {
				if s.ID != id {
					continue
				}
				l, err := m.registry.Build(link.URITypeID, uri, title)
				if err != nil {
					return
				}
				m.entry.Links[i].Value2 = title
				m.links[i] = l
				m.dirty = true
				m.linkList.Refresh()
				m.save()
				return
			}
		})
	}()
}

func (m *MainWindow) viewSelectedLink() {
	i := m.selectedLink
	if i < 0 || i >= len(m.links) {
		return
	}
	l := m.links[i]
	if l == nil {
		dialog.ShowError(fmt.Errorf("%w: %s", link.ErrUnknownType, m.entry.Links[i].Type), m.win)
		return
	}
	if err := l.View(context.Background(), m.launcher); err != nil {
		m.log.WithError(err).WithField("type", l.Type().ID).Warn("Failed to view link")
		dialog.NewInformation(lang.L("Error viewing link"), err.Error(), m.win).Show()
	}
}

func (m *MainWindow) removeSelectedLink() {
	i := m.selectedLink
	if i < 0 || i >= len(m.entry.Links) {
		return
	}
	m.entry.Links = append(m.entry.Links[:i], m.entry.Links[i+1:]...)
	m.links = append(m.links[:i], m.links[i+1:]...)
	m.selectedLink = -1
	m.linkList.UnselectAll()
	m.linkList.Refresh()
	m.dirty = true
	m.save()
}

func (m *MainWindow) showSearch() {
	var results []domain.Entry

	resultList := widget.NewList(
		func() int { return len(results) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			e := results[id]
			obj.(*widget.Label).SetText(domain.DayKey(e.Date) + "  " + snippet(e.Content))
		},
	)
	status := widget.NewLabel("")

	query := widget.NewEntry()
	query.SetPlaceHolder(lang.L("Search text"))
	query.OnSubmitted = func(q string) {
		m.save()
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		found, err := m.storage.Search(ctx, q)
		if err != nil {
			status.SetText(err.Error())
			return
		}
		results = found
		status.SetText(fmt.Sprintf(lang.L("%d entries found"), len(found)))
		resultList.UnselectAll()
		resultList.Refresh()
	}

	d := dialog.NewCustom(lang.L("Search"), lang.L("Close"),
		container.NewBorder(query, status, nil, nil, resultList), m.win)
	resultList.OnSelected = func(id widget.ListItemID) {
		m.load(results[id].Date)
		d.Hide()
	}
	d.Resize(fyne.NewSize(480, 360))
	d.Show()
	m.win.Canvas().Focus(query)
}

func (m *MainWindow) showStatistics() {
	m.save()
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	stats, err := m.storage.Statistics(ctx)
	if err != nil {
		dialog.ShowError(err, m.win)
		return
	}
	dialog.NewInformation(lang.L("Statistics"), statisticsText(stats), m.win).Show()
}
