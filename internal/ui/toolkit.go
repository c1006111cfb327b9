// Package ui is the Fyne front end of Almanah.
package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"almanah/internal/app"
	"almanah/internal/link"
	"almanah/internal/scraper"
)

// Toolkit runs the application on a Fyne app.
type Toolkit struct {
	fyneApp  fyne.App
	registry *link.Registry
	launcher link.Launcher
	scraper  scraper.Scraper
	log      logrus.FieldLogger

	main *MainWindow
}

var _ app.Toolkit = (*Toolkit)(nil)

func NewToolkit(fyneApp fyne.App, registry *link.Registry, launcher link.Launcher, s scraper.Scraper, logger logrus.FieldLogger) *Toolkit {
	return &Toolkit{
		fyneApp:  fyneApp,
		registry: registry,
		launcher: launcher,
		scraper:  s,
		log:      logger.WithField("component", "ui"),
	}
}

func (t *Toolkit) Do(fn func()) { fyne.Do(fn) }

// ShowError shows a modal message over the main window. Without one, a
// window is opened just for the message and closed with it.
func (t *Toolkit) ShowError(primary, secondary string, done func()) {
	parent, temporary := t.parentWindow(primary)
	d := dialog.NewInformation(primary, secondary, parent)
	d.SetOnClosed(func() {
		if temporary {
			parent.Close()
		}
		done()
	})
	d.Show()
}

func (t *Toolkit) parentWindow(title string) (fyne.Window, bool) {
	if t.main != nil {
		return t.main.win, false
	}
	w := t.fyneApp.NewWindow(title)
	w.Resize(fyne.NewSize(420, 180))
	w.CenterOnScreen()
	w.Show()
	return w, true
}

// ShowFatal runs a one-window event loop showing the error. It returns once
// the user has dismissed it.
func (t *Toolkit) ShowFatal(primary, secondary string) {
	w := t.fyneApp.NewWindow(lang.L("Almanah Diary"))

	message := widget.NewLabel(secondary)
	message.Wrapping = fyne.TextWrapWord
	ok := widget.NewButton(lang.L("OK"), t.fyneApp.Quit)
	ok.Importance = widget.HighImportance

	w.SetContent(container.NewBorder(
		widget.NewLabelWithStyle(primary, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(layout.NewSpacer(), ok),
		nil, nil,
		message,
	))
	w.SetCloseIntercept(t.fyneApp.Quit)
	w.Resize(fyne.NewSize(420, 180))
	w.CenterOnScreen()
	w.ShowAndRun()
}

func (t *Toolkit) NewMainWindow(a *app.Application) app.MainWindow {
	t.main = newMainWindow(t, a)
	return t.main
}

func (t *Toolkit) Run() { t.fyneApp.Run() }

func (t *Toolkit) Quit() { t.fyneApp.Quit() }
