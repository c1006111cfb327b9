package app

// Toolkit is the GUI toolkit as seen by the application controller. All
// methods except Do are called on the UI thread.
type Toolkit interface {
	// Do schedules fn on the UI thread. It may be called from any goroutine.
	Do(fn func())

	// ShowError shows a modal error dialog and calls done once it is
	// dismissed.
	ShowError(primary, secondary string, done func())

	// ShowFatal shows an error dialog and blocks until it is dismissed. It is
	// only used before the event loop runs.
	ShowFatal(primary, secondary string)

	// NewMainWindow builds the main window bound to a.
	NewMainWindow(a *Application) MainWindow

	// Run runs the event loop until Quit is called.
	Run()

	// Quit stops the event loop.
	Quit()
}

// MainWindow is the application's single top-level window.
type MainWindow interface {
	// ShowAll makes the window and its contents visible.
	ShowAll()

	// Present brings the window to the foreground.
	Present()

	// Flush stores pending edits before the storage manager disconnects.
	Flush()
}
