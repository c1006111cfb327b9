// Package app is the root of Almanah: it owns the settings, the storage
// manager and the event manager, and drives startup, command-line handling,
// window activation and shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2/lang"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"almanah/internal/config"
	"almanah/internal/events"
	"almanah/internal/storage"
)

const (
	ID             = "org.gnome.Almanah"
	Name           = "Almanah Diary"
	DatabaseName   = "diary.db"
	fatalExitCode  = 1
	parseErrorCode = 1
)

// State is the lifecycle state of the application.
type State int

const (
	Uninitialized State = iota
	Started
	Activated
	ShuttingDown
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Started:
		return "started"
	case Activated:
		return "activated"
	case ShuttingDown:
		return "shutting-down"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Forwarded invocations are only served while the application is ready.
const (
	remoteStarting int32 = iota
	remoteReady
	remoteClosing
)

// Deps are the collaborators of the application. Zero fields fall back to
// the production implementations.
type Deps struct {
	Toolkit   Toolkit
	Logger    *logrus.Logger
	ConfigDir string
	DataDir   string

	OpenSettings func(dir string) (*config.Settings, error)
	NewStorage   func(path, encryptionKey string, log logrus.FieldLogger) storage.Manager
	NewEvents    func(s *config.Settings, log logrus.FieldLogger) *events.Manager
	Exit         func(code int)
}

// Application is the process-wide root object. Its fields are only mutated
// on the UI thread.
type Application struct {
	deps    Deps
	toolkit Toolkit
	log     *logrus.Logger

	debug  atomic.Bool
	state  State
	remote atomic.Int32

	terminated    chan struct{}
	terminateOnce sync.Once

	settings *config.Settings
	storage  storage.Manager
	events   *events.Manager
	window   MainWindow
}

func New(deps Deps) *Application {
	deps.setDefaults()
	return &Application{
		deps:       deps,
		toolkit:    deps.Toolkit,
		log:        deps.Logger,
		terminated: make(chan struct{}),
	}
}

// Startup opens the settings and the diary. Failing to open the diary is
// fatal: the user is told and the process exits.
func (a *Application) Startup(ctx context.Context) error {
	if a.state != Uninitialized {
		return nil
	}
	installDebugFilter(a.log, a.Debug)
	log := a.log.WithField("component", "application")
	log.Debug("Starting up")

	settings, err := a.deps.OpenSettings(a.deps.ConfigDir)
	if err != nil {
		return a.fatal(lang.L("Error opening settings"), err)
	}
	a.settings = settings

	if err := config.EnsureDir(a.deps.DataDir); err != nil {
		return a.fatal(lang.L("Error opening database"), err)
	}

	dbPath := filepath.Join(a.deps.DataDir, DatabaseName)
	key := settings.String(config.KeyEncryptionKey)
	a.storage = a.deps.NewStorage(dbPath, key, a.log)

	if err := a.storage.Connect(ctx); err != nil {
		return a.fatal(lang.L("Error opening database"), err)
	}

	a.events = a.deps.NewEvents(settings, a.log)
	a.state = Started
	a.remote.Store(remoteReady)

	log.WithField("database", dbPath).Info("Startup complete")
	return nil
}

func (a *Application) fatal(primary string, err error) error {
	a.log.WithError(err).Error(primary)
	a.toolkit.ShowFatal(primary, err.Error())
	a.deps.Exit(fatalExitCode)
	return err
}

// CommandLine handles the arguments of one invocation, local or forwarded.
// args[0] is the program name. args itself is never modified.
func (a *Application) CommandLine(args []string, stderr io.Writer) int {
	log := a.log.WithField("component", "application")

	name := "almanah"
	var argv []string
	if len(args) > 0 {
		name = filepath.Base(args[0])
		argv = append([]string(nil), args[1:]...)
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	debug := fs.Bool("debug", false, lang.L("Enable debug mode"))

	err := fs.Parse(argv)
	switch {
	case errors.Is(err, pflag.ErrHelp):
		fmt.Fprintf(stderr, "%s: %s [OPTION…]\n\n%s\n\n", lang.L("Usage"), name,
			lang.L("Manage your diary. Only one instance of the program may be open at any time."))
		fs.SetOutput(stderr)
		fs.PrintDefaults()
		return 0
	case err != nil:
		fmt.Fprintf(stderr, "%s: %v\n", lang.L("Command line options could not be parsed"), err)
		log.WithError(err).Debug("Rejected command line")
		return parseErrorCode
	}

	if fs.Changed("debug") {
		a.debug.Store(*debug)
	}
	if fs.NArg() > 0 {
		log.WithField("args", fs.Args()).Debug("Ignoring positional arguments")
	}

	a.Activate()
	return 0
}

// RemoteCommandLine runs a forwarded command line on the UI thread and
// waits for its status. It may be called from any goroutine. Invocations
// arriving before startup has completed or after quitting began are refused.
func (a *Application) RemoteCommandLine(args []string, stderr io.Writer) int {
	if a.remote.Load() != remoteReady {
		return a.refuseRemote(stderr)
	}

	status := make(chan int, 1)
	a.toolkit.Do(func() {
		if a.state != Started && a.state != Activated {
			status <- a.refuseRemote(stderr)
			return
		}
		status <- a.CommandLine(args, stderr)
	})

	select {
	case s := <-status:
		return s
	case <-a.terminated:
		return a.refuseRemote(stderr)
	}
}

func (a *Application) refuseRemote(stderr io.Writer) int {
	msg := lang.L("Almanah is not ready.")
	if a.remote.Load() == remoteClosing {
		msg = lang.L("Almanah is shutting down.")
	}
	fmt.Fprintln(stderr, msg)
	return 1
}

// Activate shows the main window, creating it on first use. It does nothing
// unless startup has succeeded.
func (a *Application) Activate() {
	if a.state != Started && a.state != Activated {
		a.log.WithField("state", a.state.String()).Debug("Not activating")
		return
	}
	if a.window == nil {
		a.window = a.toolkit.NewMainWindow(a)
		a.window.ShowAll()
	}
	a.window.Present()
	a.state = Activated
}

// Quit shuts the application down. The event loop keeps running until the
// storage manager has flushed and closed the encrypted diary; only then is
// the toolkit told to quit.
func (a *Application) Quit() {
	log := a.log.WithField("component", "application")

	switch a.state {
	case ShuttingDown, Terminated:
		log.Debug("Quit already in progress")
		return
	}

	a.remote.Store(remoteClosing)
	if a.storage == nil {
		a.terminate()
		a.toolkit.Quit()
		return
	}

	a.state = ShuttingDown
	log.Info("Shutting down...")

	if a.window != nil {
		a.window.Flush()
	}
	if a.events != nil {
		a.events.Close()
	}

	disconnected := a.storage.Disconnect(context.Background())
	go func() {
		res := <-disconnected
		a.toolkit.Do(func() { a.storageDisconnected(res) })
	}()
}

func (a *Application) storageDisconnected(res storage.DisconnectResult) {
	finish := func() {
		a.terminate()
		a.log.WithField("component", "application").Info("Shut down.")
		a.toolkit.Quit()
	}

	if !res.HasProblems() {
		finish()
		return
	}
	a.log.WithFields(logrus.Fields{
		"error":   res.Error,
		"warning": res.Warning,
	}).Error("Problem encrypting database")
	a.toolkit.ShowError(lang.L("Error encrypting database"), disconnectMessage(res), finish)
}

// terminate marks the application as finished and releases any forwarded
// invocation still waiting for the UI thread.
func (a *Application) terminate() {
	a.state = Terminated
	a.remote.Store(remoteClosing)
	a.terminateOnce.Do(func() { close(a.terminated) })
}

func disconnectMessage(res storage.DisconnectResult) string {
	switch {
	case res.Error != "" && res.Warning != "":
		return res.Warning + " " + res.Error
	case res.Error != "":
		return res.Error
	default:
		return res.Warning
	}
}

// Run starts the application for the primary invocation and runs the event
// loop. It returns the process exit status.
func (a *Application) Run(ctx context.Context, args []string, stderr io.Writer) int {
	if err := a.Startup(ctx); err != nil {
		return fatalExitCode
	}

	status := a.CommandLine(args, stderr)
	if a.state != Activated {
		// Nothing to show (bad options or --help): close the diary and leave.
		if res := <-a.storage.Disconnect(ctx); res.HasProblems() {
			fmt.Fprintln(stderr, disconnectMessage(res))
		}
		a.terminate()
		return status
	}

	a.toolkit.Run()
	return status
}

func (a *Application) State() State { return a.state }

func (a *Application) Debug() bool { return a.debug.Load() }

func (a *Application) Logger() logrus.FieldLogger { return a.log }

func (a *Application) Settings() *config.Settings { return a.settings }

func (a *Application) StorageManager() storage.Manager { return a.storage }

func (a *Application) EventManager() *events.Manager { return a.events }

// Toolkit returns the toolkit the application runs on.
func (a *Application) Toolkit() Toolkit { return a.toolkit }
