package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"

	"almanah/internal/app"
	"almanah/internal/config"
	"almanah/internal/instance"
	"almanah/internal/link"
	"almanah/internal/scraper"
	"almanah/internal/ui"
)

const socketName = "almanah.sock"

func main() {
	os.Exit(run())
}

func run() int {
	// --- Logger Setup ---
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Single Instance ---
	socketPath := filepath.Join(config.RuntimeDir(), socketName)
	if status, err := instance.Forward(ctx, socketPath, os.Args, os.Stderr); err == nil {
		return status
	} else if !errors.Is(err, instance.ErrNoInstance) {
		log.WithError(err).Warn("Running instance did not answer; starting a new one")
	}

	// --- Configuration Loading ---
	configDir, err := config.ConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error locating configuration: %v\n", err)
		return 1
	}
	dataDir, err := config.DataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error locating diary: %v\n", err)
		return 1
	}
	settings, err := config.Open(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		return 1
	}

	// --- Initialize Components ---
	registry := link.NewDefaultRegistry(link.Commands{
		Calendar: settings.String(config.KeyCalendarCommand),
		Open:     settings.String(config.KeyOpenCommand),
	})

	fyneApp := fyneapp.NewWithID(app.ID)
	toolkit := ui.NewToolkit(fyneApp, registry, link.NewExecLauncher(log), scraper.NewRodScraper(log), log)

	application := app.New(app.Deps{
		Toolkit:   toolkit,
		Logger:    log,
		ConfigDir: configDir,
		DataDir:   dataDir,
		OpenSettings: func(string) (*config.Settings, error) {
			return settings, nil
		},
	})

	srv, err := instance.Listen(socketPath, application.RemoteCommandLine, log)
	switch {
	case errors.Is(err, instance.ErrAlreadyRunning):
		// Lost a start-up race; hand over to the winner.
		status, err := instance.Forward(ctx, socketPath, os.Args, os.Stderr)
		if err != nil {
			log.WithError(err).Error("Failed to reach running instance")
			return 1
		}
		return status
	case err != nil:
		log.WithError(err).Warn("Single-instance socket unavailable")
	default:
		// Forwarded invocations need the event loop, so serve only once it runs.
		fyneApp.Lifecycle().SetOnStarted(func() {
			go func() {
				if err := srv.Serve(); err != nil {
					log.WithError(err).Error("Instance socket failed")
				}
			}()
		})
		defer closeServer(srv, log)
	}

	go func() {
		<-ctx.Done()
		fyne.Do(application.Quit)
	}()

	return application.Run(ctx, os.Args, os.Stderr)
}

// closeServer removes the instance socket, giving in-flight invocations a
// moment to finish.
func closeServer(srv *instance.Server, log logrus.FieldLogger) {
	done := make(chan error, 1)
	go func() { done <- srv.Close() }()

	select {
	case err := <-done:
		if err != nil {
			log.WithError(err).Warn("Error closing instance socket")
		}
	case <-time.After(time.Second):
		log.Warn("Forwarded invocation still pending at exit")
	}
}
