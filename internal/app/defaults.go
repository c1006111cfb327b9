package app

import (
	"os"

	"github.com/sirupsen/logrus"

	"almanah/internal/config"
	"almanah/internal/events"
	"almanah/internal/storage"
)

func defaultStorage(path, key string, log logrus.FieldLogger) storage.Manager {
	return storage.NewBadgerManager(path, key, log)
}

// defaultEvents builds the event manager from the events-command setting.
func defaultEvents(s *config.Settings, log logrus.FieldLogger) *events.Manager {
	var factories []events.Factory
	if argv := s.Strings(config.KeyEventsCommand); len(argv) > 0 {
		f, err := events.NewCommandFactory(argv)
		if err != nil {
			log.WithError(err).Warn("Ignoring events command")
		} else {
			factories = append(factories, f)
		}
	}
	return events.NewManager(log, factories...)
}

func (d *Deps) setDefaults() {
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	if d.OpenSettings == nil {
		d.OpenSettings = config.Open
	}
	if d.NewStorage == nil {
		d.NewStorage = defaultStorage
	}
	if d.NewEvents == nil {
		d.NewEvents = defaultEvents
	}
	if d.Exit == nil {
		d.Exit = os.Exit
	}
}
