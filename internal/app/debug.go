package app

import "github.com/sirupsen/logrus"

// debugFilter drops debug and trace records unless enabled reports true.
type debugFilter struct {
	logrus.Formatter
	enabled func() bool
}

func (f *debugFilter) Format(e *logrus.Entry) ([]byte, error) {
	if e.Level >= logrus.DebugLevel && !f.enabled() {
		return nil, nil
	}
	return f.Formatter.Format(e)
}

// installDebugFilter routes debug output of log through the --debug flag.
func installDebugFilter(log *logrus.Logger, enabled func() bool) {
	if _, ok := log.Formatter.(*debugFilter); ok {
		return
	}
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		log.SetLevel(logrus.DebugLevel)
	}
	log.SetFormatter(&debugFilter{Formatter: log.Formatter, enabled: enabled})
}
