package link

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Launcher starts external programs on behalf of links.
type Launcher interface {
	Launch(ctx context.Context, name string, args ...string) error
}

// ExecLauncher starts programs as detached child processes. Arguments are
// passed as a vector; no shell is involved.
type ExecLauncher struct {
	log logrus.FieldLogger
}

func NewExecLauncher(logger logrus.FieldLogger) *ExecLauncher {
	return &ExecLauncher{log: logger.WithField("component", "launcher")}
}

func (l *ExecLauncher) Launch(ctx context.Context, name string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log := l.log.WithFields(logrus.Fields{
		"command": name,
		"args":    args,
	})
	log.Debug("Executing command")

	// The launched program outlives the request, so it is not bound to ctx.
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		log.WithError(err).Error("Failed to launch command")
		return fmt.Errorf("failed to launch %s: %w", name, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			log.WithError(err).Warn("Launched command exited with error")
		}
	}()
	return nil
}
