// Package extension removes the running extension once the sunset timeline ends.
package extension

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"extension_sunset/internal/domain/sunset"

	"github.com/sirupsen/logrus"
)

// Timer is the registered periodic trigger; uninstalling tears it down.
type Timer interface {
	Unregister()
}

// SelfUninstaller runs an optional removal command, unregisters the timer and signals shutdown.
type SelfUninstaller struct {
	command  string
	timer    Timer
	shutdown func()
	logger   *logrus.Entry

	mu   sync.Mutex
	done bool
}

var _ sunset.Uninstaller = (*SelfUninstaller)(nil)

// NewSelfUninstaller builds an uninstaller. command may be empty; shutdown may be nil.
func NewSelfUninstaller(command string, timer Timer, shutdown func(), logger *logrus.Entry) *SelfUninstaller {
	return &SelfUninstaller{
		command:  command,
		timer:    timer,
		shutdown: shutdown,
		logger:   logger,
	}
}

// Uninstall removes the extension. Calls after the first successful one do nothing.
func (u *SelfUninstaller) Uninstall(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return nil
	}

	if u.command != "" {
		out, err := exec.CommandContext(ctx, "sh", "-c", u.command).CombinedOutput()
		if err != nil {
			u.logger.WithError(err).WithField("output", string(out)).Error("Uninstall command failed")
			return fmt.Errorf("uninstall command %q: %w", u.command, err)
		}
		u.logger.WithField("output", string(out)).Info("Uninstall command completed")
	}

	if u.timer != nil {
		u.timer.Unregister()
	}
	u.done = true
	u.logger.Warn("Extension uninstalled, shutting down")
	if u.shutdown != nil {
		u.shutdown()
	}
	return nil
}

// TimerFunc adapts a plain function to Timer.
type TimerFunc func()

func (f TimerFunc) Unregister() { f() }
