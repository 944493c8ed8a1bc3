// Package notifier provides build notification functionality
package notifier

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/baldr/baldr/pkg/logger"
)

// Notifier reports finished builds.
type Notifier interface {
	BuildSucceeded(target string, duration time.Duration)
	BuildFailed(target string, err error)
}

// SendFunc delivers one desktop notification.
type SendFunc func(title, message string) error

// BuildNotifier sends desktop notifications through beeep
type BuildNotifier struct {
	enabled bool
	send    SendFunc
	logger  logger.Logger
}

// New creates a new build notifier. A disabled notifier does nothing.
func New(enabled bool, log logger.Logger) *BuildNotifier {
	return &BuildNotifier{
		enabled: enabled,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		logger: log,
	}
}

// WithSender replaces the delivery function
func (n *BuildNotifier) WithSender(send SendFunc) *BuildNotifier {
	n.send = send
	return n
}

// BuildSucceeded notifies that a build succeeded
func (n *BuildNotifier) BuildSucceeded(target string, duration time.Duration) {
	if !n.enabled {
		return
	}
	n.notify("✅ Build Succeeded", fmt.Sprintf("%s built in %s", target, formatDuration(duration)))
}

// BuildFailed notifies that a build failed
func (n *BuildNotifier) BuildFailed(target string, err error) {
	if !n.enabled {
		return
	}
	n.notify("❌ Build Failed", fmt.Sprintf("%s: %v", target, err))
}

func (n *BuildNotifier) notify(title, message string) {
	if err := n.send("baldr: "+title, message); err != nil {
		n.logger.Debug("Failed to send notification", logger.WithField("error", err))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
