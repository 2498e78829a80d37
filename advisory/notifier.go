// Package advisory shows short-lived user messages. Each Notifier owns its
// dismiss timer; a new message replaces the current one and restarts the
// timer instead of stacking.
package advisory

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultDuration is how long a message stays up.
const DefaultDuration = 3000 * time.Millisecond

// Display renders and removes the message.
type Display interface {
	Show(msg string)
	Hide()
}

type stopper interface {
	Stop() bool
}

type scheduleFunc func(d time.Duration, f func()) stopper

func realSchedule(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// Notifier is the advisory handle owned by one session.
type Notifier struct {
	mu       sync.Mutex
	display  Display
	duration time.Duration
	schedule scheduleFunc

	timer   stopper
	seq     uint64
	current string
	stopped bool
}

// New returns a notifier using d as the default dismiss delay; d <= 0 uses
// DefaultDuration.
func New(display Display, d time.Duration) *Notifier {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Notifier{
		display:  display,
		duration: d,
		schedule: realSchedule,
	}
}

// Show displays msg for the default duration.
func (n *Notifier) Show(msg string) {
	n.ShowFor(msg, n.duration)
}

// ShowFor displays msg and (re)starts the dismiss timer.
func (n *Notifier) ShowFor(msg string, d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopped {
		return
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.current = msg
	n.display.Show(msg)
	n.timer = n.schedule(d, func() { n.dismiss(seq) })
}

// dismiss hides the message shown under seq unless it was replaced.
func (n *Notifier) dismiss(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if seq != n.seq || n.stopped {
		return
	}
	n.timer = nil
	n.current = ""
	n.display.Hide()
}

// Current returns the visible message, if any.
func (n *Notifier) Current() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current, n.current != ""
}

// Stop cancels a pending dismissal, hides the message and ignores later
// calls to Show.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopped {
		return
	}
	n.stopped = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	if n.current != "" {
		n.current = ""
		n.display.Hide()
	}
}

// LogDisplay writes advisories to the package logger.
type LogDisplay struct{}

func (LogDisplay) Show(msg string) {
	log.Info().Str("advisory", msg).Msg("Advisory shown")
}

func (LogDisplay) Hide() {
	log.Debug().Msg("Advisory dismissed")
}
