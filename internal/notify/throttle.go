// Package notify plays the new-message notification sound, throttled so
// a burst of inbound events does not become a notification storm.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"chatsync/internal/lib/sl"
)

// DefaultWindow is the minimum spacing between playbacks.
const DefaultWindow = 10 * time.Second

// Player produces the actual sound. Playback failures (e.g. blocked by
// platform policy) are swallowed and logged; they never affect
// conversation or message state.
type Player interface {
	Play() error
}

// Throttle is a leading-edge throttle around a Player: the first call
// in a window plays immediately, trailing calls within the window are
// suppressed entirely.
type Throttle struct {
	player Player
	window time.Duration
	log    *slog.Logger

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewThrottle creates a throttle with the given window.
func NewThrottle(player Player, window time.Duration, log *slog.Logger) *Throttle {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Throttle{
		player: player,
		window: window,
		log:    log.With(sl.Module("notify.throttle")),
		now:    time.Now,
	}
}

// Notify plays the sound unless a playback already happened within the
// current window.
func (t *Throttle) Notify() {
	t.mu.Lock()
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.window {
		t.mu.Unlock()
		return
	}
	t.last = now
	t.mu.Unlock()

	if err := t.player.Play(); err != nil {
		t.log.Warn("notification playback failed", sl.Err(err))
	}
}
