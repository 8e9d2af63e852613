package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Countdown is a wall-clock, drift-corrected countdown. The end
// timestamp is the only source of truth for remaining time: every read
// recomputes from it, so ticks that were throttled or skipped while
// the owner was descheduled can never under- or over-count elapsed
// time. The owner drives ticks at most once per second via Tick and
// may call Sync at any moment (e.g. when a client foregrounds) to
// correct immediately instead of waiting for the next tick.
type Countdown struct {
	clock clockwork.Clock

	mu       sync.Mutex
	end      time.Time // zero when not running
	paused   bool
	frozen   int // remaining seconds captured at pause
	duration int // configured duration in seconds
	expired  bool
	display  int // last stable value to render while recomputing
}

// NewCountdown creates a countdown bound to the given clock. Use
// clockwork.NewRealClock() in production and a fake clock in tests.
func NewCountdown(clock clockwork.Clock) *Countdown {
	return &Countdown{clock: clock}
}

// Start begins a fresh countdown of durationSeconds.
func (c *Countdown) Start(durationSeconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duration = durationSeconds
	c.end = c.clock.Now().Add(time.Duration(durationSeconds) * time.Second)
	c.paused = false
	c.frozen = 0
	c.expired = false
	c.display = durationSeconds
}

// Reset rebases the countdown to a full durationSeconds from now,
// clearing any expired state.
func (c *Countdown) Reset(durationSeconds int) {
	c.Start(durationSeconds)
}

// Pause clears the end timestamp and freezes the last remaining value.
func (c *Countdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused || c.expired || c.end.IsZero() {
		return
	}
	c.frozen = c.remainingLocked()
	c.end = time.Time{}
	c.paused = true
	c.display = c.frozen
}

// Resume recomputes the end timestamp from the frozen value, not from
// the original duration, so pauses never donate extra time.
func (c *Countdown) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.end = c.clock.Now().Add(time.Duration(c.frozen) * time.Second)
	c.paused = false
}

// SetDuration changes the configured duration mid-countdown. Running
// and not expired: the end timestamp rebases to now + the new
// duration. Paused: only the frozen value updates.
func (c *Countdown) SetDuration(durationSeconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duration = durationSeconds
	if c.paused {
		c.frozen = durationSeconds
		c.display = durationSeconds
		return
	}
	if c.expired || c.end.IsZero() {
		return
	}
	c.end = c.clock.Now().Add(time.Duration(durationSeconds) * time.Second)
	c.display = durationSeconds
}

// Remaining returns the authoritative remaining seconds.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked()
}

// DisplayValue returns the last stable value computed by Tick or Sync.
// It exists purely so a renderer never flashes a stale zero while the
// authoritative value is being recomputed; it is never used for
// decisions.
func (c *Countdown) DisplayValue() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// Duration returns the configured duration in seconds.
func (c *Countdown) Duration() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// Deadline returns the end timestamp for owners that arm a wake timer.
// ok is false when the countdown is paused, expired or not started.
func (c *Countdown) Deadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.end.IsZero() {
		return time.Time{}, false
	}
	return c.end, true
}

// Tick recomputes remaining time from the end timestamp. It returns
// the remaining seconds and whether the terminal time-up signal fired;
// the signal fires exactly once per countdown, after which the end
// timestamp is cleared.
func (c *Countdown) Tick() (remaining int, fired bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	remaining = c.remainingLocked()
	c.display = remaining
	if remaining == 0 && !c.paused && !c.expired && !c.end.IsZero() {
		c.expired = true
		c.end = time.Time{}
		fired = true
	}
	return remaining, fired
}

// Sync is the foreground correction: identical to Tick but named for
// its call site, it recomputes immediately when a client becomes
// visible again rather than waiting for the next scheduled tick.
func (c *Countdown) Sync() (remaining int, fired bool) {
	return c.Tick()
}

// Expired reports whether the terminal signal has fired for the
// current countdown.
func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

func (c *Countdown) remainingLocked() int {
	if c.paused {
		return c.frozen
	}
	if c.expired || c.end.IsZero() {
		return 0
	}
	rem := c.end.Sub(c.clock.Now())
	if rem <= 0 {
		return 0
	}
	// Ceiling so a countdown never displays 0 while time remains.
	secs := int((rem + time.Second - 1) / time.Second)
	return secs
}
