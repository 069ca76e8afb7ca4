package app

import "fmt"

// criticalSeconds is the remaining time below which the countdown is critical.
const criticalSeconds = 60

// TimerSnapshot is the display state of the countdown at one tick.
type TimerSnapshot struct {
	Remaining int
	Display   string
	Critical  bool
	Expired   bool
}

// DeadlineTimer is a cooperative one-second countdown. It holds no goroutine
// or ticker of its own: the owner calls Tick once per second.
type DeadlineTimer struct {
	remaining int
	expired   bool
	stopped   bool
}

func NewDeadlineTimer(seconds int) *DeadlineTimer {
	if seconds < 0 {
		seconds = 0
	}
	return &DeadlineTimer{remaining: seconds}
}

// Tick advances the countdown by one second. The returned bool is true only
// on the tick that expires the timer; later ticks are ignored.
func (t *DeadlineTimer) Tick() (TimerSnapshot, bool) {
	if t.stopped || t.expired {
		return t.Snapshot(), false
	}
	t.remaining--
	if t.remaining <= 0 {
		t.remaining = 0
		t.expired = true
		return t.Snapshot(), true
	}
	return t.Snapshot(), false
}

// Stop cancels the countdown without expiring it.
func (t *DeadlineTimer) Stop() {
	t.stopped = true
}

// Active reports whether further ticks can change the countdown.
func (t *DeadlineTimer) Active() bool {
	return !t.stopped && !t.expired
}

func (t *DeadlineTimer) Remaining() int { return t.remaining }

func (t *DeadlineTimer) Snapshot() TimerSnapshot {
	return TimerSnapshot{
		Remaining: t.remaining,
		Display:   FormatClock(t.remaining),
		Critical:  IsCritical(t.remaining),
		Expired:   t.expired,
	}
}

// FormatClock renders whole seconds as zero-padded MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// IsCritical reports whether less than a minute remains.
func IsCritical(seconds int) bool {
	return seconds < criticalSeconds
}
