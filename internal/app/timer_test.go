package app_test

import (
	"testing"

	"pm-quiz-runner/internal/app"
)

func TestDeadlineTimerCountdown(t *testing.T) {
	timer := app.NewDeadlineTimer(65)
	if got := timer.Snapshot().Display; got != "01:05" {
		t.Fatalf("expected 01:05, got %s", got)
	}

	var snap app.TimerSnapshot
	for i := 0; i < 6; i++ {
		var expired bool
		snap, expired = timer.Tick()
		if expired {
			t.Fatalf("expired early at tick %d", i+1)
		}
	}
	if snap.Remaining != 59 || snap.Display != "00:59" || !snap.Critical {
		t.Fatalf("after 6 ticks expected critical 00:59, got %+v", snap)
	}

	expiries := 0
	for i := 6; i < 65; i++ {
		if _, expired := timer.Tick(); expired {
			expiries++
			if i != 64 {
				t.Fatalf("expired at tick %d, want 65", i+1)
			}
		}
	}
	if expiries != 1 {
		t.Fatalf("expected exactly one expiry, got %d", expiries)
	}

	snap, expired := timer.Tick()
	if expired || snap.Remaining != 0 || !snap.Expired || timer.Active() {
		t.Fatalf("ticks after expiry must be ignored, got %+v expired=%v", snap, expired)
	}
}

func TestDeadlineTimerStop(t *testing.T) {
	timer := app.NewDeadlineTimer(2)
	timer.Tick()
	timer.Stop()

	if _, expired := timer.Tick(); expired {
		t.Fatalf("stopped timer must not expire")
	}
	if timer.Remaining() != 1 || timer.Active() {
		t.Fatalf("expected remaining 1 and inactive, got %d active=%v", timer.Remaining(), timer.Active())
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[int]string{
		0:    "00:00",
		9:    "00:09",
		60:   "01:00",
		599:  "09:59",
		7500: "125:00",
		-3:   "00:00",
	}
	for in, want := range cases {
		if got := app.FormatClock(in); got != want {
			t.Errorf("FormatClock(%d) = %s, want %s", in, got, want)
		}
	}
	if app.IsCritical(60) || !app.IsCritical(59) {
		t.Fatalf("critical threshold must be strictly below 60 seconds")
	}
}
