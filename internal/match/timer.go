package match

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var errTickerStopped = errors.New("match: ticker stopped")

// Remaining returns the countdown time left, never negative. A paused timer
// reports the time left at the moment of pausing; a timer stopped by a finish
// reports the time left when it stopped; a timer that never started reports
// the full duration.
func (t TimerState) Remaining(now time.Time, total time.Duration) time.Duration {
	var r time.Duration
	switch {
	case t.Running && t.Paused:
		r = t.EndsAt.Sub(t.PausedAt)
	case t.Running:
		r = t.EndsAt.Sub(now)
	case !t.StoppedAt.IsZero():
		r = t.EndsAt.Sub(t.StoppedAt)
	default:
		r = total
	}
	if r < 0 {
		return 0
	}
	return r
}

// FormatClock renders a duration as MM:SS. Partial seconds round up rather
// than down, so a countdown with time left never reads 00:00 and the display
// reaches 00:00 exactly when the match expires.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Tick checks the countdown and finishes the match once it has expired. It is
// called periodically while the timer runs; calling it directly is harmless.
func (e *Engine) Tick() {
	_ = e.do(func() error {
		e.tickLocked()
		return nil
	})
}

func (e *Engine) tickLocked() {
	if !e.timerLiveLocked() {
		return
	}
	if !e.clock.Now().Before(e.state.Timer.EndsAt) {
		e.finishLocked(ReasonTimer)
	}
}

// Pause freezes the countdown. No-op unless the timer is running and not
// already paused; reports whether anything changed.
func (e *Engine) Pause() bool {
	var paused bool
	_ = e.do(func() error {
		t := &e.state.Timer
		if !t.Running || t.Paused {
			return nil
		}
		t.Paused = true
		t.PausedAt = e.clock.Now()
		e.disarmTickerLocked()
		e.persistLocked()

		e.logger.Info("Timer paused", "remaining", t.EndsAt.Sub(t.PausedAt))
		paused = true
		return nil
	})
	return paused
}

// Resume continues a paused countdown. EndsAt moves forward by the paused
// duration so the remaining time is exactly what it was at Pause.
func (e *Engine) Resume() bool {
	var resumed bool
	_ = e.do(func() error {
		t := &e.state.Timer
		if !t.Running || !t.Paused {
			return nil
		}
		now := e.clock.Now()
		paused := now.Sub(t.PausedAt)
		if paused < 0 {
			paused = 0
		}
		t.AccumulatedPause += paused
		t.EndsAt = t.EndsAt.Add(paused)
		t.Paused = false
		t.PausedAt = time.Time{}
		if e.timerLiveLocked() {
			e.armTickerLocked()
		}
		e.persistLocked()

		e.logger.Info("Timer resumed", "paused_for", paused, "remaining", t.EndsAt.Sub(now))
		resumed = true
		return nil
	})
	return resumed
}

// stopTimerLocked halts the countdown for good, freezing the remaining time.
func (e *Engine) stopTimerLocked(now time.Time) {
	e.disarmTickerLocked()
	t := &e.state.Timer
	if !t.Running {
		return
	}
	stop := now
	if t.Paused {
		stop = t.PausedAt
	}
	t.StoppedAt = stop
	t.Running = false
	t.Paused = false
	t.PausedAt = time.Time{}
}

func (e *Engine) timerLiveLocked() bool {
	s := e.state
	return s.Config.Mode.Timer() && s.Timer.Running && !s.Timer.Paused && !s.Finished
}

// armTickerLocked starts the periodic check, replacing any previous one.
func (e *Engine) armTickerLocked() {
	e.disarmTickerLocked()
	ctx, cancel := context.WithCancel(context.Background())
	e.stopTicker = cancel
	e.clock.TickerFunc(ctx, e.interval, func() error {
		return e.onTick(ctx)
	}, "engine", "tick")
}

func (e *Engine) disarmTickerLocked() {
	if e.stopTicker != nil {
		e.stopTicker()
		e.stopTicker = nil
	}
}

func (e *Engine) onTick(ctx context.Context) error {
	var live bool
	_ = e.do(func() error {
		// A tick that raced with disarm must not act on the new state.
		if ctx.Err() != nil {
			return nil
		}
		e.tickLocked()
		live = e.timerLiveLocked()
		return nil
	})
	if !live {
		return errTickerStopped
	}
	return nil
}
