package match

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Configure replaces the match configuration. Numeric input that is missing,
// non-numeric or out of range falls back to the defaults; an unknown mode falls
// back to ModeTarget. Returns ErrConfigLocked while the match is running.
func (e *Engine) Configure(s Settings) error {
	return e.do(func() error {
		if e.state.Running() {
			return ErrConfigLocked
		}

		cfg := DefaultConfig()
		for i := range s.Home {
			cfg.Home[i] = strings.TrimSpace(s.Home[i])
			cfg.Visitors[i] = strings.TrimSpace(s.Visitors[i])
		}
		mode, ok := ParseWinMode(s.Mode)
		if !ok && strings.TrimSpace(s.Mode) != "" {
			e.logger.Warn("Unknown win mode, using target", "mode", s.Mode)
		}
		cfg.Mode = mode
		cfg.Target = boundedOr(s.Target, DefaultTarget, math.MaxInt)
		cfg.Minutes = boundedOr(s.Minutes, DefaultMinutes, MaxMinutes)

		e.state.Config = cfg
		if !cfg.Mode.Timer() {
			e.disarmTickerLocked()
		}
		e.persistLocked()
		e.logger.Info("Match configured",
			"mode", cfg.Mode,
			"target", cfg.Target,
			"minutes", cfg.Minutes)
		return nil
	})
}

// boundedOr parses raw as an integer in [1, limit], falling back to def.
func boundedOr(raw string, def, limit int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > limit {
		return def
	}
	return n
}

// Start begins the match and, in timer mode, the countdown. It is a no-op for
// a match that has already started or finished and reports whether anything
// changed.
func (e *Engine) Start() bool {
	var started bool
	_ = e.do(func() error {
		if e.state.Started || e.state.Finished {
			return nil
		}
		e.state.Started = true
		if e.state.Config.Mode.Timer() {
			e.initTimerLocked(e.clock.Now())
			e.armTickerLocked()
		}
		e.persistLocked()
		e.logger.Info("Match started", "mode", e.state.Config.Mode, "target", e.state.Config.Target)
		started = true
		return nil
	})
	return started
}

// Finish ends a started match. It is idempotent: finishing an already finished
// match keeps the original reason and winner. An empty reason is recorded as
// ReasonManual.
func (e *Engine) Finish(reason string) error {
	return e.do(func() error {
		if !e.state.Started {
			return fmt.Errorf("%w: match has not started", ErrInvalidState)
		}
		if strings.TrimSpace(reason) == "" {
			reason = ReasonManual
		}
		e.finishLocked(reason)
		return nil
	})
}

func (e *Engine) finishLocked(reason string) {
	if e.state.Finished {
		return
	}
	score := e.state.Totals()
	winner := score.Leader()

	e.state.Finished = true
	e.state.FinishedReason = reason
	e.state.Winner = winner
	e.stopTimerLocked(e.clock.Now())
	e.persistLocked()

	e.logger.Info("Match finished", "reason", reason, "winner", winner, "score", score)
	e.pending = append(e.pending, func() {
		e.notifier.NotifyFinished(reason, winner, score)
	})
}

// Reopen returns a finished match to a mutable ledger. Hands, configuration and
// the stopped timer are left as they are. Reports whether anything changed.
func (e *Engine) Reopen() bool {
	var reopened bool
	_ = e.do(func() error {
		if !e.state.Finished {
			return nil
		}
		e.state.Finished = false
		e.state.FinishedReason = ""
		e.state.Winner = NoWinner
		e.persistLocked()

		e.logger.Info("Match reopened", "hands", len(e.state.Hands))
		e.pending = append(e.pending, e.notifier.NotifyReopened)
		reopened = true
		return nil
	})
	return reopened
}

// Reset discards the match entirely, including the persisted copy.
func (e *Engine) Reset() {
	_ = e.do(func() error {
		e.disarmTickerLocked()
		e.state = NewState()
		if err := e.store.Clear(); err != nil {
			e.logger.Warn("Failed to clear stored match state", "error", err)
		}
		e.logger.Info("Match reset")
		return nil
	})
}

func (e *Engine) initTimerLocked(now time.Time) {
	e.state.Timer = TimerState{
		Running:   true,
		StartedAt: now,
		EndsAt:    now.Add(e.state.Config.Duration()),
	}
}
