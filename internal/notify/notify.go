// Package notify provides match.Notifier implementations for finish and
// reopen feedback.
package notify

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/umizher/domino-home-visitors/internal/match"
)

// Logger reports lifecycle changes through a structured logger.
type Logger struct {
	logger *log.Logger
}

// NewLogger returns a notifier that logs with the "notify" prefix.
func NewLogger(logger *log.Logger) *Logger {
	return &Logger{logger: logger.WithPrefix("notify")}
}

func (l *Logger) NotifyFinished(reason string, winner match.Winner, score match.Score) {
	l.logger.Info("MATCH FINISHED", "outcome", winner.Outcome(), "score", score, "reason", reason)
}

func (l *Logger) NotifyReopened() {
	l.logger.Info("Match reopened")
}

// Bell rings the terminal bell when a match finishes.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBell returns a Bell writing to w, usually the controlling terminal.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) NotifyFinished(string, match.Winner, match.Score) {
	b.mu.Lock()
	defer b.mu.Unlock()
	// best effort, a closed terminal is not worth reporting
	_, _ = io.WriteString(b.w, "\a")
}

func (b *Bell) NotifyReopened() {}

// Func adapts plain functions to match.Notifier. Nil fields are skipped.
type Func struct {
	Finished func(reason string, winner match.Winner, score match.Score)
	Reopened func()
}

func (f Func) NotifyFinished(reason string, winner match.Winner, score match.Score) {
	if f.Finished != nil {
		f.Finished(reason, winner, score)
	}
}

func (f Func) NotifyReopened() {
	if f.Reopened != nil {
		f.Reopened()
	}
}

// Multi fans notifications out to every notifier in order.
type Multi []match.Notifier

// Combine returns a notifier delivering to all non-nil ns.
func Combine(ns ...match.Notifier) Multi {
	out := make(Multi, 0, len(ns))
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m Multi) NotifyFinished(reason string, winner match.Winner, score match.Score) {
	for _, n := range m {
		n.NotifyFinished(reason, winner, score)
	}
}

func (m Multi) NotifyReopened() {
	for _, n := range m {
		n.NotifyReopened()
	}
}
