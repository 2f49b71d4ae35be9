package match

import (
	"fmt"
	"time"
)

// Row is one ledger line as presented: its 1-based position, the hand, and
// the running totals after it.
type Row struct {
	No            int
	ID            string
	Side          Side
	Points        int
	HomeTotal     int
	VisitorsTotal int
	At            time.Time
}

// Controls says which operations are currently meaningful. Presenters use it
// to enable or disable inputs.
type Controls struct {
	Configure  bool
	Start      bool
	AddHand    bool
	EditHand   bool
	DeleteHand bool
	Pause      bool
	Resume     bool
	Finish     bool
	Reopen     bool
	Export     bool
}

// View is the computed, render-ready picture of the match.
type View struct {
	HomeLabel     string
	VisitorsLabel string
	Score         Score
	Target        int
	Mode          WinMode
	HandCount     int
	// Rows are newest first.
	Rows []Row

	TimerEnabled bool
	Paused       bool
	Remaining    time.Duration
	Clock        string

	Started  bool
	Finished bool
	Winner   Winner
	Reason   string
	Status   string
	Controls Controls
}

// View computes the presentation data for the current state.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return BuildView(e.state, e.clock.Now())
}

// BuildView computes presentation data for s as of now.
func BuildView(s State, now time.Time) View {
	score := s.Totals()
	remaining := s.Timer.Remaining(now, s.Config.Duration())

	v := View{
		HomeLabel:     s.Config.Label(Home),
		VisitorsLabel: s.Config.Label(Visitors),
		Score:         score,
		Target:        s.Config.Target,
		Mode:          s.Config.Mode,
		HandCount:     len(s.Hands),
		Rows:          make([]Row, len(s.Hands)),
		TimerEnabled:  s.Config.Mode.Timer(),
		Paused:        s.Timer.Paused,
		Remaining:     remaining,
		Clock:         FormatClock(remaining),
		Started:       s.Started,
		Finished:      s.Finished,
		Winner:        s.Winner,
		Reason:        s.FinishedReason,
		Status:        statusHint(s, score),
		Controls:      controlsFor(s),
	}

	var running Score
	for i, h := range s.Hands {
		if h.Side == Home {
			running.Home += h.Points
		} else {
			running.Visitors += h.Points
		}
		v.Rows[len(s.Hands)-1-i] = Row{
			No:            i + 1,
			ID:            h.ID,
			Side:          h.Side,
			Points:        h.Points,
			HomeTotal:     running.Home,
			VisitorsTotal: running.Visitors,
			At:            h.CreatedAt,
		}
	}
	return v
}

func controlsFor(s State) Controls {
	running := s.Running()
	hasHands := len(s.Hands) > 0
	return Controls{
		Configure:  !running,
		Start:      !s.Started,
		AddHand:    running,
		EditHand:   running && hasHands,
		DeleteHand: running && hasHands,
		Pause:      s.Timer.Running && !s.Timer.Paused,
		Resume:     s.Timer.Running && s.Timer.Paused,
		Finish:     running,
		Reopen:     s.Finished,
		Export:     s.Started,
	}
}

func statusHint(s State, score Score) string {
	if s.Finished {
		return fmt.Sprintf("MATCH FINISHED: %s %s (%s)", s.Winner.Outcome(), score, s.FinishedReason)
	}
	if !s.Started {
		return "Configure and press START"
	}

	var hint string
	switch {
	case score.Home > score.Visitors:
		hint = fmt.Sprintf("HOME ahead by %d", score.Home-score.Visitors)
	case score.Visitors > score.Home:
		hint = fmt.Sprintf("VISITORS ahead by %d", score.Visitors-score.Home)
	default:
		hint = "Tied"
	}
	if s.Timer.Paused {
		hint = "Paused. " + hint
	}
	return hint
}
