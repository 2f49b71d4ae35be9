package match

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Side identifies one of the two competing teams.
type Side string

const (
	Home     Side = "HOME"
	Visitors Side = "VISITORS"
)

// Valid reports whether s is one of the two recognised sides.
func (s Side) Valid() bool {
	return s == Home || s == Visitors
}

func (s Side) String() string {
	return string(s)
}

// ParseSide accepts the usual spellings an operator types: home, h, visitors,
// vis, v (case-insensitive).
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home", "h":
		return Home, nil
	case "visitors", "visitor", "vis", "v":
		return Visitors, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

// Winner is the outcome stored when a match finishes. The zero value means
// no winner has been decided yet.
type Winner string

const (
	NoWinner       Winner = ""
	WinnerHome     Winner = "HOME"
	WinnerVisitors Winner = "VISITORS"
	WinnerTie      Winner = "TIE"
)

// Outcome renders the winner as a short phrase, e.g. "HOME wins".
func (w Winner) Outcome() string {
	switch w {
	case WinnerHome:
		return "HOME wins"
	case WinnerVisitors:
		return "VISITORS wins"
	case WinnerTie:
		return "Tie"
	default:
		return "Undecided"
	}
}

// WinMode selects which win conditions are evaluated.
type WinMode string

const (
	ModeTarget WinMode = "TARGET"
	ModeTimer  WinMode = "TIMER"
	ModeBoth   WinMode = "BOTH"
)

// Target reports whether reaching the target score ends the match.
func (m WinMode) Target() bool { return m == ModeTarget || m == ModeBoth }

// Timer reports whether the countdown ends the match.
func (m WinMode) Timer() bool { return m == ModeTimer || m == ModeBoth }

// ParseWinMode maps user input onto a WinMode. Unknown input falls back to
// ModeTarget and ok is false.
func ParseWinMode(s string) (mode WinMode, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TARGET":
		return ModeTarget, true
	case "TIMER":
		return ModeTimer, true
	case "BOTH":
		return ModeBoth, true
	}
	return ModeTarget, false
}

// Finish reasons recorded by the engine itself.
const (
	ReasonTarget     = "target reached"
	ReasonCorrection = "target reached by correction"
	ReasonTimer      = "time expired"
	ReasonManual     = "finished manually"
)

const (
	DefaultTarget  = 200
	DefaultMinutes = 30

	// MaxMinutes bounds the countdown to one day.
	MaxMinutes = 24 * 60
	// MaxPoints bounds a single hand so totals cannot overflow.
	MaxPoints = 1_000_000
)

// Config holds the match rules and team labels.
type Config struct {
	Home     [2]string
	Visitors [2]string
	Mode     WinMode
	Target   int
	Minutes  int
}

// DefaultConfig returns the configuration a fresh match starts with.
func DefaultConfig() Config {
	return Config{
		Mode:    ModeTarget,
		Target:  DefaultTarget,
		Minutes: DefaultMinutes,
	}
}

// Duration returns the configured countdown length.
func (c Config) Duration() time.Duration {
	return time.Duration(c.Minutes) * time.Minute
}

// Label renders a side with its player names, e.g. "HOME (Ana / Luis)".
func (c Config) Label(s Side) string {
	names := c.Home
	if s == Visitors {
		names = c.Visitors
	}
	var parts []string
	for _, n := range names {
		if n != "" {
			parts = append(parts, n)
		}
	}
	if len(parts) == 0 {
		return s.String()
	}
	return fmt.Sprintf("%s (%s)", s, strings.Join(parts, " / "))
}

// Settings renders c back into operator input, so callers can change one
// field and resubmit the rest unchanged.
func (c Config) Settings() Settings {
	return Settings{
		Home:     c.Home,
		Visitors: c.Visitors,
		Mode:     string(c.Mode),
		Target:   strconv.Itoa(c.Target),
		Minutes:  strconv.Itoa(c.Minutes),
	}
}

// Settings is the raw operator input accepted by Engine.Configure. Numeric
// fields are strings because they come straight from a form or command line
// and are coerced, not rejected.
type Settings struct {
	Home     [2]string
	Visitors [2]string
	Mode     string
	Target   string
	Minutes  string
}

// TimerState is the countdown bookkeeping. EndsAt is authoritative for the
// remaining time; it is shifted forward on resume so paused time never counts.
type TimerState struct {
	Running          bool
	StartedAt        time.Time
	EndsAt           time.Time
	Paused           bool
	PausedAt         time.Time
	AccumulatedPause time.Duration
	// StoppedAt is set when a finish stops a running timer so the remaining
	// time stays frozen for display.
	StoppedAt time.Time
}

// Hand is a single scoring event. Its position in the ledger is its sequence
// number; only Side and Points may be corrected after creation.
type Hand struct {
	ID        string
	Side      Side
	Points    int
	CreatedAt time.Time
}

// Score is a pair of side totals.
type Score struct {
	Home     int
	Visitors int
}

func (s Score) String() string {
	return fmt.Sprintf("%d-%d", s.Home, s.Visitors)
}

// Leader returns the winner implied by the score: the strictly higher side, or
// a tie (including 0-0).
func (s Score) Leader() Winner {
	switch {
	case s.Home > s.Visitors:
		return WinnerHome
	case s.Visitors > s.Home:
		return WinnerVisitors
	default:
		return WinnerTie
	}
}

// State is the full match state. It is what gets persisted.
type State struct {
	Config         Config
	Timer          TimerState
	Hands          []Hand
	Started        bool
	Finished       bool
	FinishedReason string
	Winner         Winner
}

// NewState returns the default state for a fresh match.
func NewState() State {
	return State{
		Config: DefaultConfig(),
		Hands:  []Hand{},
	}
}

// Totals sums points per side over the ledger.
func (s State) Totals() Score {
	var score Score
	for _, h := range s.Hands {
		switch h.Side {
		case Home:
			score.Home += h.Points
		case Visitors:
			score.Visitors += h.Points
		}
	}
	return score
}

// Running reports whether the match accepts new hands.
func (s State) Running() bool {
	return s.Started && !s.Finished
}

// IndexOf returns the ledger position (0-based) of the hand with the given ID.
func (s State) IndexOf(id string) int {
	for i, h := range s.Hands {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy safe to hand out of the engine.
func (s State) Clone() State {
	out := s
	out.Hands = make([]Hand, len(s.Hands))
	copy(out.Hands, s.Hands)
	return out
}
