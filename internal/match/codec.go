package match

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema
var schemaFiles embed.FS

const stateSchemaURL = "https://domino-home-visitors.local/schemas/state.json"

var loadStateSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	data, err := schemaFiles.ReadFile("schema/state.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read state schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(stateSchemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add state schema: %w", err)
	}
	schema, err := compiler.Compile(stateSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile state schema: %w", err)
	}
	return schema, nil
})

// wireState is the persisted shape. Instants are milliseconds since the epoch.
type wireState struct {
	Config         wireConfig `json:"config"`
	Timer          wireTimer  `json:"timer"`
	Hands          []wireHand `json:"hands"`
	Started        bool       `json:"started"`
	Finished       bool       `json:"finished"`
	FinishedReason string     `json:"finishedReason"`
	Winner         *string    `json:"winner"`
}

type wireConfig struct {
	Home     [2]string `json:"home"`
	Visitors [2]string `json:"visitors"`
	Mode     string    `json:"mode"`
	Target   int       `json:"target"`
	Minutes  int       `json:"minutes"`
}

type wireTimer struct {
	Running            bool   `json:"running"`
	StartedAt          *int64 `json:"startedAt"`
	EndsAt             *int64 `json:"endsAt"`
	Paused             bool   `json:"paused"`
	PausedAt           *int64 `json:"pausedAt"`
	AccumulatedPauseMs int64  `json:"accumulatedPauseMs"`
	StoppedAt          *int64 `json:"stoppedAt,omitempty"`
}

type wireHand struct {
	ID     string `json:"id"`
	Side   string `json:"side"`
	Points int    `json:"points"`
	TS     int64  `json:"ts"`
}

// Marshal serializes s into the persisted JSON shape.
func Marshal(s State) ([]byte, error) {
	w := wireState{
		Config: wireConfig{
			Home:     s.Config.Home,
			Visitors: s.Config.Visitors,
			Mode:     string(s.Config.Mode),
			Target:   s.Config.Target,
			Minutes:  s.Config.Minutes,
		},
		Timer: wireTimer{
			Running:            s.Timer.Running,
			StartedAt:          toMillis(s.Timer.StartedAt),
			EndsAt:             toMillis(s.Timer.EndsAt),
			Paused:             s.Timer.Paused,
			PausedAt:           toMillis(s.Timer.PausedAt),
			AccumulatedPauseMs: s.Timer.AccumulatedPause.Milliseconds(),
			StoppedAt:          toMillis(s.Timer.StoppedAt),
		},
		Hands:          make([]wireHand, len(s.Hands)),
		Started:        s.Started,
		Finished:       s.Finished,
		FinishedReason: s.FinishedReason,
	}
	for i, h := range s.Hands {
		w.Hands[i] = wireHand{ID: h.ID, Side: string(h.Side), Points: h.Points, TS: h.CreatedAt.UnixMilli()}
	}
	if s.Winner != NoWinner {
		winner := string(s.Winner)
		w.Winner = &winner
	}
	return json.Marshal(w)
}

// Unmarshal parses a persisted payload. The payload must satisfy the state
// schema and the lifecycle invariants; anything else is rejected as a whole
// with ErrMalformedState so callers fall back to a fresh match.
func Unmarshal(data []byte) (State, error) {
	schema, err := loadStateSchema()
	if err != nil {
		return State{}, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return State{}, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedState, err)
	}
	if err := schema.Validate(doc); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}

	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}

	s := State{
		Config: Config{
			Home:     w.Config.Home,
			Visitors: w.Config.Visitors,
			Mode:     WinMode(w.Config.Mode),
			Target:   w.Config.Target,
			Minutes:  w.Config.Minutes,
		},
		Timer: TimerState{
			Running:          w.Timer.Running,
			StartedAt:        fromMillis(w.Timer.StartedAt),
			EndsAt:           fromMillis(w.Timer.EndsAt),
			Paused:           w.Timer.Paused,
			PausedAt:         fromMillis(w.Timer.PausedAt),
			AccumulatedPause: time.Duration(w.Timer.AccumulatedPauseMs) * time.Millisecond,
			StoppedAt:        fromMillis(w.Timer.StoppedAt),
		},
		Hands:          make([]Hand, len(w.Hands)),
		Started:        w.Started,
		Finished:       w.Finished,
		FinishedReason: w.FinishedReason,
	}
	for i, h := range w.Hands {
		s.Hands[i] = Hand{ID: h.ID, Side: Side(h.Side), Points: h.Points, CreatedAt: time.UnixMilli(h.TS)}
	}
	if w.Winner != nil {
		s.Winner = Winner(*w.Winner)
	}

	if err := checkInvariants(s); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return s, nil
}

func checkInvariants(s State) error {
	switch {
	case s.Finished && !s.Started:
		return fmt.Errorf("finished match was never started")
	case s.Finished && s.Winner == NoWinner:
		return fmt.Errorf("finished match has no winner")
	case !s.Finished && s.Winner != NoWinner:
		return fmt.Errorf("unfinished match has a winner")
	case len(s.Hands) > 0 && !s.Started:
		return fmt.Errorf("hands recorded before start")
	case s.Timer.Paused && !s.Timer.Running:
		return fmt.Errorf("timer paused but not running")
	case s.Timer.Paused && s.Timer.PausedAt.IsZero():
		return fmt.Errorf("timer paused without pause time")
	case s.Timer.Running && s.Timer.EndsAt.IsZero():
		return fmt.Errorf("timer running without end time")
	case s.Timer.Running && s.Finished:
		return fmt.Errorf("timer running on a finished match")
	}

	seen := make(map[string]bool, len(s.Hands))
	for _, h := range s.Hands {
		if seen[h.ID] {
			return fmt.Errorf("duplicate hand id %s", h.ID)
		}
		seen[h.ID] = true
	}
	return nil
}

func toMillis(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func fromMillis(ms *int64) time.Time {
	if ms == nil {
		return time.Time{}
	}
	return time.UnixMilli(*ms)
}
