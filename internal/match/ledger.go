package match

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePoints parses operator input as a base-10 integer in [1, MaxPoints].
func ParsePoints(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q is not a positive integer", ErrInvalidPoints, raw)
	}
	if n > MaxPoints {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrInvalidPoints, n, MaxPoints)
	}
	return n, nil
}

// AddHand records points for a side and finishes the match if the target is
// reached. The match must be running.
func (e *Engine) AddHand(side Side, rawPoints string) (Hand, error) {
	var hand Hand
	err := e.do(func() error {
		if !e.state.Running() {
			return fmt.Errorf("%w: hands can only be added to a running match", ErrInvalidState)
		}
		if !side.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidSide, side)
		}
		points, err := ParsePoints(rawPoints)
		if err != nil {
			return err
		}

		hand = Hand{
			ID:        e.newID(),
			Side:      side,
			Points:    points,
			CreatedAt: e.clock.Now(),
		}
		e.state.Hands = append(e.state.Hands, hand)
		e.persistLocked()

		e.logger.Info("Hand recorded",
			"hand", len(e.state.Hands),
			"side", side,
			"points", points,
			"score", e.state.Totals())
		e.evaluateTargetLocked(ReasonTarget)
		return nil
	})
	return hand, err
}

// EditHand corrects the side and points of a recorded hand. Its ID, position
// and timestamp are kept. A correction that lifts a side to the target
// finishes the match with ReasonCorrection.
func (e *Engine) EditHand(id string, side Side, rawPoints string) error {
	return e.do(func() error {
		idx := e.state.IndexOf(id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if e.state.Finished {
			return fmt.Errorf("%w: reopen the match before editing hands", ErrInvalidState)
		}
		if !side.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidSide, side)
		}
		points, err := ParsePoints(rawPoints)
		if err != nil {
			return err
		}

		h := &e.state.Hands[idx]
		e.logger.Info("Hand corrected",
			"hand", idx+1,
			"side", side,
			"points", points,
			"was_side", h.Side,
			"was_points", h.Points)
		h.Side = side
		h.Points = points
		e.persistLocked()
		e.evaluateTargetLocked(ReasonCorrection)
		return nil
	})
}

// DeleteHand removes a hand from the ledger. Later hands move up one position.
func (e *Engine) DeleteHand(id string) error {
	return e.do(func() error {
		if e.state.Finished {
			return fmt.Errorf("%w: reopen the match before deleting hands", ErrInvalidState)
		}
		idx := e.state.IndexOf(id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		removed := e.state.Hands[idx]
		e.state.Hands = append(e.state.Hands[:idx], e.state.Hands[idx+1:]...)
		e.persistLocked()

		e.logger.Info("Hand deleted",
			"hand", idx+1,
			"side", removed.Side,
			"points", removed.Points,
			"score", e.state.Totals())
		return nil
	})
}

// HandAt returns the hand at a 1-based ledger position.
func (e *Engine) HandAt(position int) (Hand, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if position < 1 || position > len(e.state.Hands) {
		return Hand{}, fmt.Errorf("%w: no hand #%d", ErrNotFound, position)
	}
	return e.state.Hands[position-1], nil
}

func (e *Engine) evaluateTargetLocked(reason string) {
	cfg := e.state.Config
	if !cfg.Mode.Target() || !e.state.Running() {
		return
	}
	score := e.state.Totals()
	if score.Home >= cfg.Target || score.Visitors >= cfg.Target {
		e.finishLocked(reason)
	}
}
