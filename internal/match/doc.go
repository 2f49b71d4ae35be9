// Package match implements the scorekeeping core for a HOME vs VISITORS domino match.
//
// The main type is Engine, which owns the match configuration, the hand ledger,
// the countdown timer and the lifecycle flags. Totals are never stored; they are
// recomputed from the ledger on every query.
//
// # Basic Usage
//
//	e := match.NewEngine(logger, quartz.NewReal(), match.WithStore(s))
//	defer e.Close()
//	_ = e.Configure(match.Settings{Mode: "both", Target: "200", Minutes: "30"})
//	e.Start()
//	if _, err := e.AddHand(match.Home, "25"); err != nil {
//	    // errors.Is(err, match.ErrInvalidPoints) ...
//	}
//	v := e.View()
//
// # Lifecycle
//
// A match moves UNSTARTED → STARTED → FINISHED, and Reopen returns a finished
// match to STARTED without touching the ledger. A match finishes when a side
// reaches the target, when the countdown expires, or on an explicit Finish.
//
// # Deterministic Testing
//
// The engine reads time and schedules its periodic timer check through a
// quartz.Clock. Tests pass quartz.NewMock(t) and advance simulated time:
//
//	clock := quartz.NewMock(t)
//	e := match.NewEngine(logger, clock)
//	clock.Advance(500 * time.Millisecond).MustWait(ctx)
package match
