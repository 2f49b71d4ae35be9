package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/coder/quartz"

	"github.com/umizher/domino-home-visitors/internal/export"
	"github.com/umizher/domino-home-visitors/internal/match"
)

// withEngine runs fn against the restored match and prints the resulting
// status. The engine uses the real clock, so a countdown that expired while
// nobody was watching finishes on load.
func withEngine(g *Globals, fn func(e *match.Engine) error) error {
	a, err := g.setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	e, err := a.openEngine(quartz.NewReal())
	if err != nil {
		return err
	}
	defer e.Close()

	if err := fn(e); err != nil {
		return err
	}
	printStatus(stdout, e.View(), false)
	return nil
}

// StatusCmd prints the score and optionally the ledger.
type StatusCmd struct {
	Ledger bool `short:"l" help:"Include the hand ledger"`
}

func (c *StatusCmd) Run(g *Globals) error {
	a, err := g.setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	e, err := a.openEngine(quartz.NewReal())
	if err != nil {
		return err
	}
	defer e.Close()

	printStatus(stdout, e.View(), c.Ledger)
	return nil
}

// ConfigureCmd changes the configuration. Omitted flags keep their values.
type ConfigureCmd struct {
	Home     []string `sep:"," help:"HOME player names, comma separated"`
	Visitors []string `sep:"," help:"VISITORS player names, comma separated"`
	Mode     string   `help:"Win mode: target, timer or both"`
	Target   string   `help:"Target score"`
	Minutes  string   `help:"Countdown length in minutes"`
}

func (c *ConfigureCmd) Run(g *Globals) error {
	if len(c.Home) > 2 || len(c.Visitors) > 2 {
		return errors.New("each side takes at most two player names")
	}
	return withEngine(g, func(e *match.Engine) error {
		s := e.Snapshot().Config.Settings()
		if c.Home != nil {
			s.Home = [2]string{}
			copy(s.Home[:], c.Home)
		}
		if c.Visitors != nil {
			s.Visitors = [2]string{}
			copy(s.Visitors[:], c.Visitors)
		}
		if c.Mode != "" {
			s.Mode = c.Mode
		}
		if c.Target != "" {
			s.Target = c.Target
		}
		if c.Minutes != "" {
			s.Minutes = c.Minutes
		}
		return e.Configure(s)
	})
}

type StartCmd struct{}

func (c *StartCmd) Run(g *Globals) error {
	return withEngine(g, func(e *match.Engine) error {
		if !e.Start() {
			return fmt.Errorf("%w: match already started", match.ErrInvalidState)
		}
		return nil
	})
}

// AddCmd records points for a side.
type AddCmd struct {
	Side   string `arg:"" help:"home (h) or visitors (v)"`
	Points string `arg:"" help:"Points won"`
}

func (c *AddCmd) Run(g *Globals) error {
	side, err := match.ParseSide(c.Side)
	if err != nil {
		return err
	}
	return withEngine(g, func(e *match.Engine) error {
		_, err := e.AddHand(side, c.Points)
		return err
	})
}

// EditCmd corrects the hand at a ledger position.
type EditCmd struct {
	Number int    `arg:"" help:"Hand number (1 is the first hand)"`
	Side   string `arg:"" help:"home (h) or visitors (v)"`
	Points string `arg:"" help:"Corrected points"`
}

func (c *EditCmd) Run(g *Globals) error {
	side, err := match.ParseSide(c.Side)
	if err != nil {
		return err
	}
	return withEngine(g, func(e *match.Engine) error {
		h, err := e.HandAt(c.Number)
		if err != nil {
			return err
		}
		return e.EditHand(h.ID, side, c.Points)
	})
}

type DeleteCmd struct {
	Number int `arg:"" help:"Hand number (1 is the first hand)"`
}

func (c *DeleteCmd) Run(g *Globals) error {
	return withEngine(g, func(e *match.Engine) error {
		h, err := e.HandAt(c.Number)
		if err != nil {
			return err
		}
		return e.DeleteHand(h.ID)
	})
}

type PauseCmd struct{}

func (c *PauseCmd) Run(g *Globals) error {
	return withEngine(g, func(e *match.Engine) error {
		if !e.Pause() {
			return fmt.Errorf("%w: timer is not running", match.ErrInvalidState)
		}
		return nil
	})
}

type ResumeCmd struct{}

func (c *ResumeCmd) Run(g *Globals) error {
	return withEngine(g, func(e *match.Engine) error {
		if !e.Resume() {
			return fmt.Errorf("%w: timer is not paused", match.ErrInvalidState)
		}
		return nil
	})
}

type FinishCmd struct {
	Reason []string `arg:"" optional:"" help:"Why the match ended"`
}

func (c *FinishCmd) Run(g *Globals) error {
	return withEngine(g, func(e *match.Engine) error {
		return e.Finish(strings.Join(c.Reason, " "))
	})
}

type ReopenCmd struct{}

func (c *ReopenCmd) Run(g *Globals) error {
	return withEngine(g, func(e *match.Engine) error {
		if !e.Reopen() {
			return fmt.Errorf("%w: match is not finished", match.ErrInvalidState)
		}
		return nil
	})
}

// ExportCmd writes the ledger to a file. The format follows the extension.
type ExportCmd struct {
	Path   string `arg:"" optional:"" help:"Output file (.csv or .toml); a name is generated when omitted"`
	Format string `enum:"csv,toml" default:"toml" help:"Format for a generated file name"`
}

func (c *ExportCmd) Run(g *Globals) error {
	a, err := g.setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	e, err := a.openEngine(quartz.NewReal())
	if err != nil {
		return err
	}
	defer e.Close()

	s := e.Snapshot()
	if !s.Started {
		return fmt.Errorf("%w: nothing to export before the match starts", match.ErrInvalidState)
	}
	ledger := export.FromState(s, e.Now())
	path := c.Path
	if path == "" {
		path = export.Filename(ledger, export.Format(c.Format))
	}
	if err := export.WriteFile(path, ledger); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Exported %d hands to %s\n", len(ledger.Hands), path)
	return nil
}

// ResetCmd discards the match and its saved state.
type ResetCmd struct {
	Yes bool `short:"y" help:"Confirm discarding the match"`
}

func (c *ResetCmd) Run(g *Globals) error {
	if !c.Yes {
		return errors.New("reset discards the match and its ledger; pass --yes to confirm")
	}
	return withEngine(g, func(e *match.Engine) error {
		e.Reset()
		return nil
	})
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "domino %s\n", version)
	return nil
}

// printStatus writes a plain-text scoreboard.
func printStatus(w io.Writer, v match.View, ledger bool) {
	width := max(len(v.HomeLabel), len(v.VisitorsLabel))
	fmt.Fprintf(w, "%-*s  %d\n", width, v.HomeLabel, v.Score.Home)
	fmt.Fprintf(w, "%-*s  %d\n", width, v.VisitorsLabel, v.Score.Visitors)

	rules := fmt.Sprintf("Mode %s", v.Mode)
	if v.Mode.Target() {
		rules += fmt.Sprintf(", target %d", v.Target)
	}
	fmt.Fprintf(w, "%s, hands %d\n", rules, v.HandCount)
	if v.TimerEnabled {
		clock := "Time " + v.Clock
		if v.Paused {
			clock += " (paused)"
		}
		fmt.Fprintln(w, clock)
	}
	fmt.Fprintln(w, v.Status)

	if !ledger || len(v.Rows) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-4s %-9s %5s %6s %6s  %s\n", "#", "SIDE", "PTS", "HOME", "VIS", "TIME")
	for _, r := range v.Rows {
		fmt.Fprintf(w, "%-4d %-9s %5d %6d %6d  %s\n", r.No, r.Side, r.Points, r.HomeTotal, r.VisitorsTotal, r.At.Format("15:04:05"))
	}
}
