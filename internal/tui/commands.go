package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/umizher/domino-home-visitors/internal/export"
	"github.com/umizher/domino-home-visitors/internal/match"
)

// ErrUnknownCommand is returned for input that names no command.
var ErrUnknownCommand = errors.New("tui: unknown command")

// Outcome is what a command produced for the operator.
type Outcome struct {
	Message string
	Quit    bool
}

// Dispatcher turns command lines into engine operations.
type Dispatcher struct {
	engine    *match.Engine
	exportDir string

	// resetArmed is set by a first "reset"; only an immediate second one
	// discards the match.
	resetArmed bool
}

// NewDispatcher returns a dispatcher driving e. Exports without an explicit
// path are written to exportDir.
func NewDispatcher(e *match.Engine, exportDir string) *Dispatcher {
	return &Dispatcher{engine: e, exportDir: exportDir}
}

// Help lists the accepted commands.
const Help = "start | h <pts> | v <pts> | edit <n> <side> <pts> | del <n> | pause | resume | " +
	"finish [reason] | reopen | config key=value... | export [path] | reset | quit"

// Run executes one command line.
func (d *Dispatcher) Run(line string) (Outcome, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Outcome{}, nil
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	armed := d.resetArmed
	d.resetArmed = false

	switch name {
	case "start":
		if !d.engine.Start() {
			return Outcome{Message: "Match already started"}, nil
		}
		return Outcome{Message: "Match started"}, nil

	case "h", "home", "v", "vis", "visitors":
		side, _ := match.ParseSide(name)
		if len(args) != 1 {
			return Outcome{}, fmt.Errorf("usage: %s <points>", name)
		}
		return d.addHand(side, args[0])

	case "edit", "e":
		if len(args) != 3 {
			return Outcome{}, fmt.Errorf("usage: edit <n> <side> <points>")
		}
		return d.editHand(args[0], args[1], args[2])

	case "del", "delete", "d":
		if len(args) != 1 {
			return Outcome{}, fmt.Errorf("usage: del <n>")
		}
		return d.deleteHand(args[0])

	case "pause":
		if !d.engine.Pause() {
			return Outcome{Message: "Timer is not running"}, nil
		}
		return Outcome{Message: "Timer paused"}, nil

	case "resume":
		if !d.engine.Resume() {
			return Outcome{Message: "Timer is not paused"}, nil
		}
		return Outcome{Message: "Timer resumed"}, nil

	case "finish":
		if d.engine.Snapshot().Finished {
			return Outcome{Message: "Match already finished"}, nil
		}
		// the finish announcement arrives through the notifier
		return Outcome{}, d.engine.Finish(strings.Join(args, " "))

	case "reopen":
		if !d.engine.Reopen() {
			return Outcome{Message: "Match is not finished"}, nil
		}
		return Outcome{Message: "Match reopened, ledger is editable again"}, nil

	case "config", "configure":
		return d.configure(args)

	case "export":
		return d.export(args)

	case "reset":
		if !armed {
			d.resetArmed = true
			return Outcome{Message: "Type reset again to discard the match"}, nil
		}
		d.engine.Reset()
		return Outcome{Message: "Match reset"}, nil

	case "help", "?":
		return Outcome{Message: Help}, nil

	case "quit", "q", "exit":
		return Outcome{Quit: true}, nil
	}

	return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}

func (d *Dispatcher) addHand(side match.Side, raw string) (Outcome, error) {
	h, err := d.engine.AddHand(side, raw)
	if err != nil {
		return Outcome{}, err
	}
	v := d.engine.View()
	return Outcome{Message: fmt.Sprintf("Hand #%d: %s +%d (%s)", v.HandCount, h.Side, h.Points, v.Score)}, nil
}

func (d *Dispatcher) editHand(pos, rawSide, raw string) (Outcome, error) {
	h, err := d.handAt(pos)
	if err != nil {
		return Outcome{}, err
	}
	side, err := match.ParseSide(rawSide)
	if err != nil {
		return Outcome{}, err
	}
	if err := d.engine.EditHand(h.ID, side, raw); err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: fmt.Sprintf("Hand #%s corrected (%s)", pos, d.engine.Totals())}, nil
}

func (d *Dispatcher) deleteHand(pos string) (Outcome, error) {
	h, err := d.handAt(pos)
	if err != nil {
		return Outcome{}, err
	}
	if err := d.engine.DeleteHand(h.ID); err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: fmt.Sprintf("Hand #%s deleted (%s)", pos, d.engine.Totals())}, nil
}

func (d *Dispatcher) handAt(pos string) (match.Hand, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(pos, "#"))
	if err != nil {
		return match.Hand{}, fmt.Errorf("%w: hand number %q", match.ErrNotFound, pos)
	}
	return d.engine.HandAt(n)
}

// configure applies key=value pairs on top of the current configuration.
// Names are comma separated, e.g. home=Ana,Luis.
func (d *Dispatcher) configure(args []string) (Outcome, error) {
	if len(args) == 0 {
		return Outcome{}, fmt.Errorf("usage: config home=A,B visitors=C,D mode=target|timer|both target=N minutes=N")
	}
	s := d.engine.Snapshot().Config.Settings()
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return Outcome{}, fmt.Errorf("expected key=value, got %q", arg)
		}
		switch strings.ToLower(key) {
		case "home":
			s.Home = splitNames(value)
		case "visitors", "vis":
			s.Visitors = splitNames(value)
		case "mode":
			s.Mode = value
		case "target":
			s.Target = value
		case "minutes", "min":
			s.Minutes = value
		default:
			return Outcome{}, fmt.Errorf("unknown config key %q", key)
		}
	}
	if err := d.engine.Configure(s); err != nil {
		return Outcome{}, err
	}
	cfg := d.engine.Snapshot().Config
	return Outcome{Message: fmt.Sprintf("Configured %s vs %s, mode %s, target %d, %d min",
		cfg.Label(match.Home), cfg.Label(match.Visitors), cfg.Mode, cfg.Target, cfg.Minutes)}, nil
}

func splitNames(v string) [2]string {
	var names [2]string
	for i, n := range strings.SplitN(v, ",", 2) {
		names[i] = strings.TrimSpace(n)
	}
	return names
}

func (d *Dispatcher) export(args []string) (Outcome, error) {
	if len(args) > 1 {
		return Outcome{}, fmt.Errorf("usage: export [path]")
	}
	s := d.engine.Snapshot()
	if !s.Started {
		return Outcome{}, fmt.Errorf("%w: nothing to export before the match starts", match.ErrInvalidState)
	}
	ledger := export.FromState(s, d.engine.Now())

	path := filepath.Join(d.exportDir, export.Filename(ledger, export.FormatTOML))
	if len(args) == 1 {
		path = args[0]
	}
	if err := export.WriteFile(path, ledger); err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: "Exported to " + path}, nil
}
