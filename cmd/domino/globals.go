package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"

	"github.com/umizher/domino-home-visitors/internal/config"
	"github.com/umizher/domino-home-visitors/internal/match"
	"github.com/umizher/domino-home-visitors/internal/store"
)

// stdout receives command output; tests replace it.
var stdout io.Writer = os.Stdout

// Globals are flags shared by every command.
type Globals struct {
	Config    string `short:"c" default:"domino.hcl" env:"DOMINO_CONFIG" help:"Path to HCL configuration file"`
	State     string `env:"DOMINO_STATE" help:"State file path (overrides config)"`
	Ephemeral bool   `help:"Keep the match in memory only"`
	Debug     bool   `help:"Enable debug logging"`
	NoColor   bool   `help:"Disable colored output"`
}

// app is the per-invocation wiring shared by all commands.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  match.Store

	logFile *os.File
}

// setup loads configuration and builds the logger and store. Interactive
// sessions log to the configured file because the TUI owns the terminal.
func (g *Globals) setup(interactive bool) (*app, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if g.State != "" {
		cfg.Storage.StateFile = g.State
	}
	if g.Ephemeral {
		cfg.Storage.Ephemeral = true
	}
	if g.Debug {
		cfg.UI.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	a := &app{cfg: cfg}

	level, err := log.ParseLevel(cfg.UI.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	var w io.Writer = os.Stderr
	if interactive {
		f, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		w = f
	} else if !g.Debug && level < log.WarnLevel {
		// one-shot commands print their own result; keep stderr for problems
		level = log.WarnLevel
	}
	a.logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "domino",
		Level:           level,
	})

	if cfg.Storage.Ephemeral {
		a.store = store.NewMemory()
	} else {
		a.store = store.NewFile(cfg.Storage.StateFile)
	}
	return a, nil
}

// openEngine restores the match. A fresh match picks up the match block of
// the config file, if there is one.
func (a *app) openEngine(clock quartz.Clock, opts ...match.Option) (*match.Engine, error) {
	data, err := a.store.Load()
	fresh := err == nil && data == nil

	opts = append([]match.Option{
		match.WithStore(a.store),
		match.WithTickInterval(a.cfg.TickInterval()),
	}, opts...)
	e := match.NewEngine(a.logger, clock, opts...)

	if fresh && a.cfg.HasMatchDefaults {
		if err := e.Configure(a.cfg.MatchDefaults()); err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

func (a *app) close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
