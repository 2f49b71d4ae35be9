package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/umizher/domino-home-visitors/internal/match"
	"github.com/umizher/domino-home-visitors/internal/notify"
	"github.com/umizher/domino-home-visitors/internal/tui"
)

// PlayCmd runs the interactive scoreboard.
type PlayCmd struct {
	ExportDir string `default:"." type:"path" help:"Directory for exports written without a path"`
}

func (c *PlayCmd) Run(g *Globals) error {
	a, err := g.setup(true)
	if err != nil {
		return err
	}
	defer a.close()

	screen := tui.NewNotifier()
	notifiers := []match.Notifier{notify.NewLogger(a.logger), screen}
	if a.cfg.BellEnabled() {
		notifiers = append(notifiers, notify.NewBell(os.Stdout))
	}

	e, err := a.openEngine(quartz.NewReal(), match.WithNotifier(notify.Combine(notifiers...)))
	if err != nil {
		return err
	}
	defer e.Close()

	model := tui.NewModel(e, a.logger, tui.Options{
		ExportDir:    c.ExportDir,
		TickInterval: a.cfg.TickInterval(),
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	screen.Attach(program)

	ctx, cancel := setupSignalHandler(a.logger)
	defer cancel()

	grp, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	grp.Go(func() error {
		defer close(done)
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("scoreboard: %w", err)
		}
		return nil
	})
	grp.Go(func() error {
		select {
		case <-ctx.Done():
			program.Quit()
		case <-done:
		}
		return nil
	})

	a.logger.Info("Scoreboard started", "state", a.cfg.Storage.StateFile, "ephemeral", a.cfg.Storage.Ephemeral)
	err = grp.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
