package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umizher/domino-home-visitors/internal/match"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *match.Engine) {
	t.Helper()
	e := match.NewEngine(testLogger(), quartz.NewMock(t))
	t.Cleanup(e.Close)
	return NewDispatcher(e, t.TempDir()), e
}

func run(t *testing.T, d *Dispatcher, line string) Outcome {
	t.Helper()
	out, err := d.Run(line)
	require.NoError(t, err, line)
	return out
}

func TestDispatcherScoring(t *testing.T) {
	d, e := newTestDispatcher(t)

	assert.Equal(t, "Match started", run(t, d, "start").Message)
	assert.Equal(t, "Match already started", run(t, d, "START").Message)

	assert.Equal(t, "Hand #1: HOME +25 (25-0)", run(t, d, "h 25").Message)
	assert.Equal(t, "Hand #2: VISITORS +30 (25-30)", run(t, d, "vis 30").Message)
	run(t, d, "home 5")

	assert.Equal(t, "Hand #1 corrected (5-40)", run(t, d, "edit 1 v 10").Message)
	assert.Equal(t, "Hand #2 deleted (5-10)", run(t, d, "del #2").Message)

	assert.Equal(t, match.Score{Home: 5, Visitors: 10}, e.Totals())
	assert.Len(t, e.Snapshot().Hands, 2)
}

func TestDispatcherErrors(t *testing.T) {
	d, e := newTestDispatcher(t)

	_, err := d.Run("h 10")
	require.ErrorIs(t, err, match.ErrInvalidState)

	run(t, d, "start")

	tests := []struct {
		line string
		want error
	}{
		{"h abc", match.ErrInvalidPoints},
		{"v -5", match.ErrInvalidPoints},
		{"edit 1 home 5", match.ErrNotFound},
		{"edit x home 5", match.ErrNotFound},
		{"del 3", match.ErrNotFound},
		{"dance", ErrUnknownCommand},
	}
	for _, tt := range tests {
		_, err := d.Run(tt.line)
		require.ErrorIs(t, err, tt.want, tt.line)
	}

	run(t, d, "h 10")
	_, err = d.Run("edit 1 away 5")
	require.ErrorIs(t, err, match.ErrInvalidSide)

	for _, line := range []string{"h", "h 1 2", "edit 1 home", "del"} {
		_, err := d.Run(line)
		assert.Error(t, err, line)
	}
	assert.Equal(t, match.Score{Home: 10}, e.Totals())
}

func TestDispatcherConfigure(t *testing.T) {
	d, e := newTestDispatcher(t)

	out := run(t, d, "config home=Ana,Luis vis=Marta mode=both target=150")
	assert.Equal(t, "Configured HOME (Ana / Luis) vs VISITORS (Marta), mode BOTH, target 150, 30 min", out.Message)

	run(t, d, "config minutes=20")
	cfg := e.Snapshot().Config
	assert.Equal(t, [2]string{"Ana", "Luis"}, cfg.Home, "unnamed keys keep their values")
	assert.Equal(t, 150, cfg.Target)
	assert.Equal(t, 20, cfg.Minutes)

	_, err := d.Run("config")
	assert.Error(t, err)
	_, err = d.Run("config target")
	assert.Error(t, err)
	_, err = d.Run("config colour=red")
	assert.Error(t, err)

	run(t, d, "start")
	_, err = d.Run("config target=10")
	require.ErrorIs(t, err, match.ErrConfigLocked)
}

func TestDispatcherLifecycle(t *testing.T) {
	d, e := newTestDispatcher(t)
	run(t, d, "start")

	assert.Equal(t, "Timer is not running", run(t, d, "pause").Message)
	assert.Equal(t, "Timer is not paused", run(t, d, "resume").Message)
	assert.Equal(t, "Match is not finished", run(t, d, "reopen").Message)

	run(t, d, "h 40")
	assert.Empty(t, run(t, d, "finish opponents left").Message)
	s := e.Snapshot()
	assert.True(t, s.Finished)
	assert.Equal(t, "opponents left", s.FinishedReason)
	assert.Equal(t, match.WinnerHome, s.Winner)

	assert.Equal(t, "Match already finished", run(t, d, "finish").Message)

	run(t, d, "reopen")
	assert.False(t, e.Snapshot().Finished)
}

func TestDispatcherTimer(t *testing.T) {
	d, e := newTestDispatcher(t)
	run(t, d, "config mode=timer minutes=5")
	run(t, d, "start")

	assert.Equal(t, "Timer paused", run(t, d, "pause").Message)
	assert.True(t, e.View().Paused)
	assert.Equal(t, "Timer resumed", run(t, d, "resume").Message)
	assert.False(t, e.View().Paused)
}

func TestDispatcherResetNeedsConfirmation(t *testing.T) {
	d, e := newTestDispatcher(t)
	run(t, d, "start")
	run(t, d, "h 10")

	assert.Equal(t, "Type reset again to discard the match", run(t, d, "reset").Message)
	run(t, d, "h 5")
	assert.Equal(t, "Type reset again to discard the match", run(t, d, "reset").Message, "another command disarms reset")
	assert.Len(t, e.Snapshot().Hands, 2)

	assert.Equal(t, "Match reset", run(t, d, "reset").Message)
	s := e.Snapshot()
	assert.False(t, s.Started)
	assert.Empty(t, s.Hands)
}

func TestDispatcherExport(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Run("export")
	require.ErrorIs(t, err, match.ErrInvalidState)

	run(t, d, "start")
	run(t, d, "h 25")

	path := filepath.Join(t.TempDir(), "out.csv")
	assert.Equal(t, "Exported to "+path, run(t, d, "export "+path).Message)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1,HOME,25,25,0,")

	out := run(t, d, "export")
	written := strings.TrimPrefix(out.Message, "Exported to ")
	assert.Equal(t, d.exportDir, filepath.Dir(written))
	assert.True(t, strings.HasSuffix(written, ".toml"))
	_, err = os.Stat(written)
	require.NoError(t, err)
}

func TestDispatcherMisc(t *testing.T) {
	d, _ := newTestDispatcher(t)

	assert.Equal(t, Outcome{}, run(t, d, "   "))
	assert.Equal(t, Help, run(t, d, "help").Message)
	assert.True(t, run(t, d, "quit").Quit)
	assert.True(t, run(t, d, "q").Quit)
}
