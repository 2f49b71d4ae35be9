package match

import (
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineDefaults(t *testing.T) {
	e, _ := newTestEngine(t)

	s := e.Snapshot()
	assert.Equal(t, DefaultConfig(), s.Config)
	assert.False(t, s.Started)
	assert.False(t, s.Finished)
	assert.Empty(t, s.Hands)
	assert.Equal(t, NoWinner, s.Winner)
	assert.Equal(t, Score{}, e.Totals())
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		want     Config
	}{
		{
			name:     "empty input uses defaults",
			settings: Settings{},
			want:     DefaultConfig(),
		},
		{
			name: "valid values",
			settings: Settings{
				Home:     [2]string{" Ana ", "Luis"},
				Visitors: [2]string{"Marta", ""},
				Mode:     "both",
				Target:   "150",
				Minutes:  "20",
			},
			want: Config{
				Home:     [2]string{"Ana", "Luis"},
				Visitors: [2]string{"Marta", ""},
				Mode:     ModeBoth,
				Target:   150,
				Minutes:  20,
			},
		},
		{
			name:     "non-numeric falls back",
			settings: Settings{Mode: "timer", Target: "abc", Minutes: "ten"},
			want:     Config{Mode: ModeTimer, Target: DefaultTarget, Minutes: DefaultMinutes},
		},
		{
			name:     "below one falls back",
			settings: Settings{Target: "0", Minutes: "-3"},
			want:     Config{Mode: ModeTarget, Target: DefaultTarget, Minutes: DefaultMinutes},
		},
		{
			name:     "unknown mode falls back to target",
			settings: Settings{Mode: "sudden-death", Target: " 300 "},
			want:     Config{Mode: ModeTarget, Target: 300, Minutes: DefaultMinutes},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			require.NoError(t, e.Configure(tt.settings))
			assert.Equal(t, tt.want, e.Snapshot().Config)
		})
	}
}

func TestConfigureLockedWhileRunning(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Configure(Settings{Target: "100"}))
	require.True(t, e.Start())

	err := e.Configure(Settings{Target: "50"})
	require.ErrorIs(t, err, ErrConfigLocked)
	assert.Equal(t, 100, e.Snapshot().Config.Target)

	require.NoError(t, e.Finish(""))
	require.NoError(t, e.Configure(Settings{Target: "50"}), "finished match may be reconfigured")
	assert.Equal(t, 50, e.Snapshot().Config.Target)

	require.True(t, e.Reopen())
	require.ErrorIs(t, e.Configure(Settings{Target: "75"}), ErrConfigLocked, "reopened match is running again")
}

func TestStart(t *testing.T) {
	e, _ := newTestEngine(t)

	assert.True(t, e.Start())
	assert.False(t, e.Start(), "second start is a no-op")
	assert.True(t, e.Snapshot().Started)
	assert.False(t, e.Snapshot().Timer.Running, "target mode does not run a timer")

	require.NoError(t, e.Finish(""))
	assert.False(t, e.Start(), "start after finish is a no-op")
	assert.True(t, e.Snapshot().Finished)
}

func TestFinishRequiresStart(t *testing.T) {
	e, _ := newTestEngine(t)
	require.ErrorIs(t, e.Finish("early"), ErrInvalidState)
	assert.False(t, e.Snapshot().Finished)
}

func TestFinishIsIdempotent(t *testing.T) {
	n := &recordingNotifier{}
	e, _ := newTestEngine(t, WithNotifier(n))
	require.True(t, e.Start())
	addHands(t, e, Visitors, "30")

	require.NoError(t, e.Finish("first"))
	require.NoError(t, e.Finish("second"))

	s := e.Snapshot()
	assert.Equal(t, "first", s.FinishedReason)
	assert.Equal(t, WinnerVisitors, s.Winner)
	require.Len(t, n.finishes(), 1)
	assert.Equal(t, finishedCall{"first", WinnerVisitors, Score{Visitors: 30}}, n.finishes()[0])
}

func TestFinishWithoutHandsIsTie(t *testing.T) {
	e, _ := newTestEngine(t)
	require.True(t, e.Start())
	require.NoError(t, e.Finish(""))

	s := e.Snapshot()
	assert.Equal(t, WinnerTie, s.Winner)
	assert.Equal(t, ReasonManual, s.FinishedReason)
}

func TestReopen(t *testing.T) {
	n := &recordingNotifier{}
	e, _ := newTestEngine(t, WithNotifier(n))

	assert.False(t, e.Reopen(), "nothing to reopen")

	require.True(t, e.Start())
	addHands(t, e, Home, "40", Visitors, "20")
	require.NoError(t, e.Finish(""))
	require.True(t, e.Reopen())

	s := e.Snapshot()
	assert.True(t, s.Started)
	assert.False(t, s.Finished)
	assert.Empty(t, s.FinishedReason)
	assert.Equal(t, NoWinner, s.Winner)
	assert.Len(t, s.Hands, 2, "reopen keeps the ledger")
	assert.Equal(t, Score{Home: 40, Visitors: 20}, e.Totals())
	assert.Equal(t, 1, n.reopened)
}

func TestReset(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestEngine(t, WithStore(store))
	require.NoError(t, e.Configure(Settings{Target: "50"}))
	require.True(t, e.Start())
	addHands(t, e, Home, "10")
	require.NotNil(t, store.data)

	e.Reset()

	s := e.Snapshot()
	assert.Equal(t, NewState().Config, s.Config)
	assert.False(t, s.Started)
	assert.Empty(t, s.Hands)
	assert.Nil(t, store.data, "reset clears the persisted state")
}

func TestNotifierMayCallBackIntoEngine(t *testing.T) {
	n := &recordingNotifier{}
	e, _ := newTestEngine(t, WithNotifier(n))

	var seen View
	n.onFinish = func() { seen = e.View() }

	require.NoError(t, e.Configure(Settings{Target: "10"}))
	require.True(t, e.Start())
	addHands(t, e, Home, "10")

	assert.True(t, seen.Finished)
	assert.Equal(t, WinnerHome, seen.Winner)
}

func TestPersistsAfterEveryMutation(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestEngine(t, WithStore(store))

	require.NoError(t, e.Configure(Settings{Home: [2]string{"Ana", "Luis"}, Target: "100"}))
	require.True(t, e.Start())
	h, err := e.AddHand(Home, "25")
	require.NoError(t, err)
	addHands(t, e, Visitors, "30")
	require.NoError(t, e.EditHand(h.ID, Home, "35"))
	assert.Equal(t, 5, store.saves)

	restored := newTestEngineWithClock(t, quartz.NewMock(t), WithStore(store))
	s := restored.Snapshot()
	assert.True(t, s.Started)
	assert.Equal(t, [2]string{"Ana", "Luis"}, s.Config.Home)
	assert.Equal(t, 100, s.Config.Target)
	require.Len(t, s.Hands, 2)
	assert.Equal(t, h.ID, s.Hands[0].ID)
	assert.Equal(t, Score{Home: 35, Visitors: 30}, restored.Totals())
}

func TestSaveFailuresAreSwallowed(t *testing.T) {
	store := &fakeStore{saveErr: errDiskFull}
	e, _ := newTestEngine(t, WithStore(store))

	require.True(t, e.Start())
	addHands(t, e, Home, "25", Home, "30")

	assert.Equal(t, Score{Home: 55}, e.Totals())
	assert.Positive(t, store.saves)
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeStore
	}{
		{"load error", &fakeStore{loadErr: errDiskFull}},
		{"not JSON", &fakeStore{data: []byte("{nope")}},
		{"missing timer", &fakeStore{data: []byte(`{"config":{"mode":"TARGET","target":200,"minutes":30},"hands":[],"started":true,"finished":false}`)}},
		{"finished without winner", &fakeStore{data: []byte(`{"config":{"mode":"TARGET","target":200,"minutes":30},"timer":{"running":false,"paused":false},"hands":[],"started":true,"finished":true}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, WithStore(tt.store))
			s := e.Snapshot()
			assert.Equal(t, DefaultConfig(), s.Config)
			assert.False(t, s.Started)
			assert.False(t, s.Finished)
			assert.Empty(t, s.Hands)
		})
	}
}
