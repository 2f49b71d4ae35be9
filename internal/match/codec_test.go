package match

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	base := time.UnixMilli(1714593600000)
	s := State{
		Config: Config{
			Home:     [2]string{"Ana", "Luis"},
			Visitors: [2]string{"Marta", "Pedro"},
			Mode:     ModeBoth,
			Target:   150,
			Minutes:  20,
		},
		Timer: TimerState{
			Running:          true,
			StartedAt:        base,
			EndsAt:           base.Add(20*time.Minute + 45*time.Second),
			Paused:           true,
			PausedAt:         base.Add(5 * time.Minute),
			AccumulatedPause: 45 * time.Second,
		},
		Hands: []Hand{
			{ID: "01hx", Side: Home, Points: 35, CreatedAt: base.Add(time.Minute)},
			{ID: "01hy", Side: Visitors, Points: 20, CreatedAt: base.Add(2 * time.Minute)},
		},
		Started: true,
	}

	data, err := Marshal(s)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, s.Config, got.Config)
	assert.Equal(t, s.Timer.Running, got.Timer.Running)
	assert.Equal(t, s.Timer.Paused, got.Timer.Paused)
	assert.True(t, s.Timer.EndsAt.Equal(got.Timer.EndsAt))
	assert.True(t, s.Timer.PausedAt.Equal(got.Timer.PausedAt))
	assert.Equal(t, s.Timer.AccumulatedPause, got.Timer.AccumulatedPause)
	assert.True(t, got.Timer.StoppedAt.IsZero())
	require.Len(t, got.Hands, 2)
	for i := range s.Hands {
		assert.Equal(t, s.Hands[i].ID, got.Hands[i].ID)
		assert.Equal(t, s.Hands[i].Side, got.Hands[i].Side)
		assert.Equal(t, s.Hands[i].Points, got.Hands[i].Points)
		assert.True(t, s.Hands[i].CreatedAt.Equal(got.Hands[i].CreatedAt))
	}
	assert.Equal(t, NoWinner, got.Winner)
}

func TestMarshalShape(t *testing.T) {
	st := NewState()
	st.Started = true
	st.Finished = true
	st.Winner = WinnerTie
	st.FinishedReason = ReasonManual

	data, err := Marshal(st)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "TIE", doc["winner"])
	assert.Equal(t, []any{}, doc["hands"])

	timer := doc["timer"].(map[string]any)
	assert.Nil(t, timer["endsAt"])
	assert.NotContains(t, timer, "stoppedAt")

	data, err = Marshal(NewState())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "winner")
	assert.Nil(t, doc["winner"])
}

func TestUnmarshalRejectsMalformed(t *testing.T) {
	const cfg = `"config":{"mode":"TARGET","target":200,"minutes":30}`
	const idle = `"timer":{"running":false,"paused":false}`

	tests := []struct {
		name    string
		payload string
	}{
		{"not JSON", `{"config":`},
		{"array", `[]`},
		{"missing config", `{` + idle + `,"hands":[],"started":false,"finished":false}`},
		{"unknown mode", `{"config":{"mode":"FASTEST","target":200,"minutes":30},` + idle + `,"hands":[],"started":false,"finished":false}`},
		{"zero target", `{"config":{"mode":"TARGET","target":0,"minutes":30},` + idle + `,"hands":[],"started":false,"finished":false}`},
		{"fractional minutes", `{"config":{"mode":"TIMER","target":200,"minutes":1.5},` + idle + `,"hands":[],"started":false,"finished":false}`},
		{"minutes above a day", `{"config":{"mode":"TIMER","target":200,"minutes":200000000},` + idle + `,"hands":[],"started":false,"finished":false}`},
		{"points above limit", `{` + cfg + `,` + idle + `,"hands":[{"id":"x","side":"HOME","points":9223372036854775807,"ts":1}],"started":true,"finished":false}`},
		{"too many names", `{"config":{"home":["a","b","c"],"mode":"TARGET","target":200,"minutes":30},` + idle + `,"hands":[],"started":false,"finished":false}`},
		{"negative points", `{` + cfg + `,` + idle + `,"hands":[{"id":"x","side":"HOME","points":-3,"ts":1}],"started":true,"finished":false}`},
		{"unknown side", `{` + cfg + `,` + idle + `,"hands":[{"id":"x","side":"AWAY","points":3,"ts":1}],"started":true,"finished":false}`},
		{"empty hand id", `{` + cfg + `,` + idle + `,"hands":[{"id":"","side":"HOME","points":3,"ts":1}],"started":true,"finished":false}`},
		{"unknown winner", `{` + cfg + `,` + idle + `,"hands":[],"started":true,"finished":true,"winner":"NOBODY"}`},
		{"finished before start", `{` + cfg + `,` + idle + `,"hands":[],"started":false,"finished":true,"winner":"TIE"}`},
		{"winner while running", `{` + cfg + `,` + idle + `,"hands":[],"started":true,"finished":false,"winner":"HOME"}`},
		{"hands before start", `{` + cfg + `,` + idle + `,"hands":[{"id":"x","side":"HOME","points":3,"ts":1}],"started":false,"finished":false}`},
		{"duplicate ids", `{` + cfg + `,` + idle + `,"hands":[{"id":"x","side":"HOME","points":3,"ts":1},{"id":"x","side":"VISITORS","points":4,"ts":2}],"started":true,"finished":false}`},
		{"paused but idle", `{` + cfg + `,"timer":{"running":false,"paused":true,"pausedAt":5},"hands":[],"started":true,"finished":false}`},
		{"running without end", `{` + cfg + `,"timer":{"running":true,"paused":false,"startedAt":5},"hands":[],"started":true,"finished":false}`},
		{"running after finish", `{` + cfg + `,"timer":{"running":true,"paused":false,"endsAt":9},"hands":[],"started":true,"finished":true,"winner":"TIE"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.payload))
			require.ErrorIs(t, err, ErrMalformedState)
		})
	}
}

func TestUnmarshalAcceptsMinimalPayload(t *testing.T) {
	payload := `{"config":{"mode":"TIMER","target":200,"minutes":15},"timer":{"running":false,"paused":false},"hands":[],"started":false,"finished":false}`

	s, err := Unmarshal([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, ModeTimer, s.Config.Mode)
	assert.Equal(t, 15, s.Config.Minutes)
	assert.Equal(t, [2]string{}, s.Config.Home)
	assert.Empty(t, s.Hands)
}
