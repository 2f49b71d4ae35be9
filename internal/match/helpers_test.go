package match

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// newTestEngine returns an engine on a mock clock with sequential hand IDs
// (hand-1, hand-2, ...).
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	return newTestEngineWithClock(t, clock, opts...), clock
}

func newTestEngineWithClock(t *testing.T, clock *quartz.Mock, opts ...Option) *Engine {
	t.Helper()
	var mu sync.Mutex
	seq := 0
	ids := WithIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("hand-%d", seq)
	})
	e := NewEngine(testLogger(), clock, append([]Option{ids}, opts...)...)
	t.Cleanup(e.Close)
	return e
}

// advance moves the mock clock forward by d without stepping over any
// scheduled tick, waiting for each tick to complete.
func advance(t *testing.T, clock *quartz.Mock, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for d > 0 {
		step, ok := clock.Peek()
		if !ok || step > d {
			step = d
		}
		clock.Advance(step).MustWait(ctx)
		d -= step
	}
}

func startTimerMatch(t *testing.T, e *Engine, mode, minutes string) {
	t.Helper()
	require.NoError(t, e.Configure(Settings{Mode: mode, Minutes: minutes}))
	require.True(t, e.Start())
}

func addHands(t *testing.T, e *Engine, hands ...any) {
	t.Helper()
	require.Zero(t, len(hands)%2, "hands are side/points pairs")
	for i := 0; i < len(hands); i += 2 {
		_, err := e.AddHand(hands[i].(Side), hands[i+1].(string))
		require.NoError(t, err)
	}
}

type finishedCall struct {
	Reason string
	Winner Winner
	Score  Score
}

type recordingNotifier struct {
	mu       sync.Mutex
	finished []finishedCall
	reopened int
	onFinish func()
}

func (n *recordingNotifier) NotifyFinished(reason string, winner Winner, score Score) {
	n.mu.Lock()
	n.finished = append(n.finished, finishedCall{reason, winner, score})
	hook := n.onFinish
	n.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (n *recordingNotifier) NotifyReopened() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reopened++
}

func (n *recordingNotifier) finishes() []finishedCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]finishedCall(nil), n.finished...)
}

type fakeStore struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	saveErr error
	loadErr error
}

func (s *fakeStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.data, nil
}

func (s *fakeStore) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data = append([]byte(nil), data...)
	return nil
}

func (s *fakeStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

var errDiskFull = errors.New("disk full")
