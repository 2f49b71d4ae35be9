package match

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/umizher/domino-home-visitors/internal/handid"
)

// DefaultTickInterval is how often a running countdown is checked.
const DefaultTickInterval = 500 * time.Millisecond

// Store persists the serialized match state. Load returns (nil, nil) when
// nothing has been saved yet.
type Store interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// Notifier receives fire-and-forget feedback about lifecycle changes.
// Implementations handle their own failures.
type Notifier interface {
	NotifyFinished(reason string, winner Winner, score Score)
	NotifyReopened()
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore checkpoints state to s after every mutation.
func WithStore(s Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithNotifier delivers finish/reopen feedback to n.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithTickInterval overrides DefaultTickInterval.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithIDGenerator overrides how hand IDs are generated.
func WithIDGenerator(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// Engine is the match state machine. All methods are safe for concurrent use;
// the periodic timer check runs on its own goroutine and takes the same lock.
type Engine struct {
	mu       sync.Mutex
	logger   *log.Logger
	clock    quartz.Clock
	store    Store
	notifier Notifier
	newID    func() string
	interval time.Duration

	state      State
	stopTicker context.CancelFunc
	// pending notifications are dispatched after the lock is released
	pending []func()
}

// NewEngine creates an engine, restoring state from the configured store when
// a valid payload exists. A countdown that was running when the state was
// saved is re-armed and checked immediately.
func NewEngine(logger *log.Logger, clock quartz.Clock, opts ...Option) *Engine {
	e := &Engine{
		logger:   logger.WithPrefix("engine"),
		clock:    clock,
		store:    nopStore{},
		notifier: nopNotifier{},
		newID:    handid.Generate,
		interval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(e)
	}

	_ = e.do(func() error {
		e.state = e.load()
		if e.timerLiveLocked() {
			e.armTickerLocked()
			e.tickLocked()
		}
		return nil
	})
	return e
}

// Close stops the periodic timer check. The engine remains usable for reads.
func (e *Engine) Close() {
	e.mu.Lock()
	e.disarmTickerLocked()
	e.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Totals returns the per-side totals, recomputed from the ledger.
func (e *Engine) Totals() Score {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Totals()
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// do runs fn under the lock and then dispatches any notifications fn queued.
func (e *Engine) do(fn func() error) error {
	e.mu.Lock()
	err := fn()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, notify := range pending {
		notify()
	}
	return err
}

func (e *Engine) load() State {
	data, err := e.store.Load()
	if err != nil {
		e.logger.Warn("Failed to load match state, starting fresh", "error", err)
		return NewState()
	}
	if data == nil {
		return NewState()
	}
	st, err := Unmarshal(data)
	if err != nil {
		e.logger.Warn("Discarding stored match state", "error", err)
		return NewState()
	}
	e.logger.Debug("Restored match state", "hands", len(st.Hands), "started", st.Started, "finished", st.Finished)
	return st
}

// persistLocked checkpoints state. Failures are logged and otherwise ignored.
func (e *Engine) persistLocked() {
	data, err := Marshal(e.state)
	if err != nil {
		e.logger.Error("Failed to encode match state", "error", err)
		return
	}
	if err := e.store.Save(data); err != nil {
		e.logger.Warn("Failed to save match state", "error", err)
	}
}

type nopStore struct{}

func (nopStore) Load() ([]byte, error) { return nil, nil }
func (nopStore) Save([]byte) error     { return nil }
func (nopStore) Clear() error          { return nil }

type nopNotifier struct{}

func (nopNotifier) NotifyFinished(string, Winner, Score) {}
func (nopNotifier) NotifyReopened()                       {}
