package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/umizher/domino-home-visitors/internal/match"
)

// FinishedMsg is delivered to the program when the match finishes, whatever
// triggered it.
type FinishedMsg struct {
	Reason string
	Winner match.Winner
	Score  match.Score
}

// ReopenedMsg is delivered when a finished match is reopened.
type ReopenedMsg struct{}

// Notifier forwards engine notifications into a running program. It is
// created before the program exists; notifications before Attach are dropped.
type Notifier struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewNotifier returns an unattached notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Attach starts delivering to p.
func (n *Notifier) Attach(p *tea.Program) {
	n.attach(p.Send)
}

func (n *Notifier) attach(send func(tea.Msg)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.send = send
}

func (n *Notifier) NotifyFinished(reason string, winner match.Winner, score match.Score) {
	n.deliver(FinishedMsg{Reason: reason, Winner: winner, Score: score})
}

func (n *Notifier) NotifyReopened() {
	n.deliver(ReopenedMsg{})
}

// deliver must not block: notifications fire from inside Update when a
// command finishes the match, and Program.Send waits for the event loop.
func (n *Notifier) deliver(msg tea.Msg) {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send == nil {
		return
	}
	go send(msg)
}
