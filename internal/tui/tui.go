// Package tui is the interactive scoreboard: a score sidebar, the hand
// ledger and a command line driving a match.Engine.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"

	"github.com/umizher/domino-home-visitors/internal/match"
)

const (
	paneLedger = iota
	paneInput
)

// messages kept visible above the command line
const visibleMessages = 3

// Options configures a Model.
type Options struct {
	// ExportDir receives exports written without an explicit path.
	ExportDir string
	// TickInterval is the screen refresh rate. Defaults to match.DefaultTickInterval.
	TickInterval time.Duration
	// TestMode captures messages without styling for assertions.
	TestMode bool
}

// Model is the Bubble Tea model for the scoreboard
type Model struct {
	engine     *match.Engine
	dispatcher *Dispatcher
	logger     *log.Logger
	interval   time.Duration

	// UI components
	ledgerViewport viewport.Model
	commandInput   textinput.Model
	focusedPane    int

	messages []string
	quitting bool

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

type tickMsg time.Time

// NewModel creates a scoreboard for e.
func NewModel(e *match.Engine, logger *log.Logger, opts Options) *Model {
	interval := opts.TickInterval
	if interval <= 0 {
		interval = match.DefaultTickInterval
	}

	// Sized properly when the first WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "start, h 25, v 30, edit 2 home 15, finish ... (help for all)"
	ti.Focus()
	ti.CharLimit = 120
	ti.Width = 80
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		engine:         e,
		dispatcher:     NewDispatcher(e, opts.ExportDir),
		logger:         logger.WithPrefix("tui"),
		interval:       interval,
		ledgerViewport: vp,
		commandInput:   ti,
		focusedPane:    paneInput,
		testMode:       opts.TestMode,
	}
}

// Init starts the cursor blink and the refresh tick.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tickMsg:
		// the view reads the engine, so a redraw is all a tick needs
		return m, m.tick()

	case FinishedMsg:
		m.AddMessage(SuccessStyle.Render(fmt.Sprintf("MATCH FINISHED: %s %s (%s)", msg.Winner.Outcome(), msg.Score, msg.Reason)))
		return m, nil

	case ReopenedMsg:
		m.AddMessage(WarningStyle.Render("Match reopened"))
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == paneLedger {
				m.focusedPane = paneInput
				m.commandInput.Focus()
			} else {
				m.focusedPane = paneLedger
				m.commandInput.Blur()
			}
		case "enter":
			if m.focusedPane == paneInput {
				line := strings.TrimSpace(m.commandInput.Value())
				m.commandInput.SetValue("")
				if m.Submit(line) {
					m.quitting = true
					return m, tea.Quit
				}
			}
		case "up", "k":
			if m.focusedPane == paneLedger {
				m.ledgerViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == paneLedger {
				m.ledgerViewport.ScrollDown(1)
			}
		case "home", "g":
			if m.focusedPane == paneLedger {
				m.ledgerViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == paneLedger {
				m.ledgerViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == paneInput {
		m.commandInput, cmd = m.commandInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.ledgerViewport, cmd = m.ledgerViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Submit runs one command line and reports whether the operator asked to quit.
func (m *Model) Submit(line string) bool {
	if line == "" {
		return false
	}
	out, err := m.dispatcher.Run(line)
	if err != nil {
		m.logger.Debug("Command rejected", "command", line, "error", err)
		m.AddMessage(ErrorStyle.Render(err.Error()))
		return false
	}
	if out.Message != "" {
		m.AddMessage(out.Message)
	}
	return out.Quit
}

// AddMessage appends a line to the message area.
func (m *Model) AddMessage(msg string) {
	m.messages = append(m.messages, msg)
	if m.testMode {
		m.capturedLog = append(m.capturedLog, ansi.Strip(msg))
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	v := m.engine.View()

	actionContent := m.renderActionPane(v)
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	actionPane := actionStyle.Render(actionContent)

	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarContent := m.renderSidebar(v)
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	ledgerWidth := max(m.width-sidebarWidth-4, 1)
	m.ledgerViewport.Width = ledgerWidth
	m.ledgerViewport.Height = paneHeight
	m.ledgerViewport.SetContent(renderLedger(v))
	if !m.initialized && ledgerWidth > 1 && paneHeight > 1 {
		m.ledgerViewport.GotoTop()
		m.initialized = true
	}

	ledgerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(ledgerWidth).
		Height(paneHeight)
	if m.focusedPane == paneLedger {
		ledgerStyle = ledgerStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	ledgerPane := ledgerStyle.Render(m.ledgerViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, ledgerPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderLedger lists hands newest first with running totals.
func renderLedger(v match.View) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%-4s %-9s %5s %6s %6s  %s", "#", "SIDE", "PTS", "HOME", "VIS", "TIME")))
	b.WriteString("\n")
	if len(v.Rows) == 0 {
		b.WriteString(InfoStyle.Render("No hands recorded"))
		return b.String()
	}
	for _, r := range v.Rows {
		side := sideStyle(r.Side == match.Home).Render(fmt.Sprintf("%-9s", r.Side))
		b.WriteString(LedgerStyle.Render(fmt.Sprintf("%-4d ", r.No)))
		b.WriteString(side)
		b.WriteString(LedgerStyle.Render(fmt.Sprintf(" %5d %6d %6d  %s", r.Points, r.HomeTotal, r.VisitorsTotal, r.At.Format("15:04:05"))))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderSidebar(v match.View) string {
	var b strings.Builder

	b.WriteString(HomeStyle.Render(v.HomeLabel))
	b.WriteString("\n")
	b.WriteString(ScoreStyle.Render(fmt.Sprintf("  %d", v.Score.Home)))
	b.WriteString("\n")
	b.WriteString(VisitorsStyle.Render(v.VisitorsLabel))
	b.WriteString("\n")
	b.WriteString(ScoreStyle.Render(fmt.Sprintf("  %d", v.Score.Visitors)))
	b.WriteString("\n\n")

	b.WriteString(InfoStyle.Render(fmt.Sprintf("Mode: %s", v.Mode)))
	b.WriteString("\n")
	if v.Mode.Target() {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("Target: %d", v.Target)))
		b.WriteString("\n")
	}
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Hands: %d", v.HandCount)))
	b.WriteString("\n")
	if v.TimerEnabled {
		clock := ClockStyle.Render("Time " + v.Clock)
		if v.Paused {
			clock += " " + WarningStyle.Render("(paused)")
		}
		b.WriteString(clock)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	status := WarningStyle.Render(v.Status)
	if v.Finished {
		status = SuccessStyle.Render(v.Status)
	}
	b.WriteString(status)
	return b.String()
}

func (m *Model) renderActionPane(v match.View) string {
	var b strings.Builder

	start := max(len(m.messages)-visibleMessages, 0)
	for _, msg := range m.messages[start:] {
		b.WriteString(msg)
		b.WriteString("\n")
	}

	b.WriteString(m.commandInput.View())
	b.WriteString("\n")

	help := "Tab to scroll ledger • Enter to submit • Ctrl+C to quit"
	if m.focusedPane == paneLedger {
		help = "Ledger focused: ↑↓ scroll, Home/End, Tab to input"
	}
	b.WriteString(InfoStyle.Render(AvailableCommands(v.Controls) + "  " + help))
	return b.String()
}

// AvailableCommands lists the commands that currently make sense.
func AvailableCommands(c match.Controls) string {
	var cmds []string
	if c.Start {
		cmds = append(cmds, "start")
	}
	if c.Configure {
		cmds = append(cmds, "config")
	}
	if c.AddHand {
		cmds = append(cmds, "h/v <pts>")
	}
	if c.EditHand {
		cmds = append(cmds, "edit", "del")
	}
	if c.Pause {
		cmds = append(cmds, "pause")
	}
	if c.Resume {
		cmds = append(cmds, "resume")
	}
	if c.Finish {
		cmds = append(cmds, "finish")
	}
	if c.Reopen {
		cmds = append(cmds, "reopen")
	}
	if c.Export {
		cmds = append(cmds, "export")
	}
	cmds = append(cmds, "reset", "quit")
	return "[" + strings.Join(cmds, " | ") + "]"
}

// GetCapturedLog returns the captured messages (test mode only)
func (m *Model) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *Model) IsTestMode() bool {
	return m.testMode
}
