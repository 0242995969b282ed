package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/logging"
	"github.com/lightcrafter/dlpc350/internal/ui"
)

// DefaultInterval is the poll interval when none is given
const DefaultInterval = time.Second

// Messages for async operations
type tickMsg time.Time

type snapshotMsg struct {
	snapshot *Snapshot
	err      error
}

type actionMsg struct {
	name string
	err  error
}

// keyMap defines key bindings for the dashboard
type keyMap struct {
	Start   key.Binding
	Pause   key.Binding
	Stop    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Stop, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Pause, k.Stop},
		{k.Refresh, k.Help, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the dashboard state
type Model struct {
	ctrl     Controller
	interval time.Duration

	Snapshot *Snapshot
	LastErr  error
	Status   string // outcome of the last key action
	Busy     bool   // a poll or action is in flight

	Width int

	keys    keyMap
	help    help.Model
	spinner spinner.Model
}

// NewModel creates a dashboard polling c every interval
func NewModel(c Controller, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ui.PrimaryColor)

	return Model{
		ctrl:     c,
		interval: interval,
		Width:    ui.MinTerminalWidth,
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  s,
	}
}

// Init starts the first poll
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll())
}

// poll reads a snapshot off the UI goroutine
func (m Model) poll() tea.Cmd {
	c := m.ctrl
	return func() tea.Msg {
		s, err := Poll(c)
		return snapshotMsg{snapshot: s, err: err}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// act runs a run-state change then polls again
func (m Model) act(name string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{name: name, err: fn()}
	}
}

// Update handles key presses, poll results and ticks
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		// One transaction at a time
		if m.Busy {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Start):
			m.Busy = true
			return m, m.act("start", m.ctrl.StartPatternSequence)
		case key.Matches(msg, m.keys.Pause):
			m.Busy = true
			return m, m.act("pause", m.ctrl.PausePatternSequence)
		case key.Matches(msg, m.keys.Stop):
			m.Busy = true
			return m, m.act("stop", m.ctrl.StopPatternSequence)
		case key.Matches(msg, m.keys.Refresh):
			m.Busy = true
			return m, m.poll()
		}
		return m, nil

	case tickMsg:
		if m.Busy {
			return m, m.tick()
		}
		m.Busy = true
		return m, m.poll()

	case snapshotMsg:
		m.Busy = false
		if msg.err != nil {
			m.LastErr = msg.err
			logging.Debug("monitor poll failed", zap.Error(msg.err))
		} else {
			m.LastErr = nil
			m.Snapshot = msg.snapshot
		}
		return m, m.tick()

	case actionMsg:
		if msg.err != nil {
			m.Status = fmt.Sprintf("%s failed: %v", msg.name, msg.err)
			logging.Warn("monitor action failed", zap.String("action", msg.name), zap.Error(msg.err))
		} else {
			m.Status = msg.name + " confirmed"
		}
		// Stay busy until the follow-up poll lands
		return m, m.poll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the dashboard
func (m Model) View() string {
	var b strings.Builder

	if m.Snapshot == nil {
		b.WriteString(m.spinner.View() + " Reading controller...\n")
	} else {
		b.WriteString(m.Snapshot.Panel(m.Width).Render())
		b.WriteString("\n")
		b.WriteString(ui.StepNoteStyle.Render("  updated " + m.Snapshot.Taken.Format("15:04:05")))
		if m.Busy {
			b.WriteString(" " + m.spinner.View())
		}
		b.WriteString("\n")
	}

	if m.LastErr != nil {
		b.WriteString(ui.ErrorMessageStyle.Render("  " + ui.FailureMarker + " " + m.LastErr.Error()))
		b.WriteString("\n")
	}
	if m.Status != "" {
		b.WriteString("  " + m.Status + "\n")
	}

	b.WriteString("\n  " + m.help.View(m.keys) + "\n")
	return b.String()
}

// Run shows the dashboard until the user quits
func Run(c Controller, interval time.Duration) error {
	_, err := tea.NewProgram(NewModel(c, interval), tea.WithAltScreen()).Run()
	return err
}
