package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tidy/internal/organizer"
)

type Model struct {
	updates      <-chan organizer.ProgressUpdate
	cancel       func()
	started      time.Time
	width        int
	total        int
	processed    int
	skipped      int
	failed       int
	dirs         int
	interrupting bool
	quitting     bool
}

type doneMsg struct{}

type updateMsg organizer.ProgressUpdate

// NewModel builds the progress model. cancel is invoked when the user
// interrupts from the keyboard; the model keeps draining updates until
// the run winds down and closes the channel.
func NewModel(updates <-chan organizer.ProgressUpdate, cancel func()) Model {
	return Model{updates: updates, cancel: cancel, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.total += msg.TotalDelta
		m.processed += msg.ProcessedDelta
		m.skipped += msg.SkippedDelta
		m.failed += msg.FailedDelta
		m.dirs += msg.DirsCreatedDelta
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		// The raw-mode terminal swallows SIGINT, so Ctrl+C arrives
		// here. Request cancellation and keep consuming updates; the
		// run closes the channel once it has wound down.
		if msg.Type == tea.KeyCtrlC && !m.interrupting {
			m.interrupting = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	done := m.processed + m.skipped + m.failed
	ratio := 0.0
	if m.total > 0 {
		ratio = float64(done) / float64(m.total)
		if ratio > 1 {
			ratio = 1
		}
	}

	bar := renderBar(barWidth, ratio)
	elapsed := time.Since(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render("tidy 🗂"),
		labelStyle.Render(fmt.Sprintf("Files: %d/%d", done, m.total)) + dimStyle.Render(fmt.Sprintf("  skipped:%d failed:%d", m.skipped, m.failed)),
		labelStyle.Render(fmt.Sprintf("Folders created: %d", m.dirs)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(bar),
	}
	if m.interrupting {
		lines = append(lines, dimStyle.Render("interrupting, waiting for workers..."))
	}

	return strings.Join(lines, "\n")
}

func listenForUpdates(updates <-chan organizer.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
