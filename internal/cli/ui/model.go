// Package ui implements the live progress display as a bubbletea program.
// It renders a single progress line (bar, counts, ETA, current file); the
// final report is printed by the render package after the program exits.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stackvity/csv-charset/internal/cli/hooks"
	"github.com/stackvity/csv-charset/internal/cli/render"
)

const (
	defaultWidth = 80
	// maxLabelLen truncates long folder/file labels on the progress line.
	maxLabelLen = 40
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// Model is the bubbletea state for one scan run.
type Model struct {
	spinner   spinner.Model
	bar       progress.Model
	width     int
	start     time.Time
	total     int
	completed int
	folders   int
	label     string
	notice    string
	done      bool
	quitting  bool
	// cancel requests a graceful engine wind-down on ctrl+c / q.
	cancel func()
}

// NewModel builds the progress model. cancel is invoked when the user
// interrupts from inside the TUI; pass the scan context's cancel func.
func NewModel(cancel func()) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	bar := progress.New(progress.WithDefaultGradient())
	if cancel == nil {
		cancel = func() {}
	}
	return &Model{
		spinner: sp,
		bar:     bar,
		width:   defaultWidth,
		start:   time.Now(),
		cancel:  cancel,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := m.width / 2
		if barWidth < 10 {
			barWidth = 10
		}
		m.bar.Width = barWidth

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Cooperative: the engine finishes in-flight files, sends
			// ScanCompleteMsg, and the program quits then.
			m.quitting = true
			m.cancel()
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case hooks.ScanStartMsg:
		m.folders = msg.Folders
		m.total = msg.Files
		m.start = time.Now()

	case hooks.WorkersCappedMsg:
		m.notice = fmt.Sprintf("Limiting jobs from %d to %d (CPU=%d, files=%d)",
			msg.Requested, msg.Effective, msg.Cores, msg.Files)

	case hooks.FileDoneMsg:
		m.completed = msg.Completed
		m.total = msg.Total
		m.label = msg.Label

	case hooks.ScanCompleteMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// truncateLabel shortens a label to at most max runes. Truncation happens
// on rune boundaries so multibyte folder and file names never render as a
// split sequence.
func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	if m.notice != "" {
		b.WriteString(countStyle.Render(m.notice))
		b.WriteString("\n")
	}
	if m.total == 0 {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), titleStyle.Render("Scanning folders...")))
		return b.String()
	}

	ratio := float64(m.completed) / float64(m.total)
	elapsed := time.Since(m.start)
	eta := "calculating..."
	if m.completed > 0 && m.completed < m.total {
		perItem := elapsed / time.Duration(m.completed)
		eta = render.FormatDuration(perItem * time.Duration(m.total-m.completed))
	}

	label := truncateLabel(m.label, maxLabelLen)
	status := m.spinner.View()
	if m.quitting {
		status = countStyle.Render("stopping")
	}

	b.WriteString(fmt.Sprintf("%s %s %s %s (%.1f%%) %s %s %s\n",
		status,
		titleStyle.Render("Processing CSV files:"),
		m.bar.ViewAs(ratio),
		countStyle.Render(fmt.Sprintf("%d/%d", m.completed, m.total)),
		ratio*100,
		dimStyle.Render("ETA: "+eta),
		dimStyle.Render("Elapsed: "+render.FormatDuration(elapsed)),
		labelStyle.Render(label)))
	return b.String()
}
