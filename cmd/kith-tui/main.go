package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kithlabs/kith/pkg/store"
)

// Config
const (
	pollRate       = time.Second
	maxRuns        = 20
	viewportHeight = 20
	fetchTimeout   = 500 * time.Millisecond
)

// Styles
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			Width(100)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(100)

	runTimeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(20)
	runIDStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))

	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Width(12).Bold(true)
	succeededStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Width(12).Bold(true)
	runningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Width(12).Bold(true)
)

type tickMsg time.Time

type dataMsg struct {
	runs []store.Run
	err  error
}

type model struct {
	store    *store.Store
	spinner  spinner.Model
	viewport viewport.Model
	runs     []store.Run
	err      error
	ready    bool
}

func initialModel(s *store.Store) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	vp := viewport.New(100, viewportHeight)
	vp.Style = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		PaddingRight(2)

	return model{
		store:    s,
		spinner:  sp,
		viewport: vp,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchRuns(m.store),
		tick(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tickMsg:
		cmds = append(cmds, fetchRuns(m.store), tick())

	case dataMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.runs = msg.runs
			m.updateViewportContent()
		}

		if !m.ready {
			m.ready = true
		}

	case tea.WindowSizeMsg:
		if m.ready {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
	}

	return m, tea.Batch(cmds...)
}

func statusLabel(status store.RunStatus) string {
	switch status {
	case store.RunStatusFailed:
		return failedStyle.Render(string(status))
	case store.RunStatusSucceeded:
		return succeededStyle.Render(string(status))
	default:
		return runningStyle.Render(string(status))
	}
}

func (m *model) updateViewportContent() {
	var sb strings.Builder

	// Newest run first, matching the store's ordering.
	for _, r := range m.runs {
		line := fmt.Sprintf("%s %s %s  %d recs\n",
			runTimeStyle.Render(r.StartedAt.Format("15:04:05")),
			statusLabel(r.Status),
			runIDStyle.Render(shortID(r.RunID)),
			r.Recommendations,
		)
		sb.WriteString(line)
	}

	m.viewport.SetContent(sb.String())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (m model) View() string {
	if !m.ready {
		return fmt.Sprintf("\n%s Initializing...", m.spinner.View())
	}

	// Top pane: the most recent run in detail.
	var detail strings.Builder
	detail.WriteString(lipgloss.NewStyle().Bold(true).Underline(true).Render("Latest Run") + "\n\n")

	if len(m.runs) == 0 {
		detail.WriteString(subtleStyle.Render("No runs recorded."))
	} else {
		r := m.runs[0]
		detail.WriteString(fmt.Sprintf("• %s %s\n", shortID(r.RunID), statusLabel(r.Status)))
		detail.WriteString(fmt.Sprintf("  %s -> %s\n", r.InputPath, r.OutputPath))
		detail.WriteString(fmt.Sprintf("  %d vertices, %d edges, %d recommendations, threshold %d\n",
			r.Vertices, r.Edges, r.Recommendations, r.Threshold))
		if r.Error != "" {
			detail.WriteString("  " + errorStyle.Render(r.Error) + "\n")
		}
	}

	topPane := paneStyle.Render(detail.String())

	// Bottom pane: run history.
	header := headerStyle.Render(fmt.Sprintf("%s Run History", m.spinner.View()))
	bottomPane := m.viewport.View()

	var status string
	if m.err != nil {
		status = errorStyle.Render(fmt.Sprintf("Store error: %v", m.err))
	} else {
		status = okStyle.Render(fmt.Sprintf("Connected • %d Runs", len(m.runs)))
	}
	footer := subtleStyle.Render(fmt.Sprintf("\n%s\nPress q to quit", status))

	return lipgloss.JoinVertical(lipgloss.Left, topPane, header, bottomPane, footer)
}

// Commands

func fetchRuns(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		runs, err := s.ListRuns(ctx, maxRuns)
		if err != nil {
			return dataMsg{err: err}
		}
		return dataMsg{runs: runs}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func main() {
	storePath := flag.String("store", envOr("KITH_STORE_PATH", "kith.db"), "path to the run store database")
	flag.Parse()

	s, err := store.NewStore(*storePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kith-tui: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	p := tea.NewProgram(initialModel(s), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "kith-tui: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
