package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unbound-force/parity/internal/report"
	"github.com/unbound-force/parity/internal/score"
)

// keyMap defines keybindings for the interactive TUI.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Next     key.Binding
	Prev     key.Binding
	Quit     key.Binding
	Help     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Next, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Next, k.Prev},
		{k.Quit, k.Help},
	}
}

var defaultKeyMap = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("^/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("v/j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Next:     key.NewBinding(key.WithKeys("tab", "l"), key.WithHelp("tab", "next family")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab", "h"), key.WithHelp("shift+tab", "previous family")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// Styles for the TUI.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("241"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(lipgloss.Color("230")).Background(lipgloss.Color("63"))
)

// reportModel is the Bubble Tea model for browsing report runs, one
// family at a time.
type reportModel struct {
	runs     []score.Run
	contents []string
	current  int
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
}

func newReportModel(runs []score.Run) reportModel {
	contents := make([]string, len(runs))
	for i, run := range runs {
		contents[i] = renderReportContent(run)
	}
	return reportModel{
		runs:     runs,
		contents: contents,
		help:     help.New(),
		keys:     defaultKeyMap,
	}
}

// renderReportContent renders one run as the scrollable body: the
// coverage table followed by missing and erroneous names.
func renderReportContent(run score.Run) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(report.Summary(run)))
	sb.WriteString("\n")
	_ = report.WriteTextOptions(&sb, run, report.TextOptions{Verbose: true})
	return sb.String()
}

// tabs renders the family selector line.
func (m reportModel) tabs() string {
	parts := make([]string, 0, len(m.runs))
	for i, run := range m.runs {
		label := fmt.Sprintf("%s %d%%", run.Family.Nickname(), run.Totals.Percentage())
		if i == m.current {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m reportModel) Init() tea.Cmd {
	return nil
}

func (m reportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := 2
		verticalMargin := headerHeight + footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMargin)
			m.viewport.SetContent(m.content())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMargin
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Next):
			m = m.selectFamily(m.current + 1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m = m.selectFamily(m.current - 1)
			return m, nil
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// selectFamily switches to run i, wrapping around at both ends.
func (m reportModel) selectFamily(i int) reportModel {
	if len(m.runs) == 0 {
		return m
	}
	m.current = (i%len(m.runs) + len(m.runs)) % len(m.runs)
	if m.ready {
		m.viewport.SetContent(m.content())
		m.viewport.GotoTop()
	}
	return m
}

func (m reportModel) content() string {
	if len(m.contents) == 0 {
		return statusStyle.Render("No families to show.")
	}
	return m.contents[m.current]
}

func (m reportModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	footer := statusStyle.Render(
		fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100)) +
		" " + m.help.View(m.keys)

	return m.tabs() + "\n" + m.viewport.View() + "\n" + footer
}

// runInteractiveReport launches the Bubble Tea TUI for browsing
// report runs.
func runInteractiveReport(runs []score.Run) error {
	model := newReportModel(runs)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
