package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	liveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	deadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const eventLogDepth = 8

type interactiveModel struct {
	in     *inspector
	input  textinput.Model
	output string
	outErr error
}

func newInteractiveModel() *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "new a"
	ti.Prompt = "> "
	ti.Width = 60
	ti.Focus()
	return &interactiveModel{
		in:    newInspector(),
		input: ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.in.close()
			return m, tea.Quit

		case "enter":
			line := m.input.Value()
			m.input.SetValue("")
			if strings.TrimSpace(line) == "q" || strings.TrimSpace(line) == "quit" {
				m.in.close()
				return m, tea.Quit
			}
			m.output, m.outErr = m.in.eval(line)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("rcview"))
	b.WriteString(" simulated retain/release inspector\n\n")

	b.WriteString(m.renderObjects())
	b.WriteString("\n")
	b.WriteString(m.renderEvents())
	b.WriteString("\n")

	if m.outErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.outErr)))
		b.WriteString("\n")
	} else if m.output != "" {
		b.WriteString(outputStyle.Render(m.output))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("new/retain/release/autorelease <label> • push/pop • weak/load/unweak <label> • ls • q quit"))
	return b.String()
}

func (m *interactiveModel) renderObjects() string {
	infos := m.in.rt.Snapshot()
	if len(infos) == 0 {
		return helpStyle.Render("no objects yet") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %-10s %-6s %-6s\n", "label", "pointer", "count", "weaks")
	for _, info := range infos {
		line := fmt.Sprintf("%-12s %-10s %-6s %-6d",
			info.Label,
			fmt.Sprintf("%#x", uint64(info.Ptr)),
			countStyle.Render(fmt.Sprintf("%d", info.Count)),
			info.Weaks)
		if info.Live {
			b.WriteString(liveStyle.Render(line))
		} else {
			b.WriteString(deadStyle.Render(line + "  (deallocated)"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *interactiveModel) renderEvents() string {
	events := m.in.events
	if len(events) > eventLogDepth {
		events = events[len(events)-eventLogDepth:]
	}
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(helpStyle.Render("recent events"))
	b.WriteString("\n")
	for _, ev := range events {
		b.WriteString("  ")
		b.WriteString(ev)
		b.WriteString("\n")
	}
	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
