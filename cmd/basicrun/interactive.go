package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/minibasic/basic-runtime/machine"
	"github.com/minibasic/basic-runtime/machinefile"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	machineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	stateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	currentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#444444"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectorState int

const (
	stateSelectMachine inspectorState = iota
	stateInputEvent
)

type inspectorModel struct {
	registry  *machine.Registry
	handles   []machine.Handle
	input     textinput.Model
	lastEvent string
	selected  int
	state     inspectorState
}

func newInspectorModel(registry *machine.Registry, handles []machine.Handle) *inspectorModel {
	input := textinput.New()
	input.Placeholder = "event name"
	input.CharLimit = 64
	return &inspectorModel{
		registry: registry,
		handles:  handles,
		input:    input,
	}
}

func (m *inspectorModel) Init() tea.Cmd {
	return nil
}

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateSelectMachine || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectMachine && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectMachine && m.selected < len(m.handles)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectMachine:
				m.state = stateInputEvent
				m.input.SetValue("")
				m.input.Focus()
			case stateInputEvent:
				event := strings.TrimSpace(m.input.Value())
				if event != "" {
					m.registry.Event(m.handles[m.selected], event)
					m.lastEvent = event
				}
				m.input.Blur()
				m.state = stateSelectMachine
			}

		case "esc":
			if m.state == stateInputEvent {
				m.input.Blur()
				m.state = stateSelectMachine
			}
		}
	}

	if m.state == stateInputEvent {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *inspectorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("basicrun machine inspector"))
	b.WriteString("\n\n")

	for i, h := range m.handles {
		snap, ok := m.registry.Snapshot(h)
		if !ok {
			continue
		}

		name := machineStyle.Render(snap.Name)
		if i == m.selected {
			name = selectedStyle.Render(snap.Name)
		}
		fmt.Fprintf(&b, "  %s\n", name)

		var states []string
		for _, s := range snap.States {
			if s == snap.Current {
				states = append(states, currentStyle.Render(s))
			} else {
				states = append(states, stateStyle.Render(s))
			}
		}
		fmt.Fprintf(&b, "    %s\n", strings.Join(states, " → "))
	}

	if m.lastEvent != "" {
		fmt.Fprintf(&b, "\n  last event: %s\n", eventStyle.Render(m.lastEvent))
	}

	switch m.state {
	case stateInputEvent:
		fmt.Fprintf(&b, "\n  send event: %s\n", m.input.View())
		b.WriteString(helpStyle.Render("\n  enter: send • esc: cancel"))
	default:
		b.WriteString(helpStyle.Render("\n  ↑/↓: select machine • enter: send event • q: quit"))
	}
	b.WriteString("\n")

	return b.String()
}

func runInteractive(machinesFile string, logger *zap.Logger) error {
	defs, err := machinefile.ParseFile(machinesFile)
	if err != nil {
		return err
	}

	registry := machine.NewRegistry(machine.WithLogger(logger.Named("machine")))
	handles, err := defs.Register(registry)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newInspectorModel(registry, handles))
	_, err = p.Run()
	return err
}
