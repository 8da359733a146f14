package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/ipc"
	"github.com/wippyai/hostbridge/vm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err     error
	machine *vm.Machine
	conv    *bridge.Converter
	cfg     *bridge.Config
	outFile string
	status  string
	specs   []string
	lines   []string
	encoded []byte
	input   textinput.Model
	msg     uint32
}

type readyMsg struct {
	err     error
	machine *vm.Machine
	conv    *bridge.Converter
}

type encodedMsg struct {
	err   error
	specs []string
	data  []byte
	lines []string
}

type savedMsg struct {
	err  error
	path string
	n    int
}

func newInteractiveModel(cfg *bridge.Config, outFile string, msg uint32) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "int32:42, string:hello, json:{}, bytes:raw, hex:00ff"
	ti.Prompt = "add> "
	ti.Width = 60
	ti.Focus()

	return &interactiveModel{
		cfg:     cfg,
		outFile: outFile,
		msg:     msg,
		input:   ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.setup)
}

func (m *interactiveModel) setup() tea.Msg {
	machine := vm.NewMachine()
	conv, err := bridge.NewConverter(context.Background(), machine, m.cfg)
	if err != nil {
		machine.Close()
		return readyMsg{err: err}
	}
	return readyMsg{machine: machine, conv: conv}
}

// encode serializes specs from scratch and lists the result through the
// extractors, so every line shown has made the full round trip.
func (m *interactiveModel) encode(specs []string) tea.Cmd {
	conv, msgID := m.conv, m.msg
	return func() tea.Msg {
		ser := ipc.NewMsgpackSerializer()
		ser.SetMsg(msgID)
		for _, s := range specs {
			if err := appendArg(conv, ser, s); err != nil {
				return encodedMsg{err: fmt.Errorf("%s: %w", s, err)}
			}
		}
		buf, err := ser.Finish()
		if err != nil {
			return encodedMsg{err: err}
		}
		args, err := ipc.Decode(buf.Bytes())
		if err != nil {
			return encodedMsg{err: err}
		}
		lines, err := describeArgs(conv, args)
		return encodedMsg{specs: specs, data: buf.Bytes(), lines: lines, err: err}
	}
}

func (m *interactiveModel) save() tea.Msg {
	if m.outFile == "" {
		return savedMsg{err: fmt.Errorf("no output file (use -o)")}
	}
	if err := os.WriteFile(m.outFile, m.encoded, 0o644); err != nil {
		return savedMsg{err: err}
	}
	return savedMsg{path: m.outFile, n: len(m.encoded)}
}

func (m *interactiveModel) close() {
	if m.conv != nil {
		m.conv.Close()
	}
	if m.machine != nil {
		m.machine.Close()
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.close()
			return m, tea.Quit

		case "enter":
			spec := strings.TrimSpace(m.input.Value())
			if spec == "" || m.conv == nil {
				return m, nil
			}
			m.input.Reset()
			specs := append(append([]string(nil), m.specs...), spec)
			return m, m.encode(specs)

		case "ctrl+u":
			if len(m.specs) > 0 && m.conv != nil {
				return m, m.encode(m.specs[:len(m.specs)-1])
			}
			return m, nil

		case "ctrl+s":
			return m, m.save
		}

	case readyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.machine = msg.machine
		m.conv = msg.conv
		return m, m.encode(nil)

	case encodedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}
		m.specs = msg.specs
		m.lines = msg.lines
		m.encoded = msg.data
		m.status = ""
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
		} else {
			m.status = resultStyle.Render(fmt.Sprintf("Wrote %d bytes to %s", msg.n, msg.path))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
	}
	if m.conv == nil {
		return "Starting runtime..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Argument Builder"))
	b.WriteString(" ")
	b.WriteString(typeStyle.Render(fmt.Sprintf("charset %s, msg %d", m.conv.Charset(), m.msg)))
	b.WriteString("\n\n")

	if len(m.lines) == 0 {
		b.WriteString(helpStyle.Render("  (no arguments)"))
		b.WriteString("\n")
	}
	for _, l := range m.lines {
		b.WriteString(resultStyle.Render(l))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n%d bytes encoded\n\n", len(m.encoded)))

	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter add • ctrl+u remove last • ctrl+s save • esc quit"))

	return b.String()
}

func runInteractive(cfg *bridge.Config, outFile string, msg uint32) error {
	p := tea.NewProgram(newInteractiveModel(cfg, outFile, msg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
