package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zsiec/stimecode/internal/expr"
	"github.com/zsiec/stimecode/pkg/timecode"
)

// maxScrollback bounds how many evaluated lines the REPL keeps on screen.
const maxScrollback = 20

func newReplCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl [rate]",
		Short: "Interactive timecode calculator",
		Long: `Start an interactive calculator. Type an expression and press enter.
"rate <label>" switches the default frame rate, "clear" empties the screen
and "quit" or esc exits. Up and down recall earlier input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := "29.97"
			if len(args) == 1 {
				label = args[0]
			}
			fr, err := opts.rate(label)
			if err != nil {
				return err
			}

			p := tea.NewProgram(newReplModel(fr, opts.nonDrop),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}
}

type replEntry struct {
	input  string
	output string
	failed bool
}

// ReplModel is the bubbletea model behind tc repl.
type ReplModel struct {
	rate    timecode.FrameRate
	nonDrop bool
	eval    *expr.Evaluator

	input   []rune
	entries []replEntry
	history []string
	recall  int

	width    int
	quitting bool
}

func newReplModel(fr timecode.FrameRate, nonDrop bool) *ReplModel {
	return &ReplModel{
		rate:    fr,
		nonDrop: nonDrop,
		eval:    newEvaluator(fr, nonDrop),
		width:   80,
	}
}

// Init implements tea.Model
func (m *ReplModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *ReplModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		case tea.KeyCtrlU:
			m.input = m.input[:0]
		case tea.KeyUp:
			m.recallHistory(-1)
		case tea.KeyDown:
			m.recallHistory(1)
		case tea.KeySpace:
			m.input = append(m.input, ' ')
		case tea.KeyRunes:
			m.input = append(m.input, msg.Runes...)
		}
	}
	return m, nil
}

func (m *ReplModel) recallHistory(step int) {
	if len(m.history) == 0 {
		return
	}
	m.recall += step
	if m.recall < 0 {
		m.recall = 0
	}
	if m.recall >= len(m.history) {
		m.recall = len(m.history)
		m.input = m.input[:0]
		return
	}
	m.input = []rune(m.history[m.recall])
}

func (m *ReplModel) submit() tea.Cmd {
	line := strings.TrimSpace(string(m.input))
	m.input = m.input[:0]
	if line == "" {
		return nil
	}
	m.history = append(m.history, line)
	m.recall = len(m.history)

	switch {
	case line == "quit" || line == "exit":
		m.quitting = true
		return tea.Quit
	case line == "clear":
		m.entries = nil
		return nil
	case strings.HasPrefix(line, "rate "):
		m.setRate(line, strings.TrimSpace(strings.TrimPrefix(line, "rate ")))
		return nil
	}

	v, err := m.eval.Evaluate(line)
	if err != nil {
		m.push(replEntry{input: line, output: err.Error(), failed: true})
		return nil
	}
	out := v.String()
	if tc, ok := v.Timecode(); ok {
		out = fmt.Sprintf("%s  (%d frames @ %s)", tc, tc.FrameNumber(), tc.FrameRate().Label())
	}
	m.push(replEntry{input: line, output: out})
	return nil
}

func (m *ReplModel) setRate(line, label string) {
	fr, err := timecode.ParseFrameRate(label)
	if err != nil {
		m.push(replEntry{input: line, output: err.Error(), failed: true})
		return
	}
	if m.nonDrop {
		fr = fr.NonDrop()
	}
	m.rate = fr
	m.eval = newEvaluator(fr, m.nonDrop)
	m.push(replEntry{input: line, output: "default rate is now " + fr.Label()})
}

func (m *ReplModel) push(e replEntry) {
	m.entries = append(m.entries, e)
	if len(m.entries) > maxScrollback {
		m.entries = m.entries[len(m.entries)-maxScrollback:]
	}
}

// View implements tea.Model
func (m *ReplModel) View() string {
	if m.quitting {
		return ""
	}

	mode := "drop-frame"
	if !m.rate.IsDropFrame() {
		mode = "non-drop"
	}
	header := HeaderStyle.Render("tc") + " " + HelpStyle.Render(fmt.Sprintf("%s %s", m.rate.Label(), mode))

	var b strings.Builder
	for _, e := range m.entries {
		b.WriteString(HelpStyle.Render("> " + e.input))
		b.WriteByte('\n')
		if e.failed {
			b.WriteString(ErrorStyle.Render(e.output))
		} else {
			b.WriteString(TimecodeStyle.Render(e.output))
		}
		b.WriteByte('\n')
	}

	prompt := PromptStyle.Render("> ") + string(m.input) + "█"
	help := HelpStyle.Render("enter: evaluate • ↑/↓: history • rate <label> • esc: quit")

	return lipgloss.NewStyle().MaxWidth(m.width).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", b.String(), prompt, "", help))
}
