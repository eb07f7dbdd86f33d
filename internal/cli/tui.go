package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/render"
)

// Step styles
var (
	stepNextStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	stepDoneStyle = lipgloss.NewStyle().Foreground(colorGray)
	stepFailStyle = lipgloss.NewStyle().Foreground(colorRed)
	stepDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// historySize bounds the applied ops shown below the trees.
const historySize = 6

// =============================================================================
// StepModel - Interactive op stepping
// =============================================================================

// stepEntry is one applied op and its outcome.
type stepEntry struct {
	op  string
	err error
}

// StepModel is the bubbletea model that applies a scene's ops one key press
// at a time and redraws the open trees after each.
type StepModel struct {
	ctx     context.Context
	sess    *session
	trees   []string
	history []stepEntry
	applied int
}

func newStepModel(ctx context.Context, sess *session, trees []string) StepModel {
	return StepModel{ctx: ctx, sess: sess, trees: trees}
}

func (m StepModel) Init() tea.Cmd {
	return nil
}

func (m StepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "enter", "n", "right", "l":
			m = m.step()
		case "a":
			for m.sess.inst.Remaining() > 0 {
				m = m.step()
			}
		}
	}
	return m, nil
}

// step applies the next op and records it. Failed ops are consumed and
// shown in the history.
func (m StepModel) step() StepModel {
	op, ok, err := m.sess.inst.Step(m.ctx)
	if !ok {
		return m
	}
	m.applied++
	m.history = append(m.history, stepEntry{op: op.String(), err: err})
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
	return m
}

func (m StepModel) View() string {
	var b strings.Builder

	s := m.sess.inst.Scene()
	b.WriteString(StyleTitle.Render(s.Name))
	b.WriteString(stepDimStyle.Render(fmt.Sprintf("  op %d/%d", m.applied, len(s.Ops))))
	b.WriteString("\n")
	b.WriteString(stepDimStyle.Render("space/⏎ step  a apply all  q quit"))
	b.WriteString("\n\n")

	blocks := make([]string, len(m.trees))
	for i, name := range m.trees {
		blocks[i] = render.Text(m.sess.trees[name], m.sess.options(name))
	}
	b.WriteString(panels(blocks...))
	b.WriteString("\n\n")

	for _, h := range m.history {
		if h.err != nil {
			b.WriteString(stepFailStyle.Render(iconError + " " + h.op + ": " + errors.UserMessage(h.err)))
		} else {
			b.WriteString(stepDoneStyle.Render(iconSuccess + " " + h.op))
		}
		b.WriteString("\n")
	}

	if next, ok := m.sess.inst.Next(); ok {
		b.WriteString(stepNextStyle.Render("▸ " + next.String()))
	} else {
		b.WriteString(stepDimStyle.Render("script finished"))
	}
	b.WriteString("\n")

	return b.String()
}
