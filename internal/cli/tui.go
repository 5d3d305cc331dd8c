package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/journeykit/journeymap/pkg/reorder"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	dirtyStyle        = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
)

// =============================================================================
// reorderModel - Interactive sibling reordering
// =============================================================================

// commitDoneMsg carries the result of an asynchronous commit.
type commitDoneMsg struct{ err error }

// reorderModel is the bubbletea model for the reorder dialog. It wraps a
// reorder.Session: cursor movement is local UI state, while every order
// mutation goes through the session so dirty tracking and commit semantics
// stay in one place.
type reorderModel struct {
	ctx     context.Context
	title   string
	session *reorder.Session
	names   map[string]string

	cursor    int
	committed bool
	commitErr error
}

// newReorderModel creates the dialog model for one journey's siblings.
func newReorderModel(ctx context.Context, title string, session *reorder.Session, names map[string]string) reorderModel {
	return reorderModel{
		ctx:     ctx,
		title:   title,
		session: session,
		names:   names,
	}
}

func (m reorderModel) Init() tea.Cmd {
	return nil
}

func (m reorderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case commitDoneMsg:
		m.commitErr = msg.err
		m.committed = msg.err == nil
		return m, tea.Quit

	case tea.KeyMsg:
		if m.session.Committing() {
			// A commit is in flight; ignore everything until it lands.
			return m, nil
		}
		order := m.session.Order()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.session.Cancel()
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(order)-1 {
				m.cursor++
			}
		case "K", "shift+up":
			if m.cursor > 0 {
				m.session.Move(order[m.cursor], order[m.cursor-1])
				m.cursor--
			}
		case "J", "shift+down":
			if m.cursor < len(order)-1 {
				m.session.Move(order[m.cursor], order[m.cursor+1])
				m.cursor++
			}
		case "enter":
			if !m.session.Dirty() {
				m.session.Cancel()
				return m, tea.Quit
			}
			session := m.session
			ctx := m.ctx
			return m, func() tea.Msg {
				return commitDoneMsg{err: session.Commit(ctx)}
			}
		}
	}
	return m, nil
}

func (m reorderModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Reorder Subjourneys"))
	b.WriteString(listDimStyle.Render("  " + m.title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  K/J move  ⏎ save  esc cancel"))
	b.WriteString("\n\n")

	for i, id := range m.session.Order() {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		name := m.names[id]
		if name == "" {
			name = id
		}
		line := fmt.Sprintf("%s%d. %s", cursor, i+1, name)
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.session.Committing():
		b.WriteString(listDimStyle.Render("  saving..."))
	case m.session.Dirty():
		b.WriteString(dirtyStyle.Render("  ● unsaved changes"))
	default:
		b.WriteString(listDimStyle.Render("  no changes"))
	}

	return b.String()
}
