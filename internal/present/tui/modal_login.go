package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

// loginModal asks for the name recorded as the session user.
type loginModal struct {
	name  textinput.Model
	box   lipglossv2.Style
	err   string
	width int
}

func newLoginModal(current string, termW, termH int) *loginModal {
	ti := textinput.New()
	ti.Prompt = "name: "
	ti.Placeholder = "your name"
	ti.CharLimit = 64
	ti.SetValue(current)
	ti.Focus()
	m := &loginModal{name: ti}
	m.resizeForTerm(termW, termH)
	return m
}

func (m *loginModal) resizeForTerm(termW, termH int) {
	box, innerW, _ := modalBox(termW, termH, 0.4, 0.3, 2, 1)
	m.box = box.Height(0)
	m.width = innerW
	m.name.Width = max(10, innerW-len(m.name.Prompt)-1)
}

func (m *loginModal) Value() string { return strings.TrimSpace(m.name.Value()) }

func (m *loginModal) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return cmd
}

func (m *loginModal) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in to MarketMind"))
	b.WriteString("\n\n")
	b.WriteString(m.name.View())
	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(m.err))
	}
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("enter=continue • ctrl+c=quit"))
	return m.box.Render(b.String())
}
