package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"

	"github.com/mithrel/marketmind/internal/present/format"
	"github.com/mithrel/marketmind/pkg/api"
)

// historyModal lists a module's recent outputs; enter opens one.
type historyModal struct {
	module  api.Module
	entries []api.HistoryEntry
	table   table.Model
	box     lipglossv2.Style
	innerW  int
	innerH  int

	// entry view
	open  int
	vp    viewport.Model
	style string
}

func newHistoryModal(m api.Module, entries []api.HistoryEntry, style string, termW, termH int) *historyModal {
	h := &historyModal{module: m, entries: entries, open: -1, style: style}
	h.table = table.New(table.WithFocused(true))
	h.applyStyles()
	h.resizeForTerm(termW, termH)
	return h
}

func (h *historyModal) resizeForTerm(termW, termH int) {
	h.box, h.innerW, h.innerH = modalBox(termW, termH, 0.7, 0.7, 2, 1)
	tsW := 19
	prevW := max(10, h.innerW-tsW-4-6)
	h.table.SetColumns([]table.Column{
		{Title: "#", Width: 2},
		{Title: "When", Width: tsW},
		{Title: "Preview", Width: prevW},
	})
	h.table.SetWidth(h.innerW)
	h.table.SetHeight(max(3, h.innerH-3))
	rows := make([]table.Row, 0, len(h.entries))
	for i, e := range h.entries {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			e.Time().Local().Format("2006-01-02 15:04:05"),
			strings.ReplaceAll(e.Preview, "\n", " "),
		})
	}
	h.table.SetRows(rows)
	if h.vp.Width == 0 {
		h.vp = viewport.New(h.innerW, max(3, h.innerH-2))
	} else {
		h.vp.Width = h.innerW
		h.vp.Height = max(3, h.innerH-2)
	}
	if h.open >= 0 {
		h.setEntry(h.open)
	}
}

func (h *historyModal) applyStyles() {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	h.table.SetStyles(s)
}

func (h *historyModal) setEntry(i int) {
	if i < 0 || i >= len(h.entries) {
		return
	}
	h.open = i
	out, err := format.RenderPretty(h.entries[i].Content, h.style, h.innerW)
	if err != nil {
		out = h.entries[i].Content
	}
	h.vp.SetContent(out)
	h.vp.GotoTop()
}

// Selected is the entry under the cursor (or the opened one).
func (h *historyModal) Selected() (api.HistoryEntry, bool) {
	i := h.open
	if i < 0 {
		i = h.table.Cursor()
	}
	if i < 0 || i >= len(h.entries) {
		return api.HistoryEntry{}, false
	}
	return h.entries[i], true
}

// update returns true when the modal wants to close.
func (h *historyModal) update(msg tea.Msg) (bool, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc", "q":
			if h.open >= 0 {
				h.open = -1
				return false, nil
			}
			return true, nil
		case "enter":
			if h.open < 0 {
				h.setEntry(h.table.Cursor())
				return false, nil
			}
		}
	}
	var cmd tea.Cmd
	if h.open >= 0 {
		h.vp, cmd = h.vp.Update(msg)
	} else {
		h.table, cmd = h.table.Update(msg)
	}
	return false, cmd
}

func (h *historyModal) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("History • " + h.module.Name))
	b.WriteString("\n")
	switch {
	case len(h.entries) == 0:
		b.WriteString("\nNo history yet.\n")
	case h.open >= 0:
		b.WriteString(h.vp.View())
	default:
		b.WriteString(h.table.View())
	}
	b.WriteString("\n")
	hint := "↑/↓ navigate • enter=open • e=export • esc=close"
	if h.open >= 0 {
		hint = "↑/↓ scroll • e=export • esc=back"
	}
	b.WriteString(hintStyle.Render(hint))
	return h.box.Render(b.String())
}
