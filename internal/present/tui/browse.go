package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/marketmind/pkg/api"
)

// Exporter saves generated Markdown under title and returns the path.
type Exporter func(ctx context.Context, title, content string) (string, error)

// BrowseHistory opens a standalone history browser for one module.
func BrowseHistory(ctx context.Context, m api.Module, entries []api.HistoryEntry, style string, export Exporter) error {
	b := browser{ctx: ctx, export: export, modal: newHistoryModal(m, entries, style, 0, 0)}
	_, err := tea.NewProgram(b, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

type browser struct {
	ctx    context.Context
	modal  *historyModal
	export Exporter
	status string
	width  int
	height int
}

func (b browser) Init() tea.Cmd { return nil }

func (b browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.modal.resizeForTerm(msg.Width, msg.Height)
		return b, nil
	case actionMsg:
		if msg.err != nil {
			b.status = "Export failed: " + msg.err.Error()
		} else {
			b.status = "Saved " + msg.path
		}
		return b, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return b, tea.Quit
		}
		if msg.String() == "e" && b.export != nil {
			if e, ok := b.modal.Selected(); ok {
				title, content := b.modal.module.ExportTitle, e.Content
				return b, func() tea.Msg {
					path, err := b.export(b.ctx, title, content)
					return actionMsg{what: "Export", path: path, err: err}
				}
			}
			return b, nil
		}
	}
	closeModal, cmd := b.modal.update(msg)
	if closeModal {
		return b, tea.Quit
	}
	return b, cmd
}

func (b browser) View() string {
	v := b.modal.View()
	if b.status != "" {
		v += "\n" + hintStyle.Render(b.status)
	}
	return v
}
