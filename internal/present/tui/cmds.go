package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/marketmind/internal/history"
	"github.com/mithrel/marketmind/internal/output"
	"github.com/mithrel/marketmind/internal/pipeline"
	"github.com/mithrel/marketmind/internal/session"
	"github.com/mithrel/marketmind/pkg/api"
)

func loadUserCmd(ctx context.Context, s *session.Manager) tea.Cmd {
	return func() tea.Msg {
		u, err := s.Current(ctx)
		return userMsg{user: u, err: err}
	}
}

func loginCmd(ctx context.Context, s *session.Manager, name string) tea.Cmd {
	return func() tea.Msg {
		u, err := s.Login(ctx, name)
		return userMsg{user: u, err: err}
	}
}

// submitCmd hands the request to the pipeline; progress and the result
// arrive later as pipelineMsg.
func submitCmd(ctx context.Context, p *pipeline.Pipeline, req api.GenerationRequest, btn *pipeline.Button) tea.Cmd {
	return func() tea.Msg {
		if err := p.Submit(ctx, req, btn); err != nil {
			return actionMsg{what: "Generate", err: err}
		}
		return nil
	}
}

// controlCmd activates the Copy or Export control of c.
func controlCmd(ctx context.Context, c *output.Container, which string) tea.Cmd {
	return func() tea.Msg {
		bar := c.Actions()
		if bar == nil {
			return actionMsg{what: which, err: errNothingYet}
		}
		ctl := bar.Copy
		if which == "Export" {
			ctl = bar.Export
		}
		if err := ctl.Activate(ctx); err != nil {
			return actionMsg{what: which, err: err}
		}
		return actionMsg{what: which}
	}
}

func loadHistoryCmd(ctx context.Context, h *history.Store, m api.Module) tea.Cmd {
	return func() tea.Msg {
		entries, err := h.List(ctx, m.ContainerID)
		return historyMsg{module: m, entries: entries, err: err}
	}
}

func exportHistoryCmd(ctx context.Context, r *output.Renderer, title, content string) tea.Cmd {
	return func() tea.Msg {
		path, err := r.ExportMarkdown(ctx, title, content)
		return actionMsg{what: "Export", path: path, err: err}
	}
}
