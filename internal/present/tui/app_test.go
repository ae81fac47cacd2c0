package tui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/marketmind/internal/history"
	"github.com/mithrel/marketmind/internal/kv"
	"github.com/mithrel/marketmind/internal/output"
	"github.com/mithrel/marketmind/internal/pipeline"
	"github.com/mithrel/marketmind/internal/session"
	"github.com/mithrel/marketmind/pkg/api"
)

type nopClipboard struct{}

func (nopClipboard) WriteText(string) error { return nil }

func newTestModel(t *testing.T, base string) (model, Deps) {
	t.Helper()
	store := kv.NewMem()
	t.Cleanup(func() { store.Close() })
	r := output.NewRenderer(output.NewRegistry(), output.WithClipboard(nopClipboard{}))
	h := history.New(store)
	deps := Deps{
		Pipeline: pipeline.New(r, h, pipeline.WithBaseURL(base)),
		Renderer: r,
		History:  h,
		Session:  session.New(store),
		Style:    "notty",
		Initial:  api.ModuleSales,
	}
	m := newModel(context.Background(), deps)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(model), deps
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// run executes cmd and feeds its message back, one level deep.
func run(m model, cmd tea.Cmd) model {
	if cmd == nil {
		return m
	}
	msg := cmd()
	if msg == nil {
		return m
	}
	if _, ok := msg.(tea.BatchMsg); ok {
		return m
	}
	next, _ := m.Update(msg)
	return next.(model)
}

func TestLoginGate(t *testing.T) {
	m, _ := newTestModel(t, "http://127.0.0.1:1")
	m = run(m, loadUserCmd(m.ctx, m.deps.Session))
	require.NotNil(t, m.login)
	assert.Contains(t, m.View(), "Sign in to MarketMind")

	next, _ := m.Update(key(tea.KeyEnter))
	m = next.(model)
	assert.Equal(t, "Please enter a name", m.login.err)

	next, _ = m.Update(runes("alice"))
	m = next.(model)
	next, cmd := m.Update(key(tea.KeyEnter))
	m = run(next.(model), cmd)

	assert.Nil(t, m.login)
	assert.True(t, m.loggedIn)
	assert.Contains(t, m.headerView(), "Alice")
	assert.Contains(t, m.headerView(), "A")
}

func TestInitialModuleAndSwitching(t *testing.T) {
	m, _ := newTestModel(t, "http://127.0.0.1:1")
	assert.Equal(t, api.ModuleSales, m.module().ID)

	next, _ := m.Update(key(tea.KeyCtrlN))
	m = next.(model)
	assert.Equal(t, api.ModuleLead, m.module().ID)

	next, _ = m.Update(key(tea.KeyCtrlN))
	m = next.(model)
	assert.Equal(t, api.ModuleMarketing, m.module().ID)

	next, _ = m.Update(key(tea.KeyCtrlP))
	m = next.(model)
	assert.Equal(t, api.ModuleLead, m.module().ID)
	assert.Contains(t, m.View(), "Lead Qualification")
}

func TestFormTypingCounterAndReset(t *testing.T) {
	m, _ := newTestModel(t, "http://127.0.0.1:1")
	m.loggedIn = true
	m.switchModule(0)
	require.Equal(t, api.ModuleMarketing, m.module().ID)

	next, _ := m.Update(runes("Widget"))
	m = next.(model)
	next, _ = m.Update(key(tea.KeyTab))
	m = next.(model)
	next, _ = m.Update(runes("short"))
	m = next.(model)

	vals := m.forms[m.active].Values()
	assert.Equal(t, "Widget", vals["product"])
	assert.Equal(t, "short", vals["description"])
	assert.Contains(t, m.View(), "5 characters")
	assert.Contains(t, m.forms[m.active].inputs[1].View(), "Very short - may reduce AI quality")

	next, _ = m.Update(key(tea.KeyCtrlR))
	m = next.(model)
	assert.Equal(t, "", m.forms[m.active].Values()["product"])
	assert.Equal(t, "Form cleared", m.status)
}

func TestSubmitRendersResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sales", r.URL.Path)
		_, _ = io.WriteString(w, `{"result":"## Pitch\n- Save time"}`)
	}))
	defer srv.Close()

	m, deps := newTestModel(t, srv.URL)
	m.loggedIn = true
	next, cmd := m.Update(key(tea.KeyCtrlS))
	m = run(next.(model), cmd)
	deps.Pipeline.Wait()

	v := deps.Renderer.Registry().Get("sales-output").Snapshot()
	assert.Equal(t, api.StateDone, v.State)
	assert.False(t, m.buttons[m.active].Disabled())

	out := pipeline.Outcome{Content: v.Source}
	next, _ = m.Update(pipelineMsg{ev: pipeline.Event{Kind: pipeline.EventDone, ContainerID: "sales-output", Outcome: &out}})
	m = next.(model)
	assert.Equal(t, "Generated Sales Pitch Generator", m.status)
	assert.Contains(t, m.vp.View(), "Save time")
	assert.Contains(t, m.actionsView(), "Copy")
}

func TestCopyBeforeGenerateReportsNothing(t *testing.T) {
	m, _ := newTestModel(t, "http://127.0.0.1:1")
	m.loggedIn = true
	next, cmd := m.Update(key(tea.KeyCtrlY))
	m = run(next.(model), cmd)
	assert.True(t, strings.HasPrefix(m.status, "Copy failed"))
}

func TestHistoryModal(t *testing.T) {
	m, deps := newTestModel(t, "http://127.0.0.1:1")
	m.loggedIn = true
	require.NoError(t, deps.History.Append(context.Background(), "sales-output", "**old** pitch"))

	next, cmd := m.Update(key(tea.KeyCtrlO))
	m = run(next.(model), cmd)
	require.NotNil(t, m.history)
	assert.Contains(t, m.View(), "History • Sales Pitch Generator")

	next, _ = m.Update(key(tea.KeyEnter))
	m = next.(model)
	assert.Equal(t, 0, m.history.open)

	next, _ = m.Update(key(tea.KeyEsc))
	m = next.(model)
	require.NotNil(t, m.history)
	next, _ = m.Update(key(tea.KeyEsc))
	m = next.(model)
	assert.Nil(t, m.history)
}

func TestProgressShownWhileLoading(t *testing.T) {
	m, deps := newTestModel(t, "http://127.0.0.1:1")
	c := deps.Renderer.Registry().Get("sales-output")
	c.BeginLoading(pipeline.Steps[0])
	m.refreshOutput()
	assert.Contains(t, m.vp.View(), "Step 1/3")
}
