package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/marketmind/internal/history"
	"github.com/mithrel/marketmind/internal/output"
	"github.com/mithrel/marketmind/internal/pipeline"
	"github.com/mithrel/marketmind/internal/present/format"
	"github.com/mithrel/marketmind/internal/session"
	"github.com/mithrel/marketmind/pkg/api"
)

// Deps are the services the interactive app drives.
type Deps struct {
	Pipeline *pipeline.Pipeline
	Renderer *output.Renderer
	History  *history.Store
	Session  *session.Manager
	Style    string
	Initial  api.ModuleID
}

// Run opens the interactive client and blocks until it exits.
func Run(ctx context.Context, deps Deps) error {
	m := newModel(ctx, deps)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	deps.Pipeline.Observe(func(ev pipeline.Event) { p.Send(pipelineMsg{ev: ev}) })
	deps.Renderer.Registry().Subscribe(func(id string) { p.Send(containerMsg{id: id}) })
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type (
	pipelineMsg  struct{ ev pipeline.Event }
	containerMsg struct{ id string }
	userMsg      struct {
		user session.User
		err  error
	}
	historyMsg struct {
		module  api.Module
		entries []api.HistoryEntry
		err     error
	}
	actionMsg struct {
		what string
		path string
		err  error
	}
)

type renderKey struct {
	id     string
	source string
	width  int
}

type model struct {
	ctx  context.Context
	deps Deps

	modules []api.Module
	active  int
	forms   []*formView
	buttons []*pipeline.Button

	vp   viewport.Model
	spin spinner.Model

	user     session.User
	loggedIn bool
	status   string

	login   *loginModal
	history *historyModal

	width  int
	height int

	cacheMu *sync.Mutex
	cache   map[renderKey]string
}

func newModel(ctx context.Context, deps Deps) model {
	m := model{
		ctx:     ctx,
		deps:    deps,
		modules: api.Modules(),
		vp:      viewport.New(40, 10),
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		cacheMu: &sync.Mutex{},
		cache:   make(map[renderKey]string),
	}
	for i, mod := range m.modules {
		m.forms = append(m.forms, newFormView(mod))
		m.buttons = append(m.buttons, &pipeline.Button{})
		if mod.ID == deps.Initial {
			m.active = i
		}
	}
	m.forms[m.active].setFocus(0)
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, loadUserCmd(m.ctx, m.deps.Session), m.forms[m.active].setFocus(0))
}

func (m model) module() api.Module { return m.modules[m.active] }

func (m model) container() *output.Container {
	return m.deps.Renderer.Registry().Get(m.module().ContainerID)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.applyLayout()
		if m.login != nil {
			m.login.resizeForTerm(m.width, m.height)
		}
		if m.history != nil {
			m.history.resizeForTerm(m.width, m.height)
		}
		m.refreshOutput()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.container().Snapshot().State == api.StateLoading {
			m.refreshOutput()
		}
		return m, cmd

	case userMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, session.ErrNotLoggedIn) {
				m.status = "Session error: " + msg.err.Error()
			}
			m.loggedIn = false
			if m.login == nil {
				m.login = newLoginModal("", m.width, m.height)
			} else if !errors.Is(msg.err, session.ErrNotLoggedIn) {
				m.login.err = msg.err.Error()
			}
			return m, nil
		}
		m.user, m.loggedIn = msg.user, true
		m.login = nil
		return m, nil

	case pipelineMsg:
		if msg.ev.Kind == pipeline.EventDone && msg.ev.Outcome != nil {
			switch {
			case msg.ev.Outcome.Stale:
				m.status = "Discarded an outdated response"
			case msg.ev.Outcome.Failed():
				m.status = "Backend unreachable at " + msg.ev.Outcome.Base
			default:
				m.status = "Generated " + titleFor(msg.ev.ContainerID)
			}
		}
		m.refreshOutput()
		return m, nil

	case containerMsg:
		m.refreshOutput()
		return m, nil

	case historyMsg:
		if msg.err != nil {
			m.status = "History unavailable: " + msg.err.Error()
			return m, nil
		}
		m.history = newHistoryModal(msg.module, msg.entries, m.deps.Style, m.width, m.height)
		return m, nil

	case actionMsg:
		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("%s failed: %v", msg.what, msg.err)
		case msg.path != "":
			m.status = fmt.Sprintf("%s saved to %s", msg.what, msg.path)
		default:
			m.status = msg.what + " done"
		}
		m.refreshOutput()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.login != nil {
			return m.updateLogin(msg)
		}
		if m.history != nil {
			return m.updateHistory(msg)
		}
		return m.updateMain(msg)
	}

	if m.login != nil {
		return m, m.login.update(msg)
	}
	return m, m.forms[m.active].Update(msg)
}

func (m model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := m.login.Value()
		if name == "" {
			m.login.err = "Please enter a name"
			return m, nil
		}
		return m, loginCmd(m.ctx, m.deps.Session, name)
	case "esc":
		if m.loggedIn {
			m.login = nil
			return m, nil
		}
		return m, tea.Quit
	}
	return m, m.login.update(msg)
}

func (m model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "e" {
		if e, ok := m.history.Selected(); ok {
			return m, exportHistoryCmd(m.ctx, m.deps.Renderer, m.history.module.ExportTitle, e.Content)
		}
		return m, nil
	}
	closeModal, cmd := m.history.update(msg)
	if closeModal {
		m.history = nil
	}
	return m, cmd
}

func (m model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := m.forms[m.active]
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "ctrl+n", "alt+right":
		return m, m.switchModule(m.active + 1)
	case "ctrl+p", "alt+left":
		return m, m.switchModule(m.active - 1)
	case "alt+1", "alt+2", "alt+3":
		return m, m.switchModule(int(msg.String()[4] - '1'))
	case "tab":
		return m, form.Next()
	case "shift+tab":
		return m, form.Prev()
	case "ctrl+s":
		btn := m.buttons[m.active]
		if btn.Disabled() {
			m.status = "Already generating…"
			return m, nil
		}
		m.status = ""
		return m, submitCmd(m.ctx, m.deps.Pipeline, form.Request(), btn)
	case "ctrl+r":
		m.status = "Form cleared"
		return m, form.Reset()
	case "ctrl+y":
		return m, controlCmd(m.ctx, m.container(), "Copy")
	case "ctrl+e":
		return m, controlCmd(m.ctx, m.container(), "Export")
	case "ctrl+o":
		return m, loadHistoryCmd(m.ctx, m.deps.History, m.module())
	case "ctrl+l":
		m.login = newLoginModal(m.user.Name, m.width, m.height)
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	return m, form.Update(msg)
}

func (m *model) switchModule(i int) tea.Cmd {
	n := len(m.modules)
	i = ((i % n) + n) % n
	m.forms[m.active].Blur()
	m.active = i
	m.status = ""
	m.refreshOutput()
	m.vp.GotoTop()
	return m.forms[i].setFocus(m.forms[i].focus)
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	formW := max(30, m.width*2/5)
	outW := max(20, m.width-formW-4)
	for _, f := range m.forms {
		f.SetWidth(formW - 4)
	}
	m.vp.Width = outW - 4
	m.vp.Height = max(5, m.height-8)
}

// refreshOutput loads the active container into the viewport.
func (m *model) refreshOutput() {
	v := m.container().Snapshot()
	switch {
	case v.State == api.StateLoading:
		m.vp.SetContent(m.spin.View() + " " + v.ProgressText)
	case v.Placeholder:
		m.vp.SetContent(placeholderFg.Render("Fill in the form and press ctrl+s to generate."))
	default:
		m.vp.SetContent(m.renderSource(v.ID, v.Source))
	}
}

func (m *model) renderSource(id, source string) string {
	if strings.TrimSpace(source) == "" {
		return placeholderFg.Render("(empty result)")
	}
	key := renderKey{id: id, source: source, width: m.vp.Width}
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	if out, ok := m.cache[key]; ok {
		return out
	}
	out, err := format.RenderPretty(source, m.deps.Style, max(20, m.vp.Width))
	if err != nil {
		out = source
	}
	m.cache[key] = out
	return out
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading…"
	}
	base := lipgloss.JoinVertical(lipgloss.Left, m.headerView(), m.tabsView(), m.bodyView(), m.footerView())
	switch {
	case m.login != nil:
		return renderOverlay(base, m.login.View(), m.width, m.height)
	case m.history != nil:
		return renderOverlay(base, m.history.View(), m.width, m.height)
	}
	return base
}

func (m model) headerView() string {
	left := titleStyle.Render("MarketMind • " + m.module().Name)
	right := hintStyle.Render("not signed in")
	if m.loggedIn {
		right = m.user.DisplayName() + " " + avatarStyle.Render(m.user.Initial())
	}
	space := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", space) + right
}

func (m model) tabsView() string {
	tabs := make([]string, 0, len(m.modules))
	for i, mod := range m.modules {
		label := fmt.Sprintf("%d %s", i+1, mod.Name)
		if i == m.active {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m model) bodyView() string {
	formW := max(30, m.width*2/5)
	form := focusedPane.Width(formW - 2).Render(m.forms[m.active].View() + "\n\n" + m.submitView())
	out := paneStyle.Width(max(20, m.width-formW-4)).Render(m.vp.View() + "\n" + m.actionsView())
	return lipgloss.JoinHorizontal(lipgloss.Top, form, out)
}

func (m model) submitView() string {
	if m.buttons[m.active].Disabled() {
		return buttonStyle.Faint(true).Render(m.spin.View() + " Generating…")
	}
	return buttonStyle.Render("ctrl+s Generate")
}

func (m model) actionsView() string {
	v := m.container().Snapshot()
	if !v.HasActions {
		return ""
	}
	copyBtn := buttonStyle.Render("ctrl+y " + v.CopyLabel)
	if v.CopyLabel == output.CopiedLabel {
		copyBtn = buttonDone.Render("ctrl+y " + v.CopyLabel)
	}
	exportBtn := buttonStyle.Render("ctrl+e " + v.ExportLabel)
	if v.ExportLabel == output.ExportedLabel {
		exportBtn = buttonDone.Render("ctrl+e " + v.ExportLabel)
	}
	return copyBtn + " " + exportBtn
}

func (m model) footerView() string {
	left := hintStyle.Render("tab=field • ctrl+n/p=module • ctrl+s=generate • ctrl+o=history • ctrl+r=reset • ctrl+l=user • esc=quit")
	if m.status == "" {
		return left
	}
	return left + "  " + m.status
}

func titleFor(containerID string) string {
	if mod, ok := api.ModuleForContainer(containerID); ok {
		return mod.Name
	}
	return api.TitleFor(containerID)
}

var errNothingYet = errors.New("nothing generated yet")
