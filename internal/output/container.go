package output

import (
	"html"
	"sync"

	"github.com/mithrel/marketmind/pkg/api"
)

// Container is one output area. All mutation goes through its methods so a
// container only ever changes under its own lock.
type Container struct {
	id       string
	registry *Registry

	mu          sync.Mutex
	placeholder bool
	state       api.LoadingState
	html        string
	source      string
	progress    string
	actions     *ActionBar
	token       uint64
}

// View is an immutable snapshot of a container.
type View struct {
	ID           string
	Placeholder  bool
	State        api.LoadingState
	HTML         string
	Source       string
	ProgressText string
	CopyLabel    string
	ExportLabel  string
	HasActions   bool
	Token        uint64
}

func (c *Container) ID() string { return c.id }

// Snapshot returns the current view.
func (c *Container) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		ID:           c.id,
		Placeholder:  c.placeholder,
		State:        c.state,
		HTML:         c.html,
		Source:       c.source,
		ProgressText: c.progress,
		Token:        c.token,
	}
	if c.actions != nil {
		v.HasActions = true
		v.CopyLabel = c.actions.Copy.Label()
		v.ExportLabel = c.actions.Export.Label()
	}
	return v
}

// Actions returns the attached controls, nil before the first render.
func (c *Container) Actions() *ActionBar {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.actions
}

// DocumentHTML is the container's full markup: content plus the action bar.
func (c *Container) DocumentHTML() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.html
	if c.actions != nil {
		out += `<div class="action-button-bar">` +
			`<button class="action-btn copy-btn">` + html.EscapeString(c.actions.Copy.Label()) + `</button>` +
			`<button class="action-btn pdf-btn">` + html.EscapeString(c.actions.Export.Label()) + `</button>` +
			`</div>`
	}
	return out
}

// BeginLoading enters Loading for a new request and returns its token.
// Content and controls are replaced by the loading markup.
func (c *Container) BeginLoading(stepText string) uint64 {
	c.mu.Lock()
	c.token++
	tok := c.token
	c.state = api.StateLoading
	c.progress = stepText
	c.html = loadingMarkup(stepText)
	c.actions = nil
	c.mu.Unlock()
	c.changed()
	return tok
}

// SetProgress updates the step text only while the request owning token is
// still loading. It reports whether the update applied.
func (c *Container) SetProgress(token uint64, stepText string) bool {
	c.mu.Lock()
	if c.state != api.StateLoading || c.token != token {
		c.mu.Unlock()
		return false
	}
	c.progress = stepText
	c.html = loadingMarkup(stepText)
	c.mu.Unlock()
	c.changed()
	return true
}

// IsCurrent reports whether token belongs to the latest request.
func (c *Container) IsCurrent(token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token == token
}

// Finish leaves Loading. A superseded request does not change the state.
func (c *Container) Finish(token uint64) {
	c.mu.Lock()
	if c.token != token {
		c.mu.Unlock()
		return
	}
	c.state = api.StateDone
	c.progress = ""
	c.mu.Unlock()
	c.changed()
}

func (c *Container) show(htmlContent, source string, actions *ActionBar) {
	c.mu.Lock()
	c.placeholder = false
	c.html = htmlContent
	c.source = source
	c.actions = actions
	c.mu.Unlock()
	c.changed()
}

func (c *Container) changed() {
	if c.registry != nil {
		c.registry.notify(c.id)
	}
}

func loadingMarkup(stepText string) string {
	return `<div class="loading-overlay"><div class="loader"></div><p id="loading-step-text">` +
		html.EscapeString(stepText) + `</p></div>`
}
