package output

import (
	"context"
	"sync"
	"time"
)

const (
	CopyLabel          = "Copy"
	CopiedLabel        = "Copied!"
	ExportLabel        = "PDF"
	ExportedLabel      = "Done!"
	DefaultFeedbackFor = 2 * time.Second
)

// ActionBar holds the controls attached to a rendered container.
type ActionBar struct {
	Copy   *Control
	Export *Control
}

// Control is a button with transient success feedback. A successful
// activation shows the success label for the feedback duration; each
// activation bumps a generation so an older timer never reverts a newer one.
type Control struct {
	name     string
	idle     string
	success  string
	feedback time.Duration
	action   func(ctx context.Context) error
	onChange func()

	mu    sync.Mutex
	label string
	gen   uint64
	timer *time.Timer
}

func newControl(name, idle, success string, feedback time.Duration, action func(context.Context) error, onChange func()) *Control {
	return &Control{
		name:     name,
		idle:     idle,
		success:  success,
		feedback: feedback,
		action:   action,
		onChange: onChange,
		label:    idle,
	}
}

func (c *Control) Name() string { return c.name }

func (c *Control) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label
}

// Activate runs the control's action. Failures are logged and returned for
// display; the label stays unchanged.
func (c *Control) Activate(ctx context.Context) error {
	if err := c.action(ctx); err != nil {
		logf("output: %s failed err=%v", c.name, err)
		return err
	}
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.label = c.success
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.feedback, func() { c.revert(gen) })
	c.mu.Unlock()
	c.changed()
	return nil
}

func (c *Control) revert(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.label = c.idle
	c.timer = nil
	c.mu.Unlock()
	c.changed()
}

// Stop cancels a pending revert and restores the idle label.
func (c *Control) Stop() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.label = c.idle
	c.mu.Unlock()
}

func (c *Control) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
