package pipeline

import "sync"

// Trigger is the control that starts a request. It is disabled for the
// duration of the request.
type Trigger interface {
	SetDisabled(disabled bool)
}

// Button is a concurrency-safe Trigger.
type Button struct {
	mu       sync.Mutex
	disabled bool
}

func (b *Button) SetDisabled(disabled bool) {
	b.mu.Lock()
	b.disabled = disabled
	b.mu.Unlock()
}

func (b *Button) Disabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled
}

type nopTrigger struct{}

func (nopTrigger) SetDisabled(bool) {}
