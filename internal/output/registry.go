package output

import (
	"slices"
	"sort"
	"sync"
)

// Registry owns the containers of one client. Containers are created on
// first use in the placeholder state.
type Registry struct {
	mu         sync.Mutex
	containers map[string]*Container
	listeners  []func(id string)
}

func NewRegistry() *Registry {
	return &Registry{containers: make(map[string]*Container)}
}

// Get returns the container for id, creating it when needed.
func (r *Registry) Get(id string) *Container {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.containers[id]
	if !ok {
		c = &Container{id: id, registry: r, placeholder: true}
		r.containers[id] = c
	}
	return c
}

// IDs lists known containers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.containers))
	for id := range r.containers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Subscribe registers fn to be called after any container changes.
func (r *Registry) Subscribe(fn func(id string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *Registry) notify(id string) {
	r.mu.Lock()
	ls := slices.Clone(r.listeners)
	r.mu.Unlock()
	for _, fn := range ls {
		fn(id)
	}
}
