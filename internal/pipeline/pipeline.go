package pipeline

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mithrel/marketmind/internal/output"
	"github.com/mithrel/marketmind/pkg/api"
)

// Progress texts shown while a request is in flight.
var Steps = []string{
	"Step 1/3: Analyzing inputs...",
	"Step 2/3: Generating insights...",
	"Step 3/3: Formatting results...",
}

const (
	DefaultStageInterval = time.Second
	DefaultTimeout       = 90 * time.Second
)

// Recorder stores produced content per key.
type Recorder interface {
	Append(ctx context.Context, key, content string) error
}

// Outcome describes one finished request.
type Outcome struct {
	Base    string
	Content string
	Err     error
	Stale   bool
	Result  *api.GenerationResult
}

// Failed reports whether Content is the troubleshooting text.
func (o Outcome) Failed() bool { return o.Err != nil }

type EventKind string

const (
	EventLoading  EventKind = "loading"
	EventProgress EventKind = "progress"
	EventDone     EventKind = "done"
)

type Event struct {
	Kind        EventKind
	ModuleID    api.ModuleID
	ContainerID string
	Text        string
	Outcome     *Outcome
}

// Pipeline runs generation requests against the backend and routes every
// outcome into an output container and the history log.
type Pipeline struct {
	renderer      *output.Renderer
	history       Recorder
	httpClient    *http.Client
	tokens        TokenSource
	pageOrigin    string
	baseURL       string
	timeout       time.Duration
	stageInterval time.Duration
	discardStale  bool
	now           func() time.Time

	mu        sync.Mutex
	observers []func(Event)
	wg        sync.WaitGroup
}

type Option func(*Pipeline)

func WithHTTPClient(c *http.Client) Option { return func(p *Pipeline) { p.httpClient = c } }
func WithTokenSource(ts TokenSource) Option { return func(p *Pipeline) { p.tokens = ts } }
func WithPageOrigin(origin string) Option  { return func(p *Pipeline) { p.pageOrigin = origin } }

// WithBaseURL bypasses origin resolution.
func WithBaseURL(base string) Option {
	return func(p *Pipeline) { p.baseURL = strings.TrimRight(strings.TrimSpace(base), "/") }
}

// WithTimeout bounds each backend call; zero disables the bound.
func WithTimeout(d time.Duration) Option { return func(p *Pipeline) { p.timeout = d } }

func WithStageInterval(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.stageInterval = d
		}
	}
}

// WithDiscardStale controls whether a response superseded by a newer
// request for the same container is dropped.
func WithDiscardStale(discard bool) Option { return func(p *Pipeline) { p.discardStale = discard } }

func WithObserver(fn func(Event)) Option {
	return func(p *Pipeline) { p.observers = append(p.observers, fn) }
}

func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

func New(renderer *output.Renderer, history Recorder, opts ...Option) *Pipeline {
	p := &Pipeline{
		renderer:      renderer,
		history:       history,
		httpClient:    &http.Client{},
		timeout:       DefaultTimeout,
		stageInterval: DefaultStageInterval,
		discardStale:  true,
		now:           time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Observe adds an observer after construction.
func (p *Pipeline) Observe(fn func(Event)) {
	p.mu.Lock()
	p.observers = append(p.observers, fn)
	p.mu.Unlock()
}

// Base is the backend address requests go to.
func (p *Pipeline) Base() string {
	if p.baseURL != "" {
		return p.baseURL
	}
	return ResolveBase(p.pageOrigin)
}

// Execute starts a request in the background and returns immediately.
func (p *Pipeline) Execute(ctx context.Context, moduleID api.ModuleID, endpointPath string, payload map[string]string, containerID string, trigger Trigger) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.Run(ctx, moduleID, endpointPath, payload, containerID, trigger)
	}()
}

// Submit executes req against its module's endpoint and container.
func (p *Pipeline) Submit(ctx context.Context, req api.GenerationRequest, trigger Trigger) error {
	m, err := api.LookupModule(string(req.ModuleID))
	if err != nil {
		return err
	}
	p.Execute(ctx, m.ID, m.Endpoint, req.Payload, m.ContainerID, trigger)
	return nil
}

// Wait blocks until every Execute started so far has finished.
func (p *Pipeline) Wait() { p.wg.Wait() }

// Run performs one request synchronously. Backend failures never escape:
// they become the troubleshooting content and are reported in Outcome.Err.
func (p *Pipeline) Run(ctx context.Context, moduleID api.ModuleID, endpointPath string, payload map[string]string, containerID string, trigger Trigger) Outcome {
	if trigger == nil {
		trigger = nopTrigger{}
	}
	c := p.renderer.Registry().Get(containerID)

	trigger.SetDisabled(true)
	token := c.BeginLoading(Steps[0])
	p.emit(Event{Kind: EventLoading, ModuleID: moduleID, ContainerID: containerID, Text: Steps[0]})
	stop := p.startProgress(c, token, moduleID)

	var out Outcome
	defer func() {
		stop()
		c.Finish(token)
		trigger.SetDisabled(false)
		p.emit(Event{Kind: EventDone, ModuleID: moduleID, ContainerID: containerID, Outcome: &out})
	}()

	base := p.Base()
	out.Base = base
	url := base + endpointPath
	text, err := p.call(ctx, url, payload)
	if err != nil {
		logf("pipeline: request failed module=%s url=%s err=%v", moduleID, url, err)
		out.Err = err
		out.Content = FailureMessage(base)
	} else {
		out.Content = text
		out.Result = &api.GenerationResult{ModuleID: moduleID, RawText: text, ReceivedAt: p.now()}
	}

	if p.discardStale && !c.IsCurrent(token) {
		logf("pipeline: discarding superseded response container=%s", containerID)
		out.Stale = true
		return out
	}

	p.renderer.Render(containerID, api.TitleFor(containerID), out.Content)
	if p.history != nil {
		if err := p.history.Append(ctx, containerID, out.Content); err != nil {
			logf("pipeline: history append failed container=%s err=%v", containerID, err)
		}
	}
	return out
}

// startProgress schedules the later step texts. The returned func cancels
// the ones that have not fired.
func (p *Pipeline) startProgress(c *output.Container, token uint64, moduleID api.ModuleID) func() {
	timers := make([]*time.Timer, 0, len(Steps)-1)
	for i := 1; i < len(Steps); i++ {
		text := Steps[i]
		timers = append(timers, time.AfterFunc(time.Duration(i)*p.stageInterval, func() {
			if c.SetProgress(token, text) {
				p.emit(Event{Kind: EventProgress, ModuleID: moduleID, ContainerID: c.ID(), Text: text})
			}
		}))
	}
	return func() {
		for _, t := range timers {
			t.Stop()
		}
	}
}

func (p *Pipeline) emit(ev Event) {
	p.mu.Lock()
	obs := slices.Clone(p.observers)
	p.mu.Unlock()
	for _, fn := range obs {
		fn(ev)
	}
}
