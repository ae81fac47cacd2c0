package output

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mithrel/marketmind/internal/markdown"
)

// ExportTimestampLayout formats the "Generated:" line of an export.
const ExportTimestampLayout = "1/2/2006, 3:04:05 PM"

var whitespaceRun = regexp.MustCompile(`\s+`)

// Renderer turns generated text into container content and wires the
// Copy and Export controls.
type Renderer struct {
	registry   *Registry
	clipboard  Clipboard
	downloader Downloader
	feedback   time.Duration
	now        func() time.Time
	onSaved    func(path string)
}

type Option func(*Renderer)

func WithClipboard(c Clipboard) Option   { return func(r *Renderer) { r.clipboard = c } }
func WithDownloader(d Downloader) Option { return func(r *Renderer) { r.downloader = d } }
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// WithFeedback sets how long a success label stays up.
func WithFeedback(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.feedback = d
		}
	}
}

// WithSaveHook is called with the path of every successful export.
func WithSaveHook(fn func(path string)) Option { return func(r *Renderer) { r.onSaved = fn } }

func NewRenderer(reg *Registry, opts ...Option) *Renderer {
	r := &Renderer{
		registry:  reg,
		clipboard: SystemClipboard{},
		feedback:  DefaultFeedbackFor,
		now:       time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	if r.downloader == nil {
		r.downloader = NewFileDownloader(".")
	}
	return r
}

func (r *Renderer) Registry() *Registry { return r.registry }

// Render replaces the container's content with the converted text and
// attaches fresh controls bound to moduleTitle.
func (r *Renderer) Render(containerID, moduleTitle, content string) {
	c := r.registry.Get(containerID)
	if old := c.Actions(); old != nil {
		old.Copy.Stop()
		old.Export.Stop()
	}
	notify := c.changed
	bar := &ActionBar{}
	bar.Copy = newControl("copy", CopyLabel, CopiedLabel, r.feedback, func(ctx context.Context) error {
		return r.clipboard.WriteText(VisibleText(c.DocumentHTML()))
	}, notify)
	bar.Export = newControl("export", ExportLabel, ExportedLabel, r.feedback, func(ctx context.Context) error {
		path, err := r.ExportText(ctx, moduleTitle, VisibleText(c.DocumentHTML()))
		if err != nil {
			return err
		}
		logf("output: exported container=%s path=%s", containerID, path)
		return nil
	}, notify)
	c.show(markdown.Render(content), content, bar)
}

// ExportText saves text as an export document for title and returns the
// path written.
func (r *Renderer) ExportText(ctx context.Context, title, text string) (string, error) {
	now := r.now()
	doc := ExportDocument(title, text, now)
	path, err := r.downloader.Save(ctx, ExportFilename(title, now), []byte(doc))
	if err != nil {
		return "", err
	}
	if r.onSaved != nil {
		r.onSaved(path)
	}
	return path, nil
}

// ExportMarkdown exports generated Markdown the way a rendered container
// would: converted first, then reduced to its visible text.
func (r *Renderer) ExportMarkdown(ctx context.Context, title, content string) (string, error) {
	return r.ExportText(ctx, title, VisibleText(markdown.Render(content)))
}

// ExportDocument lays out an export file.
func ExportDocument(title, text string, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "MarketMind - %s\n", title)
	fmt.Fprintf(&b, "Generated: %s\n\n", at.Local().Format(ExportTimestampLayout))
	b.WriteString(text)
	b.WriteString("\n\n---\nPowered by MarketMind AI")
	return b.String()
}

// ExportFilename is MarketMind_<title>_<unix ms>.txt with whitespace runs
// in the title replaced by underscores.
func ExportFilename(title string, at time.Time) string {
	return fmt.Sprintf("MarketMind_%s_%d.txt", whitespaceRun.ReplaceAllString(title, "_"), at.UnixMilli())
}
