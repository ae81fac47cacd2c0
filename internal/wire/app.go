package wire

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mithrel/marketmind/internal/config"
	"github.com/mithrel/marketmind/internal/history"
	"github.com/mithrel/marketmind/internal/keys"
	"github.com/mithrel/marketmind/internal/kv"
	"github.com/mithrel/marketmind/internal/output"
	"github.com/mithrel/marketmind/internal/pipeline"
	"github.com/mithrel/marketmind/internal/session"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg       *viper.Viper
	Log       *log.Logger
	SessionID string
	KV        kv.Store
	History   *history.Store
	Registry  *output.Registry
	Renderer  *output.Renderer
	Pipeline  *pipeline.Pipeline
	Session   *session.Manager
	Tokens    keys.TokenStore

	closers []io.Closer
}

type buildOptions struct {
	clipboard output.Clipboard
	logOut    io.Writer
}

type Option func(*buildOptions)

// WithClipboard replaces the system clipboard.
func WithClipboard(c output.Clipboard) Option { return func(o *buildOptions) { o.clipboard = c } }

// WithLogOutput sends logs to w instead of log.file or stderr.
func WithLogOutput(w io.Writer) Option { return func(o *buildOptions) { o.logOut = w } }

// BuildApp wires dependencies with the provided config.
func BuildApp(ctx context.Context, cfg *viper.Viper, opts ...Option) (*App, error) {
	var bo buildOptions
	for _, o := range opts {
		o(&bo)
	}
	app := &App{Cfg: cfg}

	logOut, logCloser, err := openLog(cfg, bo.logOut)
	if err != nil {
		return nil, err
	}
	if logCloser != nil {
		app.closers = append(app.closers, logCloser)
	}
	// Package loggers write through the standard logger.
	log.SetOutput(logOut)
	log.SetPrefix("marketmind ")
	log.SetFlags(log.LstdFlags)
	app.Log = log.Default()

	dataDir := config.ResolveDataDir(cfg)
	app.SessionID = session.ResolveID(cfg.GetString("session.id"), dataDir)
	backend := strings.ToLower(cfg.GetString("session.store"))
	store, err := kv.Open(ctx, kv.Options{
		Backend:   backend,
		DSN:       config.ResolveSessionDSN(cfg),
		SessionID: app.SessionID,
		TTL:       cfg.GetDuration("session.ttl"),
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("open session store: %w", err)
	}
	app.KV = store
	app.closers = append(app.closers, store)

	app.History = history.New(store, history.WithLimit(cfg.GetInt("history.limit")))
	app.Session = session.New(store)

	tokens, err := keys.Open(cfg.GetString("api.token_provider"), cfg.GetString("api.token"))
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Tokens = tokens

	rOpts := []output.Option{
		output.WithFeedback(cfg.GetDuration("output.feedback_duration")),
		output.WithDownloader(output.NewFileDownloader(config.ResolveDownloadDir(cfg))),
	}
	if bo.clipboard != nil {
		rOpts = append(rOpts, output.WithClipboard(bo.clipboard))
	}
	app.Registry = output.NewRegistry()
	app.Renderer = output.NewRenderer(app.Registry, rOpts...)

	app.Pipeline = pipeline.New(app.Renderer, app.History,
		pipeline.WithPageOrigin(cfg.GetString("page.origin")),
		pipeline.WithBaseURL(cfg.GetString("api.base_url")),
		pipeline.WithTimeout(cfg.GetDuration("api.timeout")),
		pipeline.WithStageInterval(cfg.GetDuration("pipeline.stage_interval")),
		pipeline.WithDiscardStale(cfg.GetBool("pipeline.discard_stale")),
		pipeline.WithTokenSource(keys.Source{Store: tokens}),
	)

	app.Log.Printf("wire: app ready session=%s store=%s base=%s", app.SessionID, backend, app.Pipeline.Base())
	return app, nil
}

// Close waits for in-flight requests and releases the session store and log file.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.Pipeline != nil {
		a.Pipeline.Wait()
	}
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func openLog(cfg *viper.Viper, override io.Writer) (io.Writer, io.Closer, error) {
	if override != nil {
		return override, nil, nil
	}
	if path := strings.TrimSpace(cfg.GetString("log.file")); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return f, f, nil
	}
	if strings.EqualFold(cfg.GetString("log.level"), "info") {
		return os.Stderr, nil, nil
	}
	return io.Discard, nil, nil
}
