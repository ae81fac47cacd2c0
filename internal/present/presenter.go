package present

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mithrel/marketmind/internal/present/format"
	"github.com/mithrel/marketmind/internal/present/tui"
	"github.com/mithrel/marketmind/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModeText
	ModeHTML
	ModePretty
	ModeJSON
	ModeNDJSON
	ModeTUI
)

var modeNames = map[string]Mode{
	"plain":  ModePlain,
	"text":   ModeText,
	"html":   ModeHTML,
	"pretty": ModePretty,
	"json":   ModeJSON,
	"ndjson": ModeNDJSON,
	"tui":    ModeTUI,
}

// ParseMode parses a string like "plain", "text", "html", "pretty", "json",
// "ndjson" or "tui".
func ParseMode(s string) (Mode, bool) {
	m, ok := modeNames[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	Style      string
	Exporter   tui.Exporter
}

// Generation is what a finished request shows.
type Generation struct {
	Module     api.Module
	Content    string
	HTML       string
	Text       string
	Err        error
	Base       string
	Result     *api.GenerationResult
	ExportPath string
}

// RenderGeneration writes one result according to options. ModePlain is
// treated as ModeText.
func RenderGeneration(w io.Writer, g Generation, opts Options) error {
	switch opts.Mode {
	case ModeJSON, ModeNDJSON:
		doc := format.Generation{
			Module:     g.Module.ID,
			Title:      g.Module.ExportTitle,
			Content:    g.Content,
			HTML:       g.HTML,
			Failed:     g.Err != nil,
			Base:       g.Base,
			ExportPath: g.ExportPath,
		}
		if g.Err != nil {
			doc.Error = g.Err.Error()
		}
		if g.Result != nil {
			at := g.Result.ReceivedAt
			doc.ReceivedAt = &at
		}
		return format.WriteJSONGeneration(w, doc, opts.JSONIndent && opts.Mode == ModeJSON)
	case ModeHTML:
		return format.WriteHTML(w, g.Module.ContainerID, g.HTML)
	case ModePretty:
		return format.WritePrettyGeneration(w, g.Module.Name, g.Content, opts.Style)
	case ModeText, ModePlain:
		return format.WriteText(w, g.Text)
	default:
		return fmt.Errorf("output mode not supported for generate")
	}
}

// RenderHistory renders a module's history according to options.
func RenderHistory(ctx context.Context, w io.Writer, m api.Module, entries []api.HistoryEntry, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONHistory(w, m.ID, entries, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONHistory(w, entries)
	case ModePlain, ModeText:
		return format.WritePlainHistory(w, entries, opts.Headers)
	case ModePretty:
		for i, e := range entries {
			title := fmt.Sprintf("%s #%d (%s)", m.Name, i+1, e.Timestamp)
			if err := format.WritePrettyGeneration(w, title, e.Content, opts.Style); err != nil {
				return err
			}
		}
		return nil
	case ModeTUI:
		return tui.BrowseHistory(ctx, m, entries, opts.Style, opts.Exporter)
	default:
		return format.WritePlainHistory(w, entries, opts.Headers)
	}
}
