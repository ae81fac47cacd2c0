package format

import (
	"encoding/json"
	"io"
	"time"

	"github.com/mithrel/marketmind/pkg/api"
)

// Generation is the machine-readable shape of one finished request.
type Generation struct {
	Module     api.ModuleID `json:"module"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	HTML       string       `json:"html"`
	Failed     bool         `json:"failed"`
	Error      string       `json:"error,omitempty"`
	Base       string       `json:"base"`
	ReceivedAt *time.Time   `json:"received_at,omitempty"`
	ExportPath string       `json:"export_path,omitempty"`
}

// HistoryDoc wraps a module's history for JSON output.
type HistoryDoc struct {
	Module  api.ModuleID       `json:"module"`
	Entries []api.HistoryEntry `json:"entries"`
}

func WriteJSONGeneration(w io.Writer, g Generation, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(g)
}

func WriteJSONHistory(w io.Writer, module api.ModuleID, entries []api.HistoryEntry, indent bool) error {
	if entries == nil {
		entries = []api.HistoryEntry{}
	}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(HistoryDoc{Module: module, Entries: entries})
}
