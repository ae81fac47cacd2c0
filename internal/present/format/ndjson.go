package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/marketmind/pkg/api"
)

// WriteNDJSONHistory writes entries as newline-delimited JSON objects.
func WriteNDJSONHistory(w io.Writer, entries []api.HistoryEntry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
