package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mithrel/marketmind/pkg/api"
)

// TSV columns: index, timestamp, preview
var headerLine = "#\ttimestamp\tpreview\n"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

// WritePlainHistory lists entries newest first, numbered from 1.
func WritePlainHistory(w io.Writer, entries []api.HistoryEntry, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, headerLine)
	}
	for i, e := range entries {
		line := fmt.Sprintf("%d\t%s\t%s\n", i+1, esc(e.Timestamp), esc(e.Preview))
		_, _ = io.WriteString(tw, line)
	}
	return tw.Flush()
}

// WriteText writes text followed by exactly one newline.
func WriteText(w io.Writer, text string) error {
	_, err := io.WriteString(w, strings.TrimRight(text, "\n")+"\n")
	return err
}
