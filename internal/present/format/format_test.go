package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/marketmind/pkg/api"
)

func sampleEntries() []api.HistoryEntry {
	return []api.HistoryEntry{
		{Content: "second\tline", Timestamp: "2026-10-16T07:31:00.000Z", Preview: "second\tline..."},
		{Content: "first", Timestamp: "2026-10-16T07:30:00.000Z", Preview: "first..."},
	}
}

func TestWritePlainHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlainHistory(&buf, sampleEntries(), true))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#"))
	assert.Contains(t, lines[1], "second\\tline...")
	assert.True(t, strings.HasPrefix(lines[2], "2"))
}

func TestWriteJSONHistoryEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONHistory(&buf, api.ModuleSales, nil, false))
	assert.JSONEq(t, `{"module":"sales","entries":[]}`, buf.String())
}

func TestWriteNDJSONHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNDJSONHistory(&buf, sampleEntries()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var e api.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &e))
	assert.Equal(t, "first", e.Content)
}

func TestWriteJSONGeneration(t *testing.T) {
	var buf bytes.Buffer
	g := Generation{Module: api.ModuleLead, Title: "Lead_Scoring", Content: "x", HTML: "x", Base: "http://127.0.0.1:5001"}
	require.NoError(t, WriteJSONGeneration(&buf, g, true))
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "lead", got["module"])
	assert.Equal(t, false, got["failed"])
	assert.NotContains(t, got, "error")
}

func TestWritePrettyGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePrettyGeneration(&buf, "Sales_Pitch", "**Hook**: buy", "notty"))
	assert.Contains(t, buf.String(), "Sales_Pitch")
	assert.Contains(t, buf.String(), "Hook")
}

func TestWriteHTMLAndText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "mkt-output", "<strong>x</strong>"))
	assert.Equal(t, "<div id=\"mkt-output\" class=\"output-area\"><strong>x</strong></div>\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteText(&buf, "a\n\n"))
	assert.Equal(t, "a\n", buf.String())
}
