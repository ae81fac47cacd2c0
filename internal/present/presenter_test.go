package present

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/marketmind/pkg/api"
)

func TestParseMode(t *testing.T) {
	m, ok := ParseMode(" JSON ")
	require.True(t, ok)
	assert.Equal(t, ModeJSON, m)
	_, ok = ParseMode("pdf")
	assert.False(t, ok)
}

func TestRenderGenerationModes(t *testing.T) {
	mod, err := api.LookupModule("marketing")
	require.NoError(t, err)
	g := Generation{Module: mod, Content: "**Hi**", HTML: "<strong>Hi</strong>", Text: "Hi", Base: "http://127.0.0.1:5001"}

	var buf bytes.Buffer
	require.NoError(t, RenderGeneration(&buf, g, Options{Mode: ModeText}))
	assert.Equal(t, "Hi\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderGeneration(&buf, g, Options{Mode: ModeHTML}))
	assert.Contains(t, buf.String(), `id="mkt-output"`)

	buf.Reset()
	g.Err = errors.New("server error: status 502")
	require.NoError(t, RenderGeneration(&buf, g, Options{Mode: ModeJSON}))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, true, doc["failed"])
	assert.Equal(t, "Marketing_Campaign", doc["title"])

	require.Error(t, RenderGeneration(&buf, g, Options{Mode: ModeTUI}))
}

func TestRenderHistoryPlain(t *testing.T) {
	mod, err := api.LookupModule("lead")
	require.NoError(t, err)
	entries := []api.HistoryEntry{{Content: "x", Timestamp: "2026-10-16T07:30:00.000Z", Preview: "x..."}}
	var buf bytes.Buffer
	require.NoError(t, RenderHistory(context.Background(), &buf, mod, entries, Options{Mode: ModePlain}))
	assert.Contains(t, buf.String(), "x...")
}
