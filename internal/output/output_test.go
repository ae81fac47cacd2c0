package output

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/marketmind/pkg/api"
)

type memClipboard struct {
	mu   sync.Mutex
	text string
	err  error
}

func (m *memClipboard) WriteText(s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.text = s
	return nil
}

func (m *memClipboard) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

func TestRegistryCreatesPlaceholder(t *testing.T) {
	reg := NewRegistry()
	c := reg.Get("mkt-output")
	v := c.Snapshot()
	assert.True(t, v.Placeholder)
	assert.Equal(t, api.StateIdle, v.State)
	assert.False(t, v.HasActions)
	assert.Same(t, c, reg.Get("mkt-output"))
	assert.Equal(t, []string{"mkt-output"}, reg.IDs())
}

func TestRenderReplacesContentAndControls(t *testing.T) {
	reg := NewRegistry()
	r := NewRenderer(reg, WithClipboard(&memClipboard{}))
	r.Render("mkt-output", "Marketing_Campaign", "## Title\n\n**Bold** text\n- item1\n- item2")

	v := reg.Get("mkt-output").Snapshot()
	assert.False(t, v.Placeholder)
	assert.Equal(t, "<h3>Title</h3><br><br><strong>Bold</strong> text<br><ul><li>item1</li><li>item2</li></ul>", v.HTML)
	assert.Equal(t, "## Title\n\n**Bold** text\n- item1\n- item2", v.Source)
	require.True(t, v.HasActions)
	assert.Equal(t, CopyLabel, v.CopyLabel)
	assert.Equal(t, ExportLabel, v.ExportLabel)

	first := reg.Get("mkt-output").Actions()
	r.Render("mkt-output", "Marketing_Campaign", "again")
	assert.NotSame(t, first, reg.Get("mkt-output").Actions())
	assert.Equal(t, "again", reg.Get("mkt-output").Snapshot().HTML)
}

func TestVisibleText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello", "hello"},
		{"structure", "<h4>Title</h4><br><br><strong>Bold</strong> text<br><ul><li>item1</li><li>item2</li></ul>", "Title\n\nBold text\nitem1\nitem2"},
		{"entities", "a &amp; b", "a & b"},
		{"action bar skipped", `Result<div class="action-button-bar"><button>Copy</button><button>PDF</button></div>`, "Result"},
		{"trailing labels", "Result<br>Copied!<br>Download PDF", "Result"},
		{"inline label kept", "Ad Copy Variations", "Ad Copy Variations"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, VisibleText(tc.in))
		})
	}
}

func TestCopyFeedbackReverts(t *testing.T) {
	reg := NewRegistry()
	cb := &memClipboard{}
	r := NewRenderer(reg, WithClipboard(cb), WithFeedback(30*time.Millisecond))
	r.Render("sales-output", "Sales_Pitch", "### Pitch\nBuy **now**")

	bar := reg.Get("sales-output").Actions()
	require.NoError(t, bar.Copy.Activate(context.Background()))
	assert.Equal(t, "Pitch\n\nBuy now", cb.Text())
	assert.Equal(t, CopiedLabel, bar.Copy.Label())
	require.Eventually(t, func() bool { return bar.Copy.Label() == CopyLabel }, time.Second, 5*time.Millisecond)
}

func TestCopyFailureKeepsLabel(t *testing.T) {
	reg := NewRegistry()
	cb := &memClipboard{err: errors.New("denied")}
	r := NewRenderer(reg, WithClipboard(cb))
	r.Render("lead-output", "Lead_Scoring", "score")

	bar := reg.Get("lead-output").Actions()
	err := bar.Copy.Activate(context.Background())
	require.Error(t, err)
	assert.Equal(t, CopyLabel, bar.Copy.Label())
}

func TestOlderTimerDoesNotRevertNewerActivation(t *testing.T) {
	reg := NewRegistry()
	r := NewRenderer(reg, WithClipboard(&memClipboard{}), WithFeedback(60*time.Millisecond))
	r.Render("mkt-output", "Marketing_Campaign", "x")
	ctl := reg.Get("mkt-output").Actions().Copy

	require.NoError(t, ctl.Activate(context.Background()))
	time.Sleep(40 * time.Millisecond)
	require.NoError(t, ctl.Activate(context.Background()))
	// The first timer would have fired by now.
	time.Sleep(35 * time.Millisecond)
	assert.Equal(t, CopiedLabel, ctl.Label())
	require.Eventually(t, func() bool { return ctl.Label() == CopyLabel }, time.Second, 5*time.Millisecond)
}

func TestExportWritesDocument(t *testing.T) {
	fs := afero.NewMemMapFs()
	at := time.Date(2026, 10, 16, 7, 30, 15, 0, time.UTC)
	reg := NewRegistry()
	var saved string
	r := NewRenderer(reg,
		WithClipboard(&memClipboard{}),
		WithDownloader(&FileDownloader{Fs: fs, Dir: "/exports"}),
		WithClock(func() time.Time { return at }),
		WithSaveHook(func(p string) { saved = p }),
	)
	r.Render("mkt-output", "Marketing Campaign", "## Plan\n- one")

	bar := reg.Get("mkt-output").Actions()
	require.NoError(t, bar.Export.Activate(context.Background()))
	assert.Equal(t, ExportedLabel, bar.Export.Label())

	want := "/exports/MarketMind_Marketing_Campaign_" + "1792135815000" + ".txt"
	assert.Equal(t, want, saved)
	data, err := afero.ReadFile(fs, want)
	require.NoError(t, err)
	doc := string(data)
	assert.True(t, strings.HasPrefix(doc, "MarketMind - Marketing Campaign\nGenerated: "))
	assert.Contains(t, doc, "\n\nPlan\n\none\n\n---\nPowered by MarketMind AI")
}

func TestExportFilename(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "MarketMind_Sales_Pitch_1700000000123.txt", ExportFilename("Sales_Pitch", at))
	assert.Equal(t, "MarketMind_A_B_C_1700000000123.txt", ExportFilename("A  B\tC", at))
}

func TestExportFailureKeepsLabel(t *testing.T) {
	reg := NewRegistry()
	r := NewRenderer(reg,
		WithClipboard(&memClipboard{}),
		WithDownloader(&FileDownloader{Fs: afero.NewReadOnlyFs(afero.NewMemMapFs()), Dir: "/x"}),
	)
	r.Render("mkt-output", "Marketing_Campaign", "x")
	bar := reg.Get("mkt-output").Actions()
	require.Error(t, bar.Export.Activate(context.Background()))
	assert.Equal(t, ExportLabel, bar.Export.Label())
}

func TestLoadingLifecycleGuardsTokens(t *testing.T) {
	reg := NewRegistry()
	var mu sync.Mutex
	var seen []string
	reg.Subscribe(func(id string) {
		mu.Lock()
		seen = append(seen, id)
		mu.Unlock()
	})
	c := reg.Get("mkt-output")

	t1 := c.BeginLoading("Step 1/3: Analyzing inputs...")
	v := c.Snapshot()
	assert.Equal(t, api.StateLoading, v.State)
	assert.Contains(t, v.HTML, `id="loading-step-text"`)
	assert.Contains(t, v.HTML, "Step 1/3: Analyzing inputs...")

	t2 := c.BeginLoading("Step 1/3: Analyzing inputs...")
	assert.False(t, c.SetProgress(t1, "Step 2/3: Generating insights..."))
	assert.True(t, c.SetProgress(t2, "Step 2/3: Generating insights..."))
	assert.False(t, c.IsCurrent(t1))

	c.Finish(t1)
	assert.Equal(t, api.StateLoading, c.Snapshot().State)
	c.Finish(t2)
	assert.Equal(t, api.StateDone, c.Snapshot().State)
	assert.False(t, c.SetProgress(t2, "Step 3/3: Formatting results..."))

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, seen)
}

func TestRegistryNotifiesEverySubscriber(t *testing.T) {
	reg := NewRegistry()
	var mu sync.Mutex
	var first, second []string
	reg.Subscribe(func(id string) {
		mu.Lock()
		first = append(first, id)
		mu.Unlock()
	})
	reg.Subscribe(func(id string) {
		mu.Lock()
		second = append(second, id)
		mu.Unlock()
	})

	r := NewRenderer(reg, WithClipboard(&memClipboard{}))
	r.Render("lead-output", "Lead_Scoring", "score: 80")

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, "lead-output", first[len(first)-1])
}
