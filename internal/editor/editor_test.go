package editor

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mithrel/marketmind/pkg/api"
)

func mustModule(t *testing.T, id string) api.Module {
	t.Helper()
	m, err := api.LookupModule(id)
	if err != nil {
		t.Fatalf("LookupModule(%q): %v", id, err)
	}
	return m
}

func TestParseForm(t *testing.T) {
	m := mustModule(t, "lead")
	input := `# comment line
stray text before any field
== product ==
  CRM Suite
== leadData ==
Acme Corp
# ignored
50 employees

== icp ==
`
	got, err := ParseForm(m, input)
	if err != nil {
		t.Fatalf("ParseForm: %v", err)
	}
	if got["product"] != "CRM Suite" {
		t.Fatalf("product=%q", got["product"])
	}
	if got["leadData"] != "Acme Corp\n50 employees" {
		t.Fatalf("leadData=%q", got["leadData"])
	}
	if v, ok := got["icp"]; !ok || v != "" {
		t.Fatalf("icp=%q ok=%v", v, ok)
	}
	if _, ok := got["valueProp"]; ok {
		t.Fatalf("valueProp should be absent")
	}
}

func TestParseFormUnknownField(t *testing.T) {
	m := mustModule(t, "sales")
	if _, err := ParseForm(m, "== leadData ==\nx\n"); err == nil {
		t.Fatalf("expected error for field of another module")
	}
}

func TestComposeFormRoundTrip(t *testing.T) {
	m := mustModule(t, "marketing")
	values := map[string]string{"product": "Widget", "description": "Line one\nLine two\n"}
	content := ComposeForm(m, values)
	if !strings.HasPrefix(content, "# MarketMind - Marketing Campaign Generator\n") {
		t.Fatalf("unexpected header: %q", content)
	}
	if !strings.Contains(content, "(50+ characters recommended)") {
		t.Fatalf("expected min chars hint, got %q", content)
	}
	got, err := ParseForm(m, content)
	if err != nil {
		t.Fatalf("ParseForm: %v", err)
	}
	if got["product"] != "Widget" || got["description"] != "Line one\nLine two" {
		t.Fatalf("round trip=%v", got)
	}
	if got["audience"] != "" || got["platform"] != "" {
		t.Fatalf("empty fields should stay empty: %v", got)
	}
}

func TestPathFor(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	path, err := PathFor(api.ModuleSales)
	if err != nil {
		t.Fatalf("PathFor error: %v", err)
	}
	if path != filepath.Join(dir, "marketmind", "sales.form.txt") {
		t.Fatalf("PathFor=%q", path)
	}
}

func TestEditFormRunsEditor(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "sed -i s/^Widget$/Gadget/")
	m := mustModule(t, "sales")
	got, err := EditForm(context.Background(), m, map[string]string{"product": "Widget", "budget": "10k"}, Stdio{})
	if err != nil {
		t.Fatalf("EditForm: %v", err)
	}
	if got["product"] != "Gadget" || got["budget"] != "10k" {
		t.Fatalf("EditForm=%v", got)
	}
}
