package forms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/marketmind/pkg/api"
)

func TestCount(t *testing.T) {
	desc := api.Field{Name: "description", Label: "Description", MinChars: 50}
	cases := []struct {
		name    string
		value   string
		level   Level
		warning string
	}{
		{"empty", "", LevelTooShort, ""},
		{"very short", "abc", LevelTooShort, "⚠️ Very short - may reduce AI quality"},
		{"below min", "0123456789", LevelBelowMin, "💡 50+ characters recommended"},
		{"enough", strings.Repeat("a", 50), LevelOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Count(desc, tc.value)
			assert.Equal(t, tc.level, c.Level)
			assert.Equal(t, tc.warning, c.Warning)
		})
	}

	plain := Count(api.Field{Name: "product"}, "x")
	assert.Equal(t, LevelOK, plain.Level)
	assert.Equal(t, "1 characters", plain.Text())
}

func TestCountUsesCharacters(t *testing.T) {
	c := Count(api.Field{MinChars: 30}, "héllo wörld")
	assert.Equal(t, 11, c.Count)
	assert.Equal(t, LevelBelowMin, c.Level)
}

func TestBuildKeepsModuleFields(t *testing.T) {
	m, err := api.LookupModule("sales")
	require.NoError(t, err)
	req := Build(m, map[string]string{"product": "  CRM ", "budget": "10k\n\n", "stray": "x"})
	assert.Equal(t, api.ModuleSales, req.ModuleID)
	assert.Equal(t, "  CRM ", req.Payload["product"])
	assert.Equal(t, "10k\n\n", req.Payload["budget"])
	assert.Equal(t, "", req.Payload["persona"])
	assert.NotContains(t, req.Payload, "stray")
	assert.Len(t, req.Payload, len(m.Fields))
}

func TestWarnings(t *testing.T) {
	m, err := api.LookupModule("lead")
	require.NoError(t, err)
	w := Warnings(m, map[string]string{"leadData": "short"})
	require.Len(t, w, 1)
	assert.Contains(t, w[0], "Very short")
}

func TestFormSetReset(t *testing.T) {
	m, err := api.LookupModule("marketing")
	require.NoError(t, err)
	f := New(m)
	require.NoError(t, f.Set("product", "Widget"))
	require.Error(t, f.Set("persona", "x"))
	assert.Equal(t, "Widget", f.Request().Payload["product"])
	f.Reset()
	assert.Equal(t, "", f.Value("product"))
	assert.Empty(t, f.Values())
}
