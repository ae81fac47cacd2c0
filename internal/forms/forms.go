// Package forms turns field input into generation requests and produces
// the length advice shown under long-text fields.
package forms

import (
	"fmt"
	"unicode/utf8"

	"github.com/mithrel/marketmind/pkg/api"
)

// VeryShort is the length below which input is flagged regardless of the
// field's recommended minimum.
const VeryShort = 10

type Level int

const (
	LevelOK Level = iota
	LevelBelowMin
	LevelTooShort
)

// Counter is the live character count of a field.
type Counter struct {
	Count   int
	Level   Level
	Warning string
}

func (c Counter) Text() string { return fmt.Sprintf("%d characters", c.Count) }

// Count evaluates value against the field's recommended minimum. Fields
// without a minimum are always LevelOK.
func Count(f api.Field, value string) Counter {
	n := utf8.RuneCountInString(value)
	c := Counter{Count: n}
	if f.MinChars <= 0 {
		return c
	}
	switch {
	case n < VeryShort:
		c.Level = LevelTooShort
		if n > 0 {
			c.Warning = "⚠️ Very short - may reduce AI quality"
		}
	case n < f.MinChars:
		c.Level = LevelBelowMin
		c.Warning = fmt.Sprintf("💡 %d+ characters recommended", f.MinChars)
	}
	return c
}

// Warnings lists the advice for every field of m that has one.
func Warnings(m api.Module, values map[string]string) []string {
	var out []string
	for _, f := range m.Fields {
		if c := Count(f, values[f.Name]); c.Warning != "" {
			out = append(out, fmt.Sprintf("%s: %s (%s)", f.Label, c.Warning, c.Text()))
		}
	}
	return out
}

// Build assembles the request for m. Values are sent as typed; every
// module field is present in the payload, possibly empty.
func Build(m api.Module, values map[string]string) api.GenerationRequest {
	return m.NewRequest(values)
}

// Form holds the editable values of one module.
type Form struct {
	Module api.Module
	values map[string]string
}

func New(m api.Module) *Form {
	return &Form{Module: m, values: make(map[string]string, len(m.Fields))}
}

func (f *Form) Set(name, value string) error {
	if _, ok := f.Module.Field(name); !ok {
		return fmt.Errorf("module %s has no field %q", f.Module.ID, name)
	}
	f.values[name] = value
	return nil
}

func (f *Form) Value(name string) string { return f.values[name] }

// Reset clears every field.
func (f *Form) Reset() {
	f.values = make(map[string]string, len(f.Module.Fields))
}

func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

func (f *Form) Request() api.GenerationRequest { return Build(f.Module, f.values) }
