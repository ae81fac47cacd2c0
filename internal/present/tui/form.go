package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/marketmind/internal/forms"
	"github.com/mithrel/marketmind/pkg/api"
)

var (
	labelStyle   = lipgloss.NewStyle().Bold(true)
	counterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	shortStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	belowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
)

// fieldInput is one form field: a single-line input or a textarea.
type fieldInput struct {
	field api.Field
	line  textinput.Model
	area  textarea.Model
}

func newFieldInput(f api.Field) *fieldInput {
	in := &fieldInput{field: f}
	if f.Multiline {
		ta := textarea.New()
		ta.Placeholder = f.Label
		ta.ShowLineNumbers = false
		ta.CharLimit = 10000
		ta.SetHeight(4)
		in.area = ta
	} else {
		ti := textinput.New()
		ti.Placeholder = f.Label
		ti.CharLimit = 500
		in.line = ti
	}
	return in
}

func (in *fieldInput) Value() string {
	if in.field.Multiline {
		return in.area.Value()
	}
	return in.line.Value()
}

func (in *fieldInput) SetValue(s string) {
	if in.field.Multiline {
		in.area.SetValue(s)
		return
	}
	in.line.SetValue(s)
}

func (in *fieldInput) Focus() tea.Cmd {
	if in.field.Multiline {
		return in.area.Focus()
	}
	return in.line.Focus()
}

func (in *fieldInput) Blur() {
	if in.field.Multiline {
		in.area.Blur()
		return
	}
	in.line.Blur()
}

func (in *fieldInput) SetWidth(w int) {
	if in.field.Multiline {
		in.area.SetWidth(w)
		return
	}
	in.line.Width = w
}

func (in *fieldInput) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if in.field.Multiline {
		in.area, cmd = in.area.Update(msg)
	} else {
		in.line, cmd = in.line.Update(msg)
	}
	return cmd
}

func (in *fieldInput) View() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(in.field.Label))
	b.WriteString("\n")
	if in.field.Multiline {
		b.WriteString(in.area.View())
	} else {
		b.WriteString(in.line.View())
	}
	if in.field.MinChars > 0 {
		b.WriteString("\n")
		b.WriteString(counterView(forms.Count(in.field, in.Value())))
	}
	return b.String()
}

func counterView(c forms.Counter) string {
	style := okStyle
	switch c.Level {
	case forms.LevelTooShort:
		style = shortStyle
	case forms.LevelBelowMin:
		style = belowStyle
	}
	out := style.Render(c.Text())
	if c.Warning != "" {
		out += "  " + warnStyle.Render(c.Warning)
	}
	return counterStyle.Render(out)
}

// formView is the editable form of one module.
type formView struct {
	module api.Module
	inputs []*fieldInput
	focus  int
}

func newFormView(m api.Module) *formView {
	f := &formView{module: m}
	for _, fld := range m.Fields {
		f.inputs = append(f.inputs, newFieldInput(fld))
	}
	return f
}

func (f *formView) Values() map[string]string {
	out := make(map[string]string, len(f.inputs))
	for _, in := range f.inputs {
		out[in.field.Name] = in.Value()
	}
	return out
}

func (f *formView) Request() api.GenerationRequest { return forms.Build(f.module, f.Values()) }

// Reset clears every field and focuses the first one.
func (f *formView) Reset() tea.Cmd {
	for _, in := range f.inputs {
		in.SetValue("")
	}
	return f.setFocus(0)
}

func (f *formView) setFocus(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	if i < 0 {
		i = len(f.inputs) - 1
	}
	if i >= len(f.inputs) {
		i = 0
	}
	f.focus = i
	for j, in := range f.inputs {
		if j != i {
			in.Blur()
		}
	}
	return f.inputs[i].Focus()
}

func (f *formView) Blur() {
	for _, in := range f.inputs {
		in.Blur()
	}
}

func (f *formView) Next() tea.Cmd { return f.setFocus(f.focus + 1) }
func (f *formView) Prev() tea.Cmd { return f.setFocus(f.focus - 1) }

func (f *formView) SetWidth(w int) {
	for _, in := range f.inputs {
		in.SetWidth(w)
	}
}

func (f *formView) Update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	return f.inputs[f.focus].Update(msg)
}

func (f *formView) View() string {
	parts := make([]string, 0, len(f.inputs))
	for _, in := range f.inputs {
		parts = append(parts, in.View())
	}
	return strings.Join(parts, "\n\n")
}
