package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

const DefaultWrap = 80

// NewMarkdownRenderer builds a glamour renderer for style ("dark",
// "light", "notty", "auto" or any standard style name).
func NewMarkdownRenderer(style string, width int) (*glamour.TermRenderer, error) {
	if width <= 0 {
		width = DefaultWrap
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "", "auto":
		opts = append(opts, glamour.WithAutoStyle())
	default:
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return r, nil
}

// RenderPretty returns md rendered for the terminal.
func RenderPretty(md, style string, width int) (string, error) {
	r, err := NewMarkdownRenderer(style, width)
	if err != nil {
		return "", err
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// WritePrettyGeneration renders a titled result with glamour.
func WritePrettyGeneration(w io.Writer, title, content, style string) error {
	md := fmt.Sprintf("# %s\n\n%s\n", title, strings.TrimSpace(content))
	out, err := RenderPretty(md, style, DefaultWrap)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
