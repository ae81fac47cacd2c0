package output

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// controlLabels are the texts a control can show. A trailing line made of
// one of them is chrome, not content.
var controlLabels = map[string]bool{
	CopyLabel:      true,
	CopiedLabel:    true,
	ExportLabel:    true,
	"Download PDF": true,
	ExportedLabel:  true,
	"Downloaded!":  true,
}

var blankRun = regexp.MustCompile(`\n{3,}`)

// VisibleText returns the text a reader sees in markup: line breaks for
// <br> and block elements, no tags, action bar controls left out.
func VisibleText(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		// The tokenizer is lenient; fall back to the raw text.
		return strings.TrimSpace(markup)
	}
	var b strings.Builder
	for _, n := range nodes {
		walkText(&b, n)
	}
	out := blankRun.ReplaceAllString(b.String(), "\n\n")
	return stripTrailingLabels(strings.TrimSpace(out))
}

func walkText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if hasClass(n, "action-button-bar") || n.DataAtom == atom.Button || n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return
		}
		if n.DataAtom == atom.Br {
			b.WriteByte('\n')
			return
		}
	}
	block := n.Type == html.ElementNode && isBlock(n.DataAtom)
	if block {
		ensureNewline(b)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(b, c)
	}
	if block {
		ensureNewline(b)
	}
}

func ensureNewline(b *strings.Builder) {
	s := b.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		b.WriteByte('\n')
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Pre, atom.Blockquote, atom.Table, atom.Tr:
		return true
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, f := range strings.Fields(a.Val) {
			if f == class {
				return true
			}
		}
	}
	return false
}

func stripTrailingLabels(s string) string {
	lines := strings.Split(s, "\n")
	for len(lines) > 0 && controlLabels[strings.TrimSpace(lines[len(lines)-1])] {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
