package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain text", input: "just words", want: "just words"},
		{name: "single newline", input: "a\nb", want: "a<br>b"},
		{name: "blank line", input: "a\n\nb", want: "a<br><br>b"},
		{name: "crlf", input: "a\r\nb", want: "a<br>b"},
		{name: "h4", input: "### Plan", want: "<h4>Plan</h4>"},
		{name: "h3", input: "## Plan", want: "<h3>Plan</h3>"},
		{name: "closing markers trimmed", input: "## Plan ##  ", want: "<h3>Plan</h3>"},
		{name: "hash inside word kept", input: "### Learn C#", want: "<h4>Learn C#</h4>"},
		{name: "single hash is literal", input: "# Title", want: "# Title"},
		{name: "bold", input: "**Note:** read", want: "<strong>Note:</strong> read"},
		{name: "bold is non-greedy", input: "**a** and **b**", want: "<strong>a</strong> and <strong>b</strong>"},
		{name: "bold does not cross lines", input: "**a\nb**", want: "**a<br>b**"},
		{name: "single bullet", input: "- one", want: "<ul><li>one</li></ul>"},
		{
			name:  "bullets after blank line join one list",
			input: "- one\n\n- two",
			want:  "<ul><li>one</li><li>two</li></ul>",
		},
		{
			name:  "separate runs get separate lists",
			input: "- a\ntext\n- b",
			want:  "<ul><li>a</li></ul><br>text<br><ul><li>b</li></ul>",
		},
		{
			name:  "numbered items are literal",
			input: "1. first\n2. second",
			want:  "1. first<br>2. second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Render(tt.input))
		})
	}
}

func TestRenderScenario(t *testing.T) {
	t.Parallel()

	out := Render("### Title\n\n**Bold** text\n- item1\n- item2")

	assert.Equal(t, 1, strings.Count(out, "<h4>"))
	assert.Contains(t, out, "<strong>Bold</strong>")
	assert.Equal(t, 1, strings.Count(out, "<ul>"))
	assert.Equal(t, 1, strings.Count(out, "</ul>"))
	assert.Equal(t, 2, strings.Count(out, "<li>"))
	assert.Equal(t, "<h4>Title</h4><br><br><strong>Bold</strong> text<br><ul><li>item1</li><li>item2</li></ul>", out)
}

func TestRenderPlainTextOnlySubstitutesNewlines(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"hello world",
		"line one\nline two\nline three",
		"ends with newline\n",
		"tabs\tand spaces   stay",
	}
	for _, in := range inputs {
		assert.Equal(t, strings.ReplaceAll(in, "\n", "<br>"), Render(in), in)
	}
}

func TestGroupListItemsIsIdempotent(t *testing.T) {
	t.Parallel()

	once := Render("- a\n- b\n- c\n\nafter\n- d")
	twice := groupListItems(once)

	assert.Equal(t, once, twice)
	assert.NotContains(t, twice, "<ul><ul>")
	assert.Equal(t, 2, strings.Count(twice, "<ul>"))
}

func TestStagesOrder(t *testing.T) {
	t.Parallel()

	var names []string
	for _, st := range Stages() {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"normalize", "headers", "bold", "bullets", "paragraphs", "linebreaks", "lists"}, names)
}

func TestStagesIndividually(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<h4>A</h4>\n<h3>B</h3>\n#### C", convertHeaders("### A\n## B\n#### C"))
	assert.Equal(t, "x <strong>y</strong>", convertBold("x **y**"))
	assert.Equal(t, "<li>a</li>\n -b", convertBullets("- a\n -b"))
	assert.Equal(t, "a<br><br>\nb", convertParagraphs("a\n\n\nb"))
	assert.Equal(t, "a<br>b", convertLineBreaks("a\nb"))
	assert.Equal(t, "<ul><li>a</li><li>b</li></ul>", groupListItems("<li>a</li><br><br><li>b</li>"))
}
