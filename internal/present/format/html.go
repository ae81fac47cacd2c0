package format

import (
	"fmt"
	"html"
	"io"
)

// WriteHTML wraps converted output in the container markup.
func WriteHTML(w io.Writer, containerID, body string) error {
	_, err := fmt.Fprintf(w, "<div id=\"%s\" class=\"output-area\">%s</div>\n", html.EscapeString(containerID), body)
	return err
}
