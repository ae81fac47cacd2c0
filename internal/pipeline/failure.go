package pipeline

import (
	"fmt"
	"strings"
)

// FailureMessage is the Markdown shown in place of a result when the
// backend could not be reached or answered badly. It always points at the
// local backend address; a different resolved base is named alongside.
func FailureMessage(base string) string {
	var b strings.Builder
	b.WriteString("### ⚠️ Connection Error\n\n")
	b.WriteString("**Note:**\nUnable to connect to the AI backend.\n\n")
	b.WriteString("**Troubleshooting:**\n")
	b.WriteString("1. Ensure the backend is running (`python app.py`)\n")
	fmt.Fprintf(&b, "2. Check if the backend is active at [%s](%s)", DefaultBase, DefaultBase)
	if base != "" && base != DefaultBase {
		fmt.Fprintf(&b, " (requests currently go to [%s](%s))", base, base)
	}
	b.WriteString("\n3. Check the log file (`log.file`) for detailed network errors")
	return b.String()
}
