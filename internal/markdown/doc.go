// Package markdown converts the constrained Markdown subset returned by the
// generation service into HTML.
//
// The supported subset is:
//   - "## " and "### " headers (rendered one level down, as h3 and h4)
//   - **bold** spans on a single line
//   - "- " bullet items, grouped into one list per consecutive run
//   - blank lines and single newlines, rendered as line breaks
//
// Anything else passes through as literal text. The converter is an ordered
// list of pure string stages; each stage operates on the output of the
// previous one, so the order returned by Stages is part of the contract.
package markdown
