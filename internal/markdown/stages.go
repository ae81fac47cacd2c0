package markdown

import (
	"regexp"
	"strings"
)

// Stage is one text-to-text transformation step.
type Stage struct {
	Name  string
	Apply func(string) string
}

// Precompiled patterns.
var (
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	h4Line = regexp.MustCompile(`(?m)^### (.*)$`)
	h3Line = regexp.MustCompile(`(?m)^## (.*)$`)

	// Closing ATX markers: "## Title ##".
	closingHashes = regexp.MustCompile(`(^|[ \t]+)#+[ \t]*$`)

	boldSpan = regexp.MustCompile(`\*\*(.*?)\*\*`)

	bulletLine = regexp.MustCompile(`(?m)^- (.*)$`)

	// A maximal run of adjacent items, optionally already wrapped.
	itemRun = regexp.MustCompile(`(?:<ul>)?((?:<li>.*?</li>)+)(?:</ul>)?`)
)

// Stages returns the conversion pipeline in application order.
func Stages() []Stage {
	return []Stage{
		{Name: "normalize", Apply: normalizeLineEndings},
		{Name: "headers", Apply: convertHeaders},
		{Name: "bold", Apply: convertBold},
		{Name: "bullets", Apply: convertBullets},
		{Name: "paragraphs", Apply: convertParagraphs},
		{Name: "linebreaks", Apply: convertLineBreaks},
		{Name: "lists", Apply: groupListItems},
	}
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(s string) string {
	return crlfOrCR.ReplaceAllString(s, "\n")
}

func convertHeaders(s string) string {
	s = replaceLine(h4Line, s, "<h4>", "</h4>")
	return replaceLine(h3Line, s, "<h3>", "</h3>")
}

func replaceLine(re *regexp.Regexp, s, open, close string) string {
	return re.ReplaceAllStringFunc(s, func(line string) string {
		sub := re.FindStringSubmatch(line)
		return open + headerText(sub[1]) + close
	})
}

// headerText drops closing hash markers and trailing blanks.
func headerText(s string) string {
	s = closingHashes.ReplaceAllString(s, "")
	return strings.TrimRight(s, " \t")
}

func convertBold(s string) string {
	return boldSpan.ReplaceAllString(s, "<strong>$1</strong>")
}

func convertBullets(s string) string {
	return bulletLine.ReplaceAllString(s, "<li>$1</li>")
}

func convertParagraphs(s string) string {
	return strings.ReplaceAll(s, "\n\n", "<br><br>")
}

func convertLineBreaks(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}

// groupListItems joins items separated only by line breaks, wraps every run
// of adjacent items in a single <ul> and merges touching wrappers.
func groupListItems(s string) string {
	if !strings.Contains(s, "<li>") {
		return s
	}
	s = strings.ReplaceAll(s, "</li><br><li>", "</li><li>")
	s = strings.ReplaceAll(s, "</li><br><br><li>", "</li><li>")
	s = itemRun.ReplaceAllString(s, "<ul>$1</ul>")
	return strings.ReplaceAll(s, "</ul><ul>", "")
}
