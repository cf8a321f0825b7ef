package document

import (
	"regexp"
	"strings"
)

var (
	pageMarker      = regexp.MustCompile(`Page \d+`)
	bareNumberLine  = regexp.MustCompile(`\n\s*\d+\s*\n`)
	horizontalSpace = regexp.MustCompile(`[ \t\f\r\v]+`)
	blankLines      = regexp.MustCompile(`\s*\n\s*`)
)

// Clean normalizes extracted text: page numbers and "Page N" markers are
// removed, underscores become spaces, horizontal whitespace collapses to one
// space and line breaks collapse to a single newline.
func Clean(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	text = bareNumberLine.ReplaceAllString(text, "\n")
	text = pageMarker.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "_", " ")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
