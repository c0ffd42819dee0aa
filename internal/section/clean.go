package section

import (
	"regexp"
	"strings"
)

var citationRe = regexp.MustCompile(`\[\d+\]`)

// EditToken is the literal edit-link text wikis append to headings.
const EditToken = "[edit]"

// Clean removes bracketed citation markers such as "[12]" and edit-link tokens.
// All other characters keep their relative order.
func Clean(text string) string {
	text = citationRe.ReplaceAllString(text, "")
	return strings.ReplaceAll(text, EditToken, "")
}
