package qa

import (
	"strings"

	"github.com/dgallion1/docqa/internal/doctree"
)

// Locate finds quote inside passage and returns it as an Answer with code
// point offsets. An exact match wins; otherwise the first case-insensitive
// match is used and the answer text is taken from passage. A quote that does
// not occur yields an empty span with score 0.
func Locate(passage, quote string, score float64) Answer {
	quote = strings.TrimSpace(quote)
	if quote == "" {
		return Answer{}
	}
	if i := strings.Index(passage, quote); i >= 0 {
		start := doctree.RuneLen(passage[:i])
		return Answer{
			Text:  quote,
			Score: score,
			Start: start,
			End:   start + doctree.RuneLen(quote),
		}
	}

	cr := []rune(passage)
	qn := len([]rune(quote))
	for i := 0; i+qn <= len(cr); i++ {
		window := string(cr[i : i+qn])
		if strings.EqualFold(window, quote) {
			return Answer{Text: window, Score: score, Start: i, End: i + qn}
		}
	}
	return Answer{}
}
