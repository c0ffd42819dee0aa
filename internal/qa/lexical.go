package qa

import (
	"context"
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true,
	"by": true, "did": true, "do": true, "does": true, "for": true, "from": true, "has": true,
	"have": true, "how": true, "in": true, "is": true, "it": true, "its": true, "of": true,
	"on": true, "or": true, "the": true, "to": true, "was": true, "were": true, "what": true,
	"when": true, "where": true, "which": true, "who": true, "whom": true, "why": true,
	"with": true,
}

// LexicalScorer is an offline scorer that answers with the sentence sharing
// the largest fraction of the question's terms.
type LexicalScorer struct{}

func (LexicalScorer) Score(ctx context.Context, question, text string) (Answer, error) {
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}
	qterms := terms(question)
	if len(qterms) == 0 {
		return Answer{}, nil
	}

	runes := []rune(text)
	best, bestHits := sentenceSpan{}, 0
	for _, sp := range sentences(runes) {
		hits := 0
		for t := range terms(string(runes[sp.start:sp.end])) {
			if qterms[t] {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = sp, hits
		}
	}
	if bestHits == 0 {
		return Answer{}, nil
	}
	return Answer{
		Text:  string(runes[best.start:best.end]),
		Score: float64(bestHits) / float64(len(qterms)),
		Start: best.start,
		End:   best.end,
	}, nil
}

type sentenceSpan struct{ start, end int }

func sentences(runes []rune) []sentenceSpan {
	var out []sentenceSpan
	start := -1
	for i, r := range runes {
		if start < 0 {
			if unicode.IsSpace(r) {
				continue
			}
			start = i
		}
		if (r == '.' || r == '!' || r == '?') && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			out = append(out, sentenceSpan{start, i + 1})
			start = -1
		}
	}
	if start >= 0 {
		end := len(runes)
		for end > start && unicode.IsSpace(runes[end-1]) {
			end--
		}
		out = append(out, sentenceSpan{start, end})
	}
	return out
}

func terms(s string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := make(map[string]bool, len(words))
	for _, w := range words {
		if len([]rune(w)) < 2 || stopwords[w] {
			continue
		}
		out[w] = true
	}
	return out
}
