package render

import (
	"math"

	"github.com/dgallion1/docqa/internal/doctree"
)

// Render splits the section body around the answer span. The span must
// already be validated; offsets are code points into Body.
func Render(r doctree.ScoredSection) doctree.RenderedAnswer {
	pre, highlight, post := doctree.SplitAt(r.Body, r.Start, r.End)
	return doctree.RenderedAnswer{
		Title:        r.Title,
		Level:        r.Level,
		Answer:       r.Answer,
		ScorePercent: Percent(r.Score),
		Pre:          pre,
		Highlight:    highlight,
		Post:         post,
	}
}

// RenderAll renders results in order.
func RenderAll(results []doctree.ScoredSection) []doctree.RenderedAnswer {
	out := make([]doctree.RenderedAnswer, len(results))
	for i, r := range results {
		out[i] = Render(r)
	}
	return out
}

// Percent converts a [0,1] score to a percentage rounded to two decimals.
func Percent(score float64) float64 {
	return math.Round(score*100*100) / 100
}
