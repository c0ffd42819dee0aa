package rank

import (
	"cmp"
	"slices"

	"github.com/dgallion1/docqa/internal/doctree"
)

// Select returns the n highest-scoring results, best first. Equal scores keep
// their input order. The input slice is not modified. n < 1 selects nothing.
func Select(results []doctree.ScoredSection, n int) []doctree.ScoredSection {
	if n < 1 || len(results) == 0 {
		return []doctree.ScoredSection{}
	}
	out := slices.Clone(results)
	slices.SortStableFunc(out, func(a, b doctree.ScoredSection) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out[:min(n, len(out))]
}
