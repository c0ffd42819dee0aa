package qa

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dgallion1/docqa/internal/doctree"
)

var (
	// ErrScoringUnavailable means the scorer could not be reached or initialized.
	ErrScoringUnavailable = errors.New("scoring unavailable")
	// ErrEmptyContext means a section with an empty body reached the scorer.
	ErrEmptyContext = errors.New("empty context")
	// ErrInvalidSpan means the scorer returned offsets that do not address its answer.
	ErrInvalidSpan = errors.New("invalid answer span")
	// ErrInvalidScore means the scorer returned a confidence outside [0,1].
	ErrInvalidScore = errors.New("invalid answer score")
)

// Answer is an extractive answer. Start and End are code point offsets into
// the context the answer was taken from.
type Answer struct {
	Text  string  `json:"answer"`
	Score float64 `json:"score"`
	Start int     `json:"start"`
	End   int     `json:"end"`
}

// Scorer locates the span of context that best answers question.
type Scorer interface {
	Score(ctx context.Context, question, passage string) (Answer, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, question, passage string) (Answer, error)

func (f ScorerFunc) Score(ctx context.Context, question, passage string) (Answer, error) {
	return f(ctx, question, passage)
}

// ScoreSection scores one section against question and validates the span
// the scorer returns. Spans are never clamped.
func ScoreSection(ctx context.Context, s Scorer, question string, sec doctree.Section) (doctree.ScoredSection, error) {
	if sec.Body == "" {
		return doctree.ScoredSection{}, fmt.Errorf("section %d %q: %w", sec.Index, sec.Title, ErrEmptyContext)
	}
	if s == nil {
		return doctree.ScoredSection{}, fmt.Errorf("%w: no scorer configured", ErrScoringUnavailable)
	}

	ans, err := s.Score(ctx, question, sec.Body)
	if err != nil {
		if ctx.Err() != nil {
			return doctree.ScoredSection{}, context.Cause(ctx)
		}
		if errors.Is(err, ErrScoringUnavailable) {
			return doctree.ScoredSection{}, fmt.Errorf("section %d: %w", sec.Index, err)
		}
		return doctree.ScoredSection{}, fmt.Errorf("section %d: %w: %w", sec.Index, ErrScoringUnavailable, err)
	}

	if math.IsNaN(ans.Score) || ans.Score < 0 || ans.Score > 1 {
		return doctree.ScoredSection{}, fmt.Errorf("section %d: score %v: %w", sec.Index, ans.Score, ErrInvalidScore)
	}
	n := doctree.RuneLen(sec.Body)
	if ans.Start < 0 || ans.Start > ans.End || ans.End > n {
		return doctree.ScoredSection{}, fmt.Errorf("section %d: span [%d,%d) of %d: %w", sec.Index, ans.Start, ans.End, n, ErrInvalidSpan)
	}
	if _, span, _ := doctree.SplitAt(sec.Body, ans.Start, ans.End); span != ans.Text {
		return doctree.ScoredSection{}, fmt.Errorf("section %d: span text %q does not match answer %q: %w",
			sec.Index, truncate(span, 80), truncate(ans.Text, 80), ErrInvalidSpan)
	}

	return doctree.ScoredSection{
		Section: sec,
		Answer:  ans.Text,
		Score:   ans.Score,
		Start:   ans.Start,
		End:     ans.End,
	}, nil
}

// Close releases resources held by s or any scorer it wraps.
func Close(s Scorer) {
	if c, ok := s.(interface{ Close() }); ok {
		c.Close()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
