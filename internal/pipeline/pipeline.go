package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docqa/internal/doctree"
	"github.com/dgallion1/docqa/internal/qa"
	"github.com/dgallion1/docqa/internal/rank"
	"github.com/dgallion1/docqa/internal/render"
	"github.com/dgallion1/docqa/internal/section"
)

var (
	// ErrEmptyDocument means the document yielded no answerable sections.
	ErrEmptyDocument = errors.New("no answerable content")
	// ErrEmptyQuestion means the question was blank.
	ErrEmptyQuestion = errors.New("question is required")
	// ErrInvalidTopN means fewer than one answer was requested.
	ErrInvalidTopN = errors.New("top_n must be at least 1")
)

// Pipeline turns a question and a document into ranked, rendered answers.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	scorer     qa.Scorer
	log        *slog.Logger
	sectionCfg section.Config
	workers    int
}

func New(scorer qa.Scorer, log *slog.Logger, sectionCfg section.Config, workers int) *Pipeline {
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{
		scorer:     scorer,
		log:        log,
		sectionCfg: sectionCfg,
		workers:    workers,
	}
}

// Sections extracts the document's sections.
func (p *Pipeline) Sections(doc *doctree.Document) ([]doctree.Section, error) {
	if doc == nil {
		return nil, ErrEmptyDocument
	}
	sections := section.Extract(doc.Root, p.sectionCfg)
	if len(sections) == 0 {
		return nil, ErrEmptyDocument
	}
	return sections, nil
}

// Score scores every section independently with at most p.workers calls in
// flight. The first failure cancels the rest and no partial result is
// returned.
func (p *Pipeline) Score(ctx context.Context, question string, sections []doctree.Section) ([]doctree.ScoredSection, error) {
	scored := make([]doctree.ScoredSection, len(sections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, sec := range sections {
		g.Go(func() error {
			s, err := qa.ScoreSection(gctx, p.scorer, question, sec)
			if err != nil {
				return err
			}
			scored[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, context.Cause(ctx)
	}
	return scored, nil
}

// Answer scores the sections, keeps the n best and renders them.
func (p *Pipeline) Answer(ctx context.Context, question string, sections []doctree.Section, n int) ([]doctree.RenderedAnswer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	if n < 1 {
		return nil, ErrInvalidTopN
	}
	if len(sections) == 0 {
		return nil, ErrEmptyDocument
	}

	scored, err := p.Score(ctx, question, sections)
	if err != nil {
		p.log.Error("scoring failed", "sections", len(sections), "error", err)
		return nil, fmt.Errorf("score sections: %w", err)
	}

	top := rank.Select(scored, n)
	p.log.Info("answered", "sections", len(sections), "returned", len(top))
	return render.RenderAll(top), nil
}

// AnswerDocument extracts sections from doc and answers question against them.
func (p *Pipeline) AnswerDocument(ctx context.Context, question string, doc *doctree.Document, n int) ([]doctree.RenderedAnswer, error) {
	sections, err := p.Sections(doc)
	if err != nil {
		return nil, err
	}
	return p.Answer(ctx, question, sections, n)
}
