package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docqa/internal/doctree"
	"github.com/dgallion1/docqa/internal/parser"
)

// ErrUnreadable means a file of a supported format failed to parse.
var ErrUnreadable = errors.New("document could not be parsed")

// AskResult is the response to one question.
type AskResult struct {
	SessionID string                   `json:"session_id,omitempty"`
	DocID     string                   `json:"doc_id,omitempty"`
	Question  string                   `json:"question"`
	Answers   []doctree.RenderedAnswer `json:"answers"`
}

// Service owns ingested documents and per-session question handling.
type Service struct {
	pipe     *Pipeline
	docs     *DocumentStore
	sessions *Sessions
	log      *slog.Logger

	cleanupEvery time.Duration
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

func NewService(pipe *Pipeline, docTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		pipe:         pipe,
		docs:         NewDocumentStore(docTTL),
		sessions:     NewSessions(),
		log:          log,
		cleanupEvery: 5 * time.Minute,
	}
}

// Start launches the document eviction loop.
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.docs.Cleanup(); n > 0 {
					s.log.Info("evicted documents", "count", n)
				}
			}
		}
	}()
}

func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Parse converts raw file bytes to a document tree. A non-empty title
// overrides the one found in the file.
func Parse(filename, title string, data []byte) (*doctree.Document, error) {
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadable, filename, err)
	}
	if title != "" {
		doc.Title = title
	}
	return doc, nil
}

// Ingest parses and sections a file and stores the result. Uploading the
// same bytes twice yields the same document ID.
func (s *Service) Ingest(filename, title string, data []byte) (*Document, error) {
	doc, err := Parse(filename, title, data)
	if err != nil {
		return nil, err
	}
	sections, err := s.pipe.Sections(doc)
	if err != nil {
		return nil, err
	}

	hash := ContentHashHex(data)
	stored := &Document{
		ID:          hash[:16],
		Title:       doc.Title,
		Filename:    filename,
		ContentHash: hash,
		Sections:    sections,
		CreatedAt:   time.Now().UTC(),
	}
	s.docs.Put(stored)
	s.log.Info("ingested document", "doc_id", stored.ID, "filename", filename, "sections", len(sections))
	return stored, nil
}

func (s *Service) Document(id string) (*Document, error) {
	return s.docs.Get(id)
}

func (s *Service) Documents() []*Document {
	return s.docs.List()
}

func (s *Service) DeleteDocument(id string) bool {
	return s.docs.Delete(id)
}

// DocumentCount returns the number of stored documents.
func (s *Service) DocumentCount() int {
	return s.docs.Len()
}

// ActiveSessions returns the number of sessions with a question in flight.
func (s *Service) ActiveSessions() int {
	return s.sessions.Active()
}

// Ask answers question against a stored document. An empty sessionID starts
// a new session. A newer Ask in the same session cancels this one with
// ErrSuperseded.
func (s *Service) Ask(ctx context.Context, docID, sessionID, question string, n int) (*AskResult, error) {
	doc, err := s.docs.Get(docID)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	ctx, done := s.sessions.Begin(ctx, sessionID)
	defer done()

	answers, err := s.pipe.Answer(ctx, question, doc.Sections, n)
	if err != nil {
		s.log.Warn("ask failed", "doc_id", docID, "session_id", sessionID, "error", err)
		return nil, err
	}
	return &AskResult{
		SessionID: sessionID,
		DocID:     docID,
		Question:  question,
		Answers:   answers,
	}, nil
}

// AskFile answers question against an uploaded file without storing it.
func (s *Service) AskFile(ctx context.Context, filename string, data []byte, question string, n int) (*AskResult, error) {
	doc, err := Parse(filename, "", data)
	if err != nil {
		return nil, err
	}
	answers, err := s.pipe.AnswerDocument(ctx, question, doc, n)
	if err != nil {
		return nil, err
	}
	return &AskResult{Question: question, Answers: answers}, nil
}
