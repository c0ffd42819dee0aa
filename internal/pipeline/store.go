package pipeline

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/docqa/internal/doctree"
)

// ErrDocumentNotFound means no stored document has the requested ID.
var ErrDocumentNotFound = errors.New("document not found")

// Document is an ingested document with its extracted sections.
type Document struct {
	ID          string            `json:"doc_id"`
	Title       string            `json:"title"`
	Filename    string            `json:"filename"`
	ContentHash string            `json:"content_hash"`
	Sections    []doctree.Section `json:"-"`
	CreatedAt   time.Time         `json:"created_at"`

	accessedAt time.Time
}

// DocumentStore is a thread-safe in-memory document registry with TTL
// eviction. Sections are immutable once stored.
type DocumentStore struct {
	mu   sync.Mutex
	docs map[string]*Document
	ttl  time.Duration
	now  func() time.Time
}

func NewDocumentStore(ttl time.Duration) *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]*Document),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *DocumentStore) Put(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.accessedAt = s.now()
	s.docs[doc.ID] = doc
}

// Get returns a document and refreshes its TTL.
func (s *DocumentStore) Get(id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrDocumentNotFound)
	}
	doc.accessedAt = s.now()
	return doc, nil
}

// List returns all documents, oldest first.
func (s *DocumentStore) List() []*Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *DocumentStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[id]
	delete(s.docs, id)
	return ok
}

func (s *DocumentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Cleanup removes documents not accessed within the TTL.
func (s *DocumentStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, doc := range s.docs {
		if now.Sub(doc.accessedAt) > s.ttl {
			delete(s.docs, id)
			removed++
		}
	}
	return removed
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
