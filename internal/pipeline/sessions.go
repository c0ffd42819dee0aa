package pipeline

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is the cancellation cause of a question replaced by a newer
// question in the same session.
var ErrSuperseded = errors.New("superseded by a newer question")

type inflight struct {
	cancel context.CancelCauseFunc
}

// Sessions tracks the one in-flight question allowed per session.
type Sessions struct {
	mu       sync.Mutex
	inflight map[string]*inflight
}

func NewSessions() *Sessions {
	return &Sessions{inflight: make(map[string]*inflight)}
}

// Begin cancels any question still running for id and returns a context for
// the new one. The caller must call done when the question finishes.
func (s *Sessions) Begin(ctx context.Context, id string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)
	entry := &inflight{cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.inflight[id]; ok {
		prev.cancel(ErrSuperseded)
	}
	s.inflight[id] = entry
	s.mu.Unlock()

	done := func() {
		s.mu.Lock()
		if s.inflight[id] == entry {
			delete(s.inflight, id)
		}
		s.mu.Unlock()
		cancel(nil)
	}
	return ctx, done
}

// Active returns the number of sessions with a question in flight.
func (s *Sessions) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}
