package qa

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

type serial struct {
	mu   sync.Mutex
	next Scorer
}

// Serial allows one call into s at a time. Use it for scorers backed by a
// single loaded model instance that is not safe for concurrent use.
func Serial(s Scorer) Scorer {
	return &serial{next: s}
}

func (s *serial) Score(ctx context.Context, question, passage string) (Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Answer{}, context.Cause(ctx)
	}
	return s.next.Score(ctx, question, passage)
}

func (s *serial) Close() { Close(s.next) }

type limited struct {
	limiter *rate.Limiter
	next    Scorer
}

// RateLimited waits on limiter before every call into s.
func RateLimited(s Scorer, limiter *rate.Limiter) Scorer {
	return &limited{limiter: limiter, next: s}
}

func (l *limited) Score(ctx context.Context, question, passage string) (Answer, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return Answer{}, context.Cause(ctx)
		}
		return Answer{}, err
	}
	return l.next.Score(ctx, question, passage)
}

func (l *limited) Close() { Close(l.next) }
