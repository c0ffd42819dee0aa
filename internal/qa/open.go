package qa

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Backend names a scorer implementation.
type Backend string

const (
	BackendHTTP    Backend = "http"
	BackendClaude  Backend = "claude"
	BackendOllama  Backend = "ollama"
	BackendLexical Backend = "lexical"
)

// Options selects and tunes a scorer.
type Options struct {
	Backend Backend
	URL     string // HTTP endpoint or Ollama host
	APIKey  string
	Model   string
	Timeout time.Duration

	Serial bool    // Serialize calls into the backend
	RPS    float64 // Calls per second, 0 for unlimited
	Burst  int

	Stats *Stats // Optional latency recorder
}

// Open builds the configured scorer and its wrappers. Configuration that
// cannot produce a working scorer fails with ErrScoringUnavailable.
func Open(o Options) (Scorer, error) {
	var s Scorer
	switch o.Backend {
	case BackendHTTP:
		if o.URL == "" {
			return nil, fmt.Errorf("%w: http backend requires a url", ErrScoringUnavailable)
		}
		s = NewHTTPScorer(o.URL, o.APIKey, o.Timeout)
	case BackendClaude:
		if o.APIKey == "" {
			return nil, fmt.Errorf("%w: claude backend requires an api key", ErrScoringUnavailable)
		}
		s = NewClaudeScorer(o.APIKey, o.Model, o.Timeout)
	case BackendOllama:
		if o.Model == "" {
			return nil, fmt.Errorf("%w: ollama backend requires a model", ErrScoringUnavailable)
		}
		ol, err := NewOllamaScorer(o.URL, o.Model, o.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScoringUnavailable, err)
		}
		s = ol
	case BackendLexical:
		s = LexicalScorer{}
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrScoringUnavailable, o.Backend)
	}

	if o.Stats != nil {
		s = Instrument(s, o.Stats)
	}
	if o.Serial {
		s = Serial(s)
	}
	if o.RPS > 0 {
		burst := o.Burst
		if burst <= 0 {
			burst = 1
		}
		s = RateLimited(s, rate.NewLimiter(rate.Limit(o.RPS), burst))
	}
	return s, nil
}
