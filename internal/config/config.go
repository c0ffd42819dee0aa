package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/docqa/internal/qa"
	"github.com/dgallion1/docqa/internal/section"
)

type Config struct {
	Port string

	// Auth
	DocqaAPIKey string

	// Browser origins allowed by CORS, none when empty
	CORSOrigins []string

	// Scorer backend
	ScorerBackend   qa.Backend
	ScorerURL       string // HTTP endpoint, or Ollama host
	ScorerAPIKey    string
	AnthropicAPIKey string
	AnthropicModel  string
	OllamaModel     string
	ScorerTimeout   time.Duration

	// Scorer throughput
	ScorerConcurrency int
	ScorerSerial      bool
	ScorerRPS         float64
	ScorerBurst       int

	// Answers
	DefaultTopN int
	SkipTitles  []string

	// Upload limits
	MaxUploadBytes int64

	// Document state
	DocumentTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocqaAPIKey: os.Getenv("DOCQA_API_KEY"),
		CORSOrigins: envList("CORS_ORIGINS", nil),

		ScorerBackend:   qa.Backend(strings.ToLower(envOr("SCORER_BACKEND", string(qa.BackendHTTP)))),
		ScorerURL:       os.Getenv("SCORER_URL"),
		ScorerAPIKey:    os.Getenv("SCORER_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", qa.DefaultClaudeModel),
		OllamaModel:     os.Getenv("OLLAMA_MODEL"),
		ScorerTimeout:   envDuration("SCORER_TIMEOUT", 60*time.Second),

		ScorerConcurrency: envInt("SCORER_CONCURRENCY", 4),
		ScorerSerial:      envBool("SCORER_SERIAL", false),
		ScorerRPS:         envFloat("SCORER_RPS", 0),
		ScorerBurst:       envInt("SCORER_BURST", 1),

		DefaultTopN: envInt("DEFAULT_TOP_N", 3),
		SkipTitles:  envList("SKIP_TITLES", section.DefaultConfig().SkipTitles),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DocumentTTL: envDuration("DOCUMENT_TTL", 1*time.Hour),
	}

	if cfg.ScorerConcurrency <= 0 {
		cfg.ScorerConcurrency = 4
	}
	if cfg.ScorerTimeout <= 0 {
		cfg.ScorerTimeout = 60 * time.Second
	}
	if cfg.ScorerRPS < 0 {
		cfg.ScorerRPS = 0
	}
	if cfg.ScorerBurst <= 0 {
		cfg.ScorerBurst = 1
	}
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = 3
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.DocumentTTL <= 0 {
		cfg.DocumentTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks the settings the server needs to start.
func (c Config) Validate() error {
	if c.DocqaAPIKey == "" {
		return fmt.Errorf("DOCQA_API_KEY is required")
	}
	return c.ValidateScorer()
}

// ValidateScorer checks the settings of the selected scorer backend.
func (c Config) ValidateScorer() error {
	switch c.ScorerBackend {
	case qa.BackendHTTP:
		if c.ScorerURL == "" {
			return fmt.Errorf("SCORER_URL is required for the http backend")
		}
	case qa.BackendClaude:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the claude backend")
		}
	case qa.BackendOllama:
		if c.OllamaModel == "" {
			return fmt.Errorf("OLLAMA_MODEL is required for the ollama backend")
		}
	case qa.BackendLexical:
	default:
		return fmt.Errorf("unknown SCORER_BACKEND %q", c.ScorerBackend)
	}
	return nil
}

// ScorerOptions maps the scorer settings onto qa.Options.
func (c Config) ScorerOptions(stats *qa.Stats) qa.Options {
	o := qa.Options{
		Backend: c.ScorerBackend,
		URL:     c.ScorerURL,
		APIKey:  c.ScorerAPIKey,
		Timeout: c.ScorerTimeout,
		Serial:  c.ScorerSerial,
		RPS:     c.ScorerRPS,
		Burst:   c.ScorerBurst,
		Stats:   stats,
	}
	switch c.ScorerBackend {
	case qa.BackendClaude:
		o.APIKey = c.AnthropicAPIKey
		o.Model = c.AnthropicModel
	case qa.BackendOllama:
		o.Model = c.OllamaModel
	}
	return o
}

// SectionConfig returns the extraction settings.
func (c Config) SectionConfig() section.Config {
	return section.Config{SkipTitles: c.SkipTitles}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList reads a comma-separated list. Set the variable to "-" for an
// empty list.
func envList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	if v == "-" {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
