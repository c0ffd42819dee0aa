package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// OllamaScorer asks a local Ollama model to quote the answer span.
type OllamaScorer struct {
	client *api.Client
	model  string
}

// NewOllamaScorer connects to host, or to OLLAMA_HOST when host is empty.
func NewOllamaScorer(host, model string, timeout time.Duration) (*OllamaScorer, error) {
	hostURL := envconfig.Host()
	if host != "" {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("parse ollama host: %w", err)
		}
		hostURL = u
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaScorer{
		client: api.NewClient(hostURL, &http.Client{Timeout: timeout}),
		model:  model,
	}, nil
}

// Model returns the configured model name.
func (o *OllamaScorer) Model() string {
	return o.model
}

// Score asks the model for the answer span of passage and anchors it.
func (o *OllamaScorer) Score(ctx context.Context, question, passage string) (Answer, error) {
	stream := false
	req := api.GenerateRequest{
		Model:  o.model,
		Prompt: BuildSpanPrompt(question, passage),
		Format: json.RawMessage(`"json"`),
		Stream: &stream,
		Options: map[string]any{
			"temperature": 0,
			"num_predict": 256,
		},
	}

	var sb strings.Builder
	err := o.client.Generate(ctx, &req, func(resp api.GenerateResponse) error {
		_, err := sb.WriteString(resp.Response)
		return err
	})
	if err != nil {
		return Answer{}, fmt.Errorf("ollama generate: %w", err)
	}
	return parseSpanReply(sb.String(), passage)
}
