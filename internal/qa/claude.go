package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const anthropicURL = "https://api.anthropic.com/v1/messages"

// DefaultClaudeModel is used when no model is configured.
const DefaultClaudeModel = "claude-sonnet-4-5-20250929"

// ClaudeScorer asks the Anthropic Messages API to quote the answer span.
type ClaudeScorer struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
	backoff    func(int) time.Duration
}

func NewClaudeScorer(apiKey, model string, timeout time.Duration) *ClaudeScorer {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeScorer{
		apiKey: apiKey,
		model:  model,
		url:    anthropicURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		backoff: Backoff,
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Model returns the configured model name.
func (c *ClaudeScorer) Model() string {
	return c.model
}

// Score asks Claude for the answer span of passage and anchors it.
func (c *ClaudeScorer) Score(ctx context.Context, question, passage string) (Answer, error) {
	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: 512,
		Messages: []anthropicMessage{
			{Role: "user", Content: BuildSpanPrompt(question, passage)},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return Answer{}, fmt.Errorf("marshal request: %w", err)
	}

	var text string
	err = withRetry(ctx, c.backoff, func() error {
		var callErr error
		text, callErr = c.complete(ctx, body)
		return callErr
	})
	if err != nil {
		return Answer{}, err
	}
	return parseSpanReply(text, passage)
}

func (c *ClaudeScorer) complete(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("claude api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("claude api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("claude error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response from claude")
	}
	return apiResp.Content[0].Text, nil
}

// Close releases resources.
func (c *ClaudeScorer) Close() {
	c.httpClient.CloseIdleConnections()
}
