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

// HTTPScorer calls an extractive question-answering inference endpoint that
// speaks the Hugging Face "question-answering" task contract.
type HTTPScorer struct {
	url        string
	apiKey     string
	httpClient *http.Client
	backoff    func(int) time.Duration
}

func NewHTTPScorer(url, apiKey string, timeout time.Duration) *HTTPScorer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPScorer{
		url:    url,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		backoff: Backoff,
	}
}

type qaInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type qaRequest struct {
	Inputs qaInputs `json:"inputs"`
}

type qaResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}

type qaError struct {
	Error string `json:"error"`
}

// Score sends one question/passage pair, retrying transient failures.
func (c *HTTPScorer) Score(ctx context.Context, question, passage string) (Answer, error) {
	body, err := json.Marshal(qaRequest{Inputs: qaInputs{Question: question, Context: passage}})
	if err != nil {
		return Answer{}, fmt.Errorf("marshal request: %w", err)
	}

	var ans Answer
	err = withRetry(ctx, c.backoff, func() error {
		var callErr error
		ans, callErr = c.call(ctx, body)
		return callErr
	})
	return ans, err
}

func (c *HTTPScorer) call(ctx context.Context, body []byte) (Answer, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Answer{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Answer{}, fmt.Errorf("qa endpoint: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Answer{}, fmt.Errorf("read response: %w", err)
	}

	// Hosted endpoints answer 503 while the model is loading.
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return Answer{}, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr qaError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return Answer{}, fmt.Errorf("qa endpoint status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return Answer{}, fmt.Errorf("qa endpoint status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	return decodeQAResponse(respBody)
}

// decodeQAResponse accepts a single answer object or a ranked list of them.
func decodeQAResponse(body []byte) (Answer, error) {
	body = bytes.TrimSpace(body)
	var r qaResponse
	if len(body) > 0 && body[0] == '[' {
		var list []qaResponse
		if err := json.Unmarshal(body, &list); err != nil {
			return Answer{}, fmt.Errorf("decode response: %w", err)
		}
		if len(list) == 0 {
			return Answer{}, nil
		}
		r = list[0]
	} else if err := json.Unmarshal(body, &r); err != nil {
		return Answer{}, fmt.Errorf("decode response: %w", err)
	}
	return Answer{Text: r.Answer, Score: r.Score, Start: r.Start, End: r.End}, nil
}

// Close releases resources.
func (c *HTTPScorer) Close() {
	c.httpClient.CloseIdleConnections()
}
