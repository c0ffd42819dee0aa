package qa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claudeServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.True(t, strings.HasPrefix(req.Messages[0].Content, SpanPrompt))
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": reply}},
		})
	}))
}

func TestClaudeScorer_AnchorsQuotedSpan(t *testing.T) {
	srv := claudeServer(t, "```json\n{\"answer\": \"SpaceX\", \"confidence\": 0.87}\n```")
	defer srv.Close()

	c := NewClaudeScorer("key", "test-model", time.Second)
	c.url = srv.URL
	ans, err := c.Score(context.Background(), "What did he found?", "In 2002 he founded SpaceX.")
	require.NoError(t, err)
	assert.Equal(t, Answer{Text: "SpaceX", Score: 0.87, Start: 19, End: 25}, ans)
}

func TestClaudeScorer_QuoteNotInPassage(t *testing.T) {
	srv := claudeServer(t, `{"answer": "Tesla", "confidence": 0.9}`)
	defer srv.Close()

	c := NewClaudeScorer("key", "test-model", time.Second)
	c.url = srv.URL
	ans, err := c.Score(context.Background(), "q", "In 2002 he founded SpaceX.")
	require.NoError(t, err)
	assert.Equal(t, Answer{}, ans)
}

func TestParseSpanReply_ClampsConfidence(t *testing.T) {
	ans, err := parseSpanReply(`{"answer":"b","confidence":1.7}`, "a b c")
	require.NoError(t, err)
	assert.Equal(t, 1.0, ans.Score)
	assert.Equal(t, 2, ans.Start)
}

func TestParseSpanReply_BadJSON(t *testing.T) {
	_, err := parseSpanReply("not json", "a")
	assert.Error(t, err)
}
