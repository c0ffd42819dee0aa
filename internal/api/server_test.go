package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docqa/internal/config"
	"github.com/dgallion1/docqa/internal/parser"
	"github.com/dgallion1/docqa/internal/pipeline"
	"github.com/dgallion1/docqa/internal/qa"
	"github.com/dgallion1/docqa/internal/section"
)

const testKey = "secret"

const article = `<html><head><title>Jane Doe</title></head><body>
<h1>Jane Doe</h1>
<p>Jane Doe is a painter.[1]</p>
<h2>Contents</h2>
<p>1 Early life 2 Career</p>
<h2>Early life [edit]</h2>
<p>She was born in Lyon in 1971.</p>
<h2>Career</h2>
<p>She moved to Canada in 1995 and opened a studio.</p>
</body></html>`

func newTestServer(t *testing.T, s qa.Scorer) *Server {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	stats := qa.NewStats(time.Hour)
	cfg := config.Config{
		DocqaAPIKey:    testKey,
		ScorerBackend:  qa.BackendLexical,
		DefaultTopN:    3,
		MaxUploadBytes: 1 << 20,
	}
	pipe := pipeline.New(qa.Instrument(s, stats), log, section.DefaultConfig(), 2)
	return NewServer(pipeline.NewService(pipe, time.Hour, log), stats, log, cfg)
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func do(t *testing.T, srv http.Handler, req *http.Request, out any) *httptest.ResponseRecorder {
	t.Helper()
	if req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func upload(t *testing.T, srv http.Handler) string {
	t.Helper()
	body, ct := multipartBody(t, "jane.html", article, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", ct)

	var resp struct {
		DocID    string `json:"doc_id"`
		Title    string `json:"title"`
		Sections []struct {
			Title string `json:"title"`
		} `json:"sections"`
	}
	rec := do(t, srv, req, &resp)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Jane Doe", resp.Title)
	require.Len(t, resp.Sections, 3)
	assert.Equal(t, "Career", resp.Sections[2].Title)
	return resp.DocID
}

type askResponse struct {
	SessionID string `json:"session_id"`
	DocID     string `json:"doc_id"`
	Question  string `json:"question"`
	Answers   []struct {
		Title        string  `json:"title"`
		Answer       string  `json:"answer"`
		ScorePercent float64 `json:"score_percent"`
		Pre          string  `json:"pre"`
		Highlight    string  `json:"highlight"`
		Post         string  `json:"post"`
	} `json:"answers"`
}

func askJSON(docID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+docID+"/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, qa.LexicalScorer{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAuth(t *testing.T) {
	srv := newTestServer(t, qa.LexicalScorer{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = do(t, srv, req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid api key")
}

func TestUploadAndAsk(t *testing.T) {
	srv := newTestServer(t, qa.LexicalScorer{})
	docID := upload(t, srv)

	var resp askResponse
	rec := do(t, srv, askJSON(docID, `{"question":"When did she move to Canada?","top_n":2}`), &resp)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, docID, resp.DocID)
	assert.NotEmpty(t, resp.SessionID)
	require.Len(t, resp.Answers, 2)
	top := resp.Answers[0]
	assert.Equal(t, "Career", top.Title)
	assert.Equal(t, "", top.Pre)
	assert.Equal(t, "She moved to Canada in 1995 and opened a studio.", top.Highlight)
	assert.InDelta(t, 66.67, top.ScorePercent, 0.001)
}

func TestAsk_DefaultTopN(t *testing.T) {
	srv := newTestServer(t, qa.LexicalScorer{})
	docID := upload(t, srv)

	var resp askResponse
	rec := do(t, srv, askJSON(docID, `{"question":"Where was she born?"}`), &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Answers, 3)
	assert.Equal(t, "Early life", resp.Answers[0].Title)
}

func TestAsk_Errors(t *testing.T) {
	srv := newTestServer(t, qa.LexicalScorer{})
	docID := upload(t, srv)

	tests := []struct {
		name   string
		docID  string
		body   string
		status int
	}{
		{"unknown document", "nope", `{"question":"q"}`, http.StatusNotFound},
		{"empty question", docID, `{"question":"  "}`, http.StatusBadRequest},
		{"zero top_n", docID, `{"question":"q","top_n":0}`, http.StatusBadRequest},
		{"bad json", docID, `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, askJSON(tt.docID, tt.body), nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestAsk_ScorerFailure(t *testing.T) {
	srv := newTestServer(t, qa.ScorerFunc(func(context.Context, string, string) (qa.Answer, error) {
		return qa.Answer{}, errors.New("model offline")
	}))
	docID := upload(t, srv)

	var resp map[string]string
	rec := do(t, srv, askJSON(docID, `{"question":"q"}`), &resp)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, resp["error"], "model offline")
}

func TestAsk_InvalidSpanFromScorer(t *testing.T) {
	srv := newTestServer(t, qa.ScorerFunc(func(context.Context, string, string) (qa.Answer, error) {
		return qa.Answer{Text: "x", Score: 0.4, Start: 0, End: 500}, nil
	}))
	docID := upload(t, srv)

	rec := do(t, srv, askJSON(docID, `{"question":"q"}`), nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUpload_Errors(t *testing.T) {
	srv := newTestServer(t, qa.LexicalScorer{})

	tests := []struct {
		name     string
		filename string
		content  string
		status   int
	}{
		{"missing file", "", "", http.StatusBadRequest},
		{"unsupported type", "notes.exe", "MZ", http.StatusUnsupportedMediaType},
		{"no sections", "flat.html", "<p>only a paragraph</p>", http.StatusUnprocessableEntity},
		{"too large", "big.txt", strings.Repeat("a", 1<<20+1), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.filename, tt.content, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
			req.Header.Set("Content-Type", ct)
			rec := do(t, srv, req, nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestDocumentLifecycle(t *testing.T) {
	srv := newTestServer(t, qa.LexicalScorer{})
	docID := upload(t, srv)

	var list struct {
		Documents []map[string]any `json:"documents"`
	}
	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/documents", nil), &list)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, list.Documents, 1)
	assert.Equal(t, docID, list.Documents[0]["doc_id"])

	var got map[string]any
	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/documents/"+docID, nil), &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jane.html", got["filename"])

	rec = do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/documents/"+docID, nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/documents/"+docID, nil), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/documents/"+docID, nil), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchUpload(t *testing.T) {
	srv := newTestServer(t, qa.LexicalScorer{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range map[string]string{"jane.html": article, "bad.exe": "x"} {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		fmt.Fprint(fw, content)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/batch", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		Documents []map[string]any `json:"documents"`
	}
	rec := do(t, srv, req, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Documents, 2)

	byName := map[string]map[string]any{}
	for _, d := range resp.Documents {
		byName[d["filename"].(string)] = d
	}
	assert.NotEmpty(t, byName["jane.html"]["doc_id"])
	assert.Contains(t, byName["bad.exe"]["error"], "unsupported")
}

func TestAskFile(t *testing.T) {
	srv := newTestServer(t, qa.LexicalScorer{})

	body, ct := multipartBody(t, "jane.html", article, map[string]string{
		"question": "Where was she born?",
		"top_n":    "1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/ask", body)
	req.Header.Set("Content-Type", ct)

	var resp askResponse
	rec := do(t, srv, req, &resp)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, resp.Answers, 1)
	assert.Equal(t, "Early life", resp.Answers[0].Title)
	assert.Empty(t, resp.DocID)

	body, ct = multipartBody(t, "jane.html", article, map[string]string{"question": "q", "top_n": "many"})
	req = httptest.NewRequest(http.MethodPost, "/api/ask", body)
	req.Header.Set("Content-Type", ct)
	rec = do(t, srv, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScorerStats(t *testing.T) {
	srv := newTestServer(t, qa.LexicalScorer{})
	docID := upload(t, srv)
	do(t, srv, askJSON(docID, `{"question":"Where was she born?"}`), nil)

	var resp struct {
		Backend string           `json:"backend"`
		Stats   qa.StatsSnapshot `json:"stats"`
	}
	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/stats/scorer", nil), &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lexical", resp.Backend)
	assert.Equal(t, 3, resp.Stats.Calls)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{pipeline.ErrDocumentNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", pipeline.ErrSuperseded), http.StatusConflict},
		{parser.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{pipeline.ErrUnreadable, http.StatusUnprocessableEntity},
		{qa.ErrEmptyContext, http.StatusBadGateway},
		{qa.ErrInvalidScore, http.StatusBadGateway},
		{fmt.Errorf("%w: %w", qa.ErrScoringUnavailable, context.DeadlineExceeded), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{context.Canceled, statusClientClosed},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestAsk_HTMLFormat(t *testing.T) {
	srv := newTestServer(t, qa.LexicalScorer{})
	docID := upload(t, srv)

	req := askJSON(docID, `{"question":"Where was she born?","top_n":1,"session_id":"s-1"}`)
	req.URL.RawQuery = "format=html"
	rec := do(t, srv, req, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "s-1", rec.Header().Get("X-Session-ID"))
	assert.Contains(t, rec.Body.String(), "<h2>Early life</h2>")
	assert.Contains(t, rec.Body.String(), `<mark class="answer-span">She was born in Lyon in 1971.</mark>`)
}

func TestCORS(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	cfg := config.Config{DocqaAPIKey: testKey, DefaultTopN: 3, MaxUploadBytes: 1 << 20, CORSOrigins: []string{"https://app.example.com"}}
	pipe := pipeline.New(qa.LexicalScorer{}, log, section.DefaultConfig(), 1)
	srv := NewServer(pipeline.NewService(pipe, time.Hour, log), nil, log, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/documents", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
