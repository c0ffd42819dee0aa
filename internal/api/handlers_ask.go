package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docqa/internal/pipeline"
	"github.com/dgallion1/docqa/internal/render"
)

type askRequest struct {
	Question  string `json:"question"`
	TopN      *int   `json:"top_n,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	n := s.cfg.DefaultTopN
	if req.TopN != nil {
		n = *req.TopN
	}

	res, err := s.service.Ask(r.Context(), chi.URLParam(r, "docID"), req.SessionID, strings.TrimSpace(req.Question), n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAnswers(w, r, res)
}

// handleAskFile answers a question against an uploaded file without
// storing it.
func (s *Server) handleAskFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	n := s.cfg.DefaultTopN
	if v := r.FormValue("top_n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, "top_n must be an integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	filename, data, status, err := s.readUpload(r)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	res, err := s.service.AskFile(r.Context(), filename, data, strings.TrimSpace(r.FormValue("question")), n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAnswers(w, r, res)
}

// writeAnswers answers with JSON, or with an HTML fragment when the query
// has format=html.
func writeAnswers(w http.ResponseWriter, r *http.Request, res *pipeline.AskResult) {
	if r.URL.Query().Get("format") != "html" {
		writeJSON(w, http.StatusOK, res)
		return
	}
	if res.SessionID != "" {
		w.Header().Set("X-Session-ID", res.SessionID)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(render.HTML(res.Answers)))
}
