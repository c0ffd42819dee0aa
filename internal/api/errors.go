package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docqa/internal/parser"
	"github.com/dgallion1/docqa/internal/pipeline"
	"github.com/dgallion1/docqa/internal/qa"
)

// statusClientClosed is the nginx convention for a request the client
// abandoned.
const statusClientClosed = 499

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrEmptyQuestion), errors.Is(err, pipeline.ErrInvalidTopN):
		return http.StatusBadRequest
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, pipeline.ErrEmptyDocument), errors.Is(err, pipeline.ErrUnreadable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, qa.ErrScoringUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, qa.ErrInvalidSpan), errors.Is(err, qa.ErrInvalidScore), errors.Is(err, qa.ErrEmptyContext):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosed
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	jsonError(w, err.Error(), statusFor(err))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
