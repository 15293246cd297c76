package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

type envelope struct {
	Status     string             `json:"status"`
	Message    string             `json:"message,omitempty"`
	Data       any                `json:"data,omitempty"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
}

type errorBody struct {
	Status  string         `json:"status"`
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Status: "success", Message: message, Data: data})
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	writeJSON(w, status, errorBody{Status: "error", Error: code, Message: message, Details: details})
}

// writeError renders a use case error. Coded errors keep their code and
// details; anything else is reduced to its kind so internals do not leak.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if coded, ok := domain.AsCoded(err); ok {
		writeErrorBody(w, status, coded.Code, coded.Message, coded.Details)
		return
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	code, message := codeForStatus(status)
	writeErrorBody(w, status, code, message, nil)
}

func codeForStatus(status int) (string, string) {
	switch status {
	case http.StatusBadRequest:
		return domain.CodeInvalidRequest, "invalid request"
	case http.StatusNotFound:
		return domain.CodeDocumentNotFound, "document not found"
	case http.StatusConflict:
		return domain.CodeDuplicateFile, "duplicate file"
	case http.StatusTooManyRequests:
		return domain.CodeRateLimitExceeded, rateLimitMessage
	case http.StatusServiceUnavailable:
		return domain.CodeServiceUnavailable, "service temporarily unavailable"
	default:
		return domain.CodeInternal, "internal server error"
	}
}
