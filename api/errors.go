package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/blocniti/blocniti/internal/logging"
	"github.com/blocniti/blocniti/internal/schema"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// minTextLen is the shortest free-text description accepted, counted in
// characters after trimming.
const minTextLen = 10

func tooShort(s string) bool {
	return utf8.RuneCountInString(s) < minTextLen
}

type messageResponse struct {
	Message string              `json:"message"`
	Details []schema.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, messageResponse{Message: msg}, status)
}

func writeValidation(w http.ResponseWriter, details []schema.FieldError) {
	writeJSON(w, messageResponse{Message: "Validation failed", Details: details}, http.StatusBadRequest)
}

// writeInternal logs err with the request's logger and answers with a
// generic message.
func writeInternal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logging.FromContext(r.Context(), logger).Error(msg, slog.Any("err", err))
	writeError(w, http.StatusInternalServerError, msg)
}

// readValid reads the request body and validates it against the named
// schema. It writes the error response itself and reports false when the
// handler must stop.
func readValid(w http.ResponseWriter, r *http.Request, schemas *schema.Loader, name string) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		writeValidation(w, []schema.FieldError{{Field: "body", Message: "could not read request body"}})
		return nil, false
	}
	if !json.Valid(body) {
		writeValidation(w, []schema.FieldError{{Field: "body", Message: "invalid JSON"}})
		return nil, false
	}

	details, err := schemas.Validate(r.Context(), name, body)
	if err != nil {
		writeInternal(w, r, "Validation unavailable", err)
		return nil, false
	}
	if len(details) > 0 {
		writeValidation(w, details)
		return nil, false
	}
	return body, true
}

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return id, ok
}
