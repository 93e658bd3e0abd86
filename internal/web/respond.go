package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/justestif/go-wellness-journal/internal/artifacts"
	"github.com/justestif/go-wellness-journal/internal/calendar"
	"github.com/justestif/go-wellness-journal/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAbsent writes the empty object used for a day with no row yet.
func writeAbsent(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, struct{}{})
}

// statusFor maps an error to its HTTP status and client-facing message.
func statusFor(err error) (int, string) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, store.ErrCapacityExceeded),
		errors.Is(err, artifacts.ErrNothingToSummarize):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, artifacts.ErrGeneration):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, store.ErrStorageUnavailable):
		return http.StatusInternalServerError, store.ErrStorageUnavailable.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func badRequest(field, message string) error {
	return &store.ValidationError{Field: field, Message: message}
}

// decodeBody decodes a JSON request body into v. An empty body leaves v zero.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return badRequest("body", "malformed JSON")
}

// resolveDate returns date, or today when date is empty.
func (h *Handlers) resolveDate(date string) (string, error) {
	if date == "" {
		return h.journal.Today(), nil
	}
	if !calendar.ValidDate(date) {
		return "", badRequest("date", "expected YYYY-MM-DD")
	}
	return date, nil
}

func pathID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, badRequest(param, "must be a UUID")
	}
	return id, nil
}
