package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, so error bodies share
// one shape:
//
//	{"error": "conflict", "message": "movie \"Inception\" already exists"}

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ItsHarfer/CineShelf/internal/apperror"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
	Field   string `json:"field,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
// Headers must be set before the status; the body follows.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps an apperror class to an HTTP status and sends it.
//
//	ErrValidation          → 400
//	ErrNotFound            → 404
//	ErrForbidden           → 403
//	ErrConflict            → 409
//	ErrTransport, ErrParse → 502 (the lookup service misbehaved, not the client)
//	ErrStorage, anything   → 500
//
// Storage and unclassified failures get a generic message; driver errors,
// SQL and file paths never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
		resp = ErrorResponse{Error: "validation_error", Message: appErr.Message, Field: appErr.Field}
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
		resp = ErrorResponse{Error: "not_found", Message: appErr.Message}
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
		resp = ErrorResponse{Error: "forbidden", Message: appErr.Message}
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
		resp = ErrorResponse{Error: "conflict", Message: appErr.Message}
	case errors.Is(err, apperror.ErrTransport):
		status = http.StatusBadGateway
		resp = ErrorResponse{Error: "lookup_unavailable", Message: "The movie database could not be reached"}
	case errors.Is(err, apperror.ErrParse):
		status = http.StatusBadGateway
		resp = ErrorResponse{Error: "lookup_invalid", Message: "The movie database sent an unreadable answer"}
	}

	writeJSON(w, status, resp)
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body: "+err.Error())
	}
	return nil
}

// idParam parses the chi URL parameter name as a positive integer id.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

// yearInput accepts a year sent as either a JSON number or a string, keeping
// the raw text so "2010–2016" survives until it is parsed.
type yearInput string

func (y *yearInput) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*y = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*y = yearInput(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*y = yearInput(n.String())
	return nil
}
