package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ems/internal/domain/ledger"
)

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Error struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldIssue `json:"fields,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func ValidationFailed(w http.ResponseWriter, issues []FieldIssue, requestID string) {
	WriteJSON(w, http.StatusBadRequest, Envelope{
		Success:   false,
		Error:     &Error{Code: "validation_failed", Message: "request validation failed", Fields: issues},
		RequestID: requestID,
	})
}

// FromError maps ledger errors onto the envelope: not-found is 404,
// validation is 400 and anything else is logged and reported as 500.
func FromError(w http.ResponseWriter, err error, requestID string) {
	var fieldErr *ledger.FieldError
	switch {
	case errors.As(err, &fieldErr):
		ValidationFailed(w, []FieldIssue{{Field: fieldErr.Field, Reason: fieldErr.Reason}}, requestID)
	case errors.Is(err, ledger.ErrValidation):
		Fail(w, http.StatusBadRequest, "validation_failed", err.Error(), requestID)
	case errors.Is(err, ledger.ErrNotFound):
		Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	default:
		slog.Error("request failed", "requestId", requestID, "err", err)
		Fail(w, http.StatusInternalServerError, "internal_error", "internal error", requestID)
	}
}
