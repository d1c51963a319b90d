package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/domain/ledger"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{name: "field error", err: &ledger.FieldError{Field: "name", Reason: "is required"}, wantStatus: http.StatusBadRequest, wantCode: "validation_failed", wantField: "name"},
		{name: "wrapped field error", err: fmt.Errorf("create: %w", &ledger.FieldError{Field: "title", Reason: "is required"}), wantStatus: http.StatusBadRequest, wantCode: "validation_failed", wantField: "title"},
		{name: "plain validation", err: ledger.ErrValidation, wantStatus: http.StatusBadRequest, wantCode: "validation_failed"},
		{name: "not found", err: ledger.ErrEmployeeNotFound, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "other", err: errors.New("disk full"), wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, tc.err, "req-9")
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var env Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, "req-9", env.RequestID)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.wantCode, env.Error.Code)
			if tc.wantField != "" {
				require.Len(t, env.Error.Fields, 1)
				assert.Equal(t, tc.wantField, env.Error.Fields[0].Field)
			}
		})
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, errors.New("open /secret/path: permission denied"), "")
	assert.NotContains(t, rec.Body.String(), "/secret/path")
}

func TestSuccessAndCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]int{"n": 1}, "r")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"n":1},"requestId":"r"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Created(rec, "x", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":"x"}`, rec.Body.String())
}
