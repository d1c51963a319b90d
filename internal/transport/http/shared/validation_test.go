package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/transport/http/api"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Month int    `json:"month" validate:"gte=1,lte=12"`
	Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	issues := Validate(&sample{Email: "nope", Month: 13, Kind: "c"})
	assert.Equal(t, []api.FieldIssue{
		{Field: "name", Reason: "is required"},
		{Field: "email", Reason: "must be a valid email"},
		{Field: "month", Reason: "must be at most 12"},
		{Field: "kind", Reason: "must be one of a b"},
	}, issues)

	assert.Empty(t, Validate(&sample{Name: "ok", Month: 3}))
}

func TestBind(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantOK    bool
		wantField string
	}{
		{name: "valid", body: `{"name":"Alice","month":2}`, wantOK: true},
		{name: "empty body", body: ``, wantField: "body"},
		{name: "malformed", body: `{"name":`, wantField: "body"},
		{name: "unknown field", body: `{"name":"Alice","month":2,"extra":1}`, wantField: "body"},
		{name: "failed tag", body: `{"month":2}`, wantField: "name"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			var dst sample
			ok := Bind(rec, req, &dst, "req-1")
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				return
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var env api.Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			require.NotNil(t, env.Error)
			assert.Equal(t, "req-1", env.RequestID)
			assert.Equal(t, tc.wantField, env.Error.Fields[0].Field)
		})
	}
}

func TestBindOptional(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	dst := sample{Name: "kept"}
	assert.True(t, BindOptional(rec, req, &dst, ""))
	assert.Equal(t, "kept", dst.Name)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Bob","month":3}`))
	req.ContentLength = -1
	assert.True(t, BindOptional(rec, req, &dst, ""))
	assert.Equal(t, "Bob", dst.Name)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	assert.False(t, BindOptional(rec, req, &dst, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBindBodyTooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 64)+`","month":1}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	var dst sample
	assert.False(t, Bind(rec, req, &dst, ""))
	assert.Contains(t, rec.Body.String(), "must not exceed 16 bytes")
}

func TestParseDateAndClock(t *testing.T) {
	d, err := ParseDate("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2025-03-14T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("14/03/2025")
	assert.Error(t, err)

	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	c, err := ParseClock(day, "09:30:15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 9, 30, 15, 0, time.UTC), c)

	_, err = ParseClock(day, "9am")
	assert.Error(t, err)
}
