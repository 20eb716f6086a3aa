package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRequest struct {
	Name string `json:"name" validate:"required,max=5"`
}

type selfValidating struct {
	err error
}

func (s selfValidating) Validate() error { return s.err }

func TestTraceID(t *testing.T) {
	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)

	_, err := uuid.Parse(traceID)
	assert.NoError(t, err, "trace ID should be a UUID")
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Equal(t, "abc", GetTraceID(WithTraceID(context.Background(), "abc")))
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		isEmpty bool
	}{
		{name: "valid", body: `{"name":"abc"}`},
		{name: "empty body", body: ``, wantErr: true, isEmpty: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
		{name: "unknown field", body: `{"name":"abc","extra":1}`, wantErr: true},
		{name: "trailing value", body: `{"name":"abc"} {"name":"def"}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			w := httptest.NewRecorder()

			var v taggedRequest
			err := DecodeJSON(w, r, &v)
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "abc", v.Name)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.isEmpty, errors.Is(err, ErrEmptyBody))
		})
	}
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&taggedRequest{Name: "abc"}))
	assert.Error(t, ValidateRequest(&taggedRequest{}))
	assert.Error(t, ValidateRequest(&taggedRequest{Name: "toolong"}))

	custom := errors.New("custom")
	assert.ErrorIs(t, ValidateRequest(selfValidating{err: custom}), custom)
	assert.NoError(t, ValidateRequest(selfValidating{}))
}

type trimmedRequest struct {
	Name string
}

func (r *trimmedRequest) Normalize() { r.Name = strings.TrimSpace(r.Name) }

func (r *trimmedRequest) Validate() error {
	if r.Name != strings.TrimSpace(r.Name) {
		return errors.New("not normalized")
	}
	return nil
}

func TestValidateRequestNormalizesFirst(t *testing.T) {
	req := &trimmedRequest{Name: "  abc "}
	require.NoError(t, ValidateRequest(req))
	assert.Equal(t, "abc", req.Name)
}

func TestRespondWithJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	w := httptest.NewRecorder()

	RespondWithJSON(w, r, http.StatusOK, map[string]string{"title": "Test"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"title":"Test"}`, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/tasks/1", nil)
	r = r.WithContext(WithTraceID(r.Context(), "trace-123"))
	w := httptest.NewRecorder()

	RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "An unexpected error occurred",
		errors.New("dial postgres://app:secret@db failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "An unexpected error occurred", body.Error)
	assert.Equal(t, "trace-123", body.TraceID)
	assert.NotContains(t, w.Body.String(), "secret", "internal error detail must not leak")
}

func TestRespondWithError(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, r, http.StatusNotFound, "Task not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Task not found"}`, w.Body.String())
}
