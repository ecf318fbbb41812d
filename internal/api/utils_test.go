package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeTarget struct {
	Name string `json:"name"`
}

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name": "Lisbon"}`, ""},
		{"empty body", ``, "body must not be empty"},
		{"malformed", `{"name": `, "badly-formed JSON"},
		{"unknown field", `{"name": "Lisbon", "extra": 1}`, `unknown key "extra"`},
		{"wrong type", `{"name": 42}`, `incorrect JSON type for field "name"`},
		{"trailing data", `{"name": "Lisbon"}{"name": "Porto"}`, "single JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var dst decodeTarget
			err := DecodeJSONBody(rec, req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Lisbon", dst.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeJSONBody_RejectsOversizedBody(t *testing.T) {
	body := `{"name": "` + strings.Repeat("x", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	var dst decodeTarget
	err := DecodeJSONBody(rec, req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than")
}

func TestErrorResponseEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, http.StatusNotFound, "plan not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "plan not found", body.Error)
}

func TestWriteJSONResponse_NoContent(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()

	WriteJSONResponse(rec, req, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestVerifyAudience(t *testing.T) {
	assert.True(t, VerifyAudience([]string{"a", "b"}, "b"))
	assert.False(t, VerifyAudience([]string{"a"}, "b"))
	assert.False(t, VerifyAudience(nil, "b"))
	assert.True(t, VerifyAudience(nil, ""))
}
