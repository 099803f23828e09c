package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestFailWritesJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	Fail(discard, rec, "summary failed", errors.New("rate limited"), http.StatusTooManyRequests)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "summary failed", body.Error)
	assert.Equal(t, "rate limited", body.Detail)
}

func TestFailDefaultsToInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(discard, rec, "boom", nil, 0)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Mode string `json:"mode" validate:"required,oneof=ask_anything challenge_me"`
	}
	err := Validator.Struct(&payload{Mode: "quiz"})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	ValidationError(discard, rec, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "oneof=ask_anything challenge_me", body.Fields["mode"])
}

func TestRecovererReturns500(t *testing.T) {
	r := NewRouter(discard, 0)
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("kaboom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
