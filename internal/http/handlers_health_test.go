package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okCheck(context.Context) error { return nil }

func TestHealthHandlerGET(t *testing.T) {
	h := &HealthHandlers{Checks: map[string]HealthCheck{"postgres": okCheck, "redis": okCheck}}
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok","checks":{"postgres":"ok","redis":"ok"}}`, rec.Body.String())
}

func TestHealthHandlerFailingCheck(t *testing.T) {
	h := &HealthHandlers{Checks: map[string]HealthCheck{
		"postgres": okCheck,
		"redis":    func(context.Context) error { return errors.New("dial tcp: connection refused") },
	}}
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t,
		`{"status":"unavailable","checks":{"postgres":"ok","redis":"dial tcp: connection refused"}}`,
		rec.Body.String())
}

func TestHealthHandlerHEAD(t *testing.T) {
	h := &HealthHandlers{}
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodHead, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Zero(t, rec.Body.Len())
}
