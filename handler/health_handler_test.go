package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		h := NewHealthHandler(pingerFunc(func(context.Context) error { return nil }))
		rr := httptest.NewRecorder()

		ErrorHandlingMiddleware(h.HealthCheck).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"API is healthy and running"}`, rr.Body.String())
	})

	t.Run("Database down", func(t *testing.T) {
		h := NewHealthHandler(pingerFunc(func(context.Context) error { return errors.New("connection refused") }))
		rr := httptest.NewRecorder()

		ErrorHandlingMiddleware(h.HealthCheck).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Contains(t, rr.Body.String(), "Database unavailable")
		assert.NotContains(t, rr.Body.String(), "connection refused")
	})
}
