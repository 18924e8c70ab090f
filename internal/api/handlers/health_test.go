package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vieirasantos/meli-seller-hub/internal/api/handlers"
	"github.com/vieirasantos/meli-seller-hub/internal/store/storetest"
)

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := handlers.NewHealthHandler(storetest.New())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Healthz(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	t.Run("database reachable", func(t *testing.T) {
		t.Parallel()

		h := handlers.NewHealthHandler(storetest.New())

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, h.Readyz(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ready"`)
	})

	t.Run("database down", func(t *testing.T) {
		t.Parallel()

		mem := storetest.New()
		mem.FailWith = errors.New("connection refused")
		h := handlers.NewHealthHandler(mem)

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, h.Readyz(c))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"unavailable"`)
	})
}
