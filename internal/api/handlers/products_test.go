package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vieirasantos/meli-seller-hub/internal/api/handlers"
	"github.com/vieirasantos/meli-seller-hub/internal/store/storetest"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

func newProductsAPI(t *testing.T, mem *storetest.Memory) humatest.TestAPI {
	t.Helper()
	h := handlers.NewProductsHandler(mem)
	_, api := humatest.New(t)
	handlers.RegisterProductRoutes(api, h)
	return api
}

func seedProducts(t *testing.T, mem *storetest.Memory) {
	t.Helper()
	require.NoError(t, mem.ReplaceAccountProducts(context.Background(), "LOJA_A", []domain.Product{
		{ID: "MLB1", Title: "Fone Bluetooth", Price: 199.9, Status: domain.ProductActive, Account: "LOJA_A"},
		{ID: "MLB2", Title: "Carregador USB-C", Price: 59.9, Status: domain.ProductPaused, Account: "LOJA_A"},
	}))
	require.NoError(t, mem.ReplaceAccountProducts(context.Background(), "LOJA_B", []domain.Product{
		{ID: "MLB3", Title: "Fone com fio", Price: 29.9, Status: domain.ProductActive, Account: "LOJA_B"},
	}))
}

func TestListProducts(t *testing.T) {
	t.Parallel()

	mem := storetest.New()
	seedProducts(t, mem)
	api := newProductsAPI(t, mem)

	t.Run("no filters returns everything", func(t *testing.T) {
		resp := api.Get("/api/v1/products")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"total":3`)
	})

	t.Run("account filter", func(t *testing.T) {
		resp := api.Get("/api/v1/products?account=LOJA_B")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"total":1`)
		assert.Contains(t, resp.Body.String(), "MLB3")
	})

	t.Run("status filter", func(t *testing.T) {
		resp := api.Get("/api/v1/products?status=paused")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"total":1`)
		assert.Contains(t, resp.Body.String(), "Carregador USB-C")
	})

	t.Run("title search is case-insensitive", func(t *testing.T) {
		resp := api.Get("/api/v1/products?search=fone")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"total":2`)
	})

	t.Run("no matches returns empty list", func(t *testing.T) {
		resp := api.Get("/api/v1/products?search=inexistente")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"products":[]`)
	})
}

func TestGetProduct(t *testing.T) {
	t.Parallel()

	mem := storetest.New()
	seedProducts(t, mem)
	api := newProductsAPI(t, mem)

	resp := api.Get("/api/v1/products/MLB1")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Fone Bluetooth")

	resp = api.Get("/api/v1/products/MLB999")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
