package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/vieirasantos/meli-seller-hub/internal/store"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// StateProvider defines the store methods required by the state handler.
type StateProvider interface {
	GetSystemState(ctx context.Context) (*domain.SystemState, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ListProducts(ctx context.Context, opts *store.ProductQuery) ([]domain.Product, int, error)
}

// StateHandler handles system state and dashboard aggregate endpoints.
type StateHandler struct {
	store StateProvider
}

// NewStateHandler creates a new StateHandler.
func NewStateHandler(s StateProvider) *StateHandler {
	return &StateHandler{store: s}
}

// SystemStateOutput is the response for the system state endpoint.
type SystemStateOutput struct {
	Body *domain.SystemState
}

// DashboardMetricsOutput is the response for the dashboard aggregates.
type DashboardMetricsOutput struct {
	Body domain.DashboardMetrics
}

// GetSystemState returns current aggregate entity counts.
func (h *StateHandler) GetSystemState(
	ctx context.Context,
	_ *struct{},
) (*SystemStateOutput, error) {
	state, err := h.store.GetSystemState(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get system state")
	}
	return &SystemStateOutput{Body: state}, nil
}

// dashboardQueryLimit caps the product scan for revenue aggregation.
const dashboardQueryLimit = 500

// GetDashboardMetrics computes sales aggregates across all accounts:
// totals, revenue, average ticket, and conversion rate.
func (h *StateHandler) GetDashboardMetrics(
	ctx context.Context,
	_ *struct{},
) (*DashboardMetricsOutput, error) {
	accounts, err := h.store.ListAccounts(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing accounts failed: " + err.Error())
	}

	products, _, err := h.store.ListProducts(ctx, &store.ProductQuery{Limit: dashboardQueryLimit})
	if err != nil {
		return nil, huma.Error500InternalServerError("listing products failed: " + err.Error())
	}

	return &DashboardMetricsOutput{Body: domain.ComputeMetrics(accounts, products)}, nil
}

// RegisterStateRoutes registers system state endpoints with the Huma API.
func RegisterStateRoutes(api huma.API, h *StateHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-system-state",
		Method:      http.MethodGet,
		Path:        "/api/v1/system/state",
		Summary:     "Get system state",
		Description: "Returns aggregate entity counts and the time of the last successful sync.",
		Tags:        []string{"system"},
	}, h.GetSystemState)

	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard-metrics",
		Method:      http.MethodGet,
		Path:        "/api/v1/metrics/dashboard",
		Summary:     "Get dashboard metrics",
		Description: "Computes sales totals, revenue, average ticket, and conversion rate across accounts.",
		Tags:        []string{"system"},
	}, h.GetDashboardMetrics)
}
