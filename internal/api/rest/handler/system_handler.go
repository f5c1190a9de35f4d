package handler

import (
	"net/http"
	"time"

	"github.com/CameronXie/pos-order-relay/internal/version"
)

// SystemHandler serves liveness and discovery endpoints
type SystemHandler struct {
	upstreamBaseURL string
	now             func() time.Time
}

// NewSystemHandler creates a new SystemHandler instance
func NewSystemHandler(upstreamBaseURL string) *SystemHandler {
	return &SystemHandler{
		upstreamBaseURL: upstreamBaseURL,
		now:             time.Now,
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Upstream  string `json:"upstream"`
	Version   string `json:"version"`
}

// IndexResponse is the body of GET /
type IndexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSONResponse(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Upstream:  h.upstreamBaseURL,
		Version:   version.Version,
	})
}

// Index handles GET / with a short map of the main endpoints
func (h *SystemHandler) Index(w http.ResponseWriter, _ *http.Request) {
	WriteJSONResponse(w, http.StatusOK, IndexResponse{
		Message: "POS order relay API",
		Version: version.Version,
		Endpoints: map[string]string{
			"receive_orders":        "/api/orders/cloud-order-receive",
			"get_new_orders":        "/api/orders/new?restaurant_id={id}",
			"get_restaurant_orders": "/api/orders/restaurant/{id}",
			"list_orders":           "/api/orders/list?restaurant_id={id}",
			"update_status":         "/api/orders/update-status",
			"dispatch":              "/api/orders/dispatch",
			"cancel":                "/api/orders/cancel",
			"login":                 "/api/auth/login",
			"menu_items":            "/api/menu/items?restaurant_id={id}",
			"dashboard_stats":       "/api/dashboard/stats?restaurant_id={id}",
			"metrics":               "/metrics",
		},
	})
}
