package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/CameronXie/pos-order-relay/internal/dashboard"
)

// Dashboard computes the dashboard aggregates
type Dashboard interface {
	StatsPeriod(start, end string) (dashboard.Period, error)
	CustomersPeriod(start, end string) (dashboard.Period, error)
	Stats(ctx context.Context, restaurantID int64, p dashboard.Period) (*dashboard.Stats, error)
	TopDishes(ctx context.Context, restaurantID int64, p dashboard.Period, limit int) ([]dashboard.DishStat, error)
	FrequentCustomers(ctx context.Context, restaurantID int64, p dashboard.Period, limit int) ([]dashboard.CustomerStat, error)
}

// DashboardHandler serves dashboard aggregates
type DashboardHandler struct {
	dashboard Dashboard
	logger    *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler instance
func NewDashboardHandler(d Dashboard, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: d,
		logger:    logger,
	}
}

// TopDishesResponse lists the best selling dishes
type TopDishesResponse struct {
	Dishes []dashboard.DishStat `json:"dishes"`
}

// FrequentCustomersResponse lists the most frequent customers
type FrequentCustomersResponse struct {
	Customers []dashboard.CustomerStat `json:"customers"`
}

type dashboardQuery struct {
	restaurantID int64
	period       dashboard.Period
	limit        int
}

// Stats handles GET /dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r.URL.Query(), h.dashboard.StatsPeriod)
	if !ok {
		return
	}

	stats, err := h.dashboard.Stats(r.Context(), q.restaurantID, q.period)
	if err != nil {
		h.logger.Error("Failed to compute dashboard stats", "error", err, "restaurant_id", q.restaurantID)
		writeInternalError(w)
		return
	}

	WriteJSONResponse(w, http.StatusOK, stats)
}

// TopDishes handles GET /dashboard/top-dishes
func (h *DashboardHandler) TopDishes(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r.URL.Query(), h.dashboard.StatsPeriod)
	if !ok {
		return
	}

	dishes, err := h.dashboard.TopDishes(r.Context(), q.restaurantID, q.period, q.limit)
	if err != nil {
		h.logger.Error("Failed to compute top dishes", "error", err, "restaurant_id", q.restaurantID)
		writeInternalError(w)
		return
	}
	if dishes == nil {
		dishes = []dashboard.DishStat{}
	}

	WriteJSONResponse(w, http.StatusOK, TopDishesResponse{Dishes: dishes})
}

// FrequentCustomers handles GET /dashboard/frequent-customers
func (h *DashboardHandler) FrequentCustomers(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r.URL.Query(), h.dashboard.CustomersPeriod)
	if !ok {
		return
	}

	customers, err := h.dashboard.FrequentCustomers(r.Context(), q.restaurantID, q.period, q.limit)
	if err != nil {
		h.logger.Error("Failed to compute frequent customers", "error", err, "restaurant_id", q.restaurantID)
		writeInternalError(w)
		return
	}
	if customers == nil {
		customers = []dashboard.CustomerStat{}
	}

	WriteJSONResponse(w, http.StatusOK, FrequentCustomersResponse{Customers: customers})
}

// parseQuery reads restaurant_id, the date window and limit, writing a 400 on bad input.
func (h *DashboardHandler) parseQuery(
	w http.ResponseWriter,
	query url.Values,
	resolve func(start, end string) (dashboard.Period, error),
) (dashboardQuery, bool) {
	restaurantID, err := parseRestaurantID(query.Get("restaurant_id"))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return dashboardQuery{}, false
	}

	period, err := resolve(query.Get("start_date"), query.Get("end_date"))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return dashboardQuery{}, false
	}

	limit := dashboard.DefaultLimit
	if v := query.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit <= 0 {
			WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "limit must be a positive integer")
			return dashboardQuery{}, false
		}
	}

	return dashboardQuery{restaurantID: restaurantID, period: period, limit: limit}, true
}
