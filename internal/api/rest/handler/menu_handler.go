package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/menu"
)

// MenuService serves the catalog of a restaurant
type MenuService interface {
	List(ctx context.Context, filter domain.DishFilter) ([]menu.DishView, error)
	Categories(ctx context.Context, restaurantID int64) ([]domain.Category, error)
	SetAvailability(ctx context.Context, restaurantID, dishID int64, available bool) error
	BulkSetAvailability(ctx context.Context, restaurantID int64, dishIDs []int64, available bool) (int64, error)
}

// MenuHandler handles catalog reads and availability toggles
type MenuHandler struct {
	menu   MenuService
	logger *slog.Logger
}

// NewMenuHandler creates a new MenuHandler instance
func NewMenuHandler(menu MenuService, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{
		menu:   menu,
		logger: logger,
	}
}

// MenuItemsResponse lists dishes
type MenuItemsResponse struct {
	Items []menu.DishView `json:"items"`
	Count int             `json:"count"`
}

// CategoriesResponse lists categories
type CategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
}

// BulkAvailabilityRequest is the body of POST /menu/bulk-availability
type BulkAvailabilityRequest struct {
	RestaurantID int64   `json:"restaurant_id"`
	DishIDs      []int64 `json:"dish_ids"`
	Available    *bool   `json:"available"`
}

// BulkAvailabilityResponse reports how many dishes were updated
type BulkAvailabilityResponse struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

// ListItems handles GET /menu/items
func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	restaurantID, err := parseRestaurantID(query.Get("restaurant_id"))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	items, err := h.menu.List(r.Context(), domain.DishFilter{
		RestaurantID: restaurantID,
		Category:     query.Get("category"),
		Search:       query.Get("search"),
	})
	if err != nil {
		h.logger.Error("Failed to list menu items", "error", err, "restaurant_id", restaurantID)
		writeInternalError(w)
		return
	}

	WriteJSONResponse(w, http.StatusOK, MenuItemsResponse{Items: items, Count: len(items)})
}

// ListCategories handles GET /menu/categories
func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := parseRestaurantID(r.URL.Query().Get("restaurant_id"))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	categories, err := h.menu.Categories(r.Context(), restaurantID)
	if err != nil {
		h.logger.Error("Failed to list menu categories", "error", err, "restaurant_id", restaurantID)
		writeInternalError(w)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	WriteJSONResponse(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

// SetAvailability handles PATCH /menu/items/{id}/availability
func (h *MenuHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dishID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || dishID <= 0 {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "dish id must be a positive integer")
		return
	}

	restaurantID, err := parseRestaurantID(query.Get("restaurant_id"))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	available, err := strconv.ParseBool(query.Get("available"))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "available must be true or false")
		return
	}

	if err := h.menu.SetAvailability(r.Context(), restaurantID, dishID, available); err != nil {
		if isNotFound(err) {
			WriteErrorResponse(w, http.StatusNotFound, CodeNotFound, "Dish not found")
			return
		}

		h.logger.Error("Failed to update dish availability", "error", err, "dish_id", dishID)
		writeInternalError(w)
		return
	}

	WriteJSONResponse(w, http.StatusOK, MessageResponse{Message: "Availability updated"})
}

// BulkSetAvailability handles POST /menu/bulk-availability
func (h *MenuHandler) BulkSetAvailability(w http.ResponseWriter, r *http.Request) {
	var req BulkAvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return
	}
	if req.RestaurantID <= 0 {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "restaurant_id must be a positive integer")
		return
	}
	if len(req.DishIDs) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "dish_ids must not be empty")
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	updated, err := h.menu.BulkSetAvailability(r.Context(), req.RestaurantID, req.DishIDs, available)
	if err != nil {
		h.logger.Error("Failed to bulk update availability", "error", err, "restaurant_id", req.RestaurantID)
		writeInternalError(w)
		return
	}

	WriteJSONResponse(w, http.StatusOK, BulkAvailabilityResponse{
		Message: fmt.Sprintf("Updated %d items", updated),
		Updated: updated,
	})
}
