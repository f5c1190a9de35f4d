package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/relay"
)

// StatusRelay writes kitchen transitions locally and relays them upstream
type StatusRelay interface {
	UpdateStatus(ctx context.Context, update domain.StatusUpdate) ([]byte, error)
	Dispatch(ctx context.Context, dispatch domain.Dispatch) ([]byte, error)
	Cancel(ctx context.Context, cancellation domain.Cancellation) ([]byte, error)
}

// FulfillmentUpdater applies kitchen transitions to the reporting table
type FulfillmentUpdater interface {
	Transition(ctx context.Context, t domain.FulfillmentTransition) (string, error)
	SetPrepTime(ctx context.Context, restaurantID int64, orderNumber string, minutes int) error
}

// RelayHandler handles order status changes coming from the kitchen app
type RelayHandler struct {
	relay        StatusRelay
	fulfillments FulfillmentUpdater
	logger       *slog.Logger
}

// NewRelayHandler creates a new RelayHandler instance
func NewRelayHandler(relay StatusRelay, fulfillments FulfillmentUpdater, logger *slog.Logger) *RelayHandler {
	return &RelayHandler{
		relay:        relay,
		fulfillments: fulfillments,
		logger:       logger,
	}
}

// FulfillmentStatusRequest is the body of PATCH /orders/{order_number}/status
type FulfillmentStatusRequest struct {
	RestaurantID    int64  `json:"restaurant_id"`
	Status          string `json:"status"`
	UpdatedBy       string `json:"updated_by"`
	CancelReason    string `json:"cancel_reason"`
	PrepTimeMinutes *int   `json:"prep_time_minutes"`
}

// PrepTimeRequest is the body of PATCH /orders/{order_number}/prep-time
type PrepTimeRequest struct {
	RestaurantID    int64 `json:"restaurant_id"`
	PrepTimeMinutes int   `json:"prep_time_minutes"`
}

// FulfillmentStatusResponse confirms a relational transition
type FulfillmentStatusResponse struct {
	Message     string `json:"message"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

// UpdateStatus handles POST /orders/update-status
func (h *RelayHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.StatusUpdate
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return
	}
	if missing := missingFields(field{"order_number", req.OrderNumber}, field{"status", req.Status}); missing != "" {
		WriteErrorResponse(w, http.StatusUnprocessableEntity, CodeValidationFailed, missing)
		return
	}

	_, err := h.relay.UpdateStatus(r.Context(), req)
	h.respond(w, err, req.OrderNumber, "Order status updated successfully")
}

// Dispatch handles POST /orders/dispatch
func (h *RelayHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req domain.Dispatch
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return
	}
	if missing := missingFields(field{"order_number", req.OrderNumber}); missing != "" {
		WriteErrorResponse(w, http.StatusUnprocessableEntity, CodeValidationFailed, missing)
		return
	}

	_, err := h.relay.Dispatch(r.Context(), req)
	h.respond(w, err, req.OrderNumber, "Order dispatched successfully")
}

// Cancel handles POST /orders/cancel
func (h *RelayHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req domain.Cancellation
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return
	}
	missing := missingFields(field{"order_number", req.OrderNumber}, field{"cancel_reason", req.CancelReason})
	if missing != "" {
		WriteErrorResponse(w, http.StatusUnprocessableEntity, CodeValidationFailed, missing)
		return
	}

	_, err := h.relay.Cancel(r.Context(), req)
	h.respond(w, err, req.OrderNumber, "Order cancelled successfully")
}

func (h *RelayHandler) respond(w http.ResponseWriter, err error, orderNumber, successMessage string) {
	if err == nil {
		WriteJSONResponse(w, http.StatusOK, MessageResponse{Message: successMessage})
		return
	}

	var localErr *relay.LocalWriteError
	if errors.As(err, &localErr) {
		h.logger.Error("Failed to update order locally", "error", err, "order_number", orderNumber)
		writeInternalError(w)
		return
	}

	if writeUpstreamFailure(w, err) {
		return
	}

	h.logger.Error("Failed to relay order update", "error", err, "order_number", orderNumber)
	writeInternalError(w)
}

// TransitionFulfillment handles PATCH /orders/{order_number}/status
func (h *RelayHandler) TransitionFulfillment(w http.ResponseWriter, r *http.Request) {
	orderNumber := mux.Vars(r)["order_number"]

	var req FulfillmentStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return
	}
	if req.RestaurantID <= 0 || req.Status == "" {
		WriteErrorResponse(w, http.StatusUnprocessableEntity, CodeValidationFailed, "Missing or invalid fields: restaurant_id, status")
		return
	}
	if req.PrepTimeMinutes != nil && *req.PrepTimeMinutes < 0 {
		WriteErrorResponse(w, http.StatusUnprocessableEntity, CodeValidationFailed, "prep_time_minutes must not be negative")
		return
	}

	status, err := h.fulfillments.Transition(r.Context(), domain.FulfillmentTransition{
		RestaurantID:    req.RestaurantID,
		OrderNumber:     orderNumber,
		Status:          req.Status,
		UpdatedBy:       req.UpdatedBy,
		CancelReason:    req.CancelReason,
		PrepTimeMinutes: req.PrepTimeMinutes,
	})
	if err != nil {
		h.writeFulfillmentError(w, err, orderNumber)
		return
	}

	WriteJSONResponse(w, http.StatusOK, FulfillmentStatusResponse{
		Message:     "Order status updated",
		OrderNumber: orderNumber,
		Status:      status,
	})
}

// SetPrepTime handles PATCH /orders/{order_number}/prep-time
func (h *RelayHandler) SetPrepTime(w http.ResponseWriter, r *http.Request) {
	orderNumber := mux.Vars(r)["order_number"]

	var req PrepTimeRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return
	}
	if req.RestaurantID <= 0 || req.PrepTimeMinutes <= 0 {
		WriteErrorResponse(w, http.StatusUnprocessableEntity, CodeValidationFailed, "Missing or invalid fields: restaurant_id, prep_time_minutes")
		return
	}

	if err := h.fulfillments.SetPrepTime(r.Context(), req.RestaurantID, orderNumber, req.PrepTimeMinutes); err != nil {
		h.writeFulfillmentError(w, err, orderNumber)
		return
	}

	WriteJSONResponse(w, http.StatusOK, MessageResponse{Message: "Prep time updated"})
}

func (h *RelayHandler) writeFulfillmentError(w http.ResponseWriter, err error, orderNumber string) {
	if isNotFound(err) {
		h.logger.Warn("Fulfillment order not found", "order_number", orderNumber)
		WriteErrorResponse(w, http.StatusNotFound, CodeNotFound, "Order not found")
		return
	}

	h.logger.Error("Failed to update fulfillment order", "error", err, "order_number", orderNumber)
	writeInternalError(w)
}

type field struct {
	name  string
	value string
}

// missingFields returns a validation message naming every blank field, or "".
func missingFields(fields ...field) string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return ""
	}

	return "Missing or invalid fields: " + strings.Join(missing, ", ")
}
