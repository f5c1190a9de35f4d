package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/events"
	"github.com/CameronXie/pos-order-relay/internal/metrics"
	"github.com/CameronXie/pos-order-relay/internal/repository"
)

const (
	NewOrdersLimit        = 100
	RestaurantOrdersLimit = 1000
	DefaultListLimit      = 100
	MaxListLimit          = 500

	statusFilterAll = "all"
)

// OrderRepository defines the document store operations used by the order handler
type OrderRepository interface {
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	InsertOrder(ctx context.Context, order *domain.Order) error
	ListByRestaurant(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

// FulfillmentReader defines the relational reads used by the order handler
type FulfillmentReader interface {
	ListOrders(ctx context.Context, filter domain.FulfillmentFilter) ([]domain.FulfillmentRecord, error)
	GetOrderByNumber(ctx context.Context, restaurantID int64, orderNumber string) (*domain.FulfillmentRecord, error)
}

// OrderHandler handles order intake and order queries
type OrderHandler struct {
	orders       OrderRepository
	fulfillments FulfillmentReader
	publisher    events.Publisher
	metrics      *metrics.Registry
	logger       *slog.Logger
	now          func() time.Time
}

// OrderHandlerOption customises an OrderHandler.
type OrderHandlerOption func(*OrderHandler)

// WithOrderEvents sets the publisher notified of received orders.
func WithOrderEvents(p events.Publisher) OrderHandlerOption {
	return func(h *OrderHandler) {
		h.publisher = p
	}
}

// WithOrderMetrics sets the metrics registry.
func WithOrderMetrics(m *metrics.Registry) OrderHandlerOption {
	return func(h *OrderHandler) {
		h.metrics = m
	}
}

// NewOrderHandler creates a new OrderHandler instance
func NewOrderHandler(
	orders OrderRepository,
	fulfillments FulfillmentReader,
	logger *slog.Logger,
	opts ...OrderHandlerOption,
) *OrderHandler {
	h := &OrderHandler{
		orders:       orders,
		fulfillments: fulfillments,
		publisher:    events.NopPublisher{},
		logger:       logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// OrderReceivedResponse is returned for a newly stored order
type OrderReceivedResponse struct {
	Message     string `json:"message"`
	OrderNumber string `json:"order_number"`
	OrderID     string `json:"order_id"`
}

// DuplicateOrderResponse is returned when the idempotency key was already seen
type DuplicateOrderResponse struct {
	Message     string `json:"message"`
	OrderNumber string `json:"order_number"`
}

// OrderListResponse wraps any list of orders
type OrderListResponse[T any] struct {
	Orders []T `json:"orders"`
	Count  int `json:"count"`
}

func newOrderList[T any](orders []T) OrderListResponse[T] {
	if orders == nil {
		orders = []T{}
	}

	return OrderListResponse[T]{Orders: orders, Count: len(orders)}
}

// ReceiveCloudOrder handles POST /orders/cloud-order-receive - stores an order pushed
// by the upstream platform exactly once per idempotency key
func (h *OrderHandler) ReceiveCloudOrder(w http.ResponseWriter, r *http.Request) {
	var payload domain.OrderPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.logger.Warn("Invalid order payload", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return
	}

	if missing := missingOrderFields(&payload); len(missing) > 0 {
		WriteErrorResponse(
			w,
			http.StatusUnprocessableEntity,
			CodeValidationFailed,
			"Missing or invalid fields: "+strings.Join(missing, ", "),
		)
		return
	}

	existing, err := h.orders.FindByIdempotencyKey(r.Context(), payload.IdempotencyKey)
	switch {
	case err == nil:
		h.respondDuplicate(w, payload.IdempotencyKey, existing.OrderNumber)
		return
	case !isNotFound(err):
		h.logger.Error("Failed to look up order", "error", err, "idempotency_key", payload.IdempotencyKey)
		writeInternalError(w)
		return
	}

	order := &domain.Order{
		ID:             uuid.NewString(),
		OrderPayload:   payload,
		InternalStatus: domain.InternalStatusNew,
		ReceivedAt:     h.now().UTC(),
	}

	if err := h.orders.InsertOrder(r.Context(), order); err != nil {
		var conflictErr *repository.ConflictError
		if errors.As(err, &conflictErr) {
			h.respondDuplicate(w, payload.IdempotencyKey, h.existingOrderNumber(r.Context(), &payload))
			return
		}

		h.logger.Error("Failed to store order", "error", err, "order_number", payload.OrderNumber)
		writeInternalError(w)
		return
	}

	h.metrics.ObserveIntake(metrics.IntakeNew)
	h.logger.Info(
		"Order received",
		"order_number", order.OrderNumber,
		"order_id", order.ID,
		"restaurant_id", order.WebsiteRestaurantID,
	)

	event := events.Event{
		Type:         events.OrderReceived,
		OrderNumber:  order.OrderNumber,
		RestaurantID: order.WebsiteRestaurantID,
		Status:       order.InternalStatus,
		OccurredAt:   order.ReceivedAt,
	}
	pubErr := h.publisher.Publish(context.WithoutCancel(r.Context()), event)
	h.metrics.ObserveEvent(event.Type, pubErr)
	if pubErr != nil {
		h.logger.Warn("Failed to publish order event", "error", pubErr, "order_number", order.OrderNumber)
	}

	WriteJSONResponse(w, http.StatusOK, OrderReceivedResponse{
		Message:     "Order received successfully",
		OrderNumber: order.OrderNumber,
		OrderID:     order.ID,
	})
}

func (h *OrderHandler) respondDuplicate(w http.ResponseWriter, key, orderNumber string) {
	h.metrics.ObserveIntake(metrics.IntakeDuplicate)
	h.logger.Info("Duplicate order ignored", "idempotency_key", key, "order_number", orderNumber)
	WriteJSONResponse(w, http.StatusOK, DuplicateOrderResponse{
		Message:     "Order already processed",
		OrderNumber: orderNumber,
	})
}

// existingOrderNumber resolves the winner of a concurrent duplicate insert.
func (h *OrderHandler) existingOrderNumber(ctx context.Context, payload *domain.OrderPayload) string {
	existing, err := h.orders.FindByIdempotencyKey(ctx, payload.IdempotencyKey)
	if err != nil {
		h.logger.Warn("Failed to load concurrent duplicate", "error", err, "idempotency_key", payload.IdempotencyKey)
		return payload.OrderNumber
	}

	return existing.OrderNumber
}

func missingOrderFields(p *domain.OrderPayload) []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"website_restaurant_id", p.WebsiteRestaurantID},
		{"app_restaurant_uid", p.AppRestaurantUID},
		{"idempotency_key", p.IdempotencyKey},
		{"orderNumber", p.OrderNumber},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}

	if len(p.Items) == 0 {
		missing = append(missing, "items")
	}
	for i := range p.Items {
		if strings.TrimSpace(p.Items[i].Title) == "" {
			missing = append(missing, "items["+strconv.Itoa(i)+"].title")
		}
		if p.Items[i].Quantity <= 0 {
			missing = append(missing, "items["+strconv.Itoa(i)+"].quantity")
		}
	}

	if strings.TrimSpace(p.User.Name) == "" {
		missing = append(missing, "user.name")
	}

	return missing
}

// ListNewOrders handles GET /orders/new - the kitchen app polling endpoint
func (h *OrderHandler) ListNewOrders(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID == "" {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "restaurant_id is required")
		return
	}

	h.listDocumentOrders(w, r, domain.OrderFilter{
		RestaurantID:   restaurantID,
		InternalStatus: domain.InternalStatusNew,
		Limit:          NewOrdersLimit,
	})
}

// ListRestaurantOrders handles GET /orders/restaurant/{id}
func (h *OrderHandler) ListRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	h.listDocumentOrders(w, r, domain.OrderFilter{
		RestaurantID: mux.Vars(r)["id"],
		Status:       r.URL.Query().Get("status"),
		Limit:        RestaurantOrdersLimit,
	})
}

func (h *OrderHandler) listDocumentOrders(w http.ResponseWriter, r *http.Request, filter domain.OrderFilter) {
	orders, err := h.orders.ListByRestaurant(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list orders", "error", err, "restaurant_id", filter.RestaurantID)
		writeInternalError(w)
		return
	}

	WriteJSONResponse(w, http.StatusOK, newOrderList(orders))
}

// GetOrder handles GET /orders/{order_number} - one document store order
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := mux.Vars(r)["order_number"]

	order, err := h.orders.FindByOrderNumber(r.Context(), orderNumber)
	if err != nil {
		if isNotFound(err) {
			h.logger.Warn("Order not found", "order_number", orderNumber)
			WriteErrorResponse(w, http.StatusNotFound, CodeNotFound, "Order not found")
			return
		}

		h.logger.Error("Failed to retrieve order", "error", err, "order_number", orderNumber)
		writeInternalError(w)
		return
	}

	WriteJSONResponse(w, http.StatusOK, order)
}

// ListFulfillmentOrders handles GET /orders/list - relational reporting rows
func (h *OrderHandler) ListFulfillmentOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	restaurantID, err := parseRestaurantID(query.Get("restaurant_id"))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	limit, err := parseListLimit(query.Get("limit"))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	status := query.Get("status")
	if strings.EqualFold(status, statusFilterAll) {
		status = ""
	}

	records, err := h.fulfillments.ListOrders(r.Context(), domain.FulfillmentFilter{
		RestaurantID: restaurantID,
		Status:       domain.NormalizeFulfillmentStatus(status),
		Limit:        limit,
	})
	if err != nil {
		h.logger.Error("Failed to list fulfillment orders", "error", err, "restaurant_id", restaurantID)
		writeInternalError(w)
		return
	}

	WriteJSONResponse(w, http.StatusOK, newOrderList(newFulfillmentOrderViews(records)))
}

// GetFulfillmentOrder handles GET /orders/detail/{order_number}
func (h *OrderHandler) GetFulfillmentOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := mux.Vars(r)["order_number"]

	restaurantID, err := parseRestaurantID(r.URL.Query().Get("restaurant_id"))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	record, err := h.fulfillments.GetOrderByNumber(r.Context(), restaurantID, orderNumber)
	if err != nil {
		if isNotFound(err) {
			WriteErrorResponse(w, http.StatusNotFound, CodeNotFound, "Order not found")
			return
		}

		h.logger.Error("Failed to retrieve fulfillment order", "error", err, "order_number", orderNumber)
		writeInternalError(w)
		return
	}

	WriteJSONResponse(w, http.StatusOK, newFulfillmentOrderView(record))
}

func parseListLimit(value string) (int, error) {
	if value == "" {
		return DefaultListLimit, nil
	}

	limit, err := strconv.Atoi(value)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}

	return min(limit, MaxListLimit), nil
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
