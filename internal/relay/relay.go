package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/events"
	"github.com/CameronXie/pos-order-relay/internal/metrics"
	"github.com/CameronXie/pos-order-relay/internal/upstream"
)

// Relay operations, used as metric labels.
const (
	OperationUpdateStatus = "update_status"
	OperationDispatch     = "dispatch"
	OperationCancel       = "cancel"

	DefaultActor = "kitchen_app"
)

// LocalWriteError is returned when the document store rejected the local write. No
// upstream call was made.
type LocalWriteError struct {
	OrderNumber string
	Err         error
}

func (e *LocalWriteError) Error() string {
	return fmt.Sprintf("write order %s locally: %v", e.OrderNumber, e.Err)
}

func (e *LocalWriteError) Unwrap() error {
	return e.Err
}

// OrderStore applies relay transitions to the document copy of an order.
type OrderStore interface {
	ApplyStatusChange(ctx context.Context, orderNumber string, change domain.StatusChange) (bool, error)
}

// Upstream posts lifecycle events to the e-commerce platform.
type Upstream interface {
	PostStatusUpdate(ctx context.Context, update domain.StatusUpdate) ([]byte, error)
	PostDispatch(ctx context.Context, dispatch domain.Dispatch) ([]byte, error)
	PostCancel(ctx context.Context, cancellation domain.Cancellation) ([]byte, error)
}

// Service writes kitchen status changes locally and then relays them upstream.
// There is no rollback: an upstream failure leaves the local write in place.
type Service struct {
	orders    OrderStore
	upstream  Upstream
	publisher events.Publisher
	metrics   *metrics.Registry
	logger    *slog.Logger
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithPublisher sets the event publisher notified after each local write.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the clock used when a request carries no usable timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new relay Service
func NewService(orders OrderStore, up Upstream, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		orders:    orders,
		upstream:  up,
		publisher: events.NopPublisher{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// UpdateStatus records an approval or ready transition and relays it.
func (s *Service) UpdateStatus(ctx context.Context, update domain.StatusUpdate) ([]byte, error) {
	if update.UpdatedBy == "" {
		update.UpdatedBy = DefaultActor
	}

	at := s.parseTimestamp(update.Timestamp)
	change := domain.StatusChange{
		Status:    update.Status,
		UpdatedAt: &at,
		Notes:     update.Notes,
	}

	return s.relay(ctx, OperationUpdateStatus, update.OrderNumber, change, func(ctx context.Context) ([]byte, error) {
		return s.upstream.PostStatusUpdate(ctx, update)
	})
}

// Dispatch records that an order was handed to a rider and relays it.
func (s *Service) Dispatch(ctx context.Context, dispatch domain.Dispatch) ([]byte, error) {
	if dispatch.DispatchedBy == "" {
		dispatch.DispatchedBy = DefaultActor
	}
	dispatch.Status = domain.InternalStatusDispatched

	at := s.parseTimestamp(dispatch.Timestamp)
	change := domain.StatusChange{
		Status:       domain.InternalStatusDispatched,
		DispatchedAt: &at,
		Notes:        dispatch.Notes,
	}

	return s.relay(ctx, OperationDispatch, dispatch.OrderNumber, change, func(ctx context.Context) ([]byte, error) {
		return s.upstream.PostDispatch(ctx, dispatch)
	})
}

// Cancel records a cancellation and relays it.
func (s *Service) Cancel(ctx context.Context, cancellation domain.Cancellation) ([]byte, error) {
	cancellation.Status = domain.InternalStatusCancelled

	at := s.parseTimestamp(cancellation.CancelledAt)
	change := domain.StatusChange{
		Status:       domain.InternalStatusCancelled,
		CancelledAt:  &at,
		CancelReason: cancellation.CancelReason,
	}

	return s.relay(ctx, OperationCancel, cancellation.OrderNumber, change, func(ctx context.Context) ([]byte, error) {
		return s.upstream.PostCancel(ctx, cancellation)
	})
}

func (s *Service) relay(
	ctx context.Context,
	operation string,
	orderNumber string,
	change domain.StatusChange,
	send func(context.Context) ([]byte, error),
) ([]byte, error) {
	s.logger.Info("Relaying order status", "operation", operation, "order_number", orderNumber, "status", change.Status)

	matched, err := s.orders.ApplyStatusChange(ctx, orderNumber, change)
	if err != nil {
		s.metrics.ObserveRelay(operation, metrics.OutcomeLocalError)
		return nil, &LocalWriteError{OrderNumber: orderNumber, Err: err}
	}

	if !matched {
		s.logger.Warn("Relayed order not found locally", "operation", operation, "order_number", orderNumber)
	} else {
		s.publish(ctx, events.Event{
			Type:        events.OrderStatusChanged,
			OrderNumber: orderNumber,
			Status:      change.Status,
			OccurredAt:  s.now().UTC(),
		})
	}

	body, err := send(ctx)
	if err != nil {
		var netErr *upstream.NetworkError
		var statusErr *upstream.StatusError
		switch {
		case errors.As(err, &netErr):
			s.metrics.ObserveRelay(operation, metrics.OutcomeUnavailable)
			s.logger.Error("Upstream unreachable", "operation", operation, "order_number", orderNumber, "error", err)
		case errors.As(err, &statusErr):
			s.metrics.ObserveRelay(operation, metrics.OutcomeUpstreamError)
			s.logger.Error(
				"Upstream rejected order update",
				"operation", operation,
				"order_number", orderNumber,
				"status_code", statusErr.StatusCode,
				"body", string(statusErr.Body),
			)
		default:
			s.metrics.ObserveRelay(operation, metrics.OutcomeUpstreamError)
			s.logger.Error("Failed to relay order update", "operation", operation, "order_number", orderNumber, "error", err)
		}
		return nil, err
	}

	s.metrics.ObserveRelay(operation, metrics.OutcomeSuccess)

	return body, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	err := s.publisher.Publish(context.WithoutCancel(ctx), event)
	s.metrics.ObserveEvent(event.Type, err)
	if err != nil {
		s.logger.Warn("Failed to publish order event", "type", event.Type, "order_number", event.OrderNumber, "error", err)
	}
}

// parseTimestamp reads an ISO 8601 timestamp, falling back to the current time.
func (s *Service) parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}

	return s.now().UTC()
}
