package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CameronXie/pos-order-relay/internal/domain"
)

// FulfillmentStore updates the relational reporting row of an order.
type FulfillmentStore interface {
	TransitionStatus(ctx context.Context, t domain.FulfillmentTransition) error
	SetPrepTime(ctx context.Context, restaurantID int64, orderNumber string, minutes int) error
}

// FulfillmentService applies kitchen transitions to the reporting table. It does not
// call upstream.
type FulfillmentService struct {
	store  FulfillmentStore
	logger *slog.Logger
	now    func() time.Time
}

// NewFulfillmentService creates a new FulfillmentService
func NewFulfillmentService(store FulfillmentStore, logger *slog.Logger) *FulfillmentService {
	return &FulfillmentService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Transition moves an order to a new fulfillment status, stamping the stage columns.
// Kitchen aliases such as "accepted" are translated first.
func (s *FulfillmentService) Transition(ctx context.Context, t domain.FulfillmentTransition) (string, error) {
	t.Status = domain.NormalizeFulfillmentStatus(t.Status)
	if t.UpdatedBy == "" {
		t.UpdatedBy = DefaultActor
	}
	if t.At.IsZero() {
		t.At = s.now().UTC()
	}

	if err := s.store.TransitionStatus(ctx, t); err != nil {
		return "", fmt.Errorf("transition order %s to %s: %w", t.OrderNumber, t.Status, err)
	}

	s.logger.Info(
		"Order fulfillment status updated",
		"restaurant_id", t.RestaurantID,
		"order_number", t.OrderNumber,
		"status", t.Status,
	)

	return t.Status, nil
}

// SetPrepTime records the kitchen's preparation estimate.
func (s *FulfillmentService) SetPrepTime(ctx context.Context, restaurantID int64, orderNumber string, minutes int) error {
	if err := s.store.SetPrepTime(ctx, restaurantID, orderNumber, minutes); err != nil {
		return fmt.Errorf("set prep time of order %s: %w", orderNumber, err)
	}

	return nil
}
