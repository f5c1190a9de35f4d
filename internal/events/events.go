package events

import (
	"context"
	"time"
)

// publishTimeout bounds one publish so a broker outage cannot hold up a request.
const publishTimeout = 10 * time.Second

// Event types.
const (
	OrderReceived      = "order.received"
	OrderStatusChanged = "order.status_changed"
)

// Event is a notification about an order lifecycle change.
type Event struct {
	Type         string    `json:"type"`
	OrderNumber  string    `json:"order_number"`
	RestaurantID string    `json:"restaurant_id,omitempty"`
	Status       string    `json:"status,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
