package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerContact holds the customer columns of a fulfillment record.
type CustomerContact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// FulfillmentRecord is the authoritative reporting row of an order.
type FulfillmentRecord struct {
	OrderID           int64
	RestaurantID      int64
	OrderNumber       string
	Customer          CustomerContact
	TotalAmount       decimal.Decimal
	PaymentStatus     string
	PaymentMethod     string
	FulfillmentStatus string
	DeliveryMethod    string
	ItemCount         int
	ProductDetails    string
	KitchenNotes      string
	OrderDate         *time.Time
	CreatedAt         *time.Time
	UpdatedAt         *time.Time
	ApprovedAt        *time.Time
	ReadyAt           *time.Time
	DispatchedAt      *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
	CancelReason      string
	PrepTimeMinutes   *int
	DeliveryDate      *time.Time
}

// FulfillmentFilter selects reporting rows of one restaurant.
type FulfillmentFilter struct {
	RestaurantID int64
	Status       string
	Limit        int
}

// FulfillmentTransition moves a reporting row to a new fulfillment status.
type FulfillmentTransition struct {
	RestaurantID    int64
	OrderNumber     string
	Status          string
	UpdatedBy       string
	CancelReason    string
	PrepTimeMinutes *int
	At              time.Time
}

// StatusTotal is the number of orders and their summed amount for one status.
type StatusTotal struct {
	Status string
	Count  int
	Amount decimal.Decimal
}

// StageColumns returns the timestamp column and, when tracked, the actor column
// stamped when an order enters the given fulfillment status.
func StageColumns(status string) (atColumn, byColumn string) {
	switch status {
	case FulfillmentApproved:
		return "approved_at", "approved_by"
	case FulfillmentReady:
		return "ready_at", "ready_by"
	case FulfillmentDispatched:
		return "dispatched_at", "dispatched_by"
	case FulfillmentCompleted:
		return "completed_at", ""
	case FulfillmentCancelled:
		return "cancelled_at", ""
	default:
		return "", ""
	}
}
