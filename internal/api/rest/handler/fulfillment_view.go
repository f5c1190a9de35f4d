package handler

import (
	"time"

	"github.com/CameronXie/pos-order-relay/internal/domain"
)

const (
	guestCustomerName     = "Guest"
	unknownPaymentMethod  = "Unknown"
	defaultDeliveryMethod = "delivery"
)

// FulfillmentOrderView is the kitchen app representation of a reporting row.
// Items carries the raw product_details blob.
type FulfillmentOrderView struct {
	ID              string                 `json:"id"`
	OrderNumber     string                 `json:"orderNumber"`
	Customer        domain.CustomerContact `json:"customer"`
	Amount          float64                `json:"amount"`
	Status          string                 `json:"status"`
	PaymentStatus   string                 `json:"paymentStatus"`
	PaymentMethod   string                 `json:"paymentMethod"`
	DeliveryMethod  string                 `json:"deliveryMethod"`
	ItemCount       int                    `json:"itemCount"`
	Items           string                 `json:"items"`
	Notes           string                 `json:"notes"`
	OrderDate       string                 `json:"orderDate"`
	CreatedAt       string                 `json:"createdAt"`
	ApprovedAt      *time.Time             `json:"approvedAt"`
	ReadyAt         *time.Time             `json:"readyAt"`
	DispatchedAt    *time.Time             `json:"dispatchedAt"`
	CompletedAt     *time.Time             `json:"completedAt"`
	CancelledAt     *time.Time             `json:"cancelledAt"`
	CancelReason    string                 `json:"cancelReason"`
	PrepTimeMinutes *int                   `json:"prepTimeMinutes"`
	DeliveryDate    *time.Time             `json:"deliveryDate"`
}

func newFulfillmentOrderView(rec *domain.FulfillmentRecord) FulfillmentOrderView {
	customer := rec.Customer
	if customer.Name == "" {
		customer.Name = guestCustomerName
	}

	orderNumber := rec.OrderNumber
	if orderNumber == "" {
		orderNumber = "ORD" + itoa(rec.OrderID)
	}

	return FulfillmentOrderView{
		ID:              itoa(rec.OrderID),
		OrderNumber:     orderNumber,
		Customer:        customer,
		Amount:          rec.TotalAmount.Round(2).InexactFloat64(),
		Status:          rec.FulfillmentStatus,
		PaymentStatus:   rec.PaymentStatus,
		PaymentMethod:   orDefault(rec.PaymentMethod, unknownPaymentMethod),
		DeliveryMethod:  orDefault(rec.DeliveryMethod, defaultDeliveryMethod),
		ItemCount:       rec.ItemCount,
		Items:           rec.ProductDetails,
		Notes:           rec.KitchenNotes,
		OrderDate:       formatTime(rec.OrderDate),
		CreatedAt:       formatTime(rec.CreatedAt),
		ApprovedAt:      rec.ApprovedAt,
		ReadyAt:         rec.ReadyAt,
		DispatchedAt:    rec.DispatchedAt,
		CompletedAt:     rec.CompletedAt,
		CancelledAt:     rec.CancelledAt,
		CancelReason:    rec.CancelReason,
		PrepTimeMinutes: rec.PrepTimeMinutes,
		DeliveryDate:    rec.DeliveryDate,
	}
}

func newFulfillmentOrderViews(records []domain.FulfillmentRecord) []FulfillmentOrderView {
	views := make([]FulfillmentOrderView, 0, len(records))
	for i := range records {
		views = append(views, newFulfillmentOrderView(&records[i]))
	}

	return views
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(time.RFC3339)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
