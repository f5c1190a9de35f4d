package domain

import "time"

// Customization is an add-on selected for an order item.
type Customization struct {
	Group string  `json:"group" bson:"group"`
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
}

// OrderItem is a single line of an upstream order. Monetary fields are kept in the
// string form the upstream platform sends them in.
type OrderItem struct {
	Title               string          `json:"title" bson:"title"`
	Quantity            int             `json:"quantity" bson:"quantity"`
	UnitPrice           string          `json:"unitPrice" bson:"unitPrice"`
	UnitPriceMinor      int64           `json:"unitPriceMinor" bson:"unitPriceMinor"`
	Price               float64         `json:"price" bson:"price"`
	LineTotal           string          `json:"lineTotal" bson:"lineTotal"`
	OriginalUnitPrice   string          `json:"originalUnitPrice" bson:"originalUnitPrice"`
	DiscountedUnitPrice string          `json:"discountedUnitPrice" bson:"discountedUnitPrice"`
	DiscountPerUnit     string          `json:"discountPerUnit" bson:"discountPerUnit"`
	DiscountPerLine     string          `json:"discountPerLine" bson:"discountPerLine"`
	Customizations      []Customization `json:"customizations" bson:"customizations"`
	Notes               string          `json:"notes" bson:"notes"`
}

// Address is the delivery address of a customer.
type Address struct {
	Line1    string `json:"line1" bson:"line1"`
	Line2    string `json:"line2" bson:"line2"`
	City     string `json:"city" bson:"city"`
	State    string `json:"state" bson:"state"`
	Country  string `json:"country" bson:"country"`
	Postcode string `json:"postcode" bson:"postcode"`
}

// Customer is the person who placed the order upstream.
type Customer struct {
	Name    string  `json:"name" bson:"name"`
	Phone   string  `json:"phone" bson:"phone"`
	Email   string  `json:"email" bson:"email"`
	Address Address `json:"address" bson:"address"`
}

// RestaurantRef names the restaurant an order was placed with.
type RestaurantRef struct {
	Name string `json:"name" bson:"name"`
}

// Totals holds the order totals as displayed by the upstream platform.
type Totals struct {
	Subtotal string `json:"subtotal" bson:"subtotal"`
	Discount string `json:"discount" bson:"discount"`
	Delivery string `json:"delivery" bson:"delivery"`
	VAT      string `json:"vat" bson:"vat"`
	Total    string `json:"total" bson:"total"`
}

// OrderPayload is the order as pushed by the upstream e-commerce platform.
type OrderPayload struct {
	WebsiteRestaurantID string        `json:"website_restaurant_id" bson:"website_restaurant_id"`
	AppRestaurantUID    string        `json:"app_restaurant_uid" bson:"app_restaurant_uid"`
	UserID              string        `json:"userId" bson:"userId"`
	CallbackURL         string        `json:"callback_url" bson:"callback_url"`
	IdempotencyKey      string        `json:"idempotency_key" bson:"idempotency_key"`
	OrderNumber         string        `json:"orderNumber" bson:"orderNumber"`
	Amount              float64       `json:"amount" bson:"amount"`
	AmountDisplay       string        `json:"amountDisplay" bson:"amountDisplay"`
	Totals              Totals        `json:"totals" bson:"totals"`
	Status              string        `json:"status" bson:"status"`
	Channel             string        `json:"channel" bson:"channel"`
	DeliveryMethod      string        `json:"deliveryMethod" bson:"deliveryMethod"`
	Items               []OrderItem   `json:"items" bson:"items"`
	User                Customer      `json:"user" bson:"user"`
	Restaurant          RestaurantRef `json:"restaurant" bson:"restaurant"`
	OrderNotes          string        `json:"orderNotes" bson:"orderNotes"`
}

// Order is the intake-side copy of an order kept in the document store.
type Order struct {
	ID           string `json:"_id" bson:"_id"`
	OrderPayload `bson:",inline"`

	InternalStatus string     `json:"internal_status" bson:"internal_status"`
	ReceivedAt     time.Time  `json:"received_at" bson:"received_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	DispatchedAt   *time.Time `json:"dispatched_at,omitempty" bson:"dispatched_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelReason   string     `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
	Notes          string     `json:"notes,omitempty" bson:"notes,omitempty"`
}

// OrderFilter selects document-store orders of one restaurant.
type OrderFilter struct {
	RestaurantID   string
	Status         string
	InternalStatus string
	Limit          int64
}

// StatusChange is the set of fields a relay transition writes to the document store.
// Nil and empty fields are left untouched.
type StatusChange struct {
	Status       string
	UpdatedAt    *time.Time
	DispatchedAt *time.Time
	CancelledAt  *time.Time
	CancelReason string
	Notes        string
}
