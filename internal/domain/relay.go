package domain

// StatusUpdate is sent upstream when the kitchen approves or readies an order.
type StatusUpdate struct {
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	UpdatedBy   string `json:"updated_by"`
	Notes       string `json:"notes"`
}

// Dispatch is sent upstream when an order is handed to a rider.
type Dispatch struct {
	OrderNumber  string `json:"order_number"`
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	DispatchedBy string `json:"dispatched_by"`
	Notes        string `json:"notes"`
}

// Cancellation is sent upstream when the kitchen declines or cancels an order.
type Cancellation struct {
	OrderNumber  string `json:"order_number"`
	Status       string `json:"status"`
	CancelledAt  string `json:"cancelled_at"`
	CancelReason string `json:"cancel_reason"`
}
