package models

// CheckoutEvent is published to Kafka after a staged checkout is submitted
// successfully; the notifier consumes it to send order confirmations.
type CheckoutEvent struct {
	OrderID       int    `json:"order_id"`
	UserID        int    `json:"user_id"`
	PaymentMethod string `json:"payment_method"`
	TotalAmount   int64  `json:"total_amount"`
	EventType     string `json:"event_type"` // checkout_submitted
}
