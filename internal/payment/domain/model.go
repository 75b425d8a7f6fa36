package domain

import (
	"errors"
	"time"
)

// OrderStatus is the gate-side order state. Paid is terminal; an order that
// never confirms simply stays Created.
type OrderStatus string

const (
	OrderCreated OrderStatus = "created"
	OrderPaid    OrderStatus = "paid"
)

// Order is one payment attempt against the provider.
type Order struct {
	ID        string      `json:"id"`
	Amount    int64       `json:"amount"` // minor units
	Currency  string      `json:"currency"`
	Receipt   string      `json:"receipt"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// Event kinds that drive state. Everything else is acknowledged and dropped.
const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"
)

// PaymentEvent is a verified, parsed webhook event.
type PaymentEvent struct {
	Kind    string
	OrderID string
}

var (
	ErrProviderUnavailable = errors.New("payment_provider_error")
	ErrInvalidSignature    = errors.New("invalid_signature")
	ErrInvalidPayload      = errors.New("invalid_payload")
	ErrEventIgnored        = errors.New("event_ignored")
	ErrNotConfirmed        = errors.New("payment_not_confirmed")
)
