package domain

import (
	"context"
	"net/http"
)

// Service is the payment boundary: order creation, webhook ingest and the
// poll fallback. Both confirmation paths converge on the same gate.
type Service interface {
	// CreateOrder mints a provider-side order for the given minor-unit amount.
	CreateOrder(ctx context.Context, amountMinor int64) (Order, error)
	// IngestWebhook verifies the raw body signature and, for captured/paid
	// events, marks the referenced order paid. Unknown event kinds return nil.
	IngestWebhook(ctx context.Context, payload []byte, headers http.Header) error
	// IsPaid reports the stored confirmation state without side effects.
	IsPaid(orderID string) bool
	// ConfirmPaid returns the stored state, falling back to a provider status
	// poll when no webhook has arrived yet. Provider failures read as not paid.
	ConfirmPaid(ctx context.Context, orderID string) bool
}
