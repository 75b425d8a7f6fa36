package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/flexiworks/cetpredict/internal/payment/domain"
)

// SignatureHeader carries the provider's HMAC over the raw request body.
const SignatureHeader = "X-Razorpay-Signature"

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// Webhook verifies and parses provider webhook deliveries.
type Webhook struct {
	secret string
}

func NewWebhook(secret string) *Webhook {
	return &Webhook{secret: strings.TrimSpace(secret)}
}

// Verify recomputes the HMAC-SHA256 over the exact raw body bytes. The body
// must never be re-serialized before verification.
func (w *Webhook) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	if w.secret == "" {
		return domain.ErrInvalidSignature
	}
	signature := strings.TrimSpace(headers.Get(SignatureHeader))
	if signature == "" {
		return domain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(w.secret))
	_, _ = mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// Parse extracts the order id from captured/paid events. Every other event
// kind returns ErrEventIgnored.
func (w *Webhook) Parse(ctx context.Context, payload []byte) (*domain.PaymentEvent, error) {
	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	kind := strings.TrimSpace(event.Event)
	switch kind {
	case domain.EventPaymentCaptured, domain.EventOrderPaid:
	default:
		return nil, domain.ErrEventIgnored
	}

	orderID := strings.TrimSpace(event.Payload.Payment.Entity.OrderID)
	if orderID == "" {
		orderID = strings.TrimSpace(event.Payload.Order.Entity.ID)
	}
	if orderID == "" {
		return nil, domain.ErrInvalidPayload
	}

	return &domain.PaymentEvent{Kind: kind, OrderID: orderID}, nil
}
