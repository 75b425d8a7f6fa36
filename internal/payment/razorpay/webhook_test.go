package razorpay_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexiworks/cetpredict/internal/payment/domain"
	"github.com/flexiworks/cetpredict/internal/payment/razorpay"
)

const webhookSecret = "whsec_test"

func sign(t *testing.T, payload []byte) http.Header {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	_, err := mac.Write(payload)
	require.NoError(t, err)

	headers := http.Header{}
	headers.Set(razorpay.SignatureHeader, hex.EncodeToString(mac.Sum(nil)))
	return headers
}

func TestVerifyAcceptsExactBytes(t *testing.T) {
	w := razorpay.NewWebhook(webhookSecret)
	payload := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_123"}}}}`)

	assert.NoError(t, w.Verify(context.Background(), payload, sign(t, payload)))
}

func TestVerifyRejectsAlteredBody(t *testing.T) {
	w := razorpay.NewWebhook(webhookSecret)
	payload := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_123"}}}}`)
	headers := sign(t, payload)

	// Flip a single byte after signing.
	tampered := append([]byte(nil), payload...)
	tampered[len(tampered)-3] = 'X'

	assert.ErrorIs(t, w.Verify(context.Background(), tampered, headers), domain.ErrInvalidSignature)
}

func TestVerifyRejectsMissingHeader(t *testing.T) {
	w := razorpay.NewWebhook(webhookSecret)
	payload := []byte(`{}`)

	assert.ErrorIs(t, w.Verify(context.Background(), payload, http.Header{}), domain.ErrInvalidSignature)
}

func TestVerifyRejectsWhenSecretUnset(t *testing.T) {
	w := razorpay.NewWebhook("")
	payload := []byte(`{}`)

	assert.ErrorIs(t, w.Verify(context.Background(), payload, sign(t, payload)), domain.ErrInvalidSignature)
}

func TestParsePaymentCaptured(t *testing.T) {
	w := razorpay.NewWebhook(webhookSecret)
	payload := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_123"}}}}`)

	event, err := w.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, domain.EventPaymentCaptured, event.Kind)
	assert.Equal(t, "order_123", event.OrderID)
}

func TestParseOrderPaidShape(t *testing.T) {
	w := razorpay.NewWebhook(webhookSecret)
	payload := []byte(`{"event":"order.paid","payload":{"order":{"entity":{"id":"order_456"}}}}`)

	event, err := w.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, domain.EventOrderPaid, event.Kind)
	assert.Equal(t, "order_456", event.OrderID)
}

func TestParseIgnoresOtherEventKinds(t *testing.T) {
	w := razorpay.NewWebhook(webhookSecret)
	payload := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"order_id":"order_123"}}}}`)

	_, err := w.Parse(context.Background(), payload)
	assert.ErrorIs(t, err, domain.ErrEventIgnored)
}

func TestParseRejectsMalformedPayload(t *testing.T) {
	w := razorpay.NewWebhook(webhookSecret)

	_, err := w.Parse(context.Background(), []byte(`{not json`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = w.Parse(context.Background(), []byte(`{"event":"payment.captured","payload":{}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}
