package server_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flexiworks/cetpredict/internal/config"
	cutoffdomain "github.com/flexiworks/cetpredict/internal/cutoff/domain"
	cutoffservice "github.com/flexiworks/cetpredict/internal/cutoff/service"
	"github.com/flexiworks/cetpredict/internal/export"
	"github.com/flexiworks/cetpredict/internal/observability"
	"github.com/flexiworks/cetpredict/internal/payment/gate"
	"github.com/flexiworks/cetpredict/internal/payment/razorpay"
	paymentservice "github.com/flexiworks/cetpredict/internal/payment/service"
	"github.com/flexiworks/cetpredict/internal/server"
	unlockservice "github.com/flexiworks/cetpredict/internal/unlock/service"
)

const webhookSecret = "whsec_test"

type fakeRepo struct {
	records map[string][]cutoffdomain.CutoffRecord
}

func (r *fakeRepo) Rounds() []string {
	names := make([]string, 0, len(r.records))
	for name := range r.records {
		names = append(names, name)
	}
	return names
}

func (r *fakeRepo) HasRound(round string) bool {
	_, ok := r.records[round]
	return ok
}

func (r *fakeRepo) AllRecords(round string) []cutoffdomain.CutoffRecord {
	return r.records[round]
}

func (r *fakeRepo) ListDistinct(round, field string) []string {
	seen := map[string]string{}
	for _, rec := range r.records[round] {
		var v string
		switch field {
		case cutoffdomain.FieldCourse:
			v = rec.Course
		case cutoffdomain.FieldCategory:
			v = rec.Category
		case cutoffdomain.FieldBranch:
			v = rec.Branch
		}
		if key := cutoffdomain.Normalize(v); key != "" {
			seen[key] = strings.TrimSpace(v)
		}
	}
	out := make([]string, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	return out
}

type providerState struct {
	statuses map[string]string
	orders   int
	fail     bool
}

func newProvider(t *testing.T) (*providerState, *httptest.Server) {
	t.Helper()
	state := &providerState{statuses: map[string]string{}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if state.fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/orders":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			state.orders++
			id := fmt.Sprintf("order_%d", state.orders)
			state.statuses[id] = "created"
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":       id,
				"amount":   body["amount"],
				"currency": body["currency"],
				"receipt":  body["receipt"],
				"status":   "created",
			})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/orders/"):
			id := strings.TrimPrefix(r.URL.Path, "/v1/orders/")
			status, ok := state.statuses[id]
			if !ok {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": id, "amount": 1000, "currency": "INR", "status": status,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return state, srv
}

func newTestServer(t *testing.T) (*server.Server, *providerState) {
	t.Helper()

	log := zap.NewNop()
	cfg := config.Config{
		AppName:      "cetpredict",
		HTTPPort:     "8080",
		Currency:     "INR",
		UnlockAmount: 10,
	}

	repo := &fakeRepo{records: map[string][]cutoffdomain.CutoffRecord{
		"Round 1": {
			{CollegeCode: "E001", CollegeName: "Alpha Institute", Course: "B.E.", Category: "GM", Branch: "CS", CutoffRank: 8000},
			{CollegeCode: "E002", CollegeName: "Beta College", Course: "B.E.", Category: "GM", Branch: "EC", CutoffRank: 5500},
			{CollegeCode: "E003", CollegeName: "Gamma College", Course: "B.E.", Category: "GM", Branch: "CS", CutoffRank: 9500},
		},
	}}
	rounds := config.RoundsConfig{Rounds: []config.Round{{Name: "Round 1", File: "Final_Data.csv"}}}

	cutoffSvc := cutoffservice.NewService(cutoffservice.Params{Log: log, Repo: repo, Rounds: rounds})

	state, providerSrv := newProvider(t)
	node, err := snowflake.NewNode(20)
	require.NoError(t, err)

	paymentSvc := paymentservice.NewService(paymentservice.Params{
		Log:     log,
		Cfg:     cfg,
		Gate:    gate.New(),
		Client:  razorpay.NewClient(providerSrv.URL, "rzp_test_key", "rzp_test_secret"),
		Webhook: razorpay.NewWebhook(webhookSecret),
		GenID:   node,
	})

	unlockSvc := unlockservice.NewService(unlockservice.Params{
		Log:        log,
		CutoffSvc:  cutoffSvc,
		PaymentSvc: paymentSvc,
	})

	engine := server.NewEngine(observability.Config{LogLevel: "info"}, log)
	srv := server.NewServer(server.ServerParams{
		Gin:        engine,
		Cfg:        cfg,
		Log:        log,
		CutoffSvc:  cutoffSvc,
		PaymentSvc: paymentSvc,
		UnlockSvc:  unlockSvc,
		Exports:    export.NewReportProvider(),
	})
	return srv, state
}

func doJSON(t *testing.T, srv *server.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func signedWebhook(t *testing.T, srv *server.Server, payload []byte) *httptest.ResponseRecorder {
	t.Helper()

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	_, err := mac.Write(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/razorpay", bytes.NewReader(payload))
	req.Header.Set(razorpay.SignatureHeader, hex.EncodeToString(mac.Sum(nil)))

	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPredictUnlockFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	query := map[string]any{"course": "B.E.", "category": "GM", "rank": 6000}

	// Free tier: count only.
	rec := doJSON(t, srv, http.MethodPost, "/api/predict", query)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["eligibleCount"])
	assert.Equal(t, true, body["locked"])

	// Order creation.
	rec = doJSON(t, srv, http.MethodPost, "/api/create-order", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	order := decodeBody(t, rec)
	orderID, _ := order["id"].(string)
	require.NotEmpty(t, orderID)
	assert.Equal(t, float64(1000), order["amount"])
	assert.Equal(t, "INR", order["currency"])

	// Unlock before payment is refused without leaking the result.
	unlockReq := map[string]any{"course": "B.E.", "category": "GM", "rank": 6000, "orderId": orderID}
	rec = doJSON(t, srv, http.MethodPost, "/api/unlock", unlockReq)
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	errBody := decodeBody(t, rec)
	assert.Equal(t, "payment_not_confirmed", errBody["error"].(map[string]any)["type"])

	// Provider webhook confirms payment.
	payload := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"` + orderID + `"}}}}`)
	rec = signedWebhook(t, srv, payload)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/payment-status?order_id="+orderID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["paid"])

	// Unlock now yields the grouped result.
	rec = doJSON(t, srv, http.MethodPost, "/api/unlock", unlockReq)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody(t, rec)
	assert.Equal(t, "Round 1", result["round"])
	assert.Equal(t, float64(2), result["eligibleCount"])

	grouped := result["groupedEligible"].(map[string]any)
	require.Len(t, grouped["CS"].([]any), 2)

	nearMiss := result["nearMiss"].([]any)
	require.Len(t, nearMiss, 1)
	assert.Equal(t, "E002", nearMiss[0].(map[string]any)["college_code"])
}

func TestPaymentStatusPollFallback(t *testing.T) {
	srv, state := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/create-order", map[string]any{"amount": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	orderID := decodeBody(t, rec)["id"].(string)

	rec = doJSON(t, srv, http.MethodGet, "/api/payment-status?order_id="+orderID, nil)
	assert.Equal(t, false, decodeBody(t, rec)["paid"])

	// The webhook never arrives; the status poll converges instead.
	state.statuses[orderID] = "paid"
	rec = doJSON(t, srv, http.MethodGet, "/api/payment-status?order_id="+orderID, nil)
	assert.Equal(t, true, decodeBody(t, rec)["paid"])
}

func TestWebhookBadSignatureRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	payload := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_evil"}}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/razorpay", bytes.NewReader(payload))
	req.Header.Set(razorpay.SignatureHeader, "deadbeef")

	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/payment-status?order_id=order_evil", nil)
	assert.Equal(t, false, decodeBody(t, rec)["paid"])
}

func TestPredictValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/predict", map[string]any{"category": "GM", "rank": 6000})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/predict", map[string]any{"course": "B.E.", "category": "GM", "rank": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Rank arrives as a string from form submissions.
	rec = doJSON(t, srv, http.MethodPost, "/api/predict", map[string]any{"course": "B.E.", "category": "GM", "rank": "6000"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/predict", map[string]any{"round": "Round 9", "course": "B.E.", "category": "GM", "rank": 6000})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown_round", decodeBody(t, rec)["error"].(map[string]any)["type"])
}

func TestCreateOrderRateLimited(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 5; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/api/create-order", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/create-order", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestExportCSVRequiresPayment(t *testing.T) {
	srv, _ := newTestServer(t)

	req := map[string]any{"course": "B.E.", "category": "GM", "rank": 6000, "orderId": "order_nope"}
	rec := doJSON(t, srv, http.MethodPost, "/api/export/csv", req)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestExportCSVAfterPayment(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/create-order", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orderID := decodeBody(t, rec)["id"].(string)

	payload := []byte(`{"event":"order.paid","payload":{"order":{"entity":{"id":"` + orderID + `"}}}}`)
	rec = signedWebhook(t, srv, payload)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req := map[string]any{"course": "B.E.", "category": "GM", "rank": 6000, "orderId": orderID}
	rec = doJSON(t, srv, http.MethodPost, "/api/export/csv", req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "college_report.csv")
	assert.Contains(t, rec.Body.String(), "Alpha Institute")
}

func TestOptionsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	rounds := body["rounds"].([]any)
	assert.Contains(t, rounds, "Round 1")
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}
