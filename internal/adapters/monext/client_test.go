package monext_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kevin07696/monext-gateway/internal/adapters/monext"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(baseURL string) monext.Config {
	return monext.Config{
		BaseURL:         baseURL,
		APIKey:          "dGVzdDp0ZXN0",
		PointOfSale:     "POS-1",
		ContractNumbers: []string{"CB-001"},
		CaptureMode:     ports.CaptureManual,
		ReturnURL:       "https://shop.example/monext/return",
		NotificationURL: "https://shop.example/monext/notification",
	}
}

func TestGetSessionDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/checkout/sessions/tok-123", r.URL.Path)
		assert.Equal(t, "Basic dGVzdDp0ZXN0", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"result": {"title": "ACCEPTED", "detail": "Transaction accepted."},
			"transactions": [{"id": "txn-9", "capture": "MANUAL"}]
		}`))
	}))
	defer server.Close()

	client := monext.NewClientWithDefaults(testConfig(server.URL), zap.NewNop())
	res := client.GetSession(context.Background(), "tok-123")

	assert.Equal(t, http.StatusOK, res.Status)
	require.NotNil(t, res.Result)
	assert.Equal(t, ports.OutcomeAccepted, res.Result.Title)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "txn-9", res.Transactions[0].ID)
	assert.Equal(t, ports.CaptureManual, res.Transactions[0].Capture)
	assert.Nil(t, res.Error)
}

func TestGetSessionRetriesTransportFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			// Close the connection without a response.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		w.Write([]byte(`{
			"result": {"title": "ACCEPTED", "detail": "OK"},
			"transactions": [{"id": "txn-1", "capture": "AUTOMATIC"}]
		}`))
	}))
	defer server.Close()

	client := monext.NewClientWithDefaults(testConfig(server.URL), zap.NewNop())
	res := client.GetSession(context.Background(), "tok-retry")

	assert.Equal(t, http.StatusOK, res.Status)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestCaptureIsNeverRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer server.Close()

	client := monext.NewClientWithDefaults(testConfig(server.URL), zap.NewNop())
	res := client.CaptureTransaction(context.Background(), "txn-1", 4990)

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, ports.OutcomeError, res.Error.Title)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestCapturePostsAmountInCents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/transactions/txn-1/captures", r.URL.Path)

		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(4990), body["amount"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result": {"title": "ACCEPTED", "detail": "Capture accepted."}}`))
	}))
	defer server.Close()

	client := monext.NewClientWithDefaults(testConfig(server.URL), zap.NewNop())
	res := client.CaptureTransaction(context.Background(), "txn-1", 4990)

	assert.Equal(t, http.StatusCreated, res.Status)
	assert.False(t, res.BusinessError())
}

func TestBusinessErrorInsideCreatedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result": {"title": "ERROR", "detail": "Insufficient funds."}}`))
	}))
	defer server.Close()

	client := monext.NewClientWithDefaults(testConfig(server.URL), zap.NewNop())
	res := client.RefundTransaction(context.Background(), "txn-1", 100)

	assert.Equal(t, http.StatusCreated, res.Status)
	assert.True(t, res.BusinessError())
}

func TestErrorStatusDecodesErrorBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"title": "INVALID_FIELD", "detail": "amount must be positive"}`))
	}))
	defer server.Close()

	client := monext.NewClientWithDefaults(testConfig(server.URL), zap.NewNop())
	res := client.CancelTransaction(context.Background(), "txn-1", -1)

	assert.Equal(t, http.StatusBadRequest, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, "INVALID_FIELD", res.Error.Title)
	assert.Equal(t, "amount must be positive", res.Error.Detail)
}

func TestErrorStatusWithOpaqueBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	client := monext.NewClientWithDefaults(testConfig(server.URL), zap.NewNop())
	res := client.GetTransaction(context.Background(), "txn-1")

	assert.Equal(t, http.StatusBadGateway, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, ports.OutcomeError, res.Error.Title)
	assert.Equal(t, "upstream unavailable", res.Error.Detail)
}

func TestMissingConfigFailsWithoutCalling(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.APIKey = ""
	client := monext.NewClientWithDefaults(cfg, zap.NewNop())

	res := client.CaptureTransaction(context.Background(), "txn-1", 100)

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	require.NotNil(t, res.Error)
	assert.Contains(t, res.Error.Detail, "api key")
	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestCreateSessionPayload(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/sessions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{
			"result": {"title": "ACCEPTED", "detail": "Session created."},
			"sessionId": "sess-42",
			"redirectURL": "https://checkout.monext.example/sess-42"
		}`))
	}))
	defer server.Close()

	client := monext.NewClientWithDefaults(testConfig(server.URL), zap.NewNop())
	res := client.CreateSession(context.Background(), &ports.CheckoutOrder{
		Reference:    "order-77",
		CurrencyCode: "EUR",
		CountryCode:  "FR",
		LocaleCode:   "fr_FR",
		AmountCents:  4990,
		TaxCents:     832,
		Items: []ports.CheckoutItem{
			{Reference: "sku-1", PriceCents: 4990, Quantity: 1, TaxRateBps: 2000},
		},
		Buyer: ports.Buyer{ID: "cust-1", Email: "buyer@example.com"},
	})

	assert.Equal(t, http.StatusCreated, res.Status)
	assert.Equal(t, "sess-42", res.SessionID)
	assert.Equal(t, "https://checkout.monext.example/sess-42", res.RedirectURL)

	require.NotNil(t, captured)
	assert.Equal(t, "POS-1", captured["pointOfSaleReference"])
	assert.Equal(t, "FR", captured["languageCode"])

	payment := captured["payment"].(map[string]interface{})
	assert.Equal(t, "ONE_OFF", payment["paymentType"])
	assert.Equal(t, ports.CaptureManual, payment["capture"])

	order := captured["order"].(map[string]interface{})
	assert.EqualValues(t, 4990, order["amount"])
	assert.EqualValues(t, 832, order["taxes"])
	assert.Equal(t, "E_COM", order["origin"])

	threeDS := captured["threeDS"].(map[string]interface{})
	assert.Equal(t, "NO_PREFERENCE", threeDS["challengeInd"])
}
