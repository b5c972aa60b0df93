package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"github.com/kevin07696/monext-gateway/internal/handlers/payment"
	paymentsvc "github.com/kevin07696/monext-gateway/internal/services/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSessionStarter struct {
	mock.Mock
}

func (m *MockSessionStarter) StartSession(ctx context.Context, order *ports.CheckoutOrder, pmt *domain.Payment) (*paymentsvc.StartSessionResult, error) {
	args := m.Called(ctx, order, pmt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentsvc.StartSessionResult), args.Error(1)
}

func newSessionFixture() (*payment.SessionHandler, *MockSessionStarter, *MockPaymentRepository) {
	sessions := new(MockSessionStarter)
	payments := new(MockPaymentRepository)
	h := payment.NewSessionHandler(sessions, payments, zap.NewNop())
	return h, sessions, payments
}

func sessionRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/internal/payments/sessions", strings.NewReader(body))
}

func TestCreateSessionValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed body", "{not json"},
		{"order id not a uuid", `{"order_id":"abc","amount":"10.00","currency":"EUR"}`},
		{"amount not a decimal", `{"order_id":"0d9657bc-6f5f-4ff6-bd0b-a57bb64b8d66","amount":"ten","currency":"EUR"}`},
		{"amount not positive", `{"order_id":"0d9657bc-6f5f-4ff6-bd0b-a57bb64b8d66","amount":"0","currency":"EUR"}`},
		{"missing currency", `{"order_id":"0d9657bc-6f5f-4ff6-bd0b-a57bb64b8d66","amount":"10.00"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, sessions, _ := newSessionFixture()

			rec := doRequest(h, sessionRequest(tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			sessions.AssertNotCalled(t, "StartSession", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateSessionReturnsRedirect(t *testing.T) {
	h, sessions, payments := newSessionFixture()

	payments.On("Save", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil).Once()
	sessions.On("StartSession", mock.Anything, mock.Anything, mock.AnythingOfType("*domain.Payment")).
		Return(&paymentsvc.StartSessionResult{
			RedirectURL: "https://pay.example.test/sess-1",
			Reference:   &domain.PaymentReference{Token: "sess-1"},
			Response:    &ports.SessionCreated{APIResult: ports.APIResult{Status: http.StatusCreated}},
		}, nil)

	rec := doRequest(h, sessionRequest(
		`{"order_id":"0d9657bc-6f5f-4ff6-bd0b-a57bb64b8d66","amount":"49.90","currency":"EUR"}`))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		PaymentID   string `json:"payment_id"`
		Token       string `json:"token"`
		RedirectURL string `json:"redirect_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.PaymentID)
	assert.Equal(t, "sess-1", resp.Token)
	assert.Equal(t, "https://pay.example.test/sess-1", resp.RedirectURL)
	payments.AssertExpectations(t)
}

func TestCreateSessionGatewayRejection(t *testing.T) {
	h, sessions, payments := newSessionFixture()

	payments.On("Save", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil)
	sessions.On("StartSession", mock.Anything, mock.Anything, mock.Anything).
		Return(&paymentsvc.StartSessionResult{
			Reference: &domain.PaymentReference{},
			Response: &ports.SessionCreated{APIResult: ports.APIResult{
				Status: http.StatusBadRequest,
				Error:  &ports.ResultBlock{Title: "ERROR", Detail: "Invalid contract number."},
			}},
		}, nil)

	rec := doRequest(h, sessionRequest(
		`{"order_id":"0d9657bc-6f5f-4ff6-bd0b-a57bb64b8d66","amount":"49.90","currency":"EUR"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid contract number.", resp.Error)
}

func TestCreateSessionStartFailure(t *testing.T) {
	h, sessions, payments := newSessionFixture()

	payments.On("Save", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil)
	sessions.On("StartSession", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.NewDomainError(domain.ErrorCodeDatabaseError, "write failed"))

	rec := doRequest(h, sessionRequest(
		`{"order_id":"0d9657bc-6f5f-4ff6-bd0b-a57bb64b8d66","amount":"49.90","currency":"EUR"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
