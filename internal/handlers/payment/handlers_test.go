package payment_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"github.com/stretchr/testify/mock"
)

// MockGateway mocks the Monext gateway port for handler tests.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateSession(ctx context.Context, order *ports.CheckoutOrder) *ports.SessionCreated {
	args := m.Called(ctx, order)
	return args.Get(0).(*ports.SessionCreated)
}

func (m *MockGateway) GetSession(ctx context.Context, token string) *ports.SessionResult {
	args := m.Called(ctx, token)
	return args.Get(0).(*ports.SessionResult)
}

func (m *MockGateway) GetTransaction(ctx context.Context, transactionID string) *ports.TransactionDetail {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(*ports.TransactionDetail)
}

func (m *MockGateway) CaptureTransaction(ctx context.Context, transactionID string, amountCents int64) *ports.APIResult {
	args := m.Called(ctx, transactionID, amountCents)
	return args.Get(0).(*ports.APIResult)
}

func (m *MockGateway) CancelTransaction(ctx context.Context, transactionID string, amountCents int64) *ports.APIResult {
	args := m.Called(ctx, transactionID, amountCents)
	return args.Get(0).(*ports.APIResult)
}

func (m *MockGateway) RefundTransaction(ctx context.Context, transactionID string, amountCents int64) *ports.APIResult {
	args := m.Called(ctx, transactionID, amountCents)
	return args.Get(0).(*ports.APIResult)
}

// MockReferenceRepository mocks the reference repository for handler tests.
type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) Create(ctx context.Context, ref *domain.PaymentReference) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockReferenceRepository) GetByToken(ctx context.Context, token string) (*domain.PaymentReference, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentReference), args.Error(1)
}

func (m *MockReferenceRepository) GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentReference, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentReference), args.Error(1)
}

func (m *MockReferenceRepository) Update(ctx context.Context, ref *domain.PaymentReference) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

// MockReconciler mocks the reconciliation slice of the payment service.
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) ReconcileSession(ctx context.Context, res *ports.SessionResult, ref *domain.PaymentReference) *ports.APIResult {
	args := m.Called(ctx, res, ref)
	return args.Get(0).(*ports.APIResult)
}

func testReference(token string) *domain.PaymentReference {
	return &domain.PaymentReference{
		ID:        uuid.New(),
		PaymentID: uuid.New(),
		Token:     token,
	}
}

func emptySessionResult() *ports.SessionResult {
	return &ports.SessionResult{APIResult: ports.APIResult{Status: http.StatusOK}}
}

func doRequest(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}
