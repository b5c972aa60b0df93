package payment_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kevin07696/monext-gateway/internal/adapters/monext"
	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockGateway mocks the Monext gateway port
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

// MockReferenceRepository mocks the payment reference repository
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

// MockPaymentRepository mocks the payment repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

// passthroughLocker runs the callback directly; lock behavior is covered by
// the lock adapter tests.
type passthroughLocker struct{}

func (passthroughLocker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Fixtures

func monextPayment(state domain.PaymentState) *domain.Payment {
	return &domain.Payment{
		ID:          uuid.New(),
		OrderID:     uuid.New(),
		GatewayName: monext.GatewayName,
		Amount:      decimal.NewFromFloat(49.90),
		Currency:    "EUR",
		State:       state,
	}
}

func referenceFor(pmt *domain.Payment, transactionID string) *domain.PaymentReference {
	return &domain.PaymentReference{
		ID:            uuid.New(),
		PaymentID:     pmt.ID,
		Token:         "tok-" + pmt.ID.String()[:8],
		TransactionID: transactionID,
	}
}

func floatPtr(f float64) *float64 { return &f }

// transactionDetail builds a well-formed detail payload for a manual one-off
// transaction with the given ledger entries.
func transactionDetail(requested float64, associated ...ports.AssociatedTransaction) *ports.TransactionDetail {
	return &ports.TransactionDetail{
		APIResult: ports.APIResult{Status: 200, Result: &ports.ResultBlock{Title: ports.OutcomeAccepted, Detail: "OK"}},
		Transaction: &ports.TransactionInfo{
			PaymentType:     "ONE_OFF",
			Capture:         ports.CaptureManual,
			RequestedAmount: floatPtr(requested),
		},
		AssociatedTransactions: associated,
	}
}
