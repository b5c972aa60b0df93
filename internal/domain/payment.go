package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentState represents the local lifecycle state of a payment.
type PaymentState string

const (
	StateNew        PaymentState = "new"
	StateProcessing PaymentState = "processing"
	StateAuthorized PaymentState = "authorized"
	StateCompleted  PaymentState = "completed"
	StateFailed     PaymentState = "failed"
	StateCancelled  PaymentState = "cancelled"
	StateUnknown    PaymentState = "unknown"
)

// Transition names the verbs that move a payment between states.
type Transition string

const (
	TransitionProcess   Transition = "process"
	TransitionAuthorize Transition = "authorize"
	TransitionComplete  Transition = "complete"
	TransitionFail      Transition = "fail"
	TransitionCancel    Transition = "cancel"

	// TransitionNone means no transition applies for the mapped state.
	TransitionNone Transition = ""
)

// Payment represents a single payment attempt against an order.
type Payment struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	GatewayName string
	Amount      decimal.Decimal
	Currency    string
	State       PaymentState
	Details     map[string]interface{}
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AmountCents returns the payment amount in minor units, which is what the
// Monext API expects everywhere except transaction-detail reads.
func (p *Payment) AmountCents() int64 {
	return p.Amount.Shift(2).Round(0).IntPart()
}

// SetErrorDetail records a gateway or orchestration error on the payment so
// operators can inspect why a payment stalled.
func (p *Payment) SetErrorDetail(detail interface{}) {
	p.Details = map[string]interface{}{"error": detail}
}

// PaymentReference links a local payment to the Monext session and transaction
// world. At most one reference exists per payment, and the session token is
// immutable once set: a payment never gets a second checkout session.
type PaymentReference struct {
	ID            uuid.UUID
	PaymentID     uuid.UUID
	Token         string
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasTransaction reports whether Monext ever reported a transaction for this
// reference. Capture, cancel and refund are meaningless without one.
func (r *PaymentReference) HasTransaction() bool {
	return r != nil && r.TransactionID != ""
}
