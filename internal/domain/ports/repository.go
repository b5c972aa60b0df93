package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kevin07696/monext-gateway/internal/domain"
)

// DBPort abstracts database access for dependency injection
type DBPort interface {
	GetDB() *pgxpool.Pool
}

// ReferenceRepository persists the one-to-one link between a payment and its
// Monext session/transaction identifiers.
type ReferenceRepository interface {
	// Create persists a new reference. The payment id is unique: a second
	// create for the same payment fails at the store level.
	Create(ctx context.Context, ref *domain.PaymentReference) error
	// GetByToken resolves a reference by session token. Returns
	// REFERENCE_NOT_FOUND when no row matches.
	GetByToken(ctx context.Context, token string) (*domain.PaymentReference, error)
	// GetByPaymentID resolves a reference by owning payment. Returns
	// REFERENCE_NOT_FOUND when no row matches.
	GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentReference, error)
	// Update persists token and transaction id changes. Writing the same
	// transaction id again is a no-op at the caller's level.
	Update(ctx context.Context, ref *domain.PaymentReference) error
}

// PaymentRepository persists payment state and recorded details.
type PaymentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	// GetByOrderID resolves the order's most recent payment. Returns
	// PAYMENT_NOT_FOUND when the order has none.
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error)
	// Save persists the payment's state and details. Both must be durable
	// before a reconciliation or orchestration returns success.
	Save(ctx context.Context, payment *domain.Payment) error
}
