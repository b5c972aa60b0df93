package payment

import (
	"context"
	"time"

	"github.com/kevin07696/monext-gateway/internal/adapters/monext"
	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"go.uber.org/zap"
)

// defaultLockTTL bounds how long a crashed holder can block a reference.
// Generous because it must cover a full gateway round trip plus persistence.
const defaultLockTTL = 60 * time.Second

// Service orchestrates the Monext side of the payment lifecycle: session
// creation, session reconciliation, and the capture/cancel/refund operations
// with their idempotency discipline.
type Service struct {
	gateway  ports.MonextGateway
	refs     ports.ReferenceRepository
	payments ports.PaymentRepository
	locker   ports.Locker
	logger   *zap.Logger
	lockTTL  time.Duration
}

// NewService creates a new payment orchestration service
func NewService(
	gateway ports.MonextGateway,
	refs ports.ReferenceRepository,
	payments ports.PaymentRepository,
	locker ports.Locker,
	logger *zap.Logger,
) *Service {
	return &Service{
		gateway:  gateway,
		refs:     refs,
		payments: payments,
		locker:   locker,
		logger:   logger,
		lockTTL:  defaultLockTTL,
	}
}

// concerns reports whether the payment is routed through this integration.
func concerns(payment *domain.Payment) bool {
	return payment != nil && payment.GatewayName == monext.GatewayName
}

// withPaymentLock serializes mutating gateway operations per payment. The
// payment maps one-to-one onto its reference, so locking by payment id is
// equivalent to locking the reference row. The lock spans the
// fetch/idempotency-check/mutate sequence: releasing it earlier reopens the
// double-submission window the check exists to close.
func (s *Service) withPaymentLock(ctx context.Context, payment *domain.Payment, fn func(ctx context.Context) error) error {
	key := "monext:payment:" + payment.ID.String()
	return s.locker.WithLock(ctx, key, s.lockTTL, fn)
}
