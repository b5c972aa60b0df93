// Package lifecycle bridges the hosting order/payment workflow to the Monext
// orchestration service. The hosting system invokes these hooks on its named
// transitions; they have no return payload beyond the error that tells the
// workflow whether to abort.
package lifecycle

import (
	"context"

	"github.com/kevin07696/monext-gateway/internal/adapters/monext"
	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"go.uber.org/zap"
)

// PaymentOrchestrator is the slice of the payment service the hooks drive.
type PaymentOrchestrator interface {
	CompletePayment(ctx context.Context, pmt *domain.Payment) error
	CancelPayment(ctx context.Context, pmt *domain.Payment) error
	RefundPayment(ctx context.Context, pmt *domain.Payment) error
}

// Hooks wires workflow transitions to gateway orchestration.
type Hooks struct {
	orchestrator PaymentOrchestrator
	payments     ports.PaymentRepository
	// watchedTransitions lists the order-shipping transitions that trigger a
	// manual capture, from gateway configuration.
	watchedTransitions map[string]bool
	logger             *zap.Logger
}

// NewHooks creates the lifecycle hook set.
func NewHooks(orchestrator PaymentOrchestrator, payments ports.PaymentRepository, watchedTransitions []string, logger *zap.Logger) *Hooks {
	watched := make(map[string]bool, len(watchedTransitions))
	for _, t := range watchedTransitions {
		watched[t] = true
	}
	return &Hooks{
		orchestrator:       orchestrator,
		payments:           payments,
		watchedTransitions: watched,
		logger:             logger,
	}
}

// OnPaymentComplete fires when the workflow wants to complete a payment. The
// capture orchestration runs first; only when it succeeds (or decides nothing
// needs capturing) does the local state machine advance.
func (h *Hooks) OnPaymentComplete(ctx context.Context, pmt *domain.Payment) error {
	if err := h.orchestrator.CompletePayment(ctx, pmt); err != nil {
		return err
	}

	machine := domain.NewStateMachine(pmt)
	if !machine.Can(domain.TransitionComplete) {
		// Replayed completion after the payment already advanced.
		h.logger.Info("complete transition not legal, leaving state unchanged",
			zap.String("payment_id", pmt.ID.String()),
			zap.String("state", string(machine.State())),
		)
		return nil
	}

	if err := machine.Apply(domain.TransitionComplete); err != nil {
		return err
	}
	return h.payments.Save(ctx, pmt)
}

// OnPaymentCancel fires on the workflow's cancel transition. The local state
// change stays with the workflow; only the remote side is handled here.
func (h *Hooks) OnPaymentCancel(ctx context.Context, pmt *domain.Payment) error {
	return h.orchestrator.CancelPayment(ctx, pmt)
}

// OnPaymentRefund fires on the workflow's refund transition.
func (h *Hooks) OnPaymentRefund(ctx context.Context, pmt *domain.Payment) error {
	return h.orchestrator.RefundPayment(ctx, pmt)
}

// OnOrderShipment fires after every order-shipping transition. When the fired
// transition is one of the configured manual-capture triggers, the order's
// last payment is completed, which runs the capture. A payment that cannot be
// completed does not block shipping.
func (h *Hooks) OnOrderShipment(ctx context.Context, pmt *domain.Payment, firedTransition string) error {
	if pmt == nil || pmt.GatewayName != monext.GatewayName || !h.watchedTransitions[firedTransition] {
		return nil
	}

	if !domain.NewStateMachine(pmt).Can(domain.TransitionComplete) {
		h.logger.Info("skip capture, payment cannot be completed",
			zap.String("payment_id", pmt.ID.String()),
			zap.String("state", string(pmt.State)),
			zap.String("transition", firedTransition),
		)
		return nil
	}

	return h.OnPaymentComplete(ctx, pmt)
}
