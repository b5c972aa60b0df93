package payment

import (
	"context"
	"net/http"

	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"github.com/kevin07696/monext-gateway/pkg/observability"
	"go.uber.org/zap"
)

// CompletePayment drives the capture side of the "complete" transition. It
// decides whether a manual capture call is needed, performs it, and fails the
// payment on any error. A nil return means the caller may apply the complete
// transition; an error means the payment was driven to failed (best effort)
// and the surrounding workflow must abort.
func (s *Service) CompletePayment(ctx context.Context, pmt *domain.Payment) error {
	if !concerns(pmt) {
		return nil
	}

	return s.withPaymentLock(ctx, pmt, func(ctx context.Context) error {
		return s.completeLocked(ctx, pmt)
	})
}

func (s *Service) completeLocked(ctx context.Context, pmt *domain.Payment) error {
	ref, err := s.refs.GetByPaymentID(ctx, pmt.ID)
	if err != nil {
		return s.failPayment(ctx, pmt, "reference not found for payment "+pmt.ID.String(), err)
	}

	// Capture attempted before any session activity: nothing to capture yet.
	if !ref.HasTransaction() {
		s.logger.Info("complete payment without a transaction id",
			zap.String("payment_id", pmt.ID.String()),
			zap.String("token", ref.Token),
		)
		return nil
	}

	detail := s.gateway.GetTransaction(ctx, ref.TransactionID)

	processed, err := AlreadyProcessed(detail, ports.OperationCapture)
	if err != nil {
		return s.failPayment(ctx, pmt, err.Error(), err)
	}
	if processed {
		observability.RecordIdempotencySkip("capture")
		return nil
	}

	// Only one-off manual-capture transactions are ours to capture; automatic
	// captures finalize on the Monext side without our involvement.
	if detail.Transaction.PaymentType != "ONE_OFF" || detail.Transaction.Capture != ports.CaptureManual {
		return nil
	}

	res := s.gateway.CaptureTransaction(ctx, ref.TransactionID, pmt.AmountCents())

	if res.Status != http.StatusCreated && res.Status != http.StatusAccepted {
		detailMsg := "capture rejected by gateway"
		if res.Error != nil {
			detailMsg = res.Error.Detail
		}
		return s.failPayment(ctx, pmt, detailMsg,
			domain.NewDomainError(domain.ErrorCodeGatewayError, detailMsg).WithDetail("status", res.Status))
	}

	// The gateway returns payment errors inside 201 bodies.
	if res.BusinessError() {
		return s.failPayment(ctx, pmt, "capture failed: "+res.Result.Detail,
			domain.NewDomainError(domain.ErrorCodeGatewayError, res.Result.Detail))
	}

	if !domain.NewStateMachine(pmt).Can(domain.TransitionComplete) {
		return s.failPayment(ctx, pmt, "payment workflow does not authorize the complete transition",
			domain.NewDomainError(domain.ErrorCodeIllegalTransition, "complete not legal from state "+string(pmt.State)))
	}

	return nil
}

// failPayment records the error on the payment, best-effort drives the state
// machine to failed, persists, and returns the failure for the caller to
// propagate. A failure to apply the fail transition is swallowed but recorded
// as a secondary error.
func (s *Service) failPayment(ctx context.Context, pmt *domain.Payment, message string, cause error) error {
	pmt.SetErrorDetail(message)
	s.logger.Error("payment capture orchestration failed",
		zap.String("payment_id", pmt.ID.String()),
		zap.String("detail", message),
		zap.Error(cause),
	)

	machine := domain.NewStateMachine(pmt)
	if machine.Can(domain.TransitionFail) {
		if err := machine.Apply(domain.TransitionFail); err != nil {
			s.logger.Error("fail transition rejected",
				zap.String("payment_id", pmt.ID.String()),
				zap.Error(err),
			)
			pmt.SetErrorDetail(message + " / " + err.Error())
		}
	}

	if err := s.payments.Save(ctx, pmt); err != nil {
		s.logger.Error("persist failed payment",
			zap.String("payment_id", pmt.ID.String()),
			zap.Error(err),
		)
	}

	if cause == nil {
		return domain.NewDomainError(domain.ErrorCodeGatewayError, message)
	}
	if _, ok := cause.(*domain.DomainError); ok {
		return cause
	}
	return domain.WrapError(domain.ErrorCodeGatewayError, message, cause)
}
