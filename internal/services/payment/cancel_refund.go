package payment

import (
	"context"
	"net/http"

	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"github.com/kevin07696/monext-gateway/pkg/observability"
	"go.uber.org/zap"
)

// CancelPayment drives the remote side of the cancel transition. Cancelling a
// payment that never reached Monext is valid and expected, so a missing
// reference or transaction id is a silent no-op.
func (s *Service) CancelPayment(ctx context.Context, pmt *domain.Payment) error {
	return s.cancelOrRefund(ctx, pmt, ports.OperationCancel)
}

// RefundPayment drives the remote side of the refund transition. Unlike
// cancel, a refund without a reference or transaction id is a hard error:
// there is nothing charged to give back.
func (s *Service) RefundPayment(ctx context.Context, pmt *domain.Payment) error {
	return s.cancelOrRefund(ctx, pmt, ports.OperationRefund)
}

func (s *Service) cancelOrRefund(ctx context.Context, pmt *domain.Payment, operation string) error {
	if !concerns(pmt) {
		return nil
	}

	return s.withPaymentLock(ctx, pmt, func(ctx context.Context) error {
		return s.cancelOrRefundLocked(ctx, pmt, operation)
	})
}

func (s *Service) cancelOrRefundLocked(ctx context.Context, pmt *domain.Payment, operation string) error {
	ref, err := s.refs.GetByPaymentID(ctx, pmt.ID)
	if err != nil {
		if operation == ports.OperationRefund {
			return s.recordFailure(ctx, pmt, operation,
				"no reference found during refund for payment "+pmt.ID.String(), err)
		}
		if !domain.IsDomainError(err, domain.ErrorCodeReferenceNotFound) {
			return s.recordFailure(ctx, pmt, operation, err.Error(), err)
		}
		// No reference and cancelling: the unfinished payment never reached
		// the gateway, nothing to undo there.
		return nil
	}

	if !ref.HasTransaction() {
		if operation == ports.OperationRefund {
			return s.recordFailure(ctx, pmt, operation,
				"transaction id not found for payment "+pmt.ID.String(),
				domain.NewDomainError(domain.ErrorCodeTransactionMissing, "transaction id not found"))
		}
		s.logger.Info("payment cancelled without a remote transaction",
			zap.String("payment_id", pmt.ID.String()),
			zap.String("token", ref.Token),
		)
		return nil
	}

	detail := s.gateway.GetTransaction(ctx, ref.TransactionID)

	processed, err := AlreadyProcessed(detail, operation)
	if err != nil {
		return s.recordFailure(ctx, pmt, operation, err.Error(), err)
	}
	if processed {
		observability.RecordIdempotencySkip(operationLabel(operation))
		return nil
	}

	var res *ports.APIResult
	switch operation {
	case ports.OperationRefund:
		res = s.gateway.RefundTransaction(ctx, ref.TransactionID, pmt.AmountCents())
	case ports.OperationCancel:
		res = s.gateway.CancelTransaction(ctx, ref.TransactionID, pmt.AmountCents())
	default:
		return s.recordFailure(ctx, pmt, operation, "invalid operation "+operation,
			domain.NewDomainError(domain.ErrorCodeInternalError, "invalid operation "+operation))
	}

	if res.Status != http.StatusCreated && res.Status != http.StatusAccepted {
		detailMsg := operationLabel(operation) + " rejected by gateway"
		if res.Error != nil {
			detailMsg = res.Error.Detail
		}
		return s.recordFailure(ctx, pmt, operation, detailMsg,
			domain.NewDomainError(domain.ErrorCodeGatewayError, detailMsg).WithDetail("status", res.Status))
	}

	if res.BusinessError() {
		return s.recordFailure(ctx, pmt, operation, res.Result.Detail,
			domain.NewDomainError(domain.ErrorCodeGatewayError, res.Result.Detail))
	}

	return nil
}

// recordFailure logs, records the error on the payment, persists, and raises.
// Unlike the capture path, it never forces a local state transition: deciding
// what a failed cancel or refund means for the workflow is the caller's job.
func (s *Service) recordFailure(ctx context.Context, pmt *domain.Payment, operation, message string, cause error) error {
	pmt.SetErrorDetail(message)
	s.logger.Error("payment operation failed",
		zap.String("operation", operationLabel(operation)),
		zap.String("payment_id", pmt.ID.String()),
		zap.String("detail", message),
		zap.Error(cause),
	)

	if err := s.payments.Save(ctx, pmt); err != nil {
		s.logger.Error("persist payment error detail",
			zap.String("payment_id", pmt.ID.String()),
			zap.Error(err),
		)
	}

	if _, ok := cause.(*domain.DomainError); ok {
		return cause
	}
	return domain.WrapError(domain.ErrorCodeGatewayError, message, cause)
}

func operationLabel(operation string) string {
	switch operation {
	case ports.OperationCancel:
		return "cancel"
	case ports.OperationRefund:
		return "refund"
	case ports.OperationCapture:
		return "capture"
	default:
		return operation
	}
}
