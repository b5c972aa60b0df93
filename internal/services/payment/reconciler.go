package payment

import (
	"context"
	"net/http"

	"github.com/kevin07696/monext-gateway/internal/adapters/monext"
	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"go.uber.org/zap"
)

// validSessionResult checks the session-detail response shape before anything
// is persisted. Error envelopes must carry title and detail; success envelopes
// must carry the result block and at least one transaction with a capture mode.
func validSessionResult(res *ports.SessionResult) bool {
	if res == nil || res.Status == 0 {
		return false
	}

	if res.Status != http.StatusOK {
		return res.Error != nil && res.Error.Title != "" && res.Error.Detail != ""
	}

	if res.Result == nil || res.Result.Title == "" || res.Result.Detail == "" {
		return false
	}

	return len(res.Transactions) > 0 && res.Transactions[0].Capture != ""
}

// ReconcileSession takes a session-detail response, persists the remote
// transaction identifier onto the reference, and drives the local payment
// state machine to match the remote outcome. Both the webhook and the
// browser-return path call it with identical semantics.
//
// A state mismatch (empty transition, or one the state machine rejects) is a
// normal outcome, e.g. a duplicate notification arriving after the payment
// already advanced; it comes back as a 422-shaped result, not a fault.
func (s *Service) ReconcileSession(ctx context.Context, res *ports.SessionResult, ref *domain.PaymentReference) *ports.APIResult {
	if !validSessionResult(res) {
		s.logger.Debug("invalid session detail format",
			zap.String("token", ref.Token),
			zap.Any("response", res),
		)
		return &ports.APIResult{
			Status: http.StatusInternalServerError,
			Error:  &ports.ResultBlock{Title: ports.OutcomeError, Detail: "Invalid response format."},
		}
	}

	// Valid gateway-level error: hand it back unchanged for the caller to map.
	if res.Status != http.StatusOK {
		return &ports.APIResult{Status: res.Status, Error: res.Error}
	}

	first := res.Transactions[0]

	// Persist the transaction id. Writing the same id again is a no-op.
	if ref.TransactionID != first.ID {
		ref.TransactionID = first.ID
		if err := s.refs.Update(ctx, ref); err != nil {
			s.logger.Error("persist transaction id failed",
				zap.String("token", ref.Token),
				zap.String("transaction_id", first.ID),
				zap.Error(err),
			)
			return &ports.APIResult{
				Status: http.StatusInternalServerError,
				Error:  &ports.ResultBlock{Title: ports.OutcomeError, Detail: err.Error()},
			}
		}
	}

	newState := monext.PaymentStateFromOutcome(res.Result.Title, first.Capture)
	transition := monext.TransitionForState(newState)

	pmt, err := s.payments.GetByID(ctx, ref.PaymentID)
	if err != nil {
		return &ports.APIResult{
			Status: http.StatusInternalServerError,
			Error:  &ports.ResultBlock{Title: ports.OutcomeError, Detail: err.Error()},
		}
	}

	machine := domain.NewStateMachine(pmt)

	if transition == domain.TransitionNone || !machine.Can(transition) {
		return &ports.APIResult{
			Status: http.StatusUnprocessableEntity,
			Error:  &ports.ResultBlock{Title: ports.OutcomeError, Detail: "State mismatch, cannot apply given state to target."},
		}
	}

	if err := machine.Apply(transition); err != nil {
		return &ports.APIResult{
			Status: http.StatusInternalServerError,
			Error:  &ports.ResultBlock{Title: ports.OutcomeError, Detail: err.Error()},
		}
	}

	if err := s.payments.Save(ctx, pmt); err != nil {
		return &ports.APIResult{
			Status: http.StatusInternalServerError,
			Error:  &ports.ResultBlock{Title: ports.OutcomeError, Detail: err.Error()},
		}
	}

	// The apply succeeded mechanically, but a failed payment is not an OK
	// reconciliation outcome for the caller.
	if newState == domain.StateFailed {
		return &ports.APIResult{
			Status: http.StatusUnprocessableEntity,
			Error:  &ports.ResultBlock{Title: ports.OutcomeError, Detail: "Payment failed."},
		}
	}

	return &ports.APIResult{
		Status: http.StatusOK,
		Result: &ports.ResultBlock{Title: ports.OutcomeAccepted, Detail: "OK"},
	}
}
