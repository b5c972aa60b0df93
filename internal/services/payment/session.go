package payment

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"go.uber.org/zap"
)

// StartSessionResult reports the outcome of opening a checkout session.
type StartSessionResult struct {
	// RedirectURL is where the buyer must be sent to pay. Empty unless the
	// gateway accepted the session.
	RedirectURL string
	Reference   *domain.PaymentReference
	Response    *ports.SessionCreated
}

// StartSession opens a Monext checkout session for the payment and records
// the session token on the payment's reference. The reference is created on
// the first attempt and reused on retries, so a payment never ends up with
// two references; the token, once set, is never replaced.
func (s *Service) StartSession(ctx context.Context, order *ports.CheckoutOrder, pmt *domain.Payment) (*StartSessionResult, error) {
	if !concerns(pmt) {
		return nil, domain.NewDomainError(domain.ErrorCodeInternalError,
			"payment is not routed through the monext gateway")
	}

	res := s.gateway.CreateSession(ctx, order)

	ref, err := s.refs.GetByPaymentID(ctx, pmt.ID)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrorCodeReferenceNotFound) {
			return nil, err
		}
		ref = &domain.PaymentReference{
			ID:        uuid.New(),
			PaymentID: pmt.ID,
		}
		if err := s.refs.Create(ctx, ref); err != nil {
			return nil, err
		}
	}

	if res.SessionID != "" {
		if ref.Token == "" {
			ref.Token = res.SessionID
			if err := s.refs.Update(ctx, ref); err != nil {
				return nil, err
			}
		} else if ref.Token != res.SessionID {
			// The token is immutable for the payment's lifetime. A second
			// session for the same payment points at an upstream retry bug.
			s.logger.Warn("gateway returned a new session for a payment that already has one",
				zap.String("payment_id", pmt.ID.String()),
				zap.String("token", ref.Token),
				zap.String("new_session_id", res.SessionID),
			)
		}
	}

	// Keep the raw gateway outcome on the payment for the status surface.
	details := map[string]interface{}{"status": res.Status}
	if res.SessionID != "" {
		details["sessionId"] = res.SessionID
	}
	if res.RedirectURL != "" {
		details["redirectURL"] = res.RedirectURL
	}
	if res.Error != nil {
		details["error"] = res.Error.Detail
	}
	pmt.Details = details

	if err := s.payments.Save(ctx, pmt); err != nil {
		return nil, err
	}

	out := &StartSessionResult{Reference: ref, Response: res}
	if res.Status == http.StatusCreated {
		out.RedirectURL = res.RedirectURL
	}
	return out, nil
}
