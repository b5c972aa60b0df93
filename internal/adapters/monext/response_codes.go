package monext

import (
	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
)

// GatewayName identifies this integration on payment method configuration.
// Payments whose gateway is anything else are never touched by this module.
const GatewayName = "monext"

// FeedbackSeverity categorizes the user-facing message for a return code.
type FeedbackSeverity string

const (
	SeverityInfo  FeedbackSeverity = "info"
	SeverityError FeedbackSeverity = "error"
)

// Feedback is the flash message shown on the browser-return path. MessageKey
// is a translation key resolved by the storefront.
type Feedback struct {
	Severity   FeedbackSeverity
	MessageKey string
}

// PaymentStateFromOutcome maps a Monext return code plus the transaction's
// capture mode to a local payment state. ACCEPTED is the only code sensitive
// to capture mode: a manual-capture acceptance is an authorization hold, not
// a completed charge.
func PaymentStateFromOutcome(outcome, captureMode string) domain.PaymentState {
	switch outcome {
	case ports.OutcomeAccepted:
		if captureMode == ports.CaptureManual {
			return domain.StateAuthorized
		}
		return domain.StateCompleted
	case ports.OutcomeError, ports.OutcomeRefused:
		return domain.StateFailed
	case ports.OutcomeInProgress, ports.OutcomeOnHoldPartner, ports.OutcomePendingRisk:
		return domain.StateProcessing
	case ports.OutcomeCancelled:
		return domain.StateCancelled
	default:
		return domain.StateUnknown
	}
}

// TransitionForState maps a target payment state to the workflow transition
// that reaches it. Unknown maps to the empty transition: no transition applies.
func TransitionForState(state domain.PaymentState) domain.Transition {
	switch state {
	case domain.StateCompleted:
		return domain.TransitionComplete
	case domain.StateAuthorized:
		return domain.TransitionAuthorize
	case domain.StateFailed:
		return domain.TransitionFail
	case domain.StateProcessing:
		return domain.TransitionProcess
	case domain.StateCancelled:
		return domain.TransitionCancel
	default:
		return domain.TransitionNone
	}
}

// FeedbackForOutcome maps a Monext return code to the severity and message key
// shown to the buyer after the browser redirect. The webhook path never uses
// this table.
func FeedbackForOutcome(outcome string) Feedback {
	switch outcome {
	case ports.OutcomeInProgress, ports.OutcomeOnHoldPartner, ports.OutcomePendingRisk:
		return Feedback{SeverityInfo, "monext.return.in_progress"}
	case ports.OutcomeCancelled:
		return Feedback{SeverityInfo, "monext.return.cancelled"}
	case ports.OutcomeError:
		return Feedback{SeverityError, "monext.return.error"}
	case ports.OutcomeRefused:
		return Feedback{SeverityError, "monext.return.refused"}
	default:
		return Feedback{SeverityError, "monext.return.unknown"}
	}
}
