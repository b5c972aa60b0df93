package payment

import (
	"net/http"

	"github.com/kevin07696/monext-gateway/internal/adapters/monext"
	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"github.com/kevin07696/monext-gateway/pkg/observability"
	"go.uber.org/zap"
)

// flashCookie carries the localized flash message key across the redirect.
// The storefront reads and clears it on the next page load.
const flashCookie = "monext_flash"

// ReturnHandler handles the buyer coming back from the Monext checkout page.
// It never shows an error page: every outcome is a redirect, at worst to the
// shop homepage with a best-effort localized flash message.
type ReturnHandler struct {
	gateway     ports.MonextGateway
	refs        ports.ReferenceRepository
	reconciler  SessionReconciler
	logger      *zap.Logger
	homeURL     string
	thankYouURL string
}

// NewReturnHandler creates a new browser-return handler
func NewReturnHandler(gateway ports.MonextGateway, refs ports.ReferenceRepository, reconciler SessionReconciler, logger *zap.Logger, homeURL, thankYouURL string) *ReturnHandler {
	return &ReturnHandler{
		gateway:     gateway,
		refs:        refs,
		reconciler:  reconciler,
		logger:      logger,
		homeURL:     homeURL,
		thankYouURL: thankYouURL,
	}
}

// ServeHTTP implements http.Handler.
func (h *ReturnHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("paylinetoken")

	// No token: not a redirect from the gateway, nothing to tell the buyer.
	if token == "" {
		h.redirect(w, r, h.homeURL)
		return
	}

	ref, err := h.refs.GetByToken(ctx, token)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrorCodeReferenceNotFound) {
			h.logger.Warn("reference not found for token", zap.String("token", token))
			h.flash(w, monext.Feedback{Severity: monext.SeverityInfo, MessageKey: "monext.return.not_found"})
		} else {
			h.logger.Error("fetch reference failed", zap.String("token", token), zap.Error(err))
			h.flash(w, monext.Feedback{Severity: monext.SeverityError, MessageKey: "monext.return.error"})
		}
		h.redirect(w, r, h.homeURL)
		return
	}

	res := h.gateway.GetSession(ctx, token)

	out := h.reconciler.ReconcileSession(ctx, res, ref)
	observability.RecordReconciliation("return", reconciliationOutcome(out))

	if out.Status != http.StatusOK {
		h.logger.Warn("session reconciliation rejected on return",
			zap.String("token", token),
			zap.Int("status", out.Status),
			zap.Any("error", out.Error),
		)
		if out.Error == nil || out.Error.Title == "" {
			h.flash(w, monext.Feedback{Severity: monext.SeverityError, MessageKey: "monext.return.error"})
		} else {
			h.flash(w, monext.FeedbackForOutcome(out.Error.Title))
		}
		h.redirect(w, r, h.homeURL)
		return
	}

	if out.Result != nil && out.Result.Title != ports.OutcomeAccepted {
		h.flash(w, monext.FeedbackForOutcome(out.Result.Title))
	}

	h.redirect(w, r, h.thankYouURL)
}

// flash sets the message cookie the storefront renders after the redirect.
func (h *ReturnHandler) flash(w http.ResponseWriter, fb monext.Feedback) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    string(fb.Severity) + ":" + fb.MessageKey,
		Path:     "/",
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *ReturnHandler) redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}
