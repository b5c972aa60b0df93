package payment

import (
	"context"
	"net/http"

	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"github.com/kevin07696/monext-gateway/pkg/observability"
	"go.uber.org/zap"
)

// notificationTypeTransaction is the only notification type this endpoint
// accepts; Monext sends it for transaction outcome notifications.
const notificationTypeTransaction = "WEBTRS"

// SessionReconciler is the slice of the payment service the handlers drive.
type SessionReconciler interface {
	ReconcileSession(ctx context.Context, res *ports.SessionResult, ref *domain.PaymentReference) *ports.APIResult
}

// NotificationHandler handles the server-to-server webhook Monext calls after
// a transaction settles. Machine-to-machine: responses carry only a status
// code and a short plain-text body.
type NotificationHandler struct {
	gateway    ports.MonextGateway
	refs       ports.ReferenceRepository
	reconciler SessionReconciler
	logger     *zap.Logger
}

// NewNotificationHandler creates a new webhook handler
func NewNotificationHandler(gateway ports.MonextGateway, refs ports.ReferenceRepository, reconciler SessionReconciler, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		gateway:    gateway,
		refs:       refs,
		reconciler: reconciler,
		logger:     logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *NotificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("token")
	notificationType := r.URL.Query().Get("notificationType")

	if notificationType != notificationTypeTransaction {
		h.logger.Warn("unsupported notification type",
			zap.String("notification_type", notificationType),
			zap.String("uri", r.RequestURI),
		)
		http.Error(w, "Method not allowed", http.StatusNotImplemented)
		return
	}

	if token == "" {
		h.logger.Warn("missing required parameter token", zap.String("uri", r.RequestURI))
		http.Error(w, "Missing required parameter", http.StatusBadRequest)
		return
	}

	ref, err := h.refs.GetByToken(ctx, token)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrorCodeReferenceNotFound) {
			h.logger.Warn("reference not found for token", zap.String("token", token))
			http.Error(w, "Reference not found for token "+token, http.StatusNotFound)
			return
		}
		h.logger.Error("fetch reference failed", zap.String("token", token), zap.Error(err))
		http.Error(w, "Error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	res := h.gateway.GetSession(ctx, token)

	out := h.reconciler.ReconcileSession(ctx, res, ref)
	observability.RecordReconciliation("webhook", reconciliationOutcome(out))

	if out.Status != http.StatusOK {
		logFn := h.logger.Error
		if out.Status == http.StatusUnprocessableEntity {
			// Replays and losing races land here; not a fault.
			logFn = h.logger.Warn
		}
		logFn("session reconciliation rejected",
			zap.String("token", token),
			zap.Int("status", out.Status),
			zap.Any("error", out.Error),
		)
		detail := ""
		if out.Error != nil {
			detail = out.Error.Detail
		}
		http.Error(w, "Error: "+detail, out.Status)
		return
	}

	if out.Result == nil || out.Result.Title == "" {
		h.logger.Error("invalid reconciliation result", zap.String("token", token), zap.Any("result", out))
		http.Error(w, "Error: Invalid response format.", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// reconciliationOutcome buckets a reconciliation result for metrics.
func reconciliationOutcome(out *ports.APIResult) string {
	switch out.Status {
	case http.StatusOK:
		return "accepted"
	case http.StatusUnprocessableEntity:
		return "mismatch"
	default:
		return "error"
	}
}
