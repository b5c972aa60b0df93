package payment

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"github.com/kevin07696/monext-gateway/internal/services/lifecycle"
	"go.uber.org/zap"
)

// LifecycleHooks is the slice of the lifecycle package this handler drives.
type LifecycleHooks interface {
	OnPaymentComplete(ctx context.Context, pmt *domain.Payment) error
	OnPaymentCancel(ctx context.Context, pmt *domain.Payment) error
	OnPaymentRefund(ctx context.Context, pmt *domain.Payment) error
	OnOrderShipment(ctx context.Context, pmt *domain.Payment, firedTransition string) error
}

var _ LifecycleHooks = (*lifecycle.Hooks)(nil)

// orderTransitionRequest is posted by the hosting order workflow whenever one
// of its payment or shipping transitions fires.
type orderTransitionRequest struct {
	PaymentID  string `json:"payment_id"`
	OrderID    string `json:"order_id"`
	Transition string `json:"transition"`
}

// OrderTransitionHandler exposes the lifecycle hooks to an order workflow
// that runs in another process.
type OrderTransitionHandler struct {
	hooks    LifecycleHooks
	payments ports.PaymentRepository
	logger   *zap.Logger
}

// NewOrderTransitionHandler creates the order transition endpoint.
func NewOrderTransitionHandler(hooks LifecycleHooks, payments ports.PaymentRepository, logger *zap.Logger) *OrderTransitionHandler {
	return &OrderTransitionHandler{hooks: hooks, payments: payments, logger: logger}
}

func (h *OrderTransitionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req orderTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Transition == "" {
		http.Error(w, "transition is required", http.StatusBadRequest)
		return
	}

	pmt, ok := h.resolvePayment(w, r, req)
	if !ok {
		return
	}

	var err error
	switch req.Transition {
	case "complete":
		err = h.hooks.OnPaymentComplete(r.Context(), pmt)
	case "cancel":
		err = h.hooks.OnPaymentCancel(r.Context(), pmt)
	case "refund":
		err = h.hooks.OnPaymentRefund(r.Context(), pmt)
	default:
		// Shipping and other order transitions trigger a capture only when
		// configured as a manual-capture trigger.
		err = h.hooks.OnOrderShipment(r.Context(), pmt, req.Transition)
	}

	if err != nil {
		if domain.IsExpected(err) {
			h.logger.Warn("transition produced an expected mismatch",
				zap.String("payment_id", req.PaymentID),
				zap.String("transition", req.Transition),
				zap.Error(err),
			)
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error("transition failed",
			zap.String("payment_id", req.PaymentID),
			zap.String("transition", req.Transition),
			zap.Error(err),
		)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// resolvePayment loads the target payment from payment_id when present,
// otherwise from order_id. Shipping transitions fired by the order workflow
// only carry the order id.
func (h *OrderTransitionHandler) resolvePayment(w http.ResponseWriter, r *http.Request, req orderTransitionRequest) (*domain.Payment, bool) {
	var (
		pmt *domain.Payment
		err error
	)
	switch {
	case req.PaymentID != "":
		paymentID, parseErr := uuid.Parse(req.PaymentID)
		if parseErr != nil {
			http.Error(w, "payment_id must be a valid uuid", http.StatusBadRequest)
			return nil, false
		}
		pmt, err = h.payments.GetByID(r.Context(), paymentID)
	case req.OrderID != "":
		orderID, parseErr := uuid.Parse(req.OrderID)
		if parseErr != nil {
			http.Error(w, "order_id must be a valid uuid", http.StatusBadRequest)
			return nil, false
		}
		pmt, err = h.payments.GetByOrderID(r.Context(), orderID)
	default:
		http.Error(w, "payment_id or order_id is required", http.StatusBadRequest)
		return nil, false
	}
	if err != nil {
		if domain.IsDomainError(err, domain.ErrorCodePaymentNotFound) {
			http.Error(w, "Payment not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.Error("failed to load payment",
			zap.String("payment_id", req.PaymentID),
			zap.String("order_id", req.OrderID),
			zap.Error(err),
		)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return nil, false
	}
	return pmt, true
}
