package payment

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/kevin07696/monext-gateway/internal/adapters/monext"
	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	paymentsvc "github.com/kevin07696/monext-gateway/internal/services/payment"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SessionStarter is the slice of the payment service the session endpoint
// drives.
type SessionStarter interface {
	StartSession(ctx context.Context, order *ports.CheckoutOrder, pmt *domain.Payment) (*paymentsvc.StartSessionResult, error)
}

// createSessionRequest is posted by the hosting checkout to open a hosted
// payment session for an order.
type createSessionRequest struct {
	OrderID  string              `json:"order_id"`
	Amount   string              `json:"amount"`
	Currency string              `json:"currency"`
	Order    ports.CheckoutOrder `json:"order"`
}

type createSessionResponse struct {
	PaymentID   string `json:"payment_id"`
	Token       string `json:"token,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SessionHandler opens Monext checkout sessions on behalf of the hosting
// checkout flow.
type SessionHandler struct {
	sessions SessionStarter
	payments ports.PaymentRepository
	logger   *zap.Logger
}

// NewSessionHandler creates the session creation endpoint.
func NewSessionHandler(sessions SessionStarter, payments ports.PaymentRepository, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, payments: payments, logger: logger}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		http.Error(w, "order_id must be a UUID", http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		http.Error(w, "amount must be a positive decimal", http.StatusBadRequest)
		return
	}
	if req.Currency == "" {
		http.Error(w, "currency is required", http.StatusBadRequest)
		return
	}

	pmt := &domain.Payment{
		ID:          uuid.New(),
		OrderID:     orderID,
		GatewayName: monext.GatewayName,
		Amount:      amount,
		Currency:    req.Currency,
		State:       domain.StateNew,
	}
	if err := h.payments.Save(r.Context(), pmt); err != nil {
		h.logger.Error("failed to persist payment",
			zap.String("order_id", req.OrderID),
			zap.Error(err),
		)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	result, err := h.sessions.StartSession(r.Context(), &req.Order, pmt)
	if err != nil {
		h.logger.Error("failed to start checkout session",
			zap.String("payment_id", pmt.ID.String()),
			zap.Error(err),
		)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	resp := createSessionResponse{PaymentID: pmt.ID.String()}
	if result.Reference != nil {
		resp.Token = result.Reference.Token
	}

	w.Header().Set("Content-Type", "application/json")
	if result.RedirectURL != "" {
		resp.RedirectURL = result.RedirectURL
		w.WriteHeader(http.StatusCreated)
	} else {
		if result.Response.Error != nil {
			resp.Error = result.Response.Error.Detail
		}
		status := result.Response.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
