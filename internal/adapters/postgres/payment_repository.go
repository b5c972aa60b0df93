package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
)

// PaymentRepository implements ports.PaymentRepository with pgx.
type PaymentRepository struct {
	db ports.DBPort
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db ports.DBPort) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// GetByID retrieves a payment by its ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	row := r.db.GetDB().QueryRow(ctx, `
		SELECT id, order_id, gateway_name, amount, currency, state, details, created_at, updated_at
		FROM payments
		WHERE id = $1`,
		id,
	)

	var (
		pmt          domain.Payment
		amount       pgtype.Numeric
		state        string
		detailsBytes []byte
	)

	err := row.Scan(&pmt.ID, &pmt.OrderID, &pmt.GatewayName, &amount, &pmt.Currency,
		&state, &detailsBytes, &pmt.CreatedAt, &pmt.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewDomainError(domain.ErrorCodePaymentNotFound,
			fmt.Sprintf("no payment with id %s", id))
	}
	if err != nil {
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	pmt.Amount, err = pgNumericToDecimal(amount)
	if err != nil {
		return nil, fmt.Errorf("convert payment amount: %w", err)
	}
	pmt.State = domain.PaymentState(state)

	if len(detailsBytes) > 0 {
		if err := json.Unmarshal(detailsBytes, &pmt.Details); err != nil {
			return nil, fmt.Errorf("unmarshal payment details: %w", err)
		}
	}

	return &pmt, nil
}

// Save persists the payment's state and details.
func (r *PaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	amount := pgtype.Numeric{}
	if err := amount.Scan(payment.Amount.String()); err != nil {
		return fmt.Errorf("convert payment amount: %w", err)
	}

	detailsBytes := []byte("{}")
	if payment.Details != nil {
		var err error
		detailsBytes, err = json.Marshal(payment.Details)
		if err != nil {
			return fmt.Errorf("marshal payment details: %w", err)
		}
	}

	_, err := r.db.GetDB().Exec(ctx, `
		INSERT INTO payments (id, order_id, gateway_name, amount, currency, state, details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET state = EXCLUDED.state, details = EXCLUDED.details, updated_at = NOW()`,
		payment.ID, payment.OrderID, payment.GatewayName, amount, payment.Currency,
		string(payment.State), detailsBytes,
	)
	if err != nil {
		return fmt.Errorf("save payment: %w", err)
	}

	return nil
}

// GetByOrderID retrieves the payment attached to an order.
func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	row := r.db.GetDB().QueryRow(ctx, `
		SELECT id, order_id, gateway_name, amount, currency, state, details, created_at, updated_at
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1`,
		orderID,
	)

	var (
		pmt          domain.Payment
		amount       pgtype.Numeric
		state        string
		detailsBytes []byte
	)

	err := row.Scan(&pmt.ID, &pmt.OrderID, &pmt.GatewayName, &amount, &pmt.Currency,
		&state, &detailsBytes, &pmt.CreatedAt, &pmt.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewDomainError(domain.ErrorCodePaymentNotFound,
			fmt.Sprintf("no payment for order %s", orderID))
	}
	if err != nil {
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	pmt.Amount, err = pgNumericToDecimal(amount)
	if err != nil {
		return nil, fmt.Errorf("convert payment amount: %w", err)
	}
	pmt.State = domain.PaymentState(state)

	if len(detailsBytes) > 0 {
		if err := json.Unmarshal(detailsBytes, &pmt.Details); err != nil {
			return nil, fmt.Errorf("unmarshal payment details: %w", err)
		}
	}

	return &pmt, nil
}
