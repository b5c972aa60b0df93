package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
)

// ReferenceRepository implements ports.ReferenceRepository with pgx.
type ReferenceRepository struct {
	db ports.DBPort
}

// NewReferenceRepository creates a new payment reference repository.
func NewReferenceRepository(db ports.DBPort) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// Create persists a new payment reference. The payment_id column carries a
// unique constraint, so a duplicate create fails here.
func (r *ReferenceRepository) Create(ctx context.Context, ref *domain.PaymentReference) error {
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}

	_, err := r.db.GetDB().Exec(ctx, `
		INSERT INTO payment_references (id, payment_id, token, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())`,
		ref.ID, ref.PaymentID, nullText(ref.Token), nullText(ref.TransactionID),
	)
	if err != nil {
		return fmt.Errorf("create payment reference: %w", err)
	}

	return nil
}

// GetByToken resolves a reference by its Monext session token.
func (r *ReferenceRepository) GetByToken(ctx context.Context, token string) (*domain.PaymentReference, error) {
	row := r.db.GetDB().QueryRow(ctx, `
		SELECT id, payment_id, token, transaction_id, created_at, updated_at
		FROM payment_references
		WHERE token = $1`,
		token,
	)
	return r.scanReference(row, "token", token)
}

// GetByPaymentID resolves a reference by its owning payment.
func (r *ReferenceRepository) GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentReference, error) {
	row := r.db.GetDB().QueryRow(ctx, `
		SELECT id, payment_id, token, transaction_id, created_at, updated_at
		FROM payment_references
		WHERE payment_id = $1`,
		paymentID,
	)
	return r.scanReference(row, "payment_id", paymentID.String())
}

// Update persists token and transaction id changes.
func (r *ReferenceRepository) Update(ctx context.Context, ref *domain.PaymentReference) error {
	tag, err := r.db.GetDB().Exec(ctx, `
		UPDATE payment_references
		SET token = $2, transaction_id = $3, updated_at = NOW()
		WHERE id = $1`,
		ref.ID, nullText(ref.Token), nullText(ref.TransactionID),
	)
	if err != nil {
		return fmt.Errorf("update payment reference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewDomainError(domain.ErrorCodeReferenceNotFound,
			fmt.Sprintf("payment reference %s does not exist", ref.ID))
	}

	return nil
}

func (r *ReferenceRepository) scanReference(row pgx.Row, keyName, keyValue string) (*domain.PaymentReference, error) {
	var (
		ref           domain.PaymentReference
		token         pgtype.Text
		transactionID pgtype.Text
	)

	err := row.Scan(&ref.ID, &ref.PaymentID, &token, &transactionID, &ref.CreatedAt, &ref.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewDomainError(domain.ErrorCodeReferenceNotFound,
			fmt.Sprintf("no payment reference with %s %s", keyName, keyValue))
	}
	if err != nil {
		return nil, fmt.Errorf("scan payment reference: %w", err)
	}

	ref.Token = token.String
	ref.TransactionID = transactionID.String
	return &ref, nil
}
