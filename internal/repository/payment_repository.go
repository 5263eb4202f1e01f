package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/globalfaces/phoenix-backend/internal/domain"
)

// PaymentRepository mirrors Stripe payment state into the warehouse.
type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) InsertPayment(ctx context.Context, p domain.Payment) error {
	query := `
		INSERT INTO PAYMENT (PAYMENT_ID, SESSION_ID, DONOR_ID, TYPE, AMOUNT, CURRENCY,
		                     STRIPE_CUSTOMER_ID, STRIPE_SUBSCRIPTION_ID, STATUS, CREATED_AT)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP())
	`

	_, err := r.db.ExecContext(ctx, query,
		p.PaymentID, p.SessionID, p.DonorID, p.Type, p.Amount, p.Currency,
		p.StripeCustomerID, p.StripeSubscriptionID, p.Status)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) InsertPaymentMethod(ctx context.Context, pm domain.PaymentMethodRow) error {
	query := `
		INSERT INTO PAYMENT_METHOD (PM_ID, DONOR_ID, STRIPE_CUSTOMER_ID, STRIPE_PAYMENT_METHOD_ID, USAGE, CREATED_AT)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP())
	`

	_, err := r.db.ExecContext(ctx, query,
		pm.PMID, pm.DonorID, pm.StripeCustomerID, pm.StripePaymentMethodID, pm.Usage)
	if err != nil {
		return fmt.Errorf("failed to insert payment method: %w", err)
	}
	return nil
}
