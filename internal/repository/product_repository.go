package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/globalfaces/phoenix-backend/internal/domain"
)

// ProductRepository reads the donation product catalog.
type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ListByCampaign returns a campaign's active products, monthly first,
// cheapest first within each type.
func (r *ProductRepository) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Product, error) {
	query := `
		SELECT PRODUCT_ID, CAMPAIGN_ID, PRODUCT_TYPE, AMOUNT_CENTS, CURRENCY, DISPLAY_NAME,
		       STRIPE_PRICE_ID, COALESCE(ACTIVE, TRUE) AS ACTIVE
		FROM PRODUCT
		WHERE CAMPAIGN_ID = ? AND ACTIVE = TRUE
		ORDER BY PRODUCT_TYPE, AMOUNT_CENTS
	`

	products := []domain.Product{}
	if err := r.db.SelectContext(ctx, &products, query, campaignID); err != nil {
		return nil, fmt.Errorf("failed to list campaign products: %w", err)
	}
	return products, nil
}

// Lookup resolves the product matching an amount/currency/type within a
// campaign, or nil when none does. The tablet uses this to turn a chosen
// amount into a Stripe price.
func (r *ProductRepository) Lookup(ctx context.Context, campaignID string, amountCents int64, currency, productType string) (*domain.Product, error) {
	query := `
		SELECT PRODUCT_ID, CAMPAIGN_ID, PRODUCT_TYPE, AMOUNT_CENTS, CURRENCY, DISPLAY_NAME,
		       STRIPE_PRICE_ID, COALESCE(ACTIVE, TRUE) AS ACTIVE
		FROM PRODUCT
		WHERE CAMPAIGN_ID = ?
		  AND AMOUNT_CENTS = ?
		  AND UPPER(CURRENCY) = UPPER(?)
		  AND UPPER(PRODUCT_TYPE) = UPPER(?)
		  AND ACTIVE = TRUE
		LIMIT 1
	`

	var p domain.Product
	if err := r.db.GetContext(ctx, &p, query, campaignID, amountCents, currency, productType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	return &p, nil
}
