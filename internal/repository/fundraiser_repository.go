package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/globalfaces/phoenix-backend/internal/domain"
)

// FundraiserRepository reads the fundraiser/charity/campaign catalog.
type FundraiserRepository struct {
	db *sqlx.DB
}

func NewFundraiserRepository(db *sqlx.DB) *FundraiserRepository {
	return &FundraiserRepository{db: db}
}

// GetActive returns the fundraiser when it exists and is active (a null
// ACTIVE flag counts as active), or nil when not.
func (r *FundraiserRepository) GetActive(ctx context.Context, fundraiserID string) (*domain.Fundraiser, error) {
	query := `
		SELECT FUNDRAISER_ID, DISPLAY_NAME, EMAIL, COALESCE(ACTIVE, TRUE) AS ACTIVE, CHARITY_ID, CAMPAIGN_ID
		FROM FUNDRAISER
		WHERE FUNDRAISER_ID = ? AND COALESCE(ACTIVE, TRUE) = TRUE
	`

	var f domain.Fundraiser
	if err := r.db.GetContext(ctx, &f, query, fundraiserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fundraiser: %w", err)
	}
	return &f, nil
}

func (r *FundraiserRepository) GetCharity(ctx context.Context, charityID string) (*domain.Charity, error) {
	query := `
		SELECT CHARITY_ID, NAME, BRAND_PRIMARY_HEX, LOGO_URL, BLURB, TERMS_URL, COUNTRY
		FROM CHARITY
		WHERE CHARITY_ID = ?
	`

	var c domain.Charity
	if err := r.db.GetContext(ctx, &c, query, charityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get charity: %w", err)
	}
	return &c, nil
}

func (r *FundraiserRepository) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	query := `
		SELECT CAMPAIGN_ID, CHARITY_ID, NAME, START_DATE, END_DATE, MONTHLY_DEFAULT,
		       PRESET_AMOUNTS, MIN_AMOUNT, CURRENCY
		FROM CAMPAIGN
		WHERE CAMPAIGN_ID = ?
	`

	var c domain.Campaign
	if err := r.db.GetContext(ctx, &c, query, campaignID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &c, nil
}
