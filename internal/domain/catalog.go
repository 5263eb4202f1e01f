package domain

import "time"

type Fundraiser struct {
	FundraiserID string  `db:"FUNDRAISER_ID" json:"fundraiser_id"`
	DisplayName  *string `db:"DISPLAY_NAME" json:"display_name,omitempty"`
	Email        *string `db:"EMAIL" json:"email,omitempty"`
	Active       bool    `db:"ACTIVE" json:"active"`
	CharityID    *string `db:"CHARITY_ID" json:"charity_id,omitempty"`
	CampaignID   *string `db:"CAMPAIGN_ID" json:"campaign_id,omitempty"`
}

type Charity struct {
	CharityID       string  `db:"CHARITY_ID" json:"charity_id"`
	Name            *string `db:"NAME" json:"name,omitempty"`
	BrandPrimaryHex *string `db:"BRAND_PRIMARY_HEX" json:"brand_primary_hex,omitempty"`
	LogoURL         *string `db:"LOGO_URL" json:"logo_url,omitempty"`
	Blurb           *string `db:"BLURB" json:"blurb,omitempty"`
	TermsURL        *string `db:"TERMS_URL" json:"terms_url,omitempty"`
	Country         *string `db:"COUNTRY" json:"country,omitempty"`
}

type Campaign struct {
	CampaignID     string     `db:"CAMPAIGN_ID" json:"campaign_id"`
	CharityID      *string    `db:"CHARITY_ID" json:"charity_id,omitempty"`
	Name           *string    `db:"NAME" json:"name,omitempty"`
	StartDate      *time.Time `db:"START_DATE" json:"start_date,omitempty"`
	EndDate        *time.Time `db:"END_DATE" json:"end_date,omitempty"`
	MonthlyDefault *bool      `db:"MONTHLY_DEFAULT" json:"monthly_default,omitempty"`
	PresetAmounts  *string    `db:"PRESET_AMOUNTS" json:"preset_amounts,omitempty"`
	MinAmount      *int64     `db:"MIN_AMOUNT" json:"min_amount,omitempty"`
	Currency       *string    `db:"CURRENCY" json:"currency,omitempty"`
}

type Product struct {
	ProductID     string  `db:"PRODUCT_ID" json:"product_id"`
	CampaignID    *string `db:"CAMPAIGN_ID" json:"campaign_id,omitempty"`
	ProductType   string  `db:"PRODUCT_TYPE" json:"product_type"`
	AmountCents   int64   `db:"AMOUNT_CENTS" json:"amount_cents"`
	Currency      string  `db:"CURRENCY" json:"currency"`
	DisplayName   *string `db:"DISPLAY_NAME" json:"display_name,omitempty"`
	StripePriceID *string `db:"STRIPE_PRICE_ID" json:"stripe_price_id,omitempty"`
	Active        bool    `db:"ACTIVE" json:"active"`
}
