package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/globalfaces/phoenix-backend/internal/domain"
)

// DonorRepository owns DONOR rows. Upserts are keyed by email.
type DonorRepository struct {
	db *sqlx.DB
}

func NewDonorRepository(db *sqlx.DB) *DonorRepository {
	return &DonorRepository{db: db}
}

// GetIDByEmail returns the donor id for an email, or "" when no donor with
// that email exists.
func (r *DonorRepository) GetIDByEmail(ctx context.Context, email string) (string, error) {
	var donorID string
	err := r.db.GetContext(ctx, &donorID, `SELECT DONOR_ID FROM DONOR WHERE EMAIL = ?`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up donor by email: %w", err)
	}
	return donorID, nil
}

func (r *DonorRepository) Insert(ctx context.Context, d domain.Donor, dob time.Time) error {
	query := `
		INSERT INTO DONOR (DONOR_ID, TITLE, FIRST_NAME, MIDDLE_NAME, LAST_NAME, DOB_DATE,
		                   MOBILE_E164, EMAIL, ADDRESS1, ADDRESS2, CITY, REGION, POSTAL_CODE, COUNTRY, CREATED_AT)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP())
	`

	_, err := r.db.ExecContext(ctx, query,
		d.DonorID, d.Title, d.FirstName, d.MiddleName, d.LastName, dob.Format("2006-01-02"),
		d.MobileE164, d.Email, d.Address1, d.Address2, d.City, d.Region, d.PostalCode, d.Country)
	if err != nil {
		return fmt.Errorf("failed to insert donor: %w", err)
	}
	return nil
}

func (r *DonorRepository) Update(ctx context.Context, d domain.Donor, dob time.Time) error {
	query := `
		UPDATE DONOR SET
			TITLE = ?, FIRST_NAME = ?, MIDDLE_NAME = ?, LAST_NAME = ?, DOB_DATE = ?,
			MOBILE_E164 = ?, EMAIL = ?, ADDRESS1 = ?, ADDRESS2 = ?, CITY = ?,
			REGION = ?, POSTAL_CODE = ?, COUNTRY = ?, UPDATED_AT = CURRENT_TIMESTAMP()
		WHERE DONOR_ID = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		d.Title, d.FirstName, d.MiddleName, d.LastName, dob.Format("2006-01-02"),
		d.MobileE164, d.Email, d.Address1, d.Address2, d.City,
		d.Region, d.PostalCode, d.Country, d.DonorID)
	if err != nil {
		return fmt.Errorf("failed to update donor: %w", err)
	}
	return nil
}

// GetByID returns the full donor record, or nil when unknown.
func (r *DonorRepository) GetByID(ctx context.Context, donorID string) (*domain.Donor, error) {
	query := `
		SELECT DONOR_ID, TITLE, FIRST_NAME, MIDDLE_NAME, LAST_NAME, DOB_DATE,
		       MOBILE_E164, EMAIL, ADDRESS1, ADDRESS2, CITY, REGION, POSTAL_CODE, COUNTRY,
		       CONSENT_SMS, CONSENT_EMAIL, CONSENT_MAIL, CREATED_AT, UPDATED_AT
		FROM DONOR
		WHERE DONOR_ID = ?
	`

	var d domain.Donor
	if err := r.db.GetContext(ctx, &d, query, donorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get donor: %w", err)
	}
	return &d, nil
}

// UpdateConsent sets the three opt-in flags. A non-existent donor updates
// zero rows; no error is raised at this layer.
func (r *DonorRepository) UpdateConsent(ctx context.Context, donorID string, consent domain.Consent) error {
	query := `
		UPDATE DONOR
		SET CONSENT_SMS = ?, CONSENT_EMAIL = ?, CONSENT_MAIL = ?, UPDATED_AT = CURRENT_TIMESTAMP()
		WHERE DONOR_ID = ?
	`

	_, err := r.db.ExecContext(ctx, query, consent.SMS, consent.Email, consent.Mail, donorID)
	if err != nil {
		return fmt.Errorf("failed to update donor consent: %w", err)
	}
	return nil
}
