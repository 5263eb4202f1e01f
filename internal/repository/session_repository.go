package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/globalfaces/phoenix-backend/internal/domain"
)

// SessionRepository owns SESSION rows and the DONOR_SESSION association.
type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Insert(ctx context.Context, s domain.Session) error {
	query := `
		INSERT INTO SESSION (SESSION_ID, FUNDRAISER_ID, CHARITY_ID, CAMPAIGN_ID, STATE, DEVICE_ID, CREATED_AT)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP())
	`

	_, err := r.db.ExecContext(ctx, query,
		s.SessionID, s.FundraiserID, s.CharityID, s.CampaignID, s.State, s.DeviceID)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Snapshot returns the charity/campaign assigned to a session at creation
// time. Both may be null; a missing session returns (nil, nil, nil) so the
// association row still records the link.
func (r *SessionRepository) Snapshot(ctx context.Context, sessionID string) (charityID, campaignID *string, err error) {
	query := `SELECT CHARITY_ID, CAMPAIGN_ID FROM SESSION WHERE SESSION_ID = ?`

	var row struct {
		CharityID  *string `db:"CHARITY_ID"`
		CampaignID *string `db:"CAMPAIGN_ID"`
	}
	if err := r.db.GetContext(ctx, &row, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to get session snapshot: %w", err)
	}
	return row.CharityID, row.CampaignID, nil
}

// FundraiserDisplayName resolves the display name of the fundraiser who owns
// a session; empty when the session or fundraiser is unknown.
func (r *SessionRepository) FundraiserDisplayName(ctx context.Context, sessionID string) (string, error) {
	query := `
		SELECT COALESCE(F.DISPLAY_NAME, '') AS DISPLAY_NAME
		FROM SESSION S
		JOIN FUNDRAISER F ON F.FUNDRAISER_ID = S.FUNDRAISER_ID
		WHERE S.SESSION_ID = ?
	`

	var name string
	if err := r.db.GetContext(ctx, &name, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get fundraiser display name: %w", err)
	}
	return name, nil
}

// InsertDonorSession records the donor↔session link with the charity and
// campaign snapshotted from the session.
func (r *SessionRepository) InsertDonorSession(ctx context.Context, ds domain.DonorSession) error {
	query := `
		INSERT INTO DONOR_SESSION (SESSION_ID, DONOR_ID, FUNDRAISER_ID, CHARITY_ID, CAMPAIGN_ID, CREATED_AT)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP())
	`

	_, err := r.db.ExecContext(ctx, query,
		ds.SessionID, ds.DonorID, ds.FundraiserID, ds.CharityID, ds.CampaignID)
	if err != nil {
		return fmt.Errorf("failed to insert donor session: %w", err)
	}
	return nil
}
