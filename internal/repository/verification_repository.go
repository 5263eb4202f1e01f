package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/globalfaces/phoenix-backend/internal/domain"
)

// VerificationRepository owns VERIFICATION_SMS rows. A row is "open" while
// INBOUND_TS is null; inbound replies close the most recent open row for the
// sender's number.
type VerificationRepository struct {
	db *sqlx.DB
}

func NewVerificationRepository(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// InsertOutbound records a sent confirmation message as an open row.
func (r *VerificationRepository) InsertOutbound(ctx context.Context, v domain.VerificationSms) error {
	query := `
		INSERT INTO VERIFICATION_SMS (VERIF_ID, SESSION_ID, DONOR_ID, MOBILE_E164, TO_NUMBER,
		                              MESSAGE_BODY, RESULT, TWILIO_MSG_SID, SENT_TS)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP())
	`

	_, err := r.db.ExecContext(ctx, query,
		v.VerifID, v.SessionID, v.DonorID, v.MobileE164, v.ToNumber,
		v.MessageBody, v.Result, v.TwilioMsgSID)
	if err != nil {
		return fmt.Errorf("failed to insert outbound verification: %w", err)
	}
	return nil
}

// FindOpenByNumber returns the most recently sent open row for a phone
// number, or nil when every row for that number has already been answered.
func (r *VerificationRepository) FindOpenByNumber(ctx context.Context, mobileE164 string) (*domain.VerificationSms, error) {
	query := `
		SELECT VERIF_ID, SESSION_ID, DONOR_ID, SENT_TS, MESSAGE_BODY, INBOUND_TS,
		       INBOUND_BODY, RESULT, TWILIO_MSG_SID, MOBILE_E164, TO_NUMBER
		FROM VERIFICATION_SMS
		WHERE MOBILE_E164 = ? AND INBOUND_TS IS NULL
		ORDER BY SENT_TS DESC
		LIMIT 1
	`

	var v domain.VerificationSms
	if err := r.db.GetContext(ctx, &v, query, mobileE164); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open verification: %w", err)
	}
	return &v, nil
}

// MarkInbound closes an open row with the reply body and normalized result.
// The Twilio message SID is only filled in when the outbound send never
// recorded one.
func (r *VerificationRepository) MarkInbound(ctx context.Context, verifID, inboundBody string, result domain.VerificationResult, twilioMsgSID string) error {
	query := `
		UPDATE VERIFICATION_SMS
		SET INBOUND_TS = CURRENT_TIMESTAMP(), INBOUND_BODY = ?, RESULT = ?,
		    TWILIO_MSG_SID = COALESCE(TWILIO_MSG_SID, ?)
		WHERE VERIF_ID = ?
	`

	_, err := r.db.ExecContext(ctx, query, inboundBody, string(result), nullIfEmpty(twilioMsgSID), verifID)
	if err != nil {
		return fmt.Errorf("failed to mark inbound verification: %w", err)
	}
	return nil
}

// InsertInbound records a reply that matched no open row, so the message is
// still auditable. Caller-supplied session/donor references are kept on the
// row itself, not just the event log.
func (r *VerificationRepository) InsertInbound(ctx context.Context, verifID, sessionID, donorID, fromNumber, inboundBody string, result domain.VerificationResult, twilioMsgSID string) error {
	query := `
		INSERT INTO VERIFICATION_SMS (VERIF_ID, SESSION_ID, DONOR_ID, MOBILE_E164, INBOUND_TS, INBOUND_BODY, RESULT, TWILIO_MSG_SID)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP(), ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, verifID, nullIfEmpty(sessionID), nullIfEmpty(donorID),
		fromNumber, inboundBody, string(result), nullIfEmpty(twilioMsgSID))
	if err != nil {
		return fmt.Errorf("failed to insert inbound verification: %w", err)
	}
	return nil
}

// LatestForSessionDonor returns the newest verification row for a
// session/donor pair, or nil when none was ever sent.
func (r *VerificationRepository) LatestForSessionDonor(ctx context.Context, sessionID, donorID string) (*domain.VerificationSms, error) {
	query := `
		SELECT VERIF_ID, SESSION_ID, DONOR_ID, SENT_TS, MESSAGE_BODY, INBOUND_TS,
		       INBOUND_BODY, RESULT, TWILIO_MSG_SID, MOBILE_E164, TO_NUMBER
		FROM VERIFICATION_SMS
		WHERE SESSION_ID = ? AND DONOR_ID = ?
		ORDER BY SENT_TS DESC
		LIMIT 1
	`

	var v domain.VerificationSms
	if err := r.db.GetContext(ctx, &v, query, sessionID, donorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest verification: %w", err)
	}
	return &v, nil
}
