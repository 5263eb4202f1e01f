package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/globalfaces/phoenix-backend/internal/domain"
)

// SignatureRepository records captured signature metadata. The image bytes
// live on the internal stage; only the stage URI and content hash land here.
type SignatureRepository struct {
	db *sqlx.DB
}

func NewSignatureRepository(db *sqlx.DB) *SignatureRepository {
	return &SignatureRepository{db: db}
}

func (r *SignatureRepository) Insert(ctx context.Context, s domain.Signature) error {
	query := `
		INSERT INTO SIGNATURE (SIGNATURE_ID, DONOR_ID, SESSION_ID, SIGNATURE_IMAGE, HASH_SHA256, CAPTURED_AT)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP())
	`

	_, err := r.db.ExecContext(ctx, query, s.SignatureID, s.DonorID, s.SessionID, s.StageURI, s.HashSHA256)
	if err != nil {
		return fmt.Errorf("failed to insert signature: %w", err)
	}
	return nil
}
