package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/globalfaces/phoenix-backend/internal/domain"
	"github.com/globalfaces/phoenix-backend/pkg/ids"
	"github.com/globalfaces/phoenix-backend/pkg/logger"
)

type signatureRepository interface {
	Insert(ctx context.Context, s domain.Signature) error
}

type stageStore interface {
	Put(ctx context.Context, stageURI string, data []byte) error
	Presign(ctx context.Context, stageURI string, expires time.Duration) (string, error)
}

// SignatureService stores captured signature images on the internal stage and
// records their metadata and content hash in the warehouse.
type SignatureService struct {
	signatures    signatureRepository
	events        eventRepository
	stage         stageStore
	stageName     string
	presignExpiry time.Duration
}

func NewSignatureService(
	signatures signatureRepository,
	events eventRepository,
	stage stageStore,
	stageName string,
	presignExpiry time.Duration,
) *SignatureService {
	return &SignatureService{
		signatures:    signatures,
		events:        events,
		stage:         stage,
		stageName:     stageName,
		presignExpiry: presignExpiry,
	}
}

// UploadInput carries a base64 PNG from the tablet. A data-URI prefix is
// tolerated and stripped.
type UploadInput struct {
	SessionID     string `json:"session_id"`
	DonorID       string `json:"donor_id"`
	SignatureData string `json:"signature_data"`
}

// UploadResult returns the recorded signature and a time-limited viewing URL.
// The URL is best-effort and may be empty when presigning failed.
type UploadResult struct {
	SignatureID  string `json:"signature_id"`
	SignatureURL string `json:"signature_url"`
}

// Upload decodes, hashes, and stages the signature image, then records the
// stage URI and SHA-256 in the warehouse.
func (s *SignatureService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.SessionID == "" || in.DonorID == "" || in.SignatureData == "" {
		return nil, NewValidationError("session_id, donor_id and signature_data are required")
	}

	b64 := in.SignatureData
	if idx := strings.Index(b64, ","); idx >= 0 {
		b64 = b64[idx+1:]
	}
	pngData, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, NewValidationError("signature_data is not valid base64")
	}

	sum := sha256.Sum256(pngData)
	hashHex := hex.EncodeToString(sum[:])

	signatureID := fmt.Sprintf("sig-%s-%s", ids.Timestamp(), in.DonorID)
	stageURI := fmt.Sprintf("@%s/signatures/%s.png", s.stageName, signatureID)

	if err := s.stage.Put(ctx, stageURI, pngData); err != nil {
		return nil, err
	}

	if err := s.signatures.Insert(ctx, domain.Signature{
		SignatureID: signatureID,
		DonorID:     in.DonorID,
		SessionID:   in.SessionID,
		StageURI:    stageURI,
		HashSHA256:  hashHex,
	}); err != nil {
		return nil, err
	}

	// Viewing URL is a convenience; the durable record is the stage URI.
	signatureURL := ""
	if url, err := s.stage.Presign(ctx, stageURI, s.presignExpiry); err != nil {
		logger.Warnf("Failed to presign signature %s: %v", signatureID, err)
	} else {
		signatureURL = url
	}

	if _, err := s.events.Insert(ctx, domain.Event{
		EventType: domain.EventSignatureCaptured,
		SessionID: in.SessionID,
		DonorID:   in.DonorID,
		Attributes: map[string]any{
			"signature_id": signatureID,
			"hash_sha256":  hashHex,
			"file_size":    len(pngData),
			"stage":        s.stageName,
		},
	}); err != nil {
		return nil, err
	}

	return &UploadResult{SignatureID: signatureID, SignatureURL: signatureURL}, nil
}
