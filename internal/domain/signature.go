package domain

// Signature records a captured signature image: where the bytes live on the
// stage and the SHA-256 of the raw image, kept for integrity verification.
type Signature struct {
	SignatureID string `db:"SIGNATURE_ID" json:"signature_id"`
	DonorID     string `db:"DONOR_ID" json:"donor_id"`
	SessionID   string `db:"SESSION_ID" json:"session_id"`
	StageURI    string `db:"SIGNATURE_IMAGE" json:"stage_uri"`
	HashSHA256  string `db:"HASH_SHA256" json:"hash_sha256"`
}
