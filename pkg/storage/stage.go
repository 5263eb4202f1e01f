package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// stageURIPattern matches internal/external stage URIs of the form
// "@DB.SCHEMA.STAGE/path/to/file.png".
var stageURIPattern = regexp.MustCompile(`^@([A-Za-z0-9_.]+)/(.+)$`)

// StageStore writes and presigns files on Snowflake stages. PUT only works
// against internal stages; GET_PRESIGNED_URL works for both kinds.
type StageStore struct {
	db *sqlx.DB
}

func NewStageStore(db *sqlx.DB) *StageStore {
	return &StageStore{db: db}
}

// IsStageURI reports whether a locator refers to a stage rather than a
// direct URL.
func IsStageURI(uri string) bool {
	return strings.HasPrefix(strings.TrimSpace(uri), "@")
}

// Put uploads raw bytes to the stage URI. The file is staged from a
// temporary directory under its final base name so the object lands at
// exactly the requested path.
func (s *StageStore) Put(ctx context.Context, stageURI string, data []byte) error {
	m := stageURIPattern.FindStringSubmatch(strings.TrimSpace(stageURI))
	if m == nil {
		return fmt.Errorf("invalid stage uri: %s", stageURI)
	}
	stageName, relPath := m[1], m[2]

	tmpDir, err := os.MkdirTemp("", "stageput")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	localPath := filepath.Join(tmpDir, filepath.Base(relPath))
	if err := os.WriteFile(localPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	targetDir := filepath.Dir(relPath)
	target := fmt.Sprintf("@%s/", stageName)
	if targetDir != "." {
		target = fmt.Sprintf("@%s/%s/", stageName, targetDir)
	}

	query := fmt.Sprintf("PUT file://%s %s AUTO_COMPRESS=FALSE OVERWRITE=TRUE", localPath, target)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to stage file: %w", err)
	}
	return nil
}

// Presign returns a time-limited HTTPS URL for a staged file.
func (s *StageStore) Presign(ctx context.Context, stageURI string, expires time.Duration) (string, error) {
	m := stageURIPattern.FindStringSubmatch(strings.TrimSpace(stageURI))
	if m == nil {
		return "", fmt.Errorf("invalid stage uri: %s", stageURI)
	}
	stageName, relPath := m[1], m[2]

	// The stage name cannot be bound as a parameter; it is validated by the
	// pattern above before being interpolated.
	query := fmt.Sprintf("SELECT GET_PRESIGNED_URL(@%s, ?, ?)", stageName)

	var url *string
	if err := s.db.GetContext(ctx, &url, query, relPath, int(expires.Seconds())); err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", stageURI, err)
	}
	if url == nil || *url == "" {
		return "", fmt.Errorf("presign returned no url for %s", stageURI)
	}
	return *url, nil
}
