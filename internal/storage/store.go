// Package storage persists CDC baselines, change logs and run summaries in
// an object store. The local backend keeps blobs on disk for development;
// the s3 backend targets the bucket the pipeline's orchestrator reads from.
package storage

import (
	"context"
	"fmt"

	"driftcap/pkg/errors"
	"driftcap/pkg/models"
)

// Store is a flat key/blob interface over the backing object store.
type Store interface {
	// Upload writes data under key, overwriting any existing blob.
	Upload(ctx context.Context, key string, data []byte) error

	// Download reads the blob under key. A missing key returns an error
	// with code ErrCodeStorageNotFound.
	Download(ctx context.Context, key string) ([]byte, error)

	// List returns the keys that start with prefix, sorted ascending.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the blob under key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error
}

// Blob key naming, shared with the downstream orchestrator.

// BaselineKey returns the key holding a table's hash baseline.
func BaselineKey(table string) string {
	return fmt.Sprintf("%s_baseline.json", table)
}

// ChangeLogKey returns the key holding a table's change log for a run.
func ChangeLogKey(table, runID string) string {
	return fmt.Sprintf("%s_log_%s.json", table, runID)
}

// SummaryKey returns the key holding a run's summary document.
func SummaryKey(runID string) string {
	return fmt.Sprintf("cdc_summary_%s.json", runID)
}

// SummaryPrefix is the shared prefix of all run summary keys.
const SummaryPrefix = "cdc_summary_"

// New builds a Store from configuration.
func New(ctx context.Context, cfg models.Storage) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.Local.Dir)
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, errors.ConfigError(
			fmt.Sprintf("unknown storage backend %q", cfg.Backend), "storage.backend")
	}
}

// IsNotFound reports whether err marks a missing blob.
func IsNotFound(err error) bool {
	return errors.GetErrorCode(err) == errors.ErrCodeStorageNotFound
}
