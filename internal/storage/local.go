package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"driftcap/internal/common"
	"driftcap/pkg/errors"
)

// LocalStore keeps blobs as files under a single directory. Keys map
// directly to file names; nested keys are rejected.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the backing directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	cleaned, err := common.CleanPath(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid local storage directory")
	}

	if err := os.MkdirAll(cleaned, common.DirPermissionSecure); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "failed to create storage directory").
			WithContext("dir", cleaned)
	}

	return &LocalStore{dir: cleaned}, nil
}

func (s *LocalStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", errors.ValidationError("key", key, "must be a flat blob name")
	}
	return filepath.Join(s.dir, key), nil
}

// Upload implements Store.
func (s *LocalStore) Upload(ctx context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	// Write-then-rename so readers never observe a partial blob.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, common.FilePermissionSecure); err != nil {
		return errors.StorageError(errors.ErrCodeStorageUpload, "failed to write blob", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.StorageError(errors.ErrCodeStorageUpload, "failed to finalize blob", key, err)
	}
	return nil
}

// Download implements Store.
func (s *LocalStore) Download(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 - key is validated flat
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.StorageError(errors.ErrCodeStorageNotFound, "blob not found", key, err)
		}
		return nil, errors.StorageError(errors.ErrCodeStorageDownload, "failed to read blob", key, err)
	}
	return data, nil
}

// List implements Store.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.StorageError(errors.ErrCodeStorageList, "failed to list blobs", prefix, err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".tmp") {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			keys = append(keys, name)
		}
	}

	sort.Strings(keys)
	return keys, nil
}

// Delete implements Store.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.StorageError(errors.ErrCodeStorageUpload, "failed to delete blob", key, err)
	}
	return nil
}
