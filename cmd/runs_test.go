package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftcap/internal/config"
	"driftcap/internal/storage"
	"driftcap/pkg/models"
)

func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String(), runErr
}

func TestRunsReportsUnreadableSummaries(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("DRIFTCAP_CONFIG", filepath.Join(tempDir, "config.yaml"))

	storeDir := filepath.Join(tempDir, "store")
	cfg := &models.Config{
		Storage: models.Storage{Backend: "local", Local: models.LocalStorage{Dir: storeDir}},
	}
	require.NoError(t, config.Save(cfg))

	store, err := storage.NewLocalStore(storeDir)
	require.NoError(t, err)

	ctx := context.Background()
	good, err := json.Marshal(map[string]interface{}{
		"run_id":  "1740819600",
		"changes": map[string]interface{}{"patients": 3},
	})
	require.NoError(t, err)
	require.NoError(t, store.Upload(ctx, storage.SummaryKey("1740819600"), good))
	require.NoError(t, store.Upload(ctx, storage.SummaryKey("1740819601"), []byte("not json")))

	runsCmd.SetContext(ctx)
	output, err := captureOutput(t, func() error {
		return runRuns(runsCmd, nil)
	})
	require.NoError(t, err)

	assert.Contains(t, output, "1740819600")
	assert.Contains(t, output, "2025-03-01 09:00:00")
	assert.Contains(t, output, "Skipped 1 unreadable run summaries")
}
