package config

import (
	"os"
	"path/filepath"
	"testing"

	"driftcap/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv("DRIFTCAP_CONFIG", "")
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".driftcap"), GetConfigPath())
}

func TestGetConfigFileFromEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "alt.yaml")
	t.Setenv("DRIFTCAP_CONFIG", file)

	assert.Equal(t, file, GetConfigFile())
	assert.Equal(t, dir, GetConfigPath())
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("DRIFTCAP_CONFIG", "")

	testConfig := &models.Config{
		SQLServer: models.SQLServer{
			Server:   "sql.internal",
			Port:     1433,
			Database: "clinical_dw",
			Username: "cdc_reader",
		},
		Storage: models.Storage{Backend: "local", Local: models.LocalStorage{Dir: filepath.Join(tempDir, "store")}},
		Tables: []models.Table{
			{Name: "sus_episodes", PrimaryKey: "episode_id", VolatileColumns: []string{"etl_batch_id"}},
		},
	}

	require.NoError(t, Save(testConfig))
	assert.True(t, Exists())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sql.internal", loaded.SQLServer.Server)
	assert.Equal(t, testConfig.Tables, loaded.Tables)

	// Saved file is only readable by the owner
	info, err := os.Stat(GetConfigFile())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DRIFTCAP_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1433, cfg.SQLServer.Port)
	assert.Equal(t, "dbo", cfg.SQLServer.Schema)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, 1, cfg.Capture.Workers)
	assert.Equal(t, 3, cfg.Capture.MaxRetries)
}

func TestLoadDecryptsPassword(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("DRIFTCAP_CONFIG", "")
	t.Setenv("DRIFTCAP_ENCRYPTION_KEY", "test-key")

	encrypted, err := EncryptPassword("s3cret")
	require.NoError(t, err)

	cfg := &models.Config{}
	cfg.SQLServer.Password = encrypted
	require.NoError(t, Save(cfg))

	// The stored value is not the plaintext
	raw, err := os.ReadFile(GetConfigFile())
	require.NoError(t, err)
	var onDisk models.Config
	require.NoError(t, yaml.Unmarshal(raw, &onDisk))
	assert.NotEqual(t, "s3cret", onDisk.SQLServer.Password)

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", loaded.SQLServer.Password)
}

func TestEncryptDecryptPassword(t *testing.T) {
	t.Setenv("DRIFTCAP_ENCRYPTION_KEY", "unit-test-key")

	encrypted, err := EncryptPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, IsEncrypted(encrypted))
	assert.NotContains(t, encrypted, "hunter2")

	decrypted, err := DecryptPassword(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", decrypted)
}

func TestEncryptPasswordIdempotent(t *testing.T) {
	t.Setenv("DRIFTCAP_ENCRYPTION_KEY", "unit-test-key")

	once, err := EncryptPassword("hunter2")
	require.NoError(t, err)
	twice, err := EncryptPassword(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestDecryptPlaintextPassthrough(t *testing.T) {
	decrypted, err := DecryptPassword("not-encrypted")
	require.NoError(t, err)
	assert.Equal(t, "not-encrypted", decrypted)
}
