package config

import (
	"fmt"
	"os"
	"path/filepath"

	"driftcap/internal/common"
	"driftcap/pkg/models"

	"gopkg.in/yaml.v3"
)

func GetConfigPath() string {
	// Check for environment variable first
	if configPath := os.Getenv("DRIFTCAP_CONFIG"); configPath != "" {
		return filepath.Dir(configPath)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".driftcap")
}

func GetConfigFile() string {
	// Check for environment variable first
	if configFile := os.Getenv("DRIFTCAP_CONFIG"); configFile != "" {
		// Validate the path to prevent directory traversal
		cleaned, err := common.CleanPath(configFile)
		if err != nil {
			// Fall back to default if invalid
			return filepath.Join(GetConfigPath(), "config.yaml")
		}
		return cleaned
	}
	return filepath.Join(GetConfigPath(), "config.yaml")
}

func Load() (*models.Config, error) {
	configFile := GetConfigFile()

	cleanedPath, err := common.CleanPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	if _, err := os.Stat(cleanedPath); os.IsNotExist(err) {
		cfg := &models.Config{}
		applyDefaults(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(cleanedPath) // #nosec G304 - path is validated
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config models.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := DecryptConfigPasswords(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	return &config, nil
}

func Save(config *models.Config) error {
	configPath := GetConfigPath()
	if err := os.MkdirAll(configPath, common.DirPermissionSecure); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(GetConfigFile(), data, common.FilePermissionSecure); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func Exists() bool {
	_, err := os.Stat(GetConfigFile())
	return err == nil
}

// applyDefaults fills settings the YAML may leave out.
func applyDefaults(config *models.Config) {
	if config.SQLServer.Port == 0 {
		config.SQLServer.Port = 1433
	}
	if config.SQLServer.Schema == "" {
		config.SQLServer.Schema = "dbo"
	}
	if config.SQLServer.Timeout == "" {
		config.SQLServer.Timeout = "5m"
	}
	if config.Storage.Backend == "" {
		config.Storage.Backend = "local"
	}
	if config.Storage.Local.Dir == "" {
		config.Storage.Local.Dir = filepath.Join(GetConfigPath(), "store")
	}
	if config.Capture.Workers <= 0 {
		config.Capture.Workers = 1
	}
	if config.Capture.MaxRetries <= 0 {
		config.Capture.MaxRetries = 3
	}
	if config.Generator.Patients <= 0 {
		config.Generator.Patients = 2000
	}
	if config.Generator.YearsOfData <= 0 {
		config.Generator.YearsOfData = 3
	}
	if config.Generator.OutputDir == "" {
		config.Generator.OutputDir = "nhs_data"
	}
	if config.Grants.DefaultSchema == "" {
		config.Grants.DefaultSchema = "dbo"
	}
}
