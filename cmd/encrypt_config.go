package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"driftcap/internal/config"
	"driftcap/internal/ui"
)

var encryptConfigCmd = &cobra.Command{
	Use:   "encrypt-config",
	Short: "Encrypt passwords in the configuration file",
	Long: `Encrypt plaintext passwords in the configuration file using AES-256-GCM.

This command will:
- Read your current configuration file
- Encrypt any plaintext passwords found
- Save the configuration with encrypted passwords
- Create a backup of the original file

The encryption key is derived from:
1. DRIFTCAP_ENCRYPTION_KEY environment variable (if set)
2. Machine-specific identifier (hostname + home directory)

To use an environment variable for the password instead of encryption:
  export DRIFTCAP_SQL_PASSWORD="your-password"`,
	RunE: runEncryptConfig,
}

var (
	configBackup bool
	configPath   string
)

func init() {
	rootCmd.AddCommand(encryptConfigCmd)

	encryptConfigCmd.Flags().BoolVar(&configBackup, "backup", true, "Create backup of original config")
	encryptConfigCmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: auto-detect)")
}

func runEncryptConfig(cmd *cobra.Command, args []string) error {
	display := ui.NewUI(flagVerbose, flagQuiet)

	var configFile string
	if configPath != "" {
		configFile = filepath.Clean(configPath)
	} else {
		configFile = config.GetConfigFile()
	}

	display.Info(fmt.Sprintf("Reading configuration from: %s", configFile))

	data, err := os.ReadFile(filepath.Clean(configFile))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SQLServer.Password == "" {
		display.Info("No plaintext passwords found in the configuration")
		return nil
	}

	if configBackup {
		backupFile := configFile + ".backup"
		if err := os.WriteFile(backupFile, data, 0600); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		display.Success(fmt.Sprintf("Created backup: %s", backupFile))
	}

	display.StartProgress("Encrypting passwords...")
	if err := config.EncryptConfigPasswords(cfg); err != nil {
		display.StopProgress()
		return fmt.Errorf("failed to encrypt passwords: %w", err)
	}
	display.StopProgress()

	configData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, configData, 0600); err != nil {
		return fmt.Errorf("failed to save encrypted config: %w", err)
	}

	display.Success("Configuration passwords encrypted successfully")
	display.Info("\nTo decrypt passwords at runtime, driftcap will use:")
	display.Info("1. DRIFTCAP_ENCRYPTION_KEY environment variable (if set)")
	display.Info("2. Machine-specific key (hostname + home directory)")
	display.Info("\nAlternatively, use DRIFTCAP_SQL_PASSWORD to override")

	return nil
}
