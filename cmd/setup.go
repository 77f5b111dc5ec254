package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"driftcap/internal/config"
	"driftcap/internal/secrets"
	"driftcap/internal/ui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration setup",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	if !flagQuiet {
		ui.ClearScreen()
		ui.ShowLogo()
	}

	if config.Exists() {
		var overwrite bool
		prompt := &survey.Confirm{
			Message: "Configuration already exists. Do you want to overwrite it?",
			Default: false,
		}
		if err := survey.AskOne(prompt, &overwrite); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	wizard := ui.NewConfigWizard()
	cfg, err := wizard.Run()
	if err != nil {
		return err
	}

	// Prefer the OS keyring over storing the password in the config file.
	if cfg.SQLServer.Password != "" {
		useKeyring := true
		prompt := &survey.Confirm{
			Message: "Store the password in the OS keyring instead of the config file?",
			Default: true,
		}
		if err := survey.AskOne(prompt, &useKeyring); err != nil {
			return err
		}
		if useKeyring {
			if err := secrets.NewResolver().Store(secrets.NameSQLPassword, cfg.SQLServer.Password); err != nil {
				ui.PrintWarning(fmt.Sprintf("Keyring unavailable (%v), keeping password in config", err))
			} else {
				cfg.SQLServer.Password = ""
			}
		}
	}

	if cfg.SQLServer.Password != "" {
		if err := config.EncryptConfigPasswords(cfg); err != nil {
			return err
		}
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Configuration saved to %s", config.GetConfigFile()))
	ui.PrintInfo("Run 'driftcap capture' to take the first baseline snapshot.")
	return nil
}
