package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"driftcap/internal/config"
	"driftcap/internal/grants"
	"driftcap/internal/ui"
)

var (
	grantsLogin    string
	grantsPassword string
	grantsDryRun   bool
)

var grantsCmd = &cobra.Command{
	Use:   "grants",
	Short: "Provision a read-only analyst login",
	Long: `Create a SQL Server login, database user and read-only role, then grant
SELECT on every monitored table. Rerunning is safe: each statement checks
for the principal before creating it. Use --dry-run to review the script
without executing anything.`,
	RunE: runGrants,
}

func init() {
	rootCmd.AddCommand(grantsCmd)

	grantsCmd.Flags().StringVar(&grantsLogin, "login", "", "login name (overrides config)")
	grantsCmd.Flags().StringVar(&grantsPassword, "password", "", "login password (prompted if omitted)")
	grantsCmd.Flags().BoolVar(&grantsDryRun, "dry-run", false, "print the statements without executing them")
}

func runGrants(cmd *cobra.Command, args []string) error {
	display := ui.NewUI(flagVerbose, flagQuiet)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if grantsLogin != "" {
		cfg.Grants.LoginName = grantsLogin
	}
	if cfg.Grants.LoginName == "" && !flagQuiet {
		cfg.Grants.LoginName, err = ui.Input("Login name for the analyst:", "analyst_ro",
			"The SQL Server login that will receive read-only access")
		if err != nil {
			return err
		}
	}

	provisioner := grants.NewProvisioner(cfg.Grants, cfg.Tables)
	if err := provisioner.Validate(); err != nil {
		return err
	}

	password := grantsPassword
	if password == "" && !grantsDryRun {
		password, err = ui.Password("Password for the new login:", "Used once to create the login, never stored")
		if err != nil {
			return err
		}
	}

	if grantsDryRun {
		stmts, err := provisioner.Statements("********")
		if err != nil {
			return err
		}
		ui.PrintSection("Provisioning script (dry run)")
		for _, stmt := range stmts {
			fmt.Println(stmt + ";")
			fmt.Println()
		}
		return nil
	}

	svc, err := connectSQLServer(cfg, display)
	if err != nil {
		return err
	}
	defer svc.Close()

	display.StartProgress("Applying grants")
	err = provisioner.Apply(cmd.Context(), svc, password)
	display.StopProgress()
	if err != nil {
		return err
	}

	display.Success(fmt.Sprintf("Read-only access provisioned for %d tables", len(cfg.Tables)))
	return nil
}
