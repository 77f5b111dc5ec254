package cmd

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"driftcap/internal/capture"
	"driftcap/internal/config"
	"driftcap/internal/publish"
	"driftcap/internal/secrets"
	"driftcap/internal/sqlserver"
	"driftcap/internal/storage"
	"driftcap/internal/ui"
	"driftcap/pkg/errors"
	"driftcap/pkg/models"
)

var (
	captureTables  []string
	captureWorkers int
	captureJSON    bool
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Run a change capture pass over the monitored tables",
	Long: `Snapshot each monitored table, hash every row and compare against the stored
baseline. Detected inserts, updates and deletes are written to a per-table
change log, the baseline is refreshed, and a run summary records the outcome
for every table.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringSliceVarP(&captureTables, "tables", "t", nil, "capture only these tables (default: all configured)")
	captureCmd.Flags().IntVarP(&captureWorkers, "workers", "w", 0, "concurrent tables (overrides config)")
	captureCmd.Flags().BoolVar(&captureJSON, "json", false, "print the run summary as JSON for orchestrator capture")
}

func runCapture(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	display := ui.NewUI(flagVerbose, flagQuiet || captureJSON)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	tables, err := selectTables(cfg.Tables, captureTables)
	if err != nil {
		return err
	}
	if captureWorkers > 0 {
		cfg.Capture.Workers = captureWorkers
	} else if viper.IsSet("capture.workers") {
		// Honors DRIFTCAP_CAPTURE_WORKERS and a workdir config.yaml.
		cfg.Capture.Workers = viper.GetInt("capture.workers")
	}

	svc, err := connectSQLServer(cfg, display)
	if err != nil {
		return err
	}
	defer svc.Close()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	engine := capture.NewEngine(svc, store, tables, cfg.Capture)

	// Verbose runs get per-table status lines, interactive runs a progress
	// bar. JSON output stays clean for orchestrators.
	var bar *ui.ProgressBar
	if !flagQuiet && !flagVerbose && !captureJSON {
		bar = ui.NewProgressBar(len(tables))
	}
	var completed atomic.Int64
	engine.Progress = func(table, message string) {
		if bar == nil {
			display.VerbosePrintf("  %s: %s\n", table, message)
		}
	}
	engine.Done = func(outcome capture.TableOutcome) {
		n := int(completed.Add(1))
		if bar != nil {
			bar.Update(n, outcome.Table, outcome.Err == nil)
			return
		}
		if outcome.Err == nil && !outcome.Skipped {
			display.VerbosePrintf("  %s: %s\n", outcome.Table,
				ui.FormatChangeCounts(outcome.Inserts, outcome.Updates, outcome.Deletes))
		}
	}

	if cfg.Publisher.Enabled {
		publisher, err := publish.NewKafkaPublisher(cfg.Publisher)
		if err != nil {
			return err
		}
		defer publisher.Close()
		engine.WithPublisher(publisher)
		display.Info(fmt.Sprintf("Publishing change events to %s", cfg.Publisher.Topic))
	}

	summary, err := engine.Run(ctx)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	// Orchestrators consume the summary as a single JSON document, either
	// via --json or by running quiet.
	if captureJSON || flagQuiet {
		data, err := summary.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		ui.ShowRunSummary(summary.RunID, summary.Changes)
	}

	if failed := summary.FailedTables(); len(failed) > 0 {
		return errors.New(errors.ErrCodeSnapshotFailed,
			fmt.Sprintf("capture finished with errors in %d tables: %s",
				len(failed), strings.Join(failed, ", ")))
	}

	total := summary.TotalChanges()
	if total == 0 {
		display.Println(color.GreenString("No changes detected."))
	} else {
		display.Println(color.GreenString("Captured %d changes in run %s.", total, summary.RunID))
	}
	return nil
}

// selectTables filters the configured tables down to the requested names.
func selectTables(configured []models.Table, requested []string) ([]models.Table, error) {
	if len(configured) == 0 {
		return nil, errors.ConfigError("no tables configured, run 'driftcap setup' first", "tables")
	}
	if len(requested) == 0 {
		return configured, nil
	}

	byName := make(map[string]models.Table, len(configured))
	for _, t := range configured {
		byName[strings.ToLower(t.Name)] = t
	}

	selected := make([]models.Table, 0, len(requested))
	for _, name := range requested {
		t, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, errors.ValidationError("tables", name, "not a configured table")
		}
		selected = append(selected, t)
	}
	return selected, nil
}

// connectSQLServer resolves the password, builds the service and opens the
// connection, reporting progress on the way.
func connectSQLServer(cfg *models.Config, display *ui.UI) (*sqlserver.Service, error) {
	password, err := secrets.NewResolver().Resolve(secrets.NameSQLPassword, cfg.SQLServer.Password)
	if err != nil {
		return nil, err
	}
	cfg.SQLServer.Password = password

	svcConfig, err := sqlserver.ConfigFromModel(cfg.SQLServer)
	if err != nil {
		return nil, err
	}
	if err := sqlserver.ValidateConfig(svcConfig); err != nil {
		return nil, err
	}

	svc := sqlserver.NewService(svcConfig)
	display.StartProgress(fmt.Sprintf("Connecting to %s", cfg.SQLServer.Server))
	err = svc.Connect()
	display.StopProgress()
	if err != nil {
		return nil, err
	}
	return svc, nil
}
