package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"driftcap/internal/capture"
	"driftcap/internal/config"
	"driftcap/internal/storage"
	"driftcap/internal/ui"
	"driftcap/pkg/errors"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Inspect or rebuild table baselines",
}

var baselineShowCmd = &cobra.Command{
	Use:   "show <table>",
	Short: "Show the stored baseline for a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runBaselineShow,
}

var baselineResetYes bool

var baselineResetCmd = &cobra.Command{
	Use:   "reset [table...]",
	Short: "Rebuild baselines from the current table contents",
	Long: `Snapshot the named tables and store fresh baselines without writing a
change log. The next capture run will only report changes made after the
reset. With no arguments the configured tables are offered for selection;
in quiet mode all of them are reset.`,
	RunE: runBaselineReset,
}

func init() {
	rootCmd.AddCommand(baselineCmd)
	baselineCmd.AddCommand(baselineShowCmd)
	baselineCmd.AddCommand(baselineResetCmd)

	baselineResetCmd.Flags().BoolVarP(&baselineResetYes, "yes", "y", false, "skip the confirmation prompt")
}

func runBaselineShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	table := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	data, err := store.Download(ctx, storage.BaselineKey(table))
	if err != nil {
		if storage.IsNotFound(err) {
			return errors.New(errors.ErrCodeStorageNotFound,
				fmt.Sprintf("no baseline stored for table %s", table)).
				WithSuggestions("Run 'driftcap capture' or 'driftcap baseline reset' to create one")
		}
		return err
	}

	var entries []capture.BaselineEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageDownload, "failed to decode baseline").
			WithContext("table", table)
	}

	ui.PrintKeyValue("Table", table)
	ui.PrintKeyValue("Rows", strconv.Itoa(len(entries)))
	fmt.Println()

	out := ui.NewTable()
	out.AddHeader("Primary Key", "Row Hash")
	for _, entry := range entries {
		out.AddRow(entry.PrimaryKey, entry.RowHash)
	}
	out.Render()
	return nil
}

func runBaselineReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	display := ui.NewUI(flagVerbose, flagQuiet)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	requested := args
	if len(requested) == 0 && len(cfg.Tables) > 0 && !flagQuiet {
		names := make([]string, 0, len(cfg.Tables))
		for _, t := range cfg.Tables {
			names = append(names, t.Name)
		}
		requested, err = ui.MultiSelect("Select tables to reset:", names)
		if err != nil {
			return err
		}
		if len(requested) == 0 {
			display.Println("No tables selected.")
			return nil
		}
	}

	tables, err := selectTables(cfg.Tables, requested)
	if err != nil {
		return err
	}

	if !baselineResetYes && !flagQuiet {
		proceed, err := ui.Confirm(fmt.Sprintf("Reset baselines for %d tables?", len(tables)), true)
		if err != nil {
			return err
		}
		if !proceed {
			display.Println("Reset cancelled.")
			return nil
		}
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	svc, err := connectSQLServer(cfg, display)
	if err != nil {
		return err
	}
	defer svc.Close()

	bar := ui.NewProgressBar(len(tables))
	for i, table := range tables {
		if !flagQuiet {
			ui.ShowTableExecution(table.Name, i+1, len(tables))
		}

		snapshot, err := svc.Snapshot(ctx, table)
		if err != nil {
			return err
		}

		hashed := capture.HashSnapshot(snapshot, table.PrimaryKey, table.VolatileColumns)
		baseline := capture.NewBaseline(hashed)
		data, err := json.Marshal(baseline)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to encode baseline").
				WithContext("table", table.Name)
		}
		if err := store.Upload(ctx, storage.BaselineKey(table.Name), data); err != nil {
			return err
		}

		if !flagQuiet {
			bar.Update(i+1, table.Name, true)
		}
		display.VerbosePrintf("\n  %-24s baseline rebuilt with %s rows\n",
			table.Name, strconv.Itoa(len(baseline)))
	}
	if !flagQuiet {
		fmt.Println()
	}

	display.Success(fmt.Sprintf("Reset baselines for %d tables", len(tables)))
	return nil
}
