package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"driftcap/internal/config"
	"driftcap/internal/storage"
	"driftcap/internal/ui"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past capture runs",
	Long: `Read the stored run summaries and show each run's time, the number of
tables processed, the total change count and any failed tables.`,
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "show at most this many runs, newest first")
}

type runRecord struct {
	RunID   string                 `json:"run_id"`
	Changes map[string]interface{} `json:"changes"`
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	keys, err := store.List(ctx, storage.SummaryPrefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Println("No capture runs recorded yet.")
		return nil
	}

	// Run IDs are Unix timestamps, so reverse-sorted keys are newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if runsLimit > 0 && len(keys) > runsLimit {
		keys = keys[:runsLimit]
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Run", "Time", "Tables", "Changes", "Failed"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	skipped := 0
	for _, key := range keys {
		data, err := store.Download(ctx, key)
		if err != nil {
			skipped++
			if flagVerbose {
				ui.PrintError(fmt.Errorf("skipping %s: %w", key, err))
			}
			continue
		}
		var record runRecord
		if err := json.Unmarshal(data, &record); err != nil {
			skipped++
			if flagVerbose {
				ui.PrintError(fmt.Errorf("skipping %s: %w", key, err))
			}
			continue
		}

		total := 0
		var failed []string
		for name, outcome := range record.Changes {
			switch v := outcome.(type) {
			case float64:
				total += int(v)
			case string:
				failed = append(failed, name)
			}
		}
		sort.Strings(failed)

		table.Append([]string{
			record.RunID,
			formatRunTime(record.RunID),
			strconv.Itoa(len(record.Changes)),
			strconv.Itoa(total),
			strings.Join(failed, ", "),
		})
	}
	table.Render()

	if skipped > 0 {
		ui.PrintWarning(fmt.Sprintf(
			"Skipped %d unreadable run summaries, rerun with --verbose for details", skipped))
	}
	return nil
}

// formatRunTime renders a Unix-seconds run ID as a human-readable time.
func formatRunTime(runID string) string {
	secs, err := strconv.ParseInt(runID, 10, 64)
	if err != nil {
		return ""
	}
	return time.Unix(secs, 0).UTC().Format("2006-01-02 15:04:05")
}
