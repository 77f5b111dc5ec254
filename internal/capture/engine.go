package capture

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"

	"driftcap/internal/storage"
	"driftcap/pkg/errors"
	"driftcap/pkg/models"
)

// Engine runs one change-capture pass over the configured tables. Tables
// are processed concurrently up to the worker limit; a failing table is
// recorded in the summary and never aborts the run.
type Engine struct {
	source    Snapshotter
	store     storage.Store
	publisher Publisher
	tables    []models.Table
	workers   int
	retries   int
	retryWait time.Duration

	// Progress receives per-table status lines for terminal display.
	Progress func(table, message string)

	// Done receives each table's outcome as soon as it finishes.
	Done func(outcome TableOutcome)

	now   func() time.Time
	newID func() string
}

// NewEngine wires a capture engine.
func NewEngine(source Snapshotter, store storage.Store, tables []models.Table, cfg models.Capture) *Engine {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}

	return &Engine{
		source:    source,
		store:     store,
		tables:    tables,
		workers:   workers,
		retries:   retries,
		retryWait: 2 * time.Second,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// WithPublisher attaches an optional change-event publisher.
func (e *Engine) WithPublisher(p Publisher) *Engine {
	e.publisher = p
	return e
}

// tableResult is what one table contributes to the run summary.
type tableResult struct {
	processed bool
	changes   int
	inserts   int
	updates   int
	deletes   int
}

// TableOutcome summarizes one table's processing for display hooks.
type TableOutcome struct {
	Table   string
	Skipped bool
	Err     error
	Inserts int
	Updates int
	Deletes int
}

// Run executes the capture pass and uploads the run summary. The returned
// summary is valid even when err is non-nil.
func (e *Engine) Run(ctx context.Context) (*RunSummary, error) {
	runID := strconv.FormatInt(e.now().Unix(), 10)
	summary := NewRunSummary(runID)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, table := range e.tables {
		table := table
		g.Go(func() error {
			e.progress(table.Name, "checking table")

			result, err := e.processTable(gctx, runID, table)
			if err != nil {
				// Per-table failures stay local to the table.
				summary.RecordError(table.Name, err)
				e.progress(table.Name, "failed: "+err.Error())
				e.done(TableOutcome{Table: table.Name, Err: err})
				return nil
			}

			if !result.processed {
				e.progress(table.Name, "no rows found, skipping")
				e.done(TableOutcome{Table: table.Name, Skipped: true})
				return nil
			}

			summary.RecordCount(table.Name, result.changes)
			e.progress(table.Name, strconv.Itoa(result.changes)+" changes")
			e.done(TableOutcome{
				Table:   table.Name,
				Inserts: result.inserts,
				Updates: result.updates,
				Deletes: result.deletes,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	data, err := summary.JSON()
	if err != nil {
		return summary, errors.Wrap(err, errors.ErrCodeInternal, "failed to encode run summary")
	}
	if err := e.store.Upload(ctx, storage.SummaryKey(runID), data); err != nil {
		return summary, err
	}

	return summary, nil
}

// processTable snapshots, diffs and refreshes the baseline for one table.
func (e *Engine) processTable(ctx context.Context, runID string, table models.Table) (tableResult, error) {
	var snap *Snapshot

	retryCfg := errors.SnapshotRetryConfig()
	retryCfg.MaxRetries = e.retries
	retryCfg.InitialDelay = e.retryWait
	err := errors.Retry(ctx, retryCfg, func(ctx context.Context) error {
		var snapErr error
		snap, snapErr = e.source.Snapshot(ctx, table)
		return snapErr
	})
	if err != nil {
		return tableResult{}, errors.Wrap(err, errors.ErrCodeSnapshotFailed, "failed to snapshot table").
			WithContext("table", table.Name)
	}

	// Empty tables are skipped outright: no log, no baseline refresh.
	if len(snap.Rows) == 0 {
		return tableResult{processed: false}, nil
	}

	current := HashSnapshot(snap, table.PrimaryKey, table.VolatileColumns)

	baseline, err := e.loadBaseline(ctx, table.Name)
	if err != nil {
		return tableResult{}, err
	}

	changes := Diff(current, baseline)

	result := tableResult{processed: true, changes: len(changes)}
	for _, change := range changes {
		switch change.Type {
		case ChangeInsert:
			result.inserts++
		case ChangeUpdate:
			result.updates++
		case ChangeDelete:
			result.deletes++
		}
	}

	if len(changes) > 0 {
		entries := e.buildLogEntries(runID, changes)

		logData, err := json.Marshal(entries)
		if err != nil {
			return tableResult{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to encode change log")
		}
		if err := e.store.Upload(ctx, storage.ChangeLogKey(table.Name, runID), logData); err != nil {
			return tableResult{}, err
		}

		if e.publisher != nil {
			if err := e.publisher.PublishChanges(ctx, table.Name, entries); err != nil {
				return tableResult{}, err
			}
		}
	}

	// The baseline is only refreshed once the snapshot read succeeded, so
	// a failed run never loses the previous comparison point.
	baselineData, err := json.Marshal(NewBaseline(current))
	if err != nil {
		return tableResult{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to encode baseline")
	}
	if err := e.store.Upload(ctx, storage.BaselineKey(table.Name), baselineData); err != nil {
		return tableResult{}, err
	}

	return result, nil
}

// loadBaseline fetches a table's stored baseline. A missing baseline means
// a first run: every current row will classify as an insert.
func (e *Engine) loadBaseline(ctx context.Context, table string) ([]BaselineEntry, error) {
	data, err := e.store.Download(ctx, storage.BaselineKey(table))
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var baseline []BaselineEntry
	if err := json.Unmarshal(data, &baseline); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to decode baseline").
			WithContext("table", table)
	}
	return baseline, nil
}

func (e *Engine) buildLogEntries(runID string, changes []Change) []LogEntry {
	changeTime := FormatChangeTime(e.now())

	entries := make([]LogEntry, 0, len(changes))
	for _, change := range changes {
		entries = append(entries, LogEntry{
			ID:         e.newID(),
			RunID:      runID,
			ChangeType: change.Type,
			PrimaryKey: change.Key,
			RowHash:    change.Hash,
			ChangeTime: changeTime,
		})
	}
	return entries
}

func (e *Engine) progress(table, message string) {
	if e.Progress != nil {
		e.Progress(table, message)
	}
}

func (e *Engine) done(outcome TableOutcome) {
	if e.Done != nil {
		e.Done(outcome)
	}
}
