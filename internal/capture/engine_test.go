package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"driftcap/internal/storage"
	"driftcap/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves canned snapshots and can fail per table. Workers
// snapshot tables concurrently, so the attempt counter is locked.
type fakeSource struct {
	mu        sync.Mutex
	snapshots map[string]*Snapshot
	failures  map[string]error
	attempts  map[string]int
}

func (f *fakeSource) Snapshot(ctx context.Context, table models.Table) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.attempts == nil {
		f.attempts = make(map[string]int)
	}
	f.attempts[table.Name]++

	if err, ok := f.failures[table.Name]; ok {
		return nil, err
	}
	snap, ok := f.snapshots[table.Name]
	if !ok {
		return &Snapshot{Table: table.Name}, nil
	}
	return snap, nil
}

type recordedPublish struct {
	table   string
	entries []LogEntry
}

type fakePublisher struct {
	mu        sync.Mutex
	published []recordedPublish
}

func (f *fakePublisher) PublishChanges(ctx context.Context, table string, entries []LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, recordedPublish{table: table, entries: entries})
	return nil
}

func newTestEngine(t *testing.T, source Snapshotter, tables []models.Table) (*Engine, storage.Store) {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	engine := NewEngine(source, store, tables, models.Capture{Workers: 2, MaxRetries: 1})
	engine.retryWait = time.Millisecond
	engine.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	var seq atomic.Int64
	engine.newID = func() string {
		return fmt.Sprintf("entry-%04d", seq.Add(1))
	}
	return engine, store
}

func episodeSnapshot(rows ...map[string]interface{}) *Snapshot {
	return &Snapshot{
		Table:   "sus_episodes",
		Columns: []string{"episode_id", "primary_diagnosis", "created_timestamp"},
		Rows:    rows,
	}
}

func episodesTable() []models.Table {
	return []models.Table{{Name: "sus_episodes", PrimaryKey: "episode_id"}}
}

func TestEngineFirstRunAllInserts(t *testing.T) {
	source := &fakeSource{snapshots: map[string]*Snapshot{
		"sus_episodes": episodeSnapshot(
			map[string]interface{}{"episode_id": "EP1", "primary_diagnosis": "I21.9"},
			map[string]interface{}{"episode_id": "EP2", "primary_diagnosis": "J18.9"},
		),
	}}
	engine, store := newTestEngine(t, source, episodesTable())

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1740819600", summary.RunID)
	assert.Equal(t, 2, summary.Changes["sus_episodes"])

	// Change log written with INSERT entries
	logData, err := store.Download(context.Background(), storage.ChangeLogKey("sus_episodes", summary.RunID))
	require.NoError(t, err)
	var entries []LogEntry
	require.NoError(t, json.Unmarshal(logData, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, ChangeInsert, entries[0].ChangeType)
	assert.Equal(t, summary.RunID, entries[0].RunID)
	assert.Equal(t, "2025-03-01 09:00:00", entries[0].ChangeTime)

	// Baseline refreshed
	baselineData, err := store.Download(context.Background(), storage.BaselineKey("sus_episodes"))
	require.NoError(t, err)
	var baseline []BaselineEntry
	require.NoError(t, json.Unmarshal(baselineData, &baseline))
	assert.Len(t, baseline, 2)

	// Summary uploaded
	_, err = store.Download(context.Background(), storage.SummaryKey(summary.RunID))
	require.NoError(t, err)
}

func TestEngineSecondRunNoChanges(t *testing.T) {
	snap := episodeSnapshot(
		map[string]interface{}{"episode_id": "EP1", "primary_diagnosis": "I21.9"},
	)
	source := &fakeSource{snapshots: map[string]*Snapshot{"sus_episodes": snap}}
	engine, store := newTestEngine(t, source, episodesTable())

	first, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Changes["sus_episodes"])

	engine.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	second, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Changes["sus_episodes"])

	// No change log for a changeless run
	_, err = store.Download(context.Background(), storage.ChangeLogKey("sus_episodes", second.RunID))
	assert.True(t, storage.IsNotFound(err))
}

func TestEngineDetectsUpdateAndDelete(t *testing.T) {
	source := &fakeSource{snapshots: map[string]*Snapshot{
		"sus_episodes": episodeSnapshot(
			map[string]interface{}{"episode_id": "EP1", "primary_diagnosis": "I21.9"},
			map[string]interface{}{"episode_id": "EP2", "primary_diagnosis": "J18.9"},
		),
	}}
	engine, store := newTestEngine(t, source, episodesTable())

	_, err := engine.Run(context.Background())
	require.NoError(t, err)

	// EP1 changes diagnosis, EP2 disappears
	source.snapshots["sus_episodes"] = episodeSnapshot(
		map[string]interface{}{"episode_id": "EP1", "primary_diagnosis": "I63.9"},
	)
	engine.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Changes["sus_episodes"])

	logData, err := store.Download(context.Background(), storage.ChangeLogKey("sus_episodes", summary.RunID))
	require.NoError(t, err)
	var entries []LogEntry
	require.NoError(t, json.Unmarshal(logData, &entries))

	types := map[ChangeType]string{}
	for _, e := range entries {
		types[e.ChangeType] = e.PrimaryKey
	}
	assert.Equal(t, "EP2", types[ChangeDelete])
	assert.Equal(t, "EP1", types[ChangeUpdate])
}

func TestEngineSkipsEmptyTable(t *testing.T) {
	source := &fakeSource{snapshots: map[string]*Snapshot{
		"sus_episodes": episodeSnapshot(),
	}}
	engine, store := newTestEngine(t, source, episodesTable())

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	// Skipped tables do not appear in the summary at all
	_, recorded := summary.Changes["sus_episodes"]
	assert.False(t, recorded)

	// And no baseline is written
	_, err = store.Download(context.Background(), storage.BaselineKey("sus_episodes"))
	assert.True(t, storage.IsNotFound(err))
}

func TestEngineContinuesPastFailingTable(t *testing.T) {
	tables := []models.Table{
		{Name: "sus_episodes", PrimaryKey: "episode_id"},
		{Name: "prescriptions", PrimaryKey: "prescription_id"},
	}
	source := &fakeSource{
		snapshots: map[string]*Snapshot{
			"prescriptions": {
				Table:   "prescriptions",
				Columns: []string{"prescription_id", "bnf_code"},
				Rows: []map[string]interface{}{
					{"prescription_id": "RX1", "bnf_code": "0601060"},
				},
			},
		},
		failures: map[string]error{
			"sus_episodes": fmt.Errorf("login failed for user"),
		},
	}
	engine, _ := newTestEngine(t, source, tables)

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Changes["prescriptions"])
	outcome, ok := summary.Changes["sus_episodes"].(string)
	require.True(t, ok)
	assert.Contains(t, outcome, "Error:")
	assert.Equal(t, []string{"sus_episodes"}, summary.FailedTables())
}

func TestEngineReportsTableOutcomes(t *testing.T) {
	source := &fakeSource{snapshots: map[string]*Snapshot{
		"sus_episodes": episodeSnapshot(
			map[string]interface{}{"episode_id": "EP1", "primary_diagnosis": "I21.9"},
			map[string]interface{}{"episode_id": "EP2", "primary_diagnosis": "J18.9"},
		),
	}}
	engine, _ := newTestEngine(t, source, episodesTable())

	var mu sync.Mutex
	outcomes := map[string]TableOutcome{}
	engine.Done = func(outcome TableOutcome) {
		mu.Lock()
		defer mu.Unlock()
		outcomes[outcome.Table] = outcome
	}

	_, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TableOutcome{Table: "sus_episodes", Inserts: 2}, outcomes["sus_episodes"])

	// EP1 changes, EP2 disappears, EP3 is new
	source.snapshots["sus_episodes"] = episodeSnapshot(
		map[string]interface{}{"episode_id": "EP1", "primary_diagnosis": "I63.9"},
		map[string]interface{}{"episode_id": "EP3", "primary_diagnosis": "K80.2"},
	)
	engine.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }

	_, err = engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t,
		TableOutcome{Table: "sus_episodes", Inserts: 1, Updates: 1, Deletes: 1},
		outcomes["sus_episodes"])
}

func TestEngineOutcomeMarksFailuresAndSkips(t *testing.T) {
	tables := []models.Table{
		{Name: "sus_episodes", PrimaryKey: "episode_id"},
		{Name: "prescriptions", PrimaryKey: "prescription_id"},
	}
	source := &fakeSource{
		snapshots: map[string]*Snapshot{
			"prescriptions": {Table: "prescriptions", Columns: []string{"prescription_id"}},
		},
		failures: map[string]error{
			"sus_episodes": fmt.Errorf("login failed for user"),
		},
	}
	engine, _ := newTestEngine(t, source, tables)

	var mu sync.Mutex
	outcomes := map[string]TableOutcome{}
	engine.Done = func(outcome TableOutcome) {
		mu.Lock()
		defer mu.Unlock()
		outcomes[outcome.Table] = outcome
	}

	_, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Error(t, outcomes["sus_episodes"].Err)
	assert.True(t, outcomes["prescriptions"].Skipped)
}

func TestEngineConcurrentTables(t *testing.T) {
	var tables []models.Table
	snapshots := map[string]*Snapshot{}
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("table_%d", i)
		tables = append(tables, models.Table{Name: name, PrimaryKey: "id"})
		snapshots[name] = &Snapshot{
			Table:   name,
			Columns: []string{"id", "value"},
			Rows: []map[string]interface{}{
				{"id": "R1", "value": i},
				{"id": "R2", "value": i * 10},
			},
		}
	}
	source := &fakeSource{snapshots: snapshots}
	engine, _ := newTestEngine(t, source, tables)

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 16, summary.TotalChanges())
	for _, table := range tables {
		assert.Equal(t, 2, summary.Changes[table.Name])
		assert.Equal(t, 1, source.attempts[table.Name])
	}
}

func TestEngineRetriesSnapshotReads(t *testing.T) {
	source := &fakeSource{failures: map[string]error{
		"sus_episodes": fmt.Errorf("connection reset"),
	}}
	engine, _ := newTestEngine(t, source, episodesTable())
	engine.retries = 2

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.FailedTables())
	assert.Equal(t, 3, source.attempts["sus_episodes"])
}

func TestEnginePublishesChanges(t *testing.T) {
	source := &fakeSource{snapshots: map[string]*Snapshot{
		"sus_episodes": episodeSnapshot(
			map[string]interface{}{"episode_id": "EP1", "primary_diagnosis": "I21.9"},
		),
	}}
	engine, _ := newTestEngine(t, source, episodesTable())

	publisher := &fakePublisher{}
	engine.WithPublisher(publisher)

	_, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, "sus_episodes", publisher.published[0].table)
	assert.Len(t, publisher.published[0].entries, 1)
}

func TestRunSummaryAccounting(t *testing.T) {
	summary := NewRunSummary("1700000000")
	summary.RecordCount("a", 3)
	summary.RecordCount("b", 2)
	summary.RecordError("c", fmt.Errorf("boom"))

	assert.Equal(t, 5, summary.TotalChanges())
	assert.Equal(t, []string{"c"}, summary.FailedTables())

	data, err := summary.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"run_id":"1700000000","changes":{"a":3,"b":2,"c":"Error: boom"}}`, string(data))
}
