// Package capture implements hash-based change data capture: each monitored
// table is snapshotted, every row is hashed over its non-volatile columns,
// and the hashes are compared against the baseline from the previous run to
// classify inserts, updates and deletes.
package capture

import (
	"context"
	"time"

	"driftcap/pkg/models"
)

// Snapshot is a full read of a source table at a point in time. Columns
// preserves the SELECT order so that hashing is stable across runs.
type Snapshot struct {
	Table   string
	Columns []string
	Rows    []map[string]interface{}
}

// HashedRow pairs a rendered primary key with its row hash.
type HashedRow struct {
	Key  string
	Hash string
}

// BaselineEntry is one record of a stored baseline.
type BaselineEntry struct {
	PrimaryKey string `json:"primary_key"`
	RowHash    string `json:"row_hash"`
}

// ChangeType classifies a detected row change.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeDelete ChangeType = "DELETE"
	ChangeUpdate ChangeType = "UPDATE"
)

// Change is a single classified difference between snapshot and baseline.
// For deletes Hash carries the baseline hash; otherwise the new hash.
type Change struct {
	Type ChangeType
	Key  string
	Hash string
}

// LogEntry is one change-log record as persisted to the object store.
type LogEntry struct {
	ID         string     `json:"id"`
	RunID      string     `json:"run_id"`
	ChangeType ChangeType `json:"change_type"`
	PrimaryKey string     `json:"primary_key"`
	RowHash    string     `json:"row_hash"`
	ChangeTime string     `json:"change_time"`
}

// changeTimeLayout matches the timestamp format the downstream pipeline
// parses out of change logs.
const changeTimeLayout = "2006-01-02 15:04:05"

// FormatChangeTime renders a change-log timestamp.
func FormatChangeTime(t time.Time) string {
	return t.Format(changeTimeLayout)
}

// Snapshotter reads a full snapshot of one monitored table.
type Snapshotter interface {
	Snapshot(ctx context.Context, table models.Table) (*Snapshot, error)
}

// Publisher forwards change-log entries to a downstream consumer.
type Publisher interface {
	PublishChanges(ctx context.Context, table string, entries []LogEntry) error
}
