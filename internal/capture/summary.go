package capture

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// RunSummary is the per-run accounting document uploaded after processing
// and printed to stdout for orchestrator capture. Changes maps a table name
// to its change count, or to an "Error: ..." string when the table failed.
// Tables skipped as empty do not appear.
type RunSummary struct {
	RunID   string                 `json:"run_id"`
	Changes map[string]interface{} `json:"changes"`

	mu sync.Mutex
}

// NewRunSummary creates an empty summary for a run.
func NewRunSummary(runID string) *RunSummary {
	return &RunSummary{
		RunID:   runID,
		Changes: make(map[string]interface{}),
	}
}

// RecordCount records a successfully processed table.
func (s *RunSummary) RecordCount(table string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Changes[table] = count
}

// RecordError records a failed table. The run continues past it.
func (s *RunSummary) RecordError(table string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Changes[table] = fmt.Sprintf("Error: %v", err)
}

// FailedTables returns the tables that recorded errors, sorted by name.
func (s *RunSummary) FailedTables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var failed []string
	for table, outcome := range s.Changes {
		if _, ok := outcome.(string); ok {
			failed = append(failed, table)
		}
	}
	sort.Strings(failed)
	return failed
}

// TotalChanges sums the counts of all successfully processed tables.
func (s *RunSummary) TotalChanges() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, outcome := range s.Changes {
		if count, ok := outcome.(int); ok {
			total += count
		}
	}
	return total
}

// JSON renders the summary as a single JSON document.
func (s *RunSummary) JSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(struct {
		RunID   string                 `json:"run_id"`
		Changes map[string]interface{} `json:"changes"`
	}{s.RunID, s.Changes})
}
