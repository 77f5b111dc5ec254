package capture

// Diff compares a hashed snapshot against the stored baseline and returns
// the classified changes, grouped INSERT then DELETE then UPDATE. Inserts
// and updates follow snapshot order, deletes follow baseline order, so
// change logs are deterministic for a given source state.
func Diff(current []HashedRow, baseline []BaselineEntry) []Change {
	baselineByKey := make(map[string]string, len(baseline))
	for _, entry := range baseline {
		baselineByKey[entry.PrimaryKey] = entry.RowHash
	}

	currentKeys := make(map[string]bool, len(current))
	for _, row := range current {
		currentKeys[row.Key] = true
	}

	var inserts, updates []Change
	for _, row := range current {
		oldHash, existed := baselineByKey[row.Key]
		switch {
		case !existed:
			inserts = append(inserts, Change{Type: ChangeInsert, Key: row.Key, Hash: row.Hash})
		case oldHash != row.Hash:
			updates = append(updates, Change{Type: ChangeUpdate, Key: row.Key, Hash: row.Hash})
		}
	}

	var deletes []Change
	for _, entry := range baseline {
		if !currentKeys[entry.PrimaryKey] {
			deletes = append(deletes, Change{Type: ChangeDelete, Key: entry.PrimaryKey, Hash: entry.RowHash})
		}
	}

	changes := make([]Change, 0, len(inserts)+len(deletes)+len(updates))
	changes = append(changes, inserts...)
	changes = append(changes, deletes...)
	changes = append(changes, updates...)
	return changes
}

// NewBaseline converts a hashed snapshot into the baseline persisted for
// the next run.
func NewBaseline(current []HashedRow) []BaselineEntry {
	baseline := make([]BaselineEntry, 0, len(current))
	for _, row := range current {
		baseline = append(baseline, BaselineEntry{PrimaryKey: row.Key, RowHash: row.Hash})
	}
	return baseline
}
