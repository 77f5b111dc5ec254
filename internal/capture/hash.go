package capture

import (
	"crypto/md5" // #nosec G501 - change detection fingerprint, not a security boundary
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// alwaysVolatile holds column names excluded from hashing for every table.
// created_timestamp is set by the loader on every write and would make each
// refresh look like an update.
var alwaysVolatile = map[string]bool{
	"created_timestamp": true,
}

// volatileSet builds the lowercase exclusion set for a table.
func volatileSet(extra []string) map[string]bool {
	set := make(map[string]bool, len(alwaysVolatile)+len(extra))
	for col := range alwaysVolatile {
		set[col] = true
	}
	for _, col := range extra {
		set[strings.ToLower(col)] = true
	}
	return set
}

// RowHash computes the MD5 fingerprint of a row over its non-volatile
// columns in snapshot column order. NULL renders as a marker distinct from
// the empty string so NULL→"" edits are detected.
func RowHash(columns []string, row map[string]interface{}, volatile map[string]bool) string {
	var b strings.Builder
	for _, col := range columns {
		if volatile[strings.ToLower(col)] {
			continue
		}
		b.WriteString(renderValue(row[col]))
	}

	sum := md5.Sum([]byte(b.String())) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// HashSnapshot hashes every row of a snapshot. The primary key column is
// always included in the hash input, like any other stable column.
func HashSnapshot(snap *Snapshot, primaryKey string, extraVolatile []string) []HashedRow {
	volatile := volatileSet(extraVolatile)

	rows := make([]HashedRow, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		rows = append(rows, HashedRow{
			Key:  renderValue(row[primaryKey]),
			Hash: RowHash(snap.Columns, row, volatile),
		})
	}
	return rows
}

// renderValue gives every database value a stable string form. Driver types
// vary between text and binary protocol reads, so numeric and time values
// are normalized explicitly.
func renderValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", val)
	}
}
