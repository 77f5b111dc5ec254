package generate

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"driftcap/pkg/errors"
)

// WriteCSV writes a dataset to <dir>/<name>.csv with the dataset's column
// order as the header row.
func WriteCSV(dir string, ds *Dataset) error {
	path := filepath.Join(dir, ds.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "failed to create CSV file").
			WithContext("path", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ds.Columns); err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "failed to write CSV header")
	}
	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, col := range ds.Columns {
			record[i] = formatField(row[col])
		}
		if err := w.Write(record); err != nil {
			return errors.Wrap(err, errors.ErrCodeFileOperation, "failed to write CSV record").
				WithContext("dataset", ds.Name)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteJSONL writes a dataset as one JSON object per line, the shape most
// ingestion pipelines expect for landing zone files.
func WriteJSONL(dir string, ds *Dataset) error {
	path := filepath.Join(dir, ds.Name+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "failed to create JSONL file").
			WithContext("path", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, row := range ds.Rows {
		if err := enc.Encode(row); err != nil {
			return errors.Wrap(err, errors.ErrCodeFileOperation, "failed to encode JSONL record").
				WithContext("dataset", ds.Name)
		}
	}
	return nil
}

func formatField(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', 2, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", t)
	}
}
