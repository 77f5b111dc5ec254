package generate

// Deliberate data quality defects. Real NHS submissions arrive with missing
// fields and near duplicate records, and downstream validation is only
// worth testing against data that has both.

func (s *Suite) applyMissingData(ds *Dataset, fields []string, rate float64) {
	for _, row := range ds.Rows {
		for _, f := range fields {
			if s.rng.Float64() < rate {
				row[f] = ""
			}
		}
	}
}

// applyDuplicates re-appends a sample of rows, half of them slightly
// mutated so they defeat exact-match deduplication.
func (s *Suite) applyDuplicates(ds *Dataset, rate float64) {
	original := ds.Rows
	for _, row := range original {
		if s.rng.Float64() >= rate {
			continue
		}
		dup := make(Row, len(row))
		for k, v := range row {
			dup[k] = v
		}
		if s.rng.Float64() < 0.5 {
			if v, ok := dup["postcode"].(string); ok && v != "" {
				dup["postcode"] = v + "X"
			} else if v, ok := dup["nhs_number"].(string); ok && v != "" {
				dup["nhs_number"] = v + "X"
			}
		}
		ds.append(dup)
	}
}

// pseudonymise rewrites direct identifiers in place across a dataset.
func (s *Suite) pseudonymise(ds *Dataset) {
	for _, row := range ds.Rows {
		if v, ok := row["nhs_number"].(string); ok {
			row["nhs_number"] = s.pseudo.NHSNumber(v)
		}
		if v, ok := row["postcode"].(string); ok && v != "" {
			row["postcode"] = PostcodeDistrict(v)
		}
	}
}
