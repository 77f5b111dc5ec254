package generate

import (
	"fmt"
	"math"
	"time"
)

var prescriptionColumns = []string{
	"prescription_id", "patient_id", "nhs_number", "practice_code",
	"bnf_code", "bnf_name", "prescription_date", "quantity",
	"net_ingredient_cost", "actual_cost", "created_timestamp",
}

func (s *Suite) generatePrescriptions(patients *Dataset, years int) *Dataset {
	ds := &Dataset{Name: "prescriptions", Columns: prescriptionColumns}
	if len(patients.Rows) == 0 {
		return ds
	}

	// Roughly five scripts per registered patient per month.
	baseline := len(patients.Rows) * 5
	if baseline < 1 {
		baseline = 1
	}

	start := time.Date(s.now.Year()-years, s.now.Month(), 1, 0, 0, 0, 0, time.UTC)
	seq := 0
	for month := start; month.Before(s.now); month = month.AddDate(0, 1, 0) {
		monthly := int(float64(baseline) * (0.8 + s.rng.Float64()*0.4))
		daysInMonth := month.AddDate(0, 1, -1).Day()
		for i := 0; i < monthly; i++ {
			seq++
			patient := patients.Rows[s.rng.Intn(len(patients.Rows))]
			drug := bnfCodes[s.rng.Intn(len(bnfCodes))]

			practice, _ := patient["gp_practice_code"].(string)
			if practice == "" {
				continue // no registered practice, no primary care script
			}

			quantity := (s.rng.Intn(3) + 1) * 28
			nic := drug.AvgCost * randBetween(s.rng, 0.7, 1.3)
			actual := nic * randBetween(s.rng, 0.92, 0.98)

			ds.append(Row{
				"prescription_id":     fmt.Sprintf("RX%08d", seq),
				"patient_id":          patient["patient_id"],
				"nhs_number":          patient["nhs_number"],
				"practice_code":       practice,
				"bnf_code":            drug.Code,
				"bnf_name":            drug.Name,
				"prescription_date":   month.AddDate(0, 0, s.rng.Intn(daysInMonth)).Format("2006-01-02"),
				"quantity":            quantity,
				"net_ingredient_cost": math.Round(nic*100) / 100,
				"actual_cost":         math.Round(actual*100) / 100,
				"created_timestamp":   s.now.Format(time.RFC3339),
			})
		}
	}
	return ds
}
