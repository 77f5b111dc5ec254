package generate

import (
	"fmt"
	"math"
	"time"
)

var socialCareColumns = []string{
	"package_id", "patient_id", "nhs_number", "package_type",
	"start_date", "end_date", "weekly_cost", "status",
	"assessment_outcome", "review_date", "created_timestamp",
}

var carePackageTypes = []struct {
	Name             string
	MinCost, MaxCost float64
}{
	{"HOMECARE", 150, 600},
	{"DAYCARE", 80, 250},
	{"RESIDENTIAL", 600, 1400},
	{"NURSING", 800, 1800},
	{"EQUIPMENT", 20, 120},
	{"DIRECT_PAYMENT", 100, 500},
}

var assessmentOutcomes = []string{"LOW", "MODERATE", "SUBSTANTIAL", "CRITICAL"}

func (s *Suite) generateSocialCare(patients *Dataset) *Dataset {
	ds := &Dataset{Name: "social_care_packages", Columns: socialCareColumns}

	seq := 0
	for _, patient := range patients.Rows {
		dob, _ := time.Parse("2006-01-02", patient["date_of_birth"].(string))
		age := int(s.now.Sub(dob).Hours() / 24 / 365.25)
		deprivation, _ := patient["deprivation_decile"].(int)

		// Council support concentrates on the elderly and the most
		// deprived areas.
		eligible := age > 65 || deprivation <= 3
		if !eligible || s.rng.Float64() >= 0.03 {
			continue
		}

		seq++
		pkg := carePackageTypes[s.rng.Intn(len(carePackageTypes))]
		start := s.now.AddDate(0, 0, -s.rng.Intn(365*2))

		status := "Active"
		endDate := ""
		if s.rng.Float64() < 0.3 {
			status = "Completed"
			endDate = start.AddDate(0, 0, s.rng.Intn(365)+30).Format("2006-01-02")
		}

		cost := randBetween(s.rng, pkg.MinCost, pkg.MaxCost)
		ds.append(Row{
			"package_id":         fmt.Sprintf("SC%08d", seq),
			"patient_id":         patient["patient_id"],
			"nhs_number":         patient["nhs_number"],
			"package_type":       pkg.Name,
			"start_date":         start.Format("2006-01-02"),
			"end_date":           endDate,
			"weekly_cost":        math.Round(cost*100) / 100,
			"status":             status,
			"assessment_outcome": assessmentOutcomes[s.rng.Intn(len(assessmentOutcomes))],
			"review_date":        start.AddDate(0, 0, 7*12).Format("2006-01-02"),
			"created_timestamp":  s.now.Format(time.RFC3339),
		})
	}
	return ds
}
