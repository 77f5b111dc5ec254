package generate

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var episodeColumns = []string{
	"episode_id", "patient_id", "nhs_number", "trust_code",
	"admission_date", "discharge_date", "admission_method", "admission_source",
	"discharge_destination", "length_of_stay", "primary_diagnosis",
	"secondary_diagnoses", "primary_procedure", "secondary_procedures",
	"hrg_code", "consultant_code", "specialty", "ward_code", "created_timestamp",
}

var emergencyElderlyDiagnoses = []string{"J18", "I21", "S72", "R06", "N18"}
var emergencyAdultDiagnoses = []string{"J18", "R06", "I25", "M79", "K80"}
var electiveDiagnoses = []string{"Z51", "H01", "W37", "J27", "T87"}

var admissionSources = []string{"19", "51", "54", "87"}
var dischargeDestinations = []string{"19", "51", "54", "79"}

// dailyEpisodeCount scales hospital activity with the size of the synthetic
// population and applies seasonal and weekend pressure factors.
func (s *Suite) dailyEpisodeCount(day time.Time, baseline int) int {
	factor := 1.0
	switch day.Month() {
	case time.November, time.December, time.January, time.February, time.March:
		factor *= 1.4 // winter pressure
	case time.July, time.August:
		factor *= 0.8
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		factor *= 0.6
	}
	jitter := 0.8 + s.rng.Float64()*0.4
	n := int(float64(baseline) * factor * jitter)
	if n < 1 {
		n = 1
	}
	return n
}

func (s *Suite) selectDiagnosis(age int, elective bool) string {
	if elective {
		return pickDiagnosis(s.rng, electiveDiagnoses)
	}
	if age >= 65 {
		return pickDiagnosis(s.rng, emergencyElderlyDiagnoses)
	}
	return pickDiagnosis(s.rng, emergencyAdultDiagnoses)
}

func (s *Suite) selectProcedures(diagnosis string) []string {
	procs := append([]string(nil), proceduresFor(diagnosis)...)
	if s.rng.Float64() < 0.7 {
		procs = append(procs, "Z92")
	}
	if len(procs) > 3 {
		procs = procs[:3]
	}
	return procs
}

func (s *Suite) assignHRG(procedures []string, lengthOfStay int) string {
	if lengthOfStay > 7 {
		return "AA22"
	}
	for _, p := range procedures {
		switch p {
		case "H01", "H02":
			return "DZ19"
		case "W37":
			return "FF01"
		case "T87":
			return "HN12"
		}
	}
	return "AA23"
}

func (s *Suite) generateEpisodes(patients, trusts *Dataset, years int) *Dataset {
	ds := &Dataset{Name: "hospital_episodes", Columns: episodeColumns}
	if len(patients.Rows) == 0 || len(trusts.Rows) == 0 {
		return ds
	}

	baseline := len(patients.Rows) / 13
	if baseline < 1 {
		baseline = 1
	}

	start := s.now.AddDate(-years, 0, 0)
	seq := 0
	for day := start; day.Before(s.now); day = day.AddDate(0, 0, 1) {
		count := s.dailyEpisodeCount(day, baseline)
		for i := 0; i < count; i++ {
			seq++
			patient := patients.Rows[s.rng.Intn(len(patients.Rows))]
			trust := trusts.Rows[s.rng.Intn(len(trusts.Rows))]

			dob, _ := time.Parse("2006-01-02", patient["date_of_birth"].(string))
			age := int(day.Sub(dob).Hours() / 24 / 365.25)

			method := admissionMethods[weightedIndex(s.rng,
				[]float64{0.25, 0.10, 0.35, 0.15, 0.03, 0.07, 0.05})]
			elective := isElectiveAdmission(method.Code)

			diagnosis := s.selectDiagnosis(age, elective)
			procedures := s.selectProcedures(diagnosis)

			los := s.rng.Intn(3)
			if !elective {
				los = 1 + int(-3*math.Log(s.rng.Float64()))
				if los > 30 {
					los = 30
				}
				if los < 1 {
					los = 1
				}
			}
			discharge := day.AddDate(0, 0, los)

			var secondary []string
			for n := s.rng.Intn(3); n > 0; n-- {
				secondary = append(secondary, icd10Codes[s.rng.Intn(len(icd10Codes))].Code)
			}

			primaryProc := ""
			var secondaryProcs []string
			if len(procedures) > 0 {
				primaryProc = procedures[0]
				secondaryProcs = procedures[1:]
			}

			row := Row{
				"episode_id":            fmt.Sprintf("EP%08d", seq),
				"patient_id":            patient["patient_id"],
				"nhs_number":            patient["nhs_number"],
				"trust_code":            trust["trust_code"],
				"admission_date":        day.Format("2006-01-02"),
				"discharge_date":        discharge.Format("2006-01-02"),
				"admission_method":      method.Code,
				"admission_source":      admissionSources[weightedIndex(s.rng, []float64{0.8, 0.08, 0.1, 0.02})],
				"discharge_destination": dischargeDestinations[weightedIndex(s.rng, []float64{0.82, 0.07, 0.09, 0.02})],
				"length_of_stay":        los,
				"primary_diagnosis":     diagnosis,
				"secondary_diagnoses":   strings.Join(secondary, ","),
				"primary_procedure":     primaryProc,
				"secondary_procedures":  strings.Join(secondaryProcs, ","),
				"hrg_code":              s.assignHRG(procedures, los),
				"consultant_code":       fmt.Sprintf("C%07d", s.rng.Intn(9000000)+1000000),
				"specialty":             specialtyFor(diagnosis),
				"ward_code":             fmt.Sprintf("W%02d", s.rng.Intn(30)+1),
				"created_timestamp":     s.now.Format(time.RFC3339),
			}
			s.maybeCorruptEpisode(row, day)
			ds.append(row)
		}
	}
	return ds
}

// maybeCorruptEpisode injects the kinds of recording errors seen in real
// hospital submissions so validation pipelines have something to catch.
func (s *Suite) maybeCorruptEpisode(row Row, admission time.Time) {
	if !s.cfg.QualityIssues || s.rng.Float64() >= 0.02 {
		return
	}
	switch s.rng.Intn(3) {
	case 0:
		fields := []string{"secondary_diagnoses", "secondary_procedures", "ward_code"}
		row[fields[s.rng.Intn(len(fields))]] = ""
	case 1:
		row["primary_diagnosis"] = "INVALID"
	case 2:
		row["discharge_date"] = admission.AddDate(0, 0, -1).Format("2006-01-02")
	}
}
