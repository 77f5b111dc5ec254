package generate

import (
	"fmt"
	"time"
)

var trustColumns = []string{
	"trust_code", "trust_name", "trust_type", "region",
	"ccg_code", "bed_capacity", "created_timestamp",
}

var practiceColumns = []string{
	"practice_code", "practice_name", "ccg_code",
	"list_size", "created_timestamp",
}

var trustTypes = []string{"Acute", "Mental Health", "Community", "Specialist"}

var nhsRegions = []string{
	"North West", "North East and Yorkshire", "Midlands",
	"East of England", "London", "South East", "South West",
}

var trustTowns = []string{
	"Manchester", "Salford", "Bolton", "Stockport", "Oldham",
	"Rochdale", "Bury", "Tameside", "Trafford", "Wigan",
}

var gpSurnames = []string{
	"Patel", "Smith", "Khan", "Jones", "Williams", "Ahmed",
	"Taylor", "Brown", "Singh", "Wilson", "Evans", "Begum",
}

func (s *Suite) generateTrusts(count int) *Dataset {
	ds := &Dataset{Name: "trusts", Columns: trustColumns}
	for i := 0; i < count; i++ {
		code := fmt.Sprintf("R%c%c", 'A'+s.rng.Intn(26), 'A'+s.rng.Intn(26))
		town := trustTowns[i%len(trustTowns)]
		trustType := trustTypes[weightedIndex(s.rng, []float64{0.6, 0.15, 0.15, 0.1})]
		ds.append(Row{
			"trust_code":        code,
			"trust_name":        fmt.Sprintf("%s %s NHS Foundation Trust", town, trustType),
			"trust_type":        trustType,
			"region":            nhsRegions[s.rng.Intn(len(nhsRegions))],
			"ccg_code":          fmt.Sprintf("CCG%03d", s.rng.Intn(200)+1),
			"bed_capacity":      200 + s.rng.Intn(1001),
			"created_timestamp": s.now.Format(time.RFC3339),
		})
	}
	return ds
}

func (s *Suite) generatePractices(count int) *Dataset {
	ds := &Dataset{Name: "gp_practices", Columns: practiceColumns}
	for i := 0; i < count; i++ {
		ds.append(Row{
			"practice_code":     fmt.Sprintf("M81%03d", i+1),
			"practice_name":     fmt.Sprintf("Dr %s & Partners", gpSurnames[s.rng.Intn(len(gpSurnames))]),
			"ccg_code":          fmt.Sprintf("CCG%03d", s.rng.Intn(200)+1),
			"list_size":         2000 + s.rng.Intn(13001),
			"created_timestamp": s.now.Format(time.RFC3339),
		})
	}
	return ds
}
