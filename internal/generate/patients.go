package generate

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// NHS ethnic category codes.
var ethnicityCodes = []string{
	"A", "B", "C", "D", "E", "F", "G", "H",
	"J", "K", "L", "M", "N", "P", "R", "S", "Z",
}

// Greater Manchester postcodes paired with an index of multiple
// deprivation decile (1 most deprived, 10 least).
var postcodeAreas = []struct {
	Postcode    string
	Deprivation int
}{
	{"M1 1AA", 3}, {"M2 2BB", 5}, {"M3 3CC", 2}, {"M4 4DD", 7},
	{"M5 5EE", 1}, {"M6 6FF", 8}, {"M7 7GG", 4}, {"M8 8HH", 6},
	{"M9 9JJ", 2}, {"M11 1KK", 9}, {"M12 2LL", 3}, {"M13 3MM", 5},
	{"M14 4NN", 1}, {"M15 5PP", 10}, {"M16 6QQ", 4}, {"M19 9RR", 6},
	{"M20 0SS", 8}, {"M21 1TT", 7}, {"M22 2UU", 2}, {"M23 3VV", 9},
}

var patientColumns = []string{
	"patient_id", "nhs_number", "date_of_birth", "gender", "ethnicity",
	"postcode", "deprivation_decile", "gp_practice_code", "created_timestamp",
}

// gammaAge samples an age from a gamma(2, 20) distribution capped to a
// plausible range, skewing the population towards older patients the way
// hospital activity does.
func gammaAge(rng *rand.Rand) int {
	u1 := rng.Float64()
	u2 := rng.Float64()
	age := int(-20 * math.Log(u1*u2))
	if age < 0 {
		age = 0
	}
	if age > 95 {
		age = 95
	}
	return age
}

func (s *Suite) generatePatients(count int) *Dataset {
	ds := &Dataset{Name: "patients", Columns: patientColumns}
	now := s.now
	for i := 0; i < count; i++ {
		nhsNumber := NHSNumber(i)
		switch {
		case s.rng.Float64() < 0.02:
			nhsNumber = "" // never recorded
		case s.rng.Float64() < 0.03:
			nhsNumber = fmt.Sprintf("INVALID%03d", i%1000)
		}

		age := gammaAge(s.rng)
		dob := now.AddDate(-age, 0, -s.rng.Intn(365))

		genderRoll := s.rng.Float64()
		gender := "M"
		if genderRoll >= 0.49 {
			gender = "F"
		}
		if genderRoll >= 0.98 {
			gender = "U"
		}

		area := postcodeAreas[s.rng.Intn(len(postcodeAreas))]
		practice := fmt.Sprintf("M81%03d", s.rng.Intn(200)+1)
		if s.rng.Float64() < 0.02 {
			practice = "" // unregistered
		}

		ds.append(Row{
			"patient_id":         fmt.Sprintf("PAT_%06d", i),
			"nhs_number":         nhsNumber,
			"date_of_birth":      dob.Format("2006-01-02"),
			"gender":             gender,
			"ethnicity":          ethnicityCodes[s.rng.Intn(len(ethnicityCodes))],
			"postcode":           area.Postcode,
			"deprivation_decile": area.Deprivation,
			"gp_practice_code":   practice,
			"created_timestamp":  now.Format(time.RFC3339),
		})
	}
	return ds
}
