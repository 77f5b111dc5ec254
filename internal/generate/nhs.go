package generate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// NHSNumber derives a valid ten digit NHS number from an index using the
// Mod-11 check digit algorithm. The first nine digits are "9" followed by
// the zero padded index, which keeps generated numbers inside the range
// reserved for test data.
func NHSNumber(index int) string {
	base := fmt.Sprintf("9%08d", index%100000000)
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(base[i]-'0') * (10 - i)
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		check = 0
	}
	return base + fmt.Sprintf("%d", check)
}

// ValidNHSNumber reports whether s is a ten digit NHS number with a
// correct Mod-11 check digit.
func ValidNHSNumber(s string) bool {
	if len(s) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 9; i++ {
		d := s[i] - '0'
		if d > 9 {
			return false
		}
		sum += int(d) * (10 - i)
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		check = 0
	}
	last := s[9] - '0'
	if last > 9 {
		return false
	}
	return int(last) == check
}

// Pseudonymiser replaces direct patient identifiers with salted hashes so
// datasets can be shared without exposing real identifiers.
type Pseudonymiser struct {
	salt string
}

func NewPseudonymiser(salt string) *Pseudonymiser {
	return &Pseudonymiser{salt: salt}
}

// NHSNumber pseudonymises an NHS number. Missing or deliberately invalid
// values pass through unchanged so downstream quality checks still see them.
func (p *Pseudonymiser) NHSNumber(nhsNumber string) string {
	if nhsNumber == "" || strings.HasPrefix(nhsNumber, "INVALID") {
		return nhsNumber
	}
	sum := sha256.Sum256([]byte(p.salt + nhsNumber))
	return "PSEUDO_" + strings.ToUpper(hex.EncodeToString(sum[:8]))
}

// PostcodeDistrict truncates a full postcode to its district, the standard
// geographic coarsening applied before sharing patient level data.
func PostcodeDistrict(postcode string) string {
	if idx := strings.IndexByte(postcode, ' '); idx > 0 {
		return postcode[:idx]
	}
	return postcode
}
