package generate

import (
	"math/rand"
	"os"
	"time"

	"driftcap/pkg/errors"
	"driftcap/pkg/models"
)

const (
	defaultTrustCount    = 12
	defaultPracticeCount = 200
)

// Suite generates a linked family of synthetic NHS datasets. All randomness
// flows through a single seeded source, so the same configuration always
// produces the same data.
type Suite struct {
	cfg    models.Generator
	rng    *rand.Rand
	pseudo *Pseudonymiser
	now    time.Time

	// Progress, when set, receives a message per generated dataset.
	Progress func(dataset string, rows int)
}

func NewSuite(cfg models.Generator) *Suite {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Suite{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		pseudo: NewPseudonymiser(cfg.Salt),
		now:    time.Now().UTC().Truncate(24 * time.Hour),
	}
}

// GenerateAll produces every dataset in dependency order. Episodes,
// prescriptions and care packages reference the generated patients, so
// patient and provider reference data comes first.
func (s *Suite) GenerateAll() ([]*Dataset, error) {
	patients := s.generatePatients(s.cfg.Patients)
	trusts := s.generateTrusts(defaultTrustCount)
	practices := s.generatePractices(defaultPracticeCount)

	years := s.cfg.YearsOfData
	if years < 1 {
		years = 1
	}
	episodes := s.generateEpisodes(patients, trusts, years)
	prescriptions := s.generatePrescriptions(patients, years)
	socialCare := s.generateSocialCare(patients)

	if s.cfg.QualityIssues {
		s.applyMissingData(patients, []string{"postcode", "ethnicity"}, 0.01)
		s.applyDuplicates(patients, 0.05)
		s.applyDuplicates(episodes, 0.05)
	}

	datasets := []*Dataset{patients, trusts, practices, episodes, prescriptions, socialCare}
	if s.cfg.Pseudonymise {
		for _, ds := range datasets {
			s.pseudonymise(ds)
		}
	}
	for _, ds := range datasets {
		if s.Progress != nil {
			s.Progress(ds.Name, len(ds.Rows))
		}
	}
	return datasets, nil
}

// Run generates all datasets and writes each one as CSV and JSONL under
// the configured output directory.
func (s *Suite) Run() error {
	dir := s.cfg.OutputDir
	if dir == "" {
		dir = "nhs_data"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "failed to create output directory").
			WithContext("dir", dir)
	}

	datasets, err := s.GenerateAll()
	if err != nil {
		return err
	}
	for _, ds := range datasets {
		if err := WriteCSV(dir, ds); err != nil {
			return err
		}
		if err := WriteJSONL(dir, ds); err != nil {
			return err
		}
	}
	return nil
}
