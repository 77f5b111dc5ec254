package generate

import "math/rand"

// Row is a single record keyed by column name.
type Row map[string]interface{}

// Dataset is a generated table with a stable column order for CSV output.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Row
}

func (d *Dataset) append(r Row) {
	d.Rows = append(d.Rows, r)
}

// weightedIndex picks an index proportional to the given weights.
func weightedIndex(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	target := rng.Float64() * total
	for i, w := range weights {
		target -= w
		if target <= 0 {
			return i
		}
	}
	return len(weights) - 1
}

func pickDiagnosis(rng *rand.Rand, codes []string) string {
	return codes[rng.Intn(len(codes))]
}

func randBetween(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
