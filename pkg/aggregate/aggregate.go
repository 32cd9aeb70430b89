// Package aggregate derives the chromatogram, the mass spectrum and the
// optional trace signals from a complete, ordered set of parsed records.
//
// All functions are pure: they never modify the records and return freshly
// allocated slices, so repeated calls with the same input are bit-identical.
package aggregate

import (
	"slices"

	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
)

// Summarize computes the per-row statistics and the counts summed per
// distinct ion mass.
func Summarize(records []core.Record) core.Summary {
	n := len(records)
	s := core.Summary{
		ElutionTimes:          make([]float64, n),
		TotalCountsPerTime:    make([]float64, n),
		TotalMassesPerTime:    make([]float64, n),
		NumberOfMassesPerTime: make([]int, n),
		MaxMassPerTime:        make([]float64, n),
		MinMassPerTime:        make([]float64, n),
	}

	for i := range records {
		rec := &records[i]
		s.ElutionTimes[i] = rec.ElutionTime
		s.TotalCountsPerTime[i] = rec.TotalCounts()
		s.TotalMassesPerTime[i] = rec.TotalMasses()
		s.NumberOfMassesPerTime[i] = rec.Len()
		s.MaxMassPerTime[i] = rec.MaxMass()
		s.MinMassPerTime[i] = rec.MinMass()
	}

	acc := newMassAccumulator()
	for i := range records {
		for _, mc := range records[i].MassCounts {
			acc.add(mc.Mass, mc.Count)
		}
	}
	s.IonMasses, s.TotalCountsPerMass = acc.materialize()

	return s
}

// massAccumulator sums counts keyed by exact mass value.
type massAccumulator struct {
	counts map[float64]float64
}

func newMassAccumulator() *massAccumulator {
	return &massAccumulator{counts: make(map[float64]float64)}
}

func (a *massAccumulator) add(mass, count float64) {
	a.counts[mass] += count
}

// touch registers mass without contributing counts.
func (a *massAccumulator) touch(mass float64) {
	if _, ok := a.counts[mass]; !ok {
		a.counts[mass] = 0
	}
}

// materialize returns the masses in ascending order and their aligned sums.
func (a *massAccumulator) materialize() (masses, totals []float64) {
	masses = make([]float64, 0, len(a.counts))
	for m := range a.counts {
		masses = append(masses, m)
	}
	slices.Sort(masses)

	totals = make([]float64, len(masses))
	for i, m := range masses {
		totals[i] = a.counts[m]
	}
	return masses, totals
}
