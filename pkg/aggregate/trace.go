package aggregate

import (
	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
	"github.com/ChrisMcGann/PeakExplorer/pkg/filter"
)

// MassTrace returns, for every record, the counts of the masses inside
// [mass-interval, mass+interval]. ok is false when the window is invalid,
// which is different from a trace that matched nothing (all zeros).
func MassTrace(records []core.Record, mass, interval float64) (core.Trace, bool) {
	w, ok := filter.NewWindow(mass, interval)
	if !ok {
		return core.Trace{}, false
	}

	values := make([]float64, len(records))
	for i := range records {
		values[i] = records[i].CountsWithin(w)
	}

	return core.Trace{
		Kind:     core.MassTrace,
		Center:   mass,
		Interval: interval,
		Window:   w,
		Values:   values,
	}, true
}

// ElutionTimeTrace returns the counts per distinct mass summed over the
// records whose elution time lies in [time-interval, time+interval].
//
// Masses that occur only outside the window are kept with a value of 0, so
// the result is aligned index for index with Summary.IonMasses. A zero can
// therefore mean either "no counts in the window" or "mass not seen in the
// window at all".
func ElutionTimeTrace(records []core.Record, time, interval float64) (core.Trace, bool) {
	w, ok := filter.NewWindow(time, interval)
	if !ok {
		return core.Trace{}, false
	}

	acc := newMassAccumulator()
	for i := range records {
		inWindow := w.Contains(records[i].ElutionTime)
		for _, mc := range records[i].MassCounts {
			if inWindow {
				acc.add(mc.Mass, mc.Count)
			} else {
				acc.touch(mc.Mass)
			}
		}
	}
	_, values := acc.materialize()

	return core.Trace{
		Kind:     core.ElutionTimeTrace,
		Center:   time,
		Interval: interval,
		Window:   w,
		Values:   values,
	}, true
}
