package core

import (
	"fmt"
	"strings"
)

// Summary holds the aggregate signals of one analysis run. Slices named
// ...PerTime are indexed by row, IonMasses and TotalCountsPerMass by
// ion mass index.
type Summary struct {
	ElutionTimes          []float64
	TotalCountsPerTime    []float64
	TotalMassesPerTime    []float64
	NumberOfMassesPerTime []int
	MaxMassPerTime        []float64
	MinMassPerTime        []float64

	IonMasses          []float64 // Strictly ascending
	TotalCountsPerMass []float64 // Aligned with IonMasses
}

// Rows returns the number of input rows the summary was built from.
func (s *Summary) Rows() int {
	return len(s.ElutionTimes)
}

// Chromatogram returns total counts against elution time.
func (s *Summary) Chromatogram() (x, y []float64) {
	return s.ElutionTimes, s.TotalCountsPerTime
}

// MassSpectrum returns total counts against ion mass.
func (s *Summary) MassSpectrum() (x, y []float64) {
	return s.IonMasses, s.TotalCountsPerMass
}

// Validate checks the alignment and ordering invariants of the summary.
func (s *Summary) Validate() error {
	var errs []string

	n := len(s.ElutionTimes)
	perTime := map[string]int{
		"total counts":     len(s.TotalCountsPerTime),
		"total masses":     len(s.TotalMassesPerTime),
		"number of masses": len(s.NumberOfMassesPerTime),
		"max mass":         len(s.MaxMassPerTime),
		"min mass":         len(s.MinMassPerTime),
	}
	for _, name := range []string{"total counts", "total masses", "number of masses", "max mass", "min mass"} {
		if perTime[name] != n {
			errs = append(errs, fmt.Sprintf("%s has %d entries, expected %d", name, perTime[name], n))
		}
	}

	if len(s.IonMasses) != len(s.TotalCountsPerMass) {
		errs = append(errs, fmt.Sprintf("%d ion masses but %d totals", len(s.IonMasses), len(s.TotalCountsPerMass)))
	}
	for i := 1; i < len(s.IonMasses); i++ {
		if !(s.IonMasses[i] > s.IonMasses[i-1]) {
			errs = append(errs, fmt.Sprintf("ion mass %d is not strictly ascending", i))
			break
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Summary",
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}

// Window is an inclusive [Lower, Upper] interval.
type Window struct {
	Lower float64
	Upper float64
}

// Contains reports whether v lies inside the window, bounds included.
func (w Window) Contains(v float64) bool {
	return w.Lower <= v && v <= w.Upper
}

func (w Window) String() string {
	return fmt.Sprintf("%g-%g", w.Lower, w.Upper)
}

// TraceKind distinguishes the two trace signals.
type TraceKind int

const (
	// MassTrace is aligned with rows (counts per elution time).
	MassTrace TraceKind = iota
	// ElutionTimeTrace is aligned with Summary.IonMasses (counts per mass).
	ElutionTimeTrace
)

func (k TraceKind) String() string {
	switch k {
	case MassTrace:
		return "mass trace"
	case ElutionTimeTrace:
		return "elution time trace"
	default:
		return fmt.Sprintf("TraceKind(%d)", int(k))
	}
}

// Unit returns the unit of the trace center and interval.
func (k TraceKind) Unit() string {
	if k == MassTrace {
		return "Da"
	}
	return "Min"
}

// Trace is a signal restricted to a window around a mass or an elution time.
type Trace struct {
	Kind     TraceKind
	Center   float64
	Interval float64
	Window   Window
	Values   []float64
}

// Label returns a header such as "465±0.5 Da".
func (t *Trace) Label() string {
	return fmt.Sprintf("%g±%g %s", t.Center, t.Interval, t.Kind.Unit())
}

// Peak is a confirmed local extreme of a signal.
type Peak struct {
	Position float64 // x-axis value
	Value    float64 // y-axis value
}

// Peaks holds the maxima and minima found in one signal, each in
// position-ascending order.
type Peaks struct {
	Maxima []Peak
	Minima []Peak
}

// Empty reports whether no peak of either kind was confirmed.
func (p Peaks) Empty() bool {
	return len(p.Maxima) == 0 && len(p.Minima) == 0
}
