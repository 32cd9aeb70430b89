// Package core provides the data model shared by the parser, the aggregator
// and the peak detector of PeakExplorer.
package core

import (
	"fmt"
	"math"
	"strings"
)

// MassCount is a single (mass, count) pair recorded for one elution time.
type MassCount struct {
	Mass  float64 // Ion mass in Dalton
	Count float64 // Detector counts
}

// Record holds one parsed input row.
type Record struct {
	ElutionTime float64     // Minutes
	MassCounts  []MassCount // Order as encountered in the row; duplicates allowed
}

// ValidationError represents an error found during record validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a record can be aggregated.
func (r *Record) Validate() error {
	var errs []string

	if math.IsNaN(r.ElutionTime) || math.IsInf(r.ElutionTime, 0) {
		errs = append(errs, "elution time must be finite")
	}
	if len(r.MassCounts) == 0 {
		errs = append(errs, "at least one mass/count pair is required")
	}

	for i, mc := range r.MassCounts {
		if math.IsNaN(mc.Mass) || math.IsInf(mc.Mass, 0) {
			errs = append(errs, fmt.Sprintf("pair %d has invalid mass", i))
		}
		if math.IsNaN(mc.Count) || math.IsInf(mc.Count, 0) {
			errs = append(errs, fmt.Sprintf("pair %d has invalid count", i))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Record",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// Len returns the number of mass/count pairs.
func (r *Record) Len() int {
	return len(r.MassCounts)
}

// TotalCounts returns the sum of all counts in the record.
func (r *Record) TotalCounts() float64 {
	total := 0.0
	for _, mc := range r.MassCounts {
		total += mc.Count
	}
	return total
}

// TotalMasses returns the sum of all masses in the record.
func (r *Record) TotalMasses() float64 {
	total := 0.0
	for _, mc := range r.MassCounts {
		total += mc.Mass
	}
	return total
}

// MaxMass returns the largest mass of the record. Records produced by the
// parser always carry at least one pair; an empty record yields NaN.
func (r *Record) MaxMass() float64 {
	if len(r.MassCounts) == 0 {
		return math.NaN()
	}
	m := r.MassCounts[0].Mass
	for _, mc := range r.MassCounts[1:] {
		if mc.Mass > m {
			m = mc.Mass
		}
	}
	return m
}

// MinMass returns the smallest mass of the record, NaN when empty.
func (r *Record) MinMass() float64 {
	if len(r.MassCounts) == 0 {
		return math.NaN()
	}
	m := r.MassCounts[0].Mass
	for _, mc := range r.MassCounts[1:] {
		if mc.Mass < m {
			m = mc.Mass
		}
	}
	return m
}

// CountsWithin returns the sum of counts whose mass lies inside w.
func (r *Record) CountsWithin(w Window) float64 {
	total := 0.0
	for _, mc := range r.MassCounts {
		if w.Contains(mc.Mass) {
			total += mc.Count
		}
	}
	return total
}

// Name returns a short identifier in format "t=<elution time>"
func (r *Record) Name() string {
	return fmt.Sprintf("t=%g", r.ElutionTime)
}
