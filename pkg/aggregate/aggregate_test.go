package aggregate

import (
	"reflect"
	"testing"

	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
)

// twoRows is the two-sample input used throughout these tests.
func twoRows() []core.Record {
	return []core.Record{
		{ElutionTime: 1.0, MassCounts: []core.MassCount{{Mass: 100, Count: 10}, {Mass: 200, Count: 5}}},
		{ElutionTime: 2.0, MassCounts: []core.MassCount{{Mass: 100, Count: 3}, {Mass: 200, Count: 8}}},
	}
}

func TestSummarizeTwoRows(t *testing.T) {
	s := Summarize(twoRows())

	checks := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"elution times", s.ElutionTimes, []float64{1, 2}},
		{"total counts per time", s.TotalCountsPerTime, []float64{15, 11}},
		{"total masses per time", s.TotalMassesPerTime, []float64{300, 300}},
		{"number of masses", s.NumberOfMassesPerTime, []int{2, 2}},
		{"max mass", s.MaxMassPerTime, []float64{200, 200}},
		{"min mass", s.MinMassPerTime, []float64{100, 100}},
		{"ion masses", s.IonMasses, []float64{100, 200}},
		{"total counts per mass", s.TotalCountsPerMass, []float64{13, 13}},
	}
	for _, c := range checks {
		if !reflect.DeepEqual(c.got, c.want) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}

	if err := s.Validate(); err != nil {
		t.Errorf("Summary failed validation: %v", err)
	}
}

func TestSummarizeMergesDuplicateMasses(t *testing.T) {
	records := []core.Record{
		{ElutionTime: 0.5, MassCounts: []core.MassCount{{Mass: 300, Count: 1}, {Mass: 150, Count: 2}, {Mass: 300, Count: 4}}},
		{ElutionTime: 0.6, MassCounts: []core.MassCount{{Mass: 50.5, Count: 7}}},
		{ElutionTime: 0.7, MassCounts: []core.MassCount{{Mass: 150, Count: 1}, {Mass: 999.9, Count: 0}}},
	}

	s := Summarize(records)

	wantMasses := []float64{50.5, 150, 300, 999.9}
	wantTotals := []float64{7, 3, 5, 0}
	if !reflect.DeepEqual(s.IonMasses, wantMasses) {
		t.Errorf("Expected ion masses %v, got %v", wantMasses, s.IonMasses)
	}
	if !reflect.DeepEqual(s.TotalCountsPerMass, wantTotals) {
		t.Errorf("Expected totals %v, got %v", wantTotals, s.TotalCountsPerMass)
	}
	if !reflect.DeepEqual(s.NumberOfMassesPerTime, []int{3, 1, 2}) {
		t.Errorf("Expected pair counts [3 1 2], got %v", s.NumberOfMassesPerTime)
	}
	if !reflect.DeepEqual(s.TotalCountsPerTime, []float64{7, 7, 1}) {
		t.Errorf("Expected row totals [7 7 1], got %v", s.TotalCountsPerTime)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Summary failed validation: %v", err)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Rows() != 0 || len(s.IonMasses) != 0 || len(s.TotalCountsPerMass) != 0 {
		t.Errorf("Expected empty summary, got %+v", s)
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	records := twoRows()
	first := Summarize(records)
	second := Summarize(records)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical summaries, got %+v and %+v", first, second)
	}

	// output must not alias between calls
	first.TotalCountsPerMass[0] = -1
	if second.TotalCountsPerMass[0] == -1 {
		t.Error("Summaries share backing arrays")
	}
}

func TestSummarizeDoesNotModifyRecords(t *testing.T) {
	records := twoRows()
	before := twoRows()
	Summarize(records)
	MassTrace(records, 100, 1)
	ElutionTimeTrace(records, 1, 1)
	if !reflect.DeepEqual(records, before) {
		t.Errorf("Records were modified: %+v", records)
	}
}
