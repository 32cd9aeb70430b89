package aggregate

import (
	"reflect"
	"testing"

	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
)

func TestMassTraceExactMatch(t *testing.T) {
	tr, ok := MassTrace(twoRows(), 100, 0)
	if !ok {
		t.Fatal("Expected a trace for mass 100")
	}
	if !reflect.DeepEqual(tr.Values, []float64{10, 3}) {
		t.Errorf("Expected [10 3], got %v", tr.Values)
	}
	if tr.Kind != core.MassTrace {
		t.Errorf("Expected kind %v, got %v", core.MassTrace, tr.Kind)
	}
}

func TestMassTrace(t *testing.T) {
	records := []core.Record{
		{ElutionTime: 1, MassCounts: []core.MassCount{{Mass: 464.5, Count: 1}, {Mass: 465, Count: 2}, {Mass: 465.5, Count: 4}}},
		{ElutionTime: 2, MassCounts: []core.MassCount{{Mass: 464.4, Count: 8}, {Mass: 465.6, Count: 16}}},
		{ElutionTime: 3, MassCounts: []core.MassCount{{Mass: 465.2, Count: 32}, {Mass: 465.2, Count: 64}}},
	}

	tests := []struct {
		name     string
		mass     float64
		interval float64
		want     []float64
		wantOK   bool
	}{
		{"inclusive bounds", 465, 0.5, []float64{7, 0, 96}, true},
		{"wide window", 465, 1, []float64{7, 24, 96}, true},
		{"no match is all zeros", 10, 0.5, []float64{0, 0, 0}, true},
		{"zero mass is no trace", 0, 0, nil, false},
		{"negative upper bound is no trace", -3, 2, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, ok := MassTrace(records, tt.mass, tt.interval)
			if ok != tt.wantOK {
				t.Fatalf("MassTrace(%v, %v) ok = %v, want %v", tt.mass, tt.interval, ok, tt.wantOK)
			}
			if !ok {
				if tr.Values != nil {
					t.Errorf("Expected no values without a trace, got %v", tr.Values)
				}
				return
			}
			if !reflect.DeepEqual(tr.Values, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, tr.Values)
			}
			if len(tr.Values) != len(records) {
				t.Errorf("Expected %d values, got %d", len(records), len(tr.Values))
			}
		})
	}
}

func TestMassTraceEmptyRecordsIsValid(t *testing.T) {
	tr, ok := MassTrace(nil, 465, 0.5)
	if !ok {
		t.Fatal("Expected a valid trace for empty input")
	}
	if len(tr.Values) != 0 {
		t.Errorf("Expected empty trace, got %v", tr.Values)
	}
}

func TestElutionTimeTrace(t *testing.T) {
	records := []core.Record{
		{ElutionTime: 3.5, MassCounts: []core.MassCount{{Mass: 300, Count: 1}, {Mass: 100, Count: 2}}},
		{ElutionTime: 3.6, MassCounts: []core.MassCount{{Mass: 100, Count: 4}, {Mass: 200, Count: 8}}},
		{ElutionTime: 4.4, MassCounts: []core.MassCount{{Mass: 200, Count: 16}}},
		{ElutionTime: 4.5, MassCounts: []core.MassCount{{Mass: 400, Count: 32}}},
	}

	tr, ok := ElutionTimeTrace(records, 4, 0.4)
	if !ok {
		t.Fatal("Expected a trace for time 4")
	}

	// masses 300 and 400 only occur outside [3.6, 4.4] and are zero-filled
	want := []float64{4, 24, 0, 0}
	if !reflect.DeepEqual(tr.Values, want) {
		t.Errorf("Expected %v, got %v", want, tr.Values)
	}

	s := Summarize(records)
	if len(tr.Values) != len(s.IonMasses) {
		t.Errorf("Expected trace aligned with %d ion masses, got %d values", len(s.IonMasses), len(tr.Values))
	}
	if tr.Window != (core.Window{Lower: 3.6, Upper: 4.4}) {
		t.Errorf("Expected window 3.6-4.4, got %v", tr.Window)
	}
}

func TestElutionTimeTraceNoWindow(t *testing.T) {
	if _, ok := ElutionTimeTrace(twoRows(), 0, 0); ok {
		t.Error("Expected no trace for time 0 ± 0")
	}
	if _, ok := ElutionTimeTrace(twoRows(), -1, 0.5); ok {
		t.Error("Expected no trace for negative window")
	}
}

func TestElutionTimeTraceOutsideAllRowsIsZero(t *testing.T) {
	tr, ok := ElutionTimeTrace(twoRows(), 50, 0.1)
	if !ok {
		t.Fatal("Expected a valid trace")
	}
	if !reflect.DeepEqual(tr.Values, []float64{0, 0}) {
		t.Errorf("Expected [0 0], got %v", tr.Values)
	}
}

func TestTracesAreIdempotent(t *testing.T) {
	records := twoRows()
	a, _ := MassTrace(records, 150, 60)
	b, _ := MassTrace(records, 150, 60)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Mass traces differ: %+v vs %+v", a, b)
	}
	c, _ := ElutionTimeTrace(records, 1.5, 0.5)
	d, _ := ElutionTimeTrace(records, 1.5, 0.5)
	if !reflect.DeepEqual(c, d) {
		t.Errorf("Elution time traces differ: %+v vs %+v", c, d)
	}
}
