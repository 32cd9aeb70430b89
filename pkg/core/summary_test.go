package core

import "testing"

func TestSummaryValidate(t *testing.T) {
	tests := []struct {
		name    string
		sum     *Summary
		wantErr bool
	}{
		{
			name: "aligned",
			sum: &Summary{
				ElutionTimes:          []float64{1, 2},
				TotalCountsPerTime:    []float64{15, 11},
				TotalMassesPerTime:    []float64{300, 300},
				NumberOfMassesPerTime: []int{2, 2},
				MaxMassPerTime:        []float64{200, 200},
				MinMassPerTime:        []float64{100, 100},
				IonMasses:             []float64{100, 200},
				TotalCountsPerMass:    []float64{13, 13},
			},
		},
		{
			name:    "empty",
			sum:     &Summary{},
			wantErr: false,
		},
		{
			name: "per-time length mismatch",
			sum: &Summary{
				ElutionTimes:       []float64{1, 2},
				TotalCountsPerTime: []float64{15},
			},
			wantErr: true,
		},
		{
			name: "duplicate ion mass",
			sum: &Summary{
				IonMasses:          []float64{100, 100},
				TotalCountsPerMass: []float64{1, 2},
			},
			wantErr: true,
		},
		{
			name: "mass totals misaligned",
			sum: &Summary{
				IonMasses:          []float64{100, 200},
				TotalCountsPerMass: []float64{1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sum.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Lower: 464.5, Upper: 465.5}
	for _, v := range []float64{464.5, 465, 465.5} {
		if !w.Contains(v) {
			t.Errorf("Expected %g inside %v", v, w)
		}
	}
	for _, v := range []float64{464.49, 465.51} {
		if w.Contains(v) {
			t.Errorf("Expected %g outside %v", v, w)
		}
	}
}

func TestTraceLabel(t *testing.T) {
	mass := Trace{Kind: MassTrace, Center: 465, Interval: 0.5}
	if got := mass.Label(); got != "465±0.5 Da" {
		t.Errorf("Expected label 465±0.5 Da, got %s", got)
	}
	tm := Trace{Kind: ElutionTimeTrace, Center: 4, Interval: 0.4}
	if got := tm.Label(); got != "4±0.4 Min" {
		t.Errorf("Expected label 4±0.4 Min, got %s", got)
	}
}

func TestPeaksEmpty(t *testing.T) {
	if !(Peaks{}).Empty() {
		t.Error("Expected zero Peaks to be empty")
	}
	p := Peaks{Minima: []Peak{{Position: 1, Value: 0}}}
	if p.Empty() {
		t.Error("Expected Peaks with a minimum to be non-empty")
	}
}
