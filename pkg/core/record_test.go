package core

import (
	"math"
	"testing"
)

func TestRecordValidation(t *testing.T) {
	tests := []struct {
		name    string
		rec     *Record
		wantErr bool
	}{
		{
			name: "valid record",
			rec: &Record{
				ElutionTime: 1.0,
				MassCounts:  []MassCount{{Mass: 100, Count: 10}, {Mass: 200, Count: 5}},
			},
			wantErr: false,
		},
		{
			name:    "no pairs",
			rec:     &Record{ElutionTime: 1.0},
			wantErr: true,
		},
		{
			name: "NaN mass",
			rec: &Record{
				ElutionTime: 1.0,
				MassCounts:  []MassCount{{Mass: math.NaN(), Count: 10}},
			},
			wantErr: true,
		},
		{
			name: "infinite elution time",
			rec: &Record{
				ElutionTime: math.Inf(1),
				MassCounts:  []MassCount{{Mass: 100, Count: 10}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordStatistics(t *testing.T) {
	rec := &Record{
		ElutionTime: 2.5,
		MassCounts: []MassCount{
			{Mass: 200.0, Count: 8.0},
			{Mass: 100.0, Count: 3.0},
			{Mass: 300.5, Count: 1.5},
			{Mass: 100.0, Count: 2.0},
		},
	}

	if got := rec.Len(); got != 4 {
		t.Errorf("Expected 4 pairs, got %d", got)
	}
	if got := rec.TotalCounts(); got != 14.5 {
		t.Errorf("Expected total counts 14.5, got %g", got)
	}
	if got := rec.TotalMasses(); got != 700.5 {
		t.Errorf("Expected total masses 700.5, got %g", got)
	}
	if got := rec.MaxMass(); got != 300.5 {
		t.Errorf("Expected max mass 300.5, got %g", got)
	}
	if got := rec.MinMass(); got != 100.0 {
		t.Errorf("Expected min mass 100, got %g", got)
	}
}

func TestEmptyRecordExtremes(t *testing.T) {
	rec := &Record{}
	if !math.IsNaN(rec.MaxMass()) || !math.IsNaN(rec.MinMass()) {
		t.Errorf("Expected NaN extremes for empty record, got %g/%g", rec.MaxMass(), rec.MinMass())
	}
}

func TestCountsWithin(t *testing.T) {
	rec := &Record{
		MassCounts: []MassCount{
			{Mass: 99.5, Count: 1},
			{Mass: 100.0, Count: 2},
			{Mass: 100.5, Count: 4},
			{Mass: 100.6, Count: 8},
		},
	}

	tests := []struct {
		name   string
		window Window
		want   float64
	}{
		{"exact match", Window{Lower: 100, Upper: 100}, 2},
		{"inclusive bounds", Window{Lower: 99.5, Upper: 100.5}, 7},
		{"nothing inside", Window{Lower: 200, Upper: 300}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rec.CountsWithin(tt.window); got != tt.want {
				t.Errorf("CountsWithin(%v) = %g, want %g", tt.window, got, tt.want)
			}
		})
	}
}

func TestRecordName(t *testing.T) {
	rec := &Record{ElutionTime: 4.25}
	if got := rec.Name(); got != "t=4.25" {
		t.Errorf("Expected name t=4.25, got %s", got)
	}
}
