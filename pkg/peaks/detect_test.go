package peaks

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
)

func TestDetectIndexed(t *testing.T) {
	tests := []struct {
		name      string
		y         []float64
		lookahead int
		delta     float64
		wantMax   []core.Peak
		wantMin   []core.Peak
	}{
		{
			name:      "two humps",
			y:         []float64{0, 1, 5, 1, 0, 1, 4, 1, 0},
			lookahead: 2,
			wantMax:   []core.Peak{{Position: 2, Value: 5}},
			wantMin:   []core.Peak{{Position: 4, Value: 0}},
		},
		{
			name:      "first hit is a maximum",
			y:         []float64{3, 2, 1, 2, 3, 2, 1, 2, 3, 3, 3},
			lookahead: 2,
			wantMax:   []core.Peak{{Position: 4, Value: 3}},
			wantMin:   []core.Peak{{Position: 2, Value: 1}, {Position: 6, Value: 1}},
		},
		{
			name:      "plateau keeps earliest position",
			y:         []float64{0, 1, 5, 5, 1, 0, 0, 0},
			lookahead: 1,
			wantMax:   []core.Peak{{Position: 2, Value: 5}},
		},
		{
			name:      "equal sample in lookahead defers confirmation",
			y:         []float64{0, 1, 5, 4, 5, 0, 0, 0, 0},
			lookahead: 2,
			wantMax:   []core.Peak{{Position: 2, Value: 5}},
		},
		{
			name:      "higher sample in lookahead moves the maximum",
			y:         []float64{0, 1, 5, 4, 5.5, 0, 0, 0, 0},
			lookahead: 2,
			wantMax:   []core.Peak{{Position: 4, Value: 5.5}},
		},
		{
			name:      "small dip confirms without delta",
			y:         []float64{0, 0, 1, 5, 4.8, 6, 2, 0, 0, 0},
			lookahead: 1,
			delta:     0,
			wantMax:   []core.Peak{{Position: 3, Value: 5}},
		},
		{
			name:      "delta suppresses small dip",
			y:         []float64{0, 0, 1, 5, 4.8, 6, 2, 0, 0, 0},
			lookahead: 1,
			delta:     0.5,
			wantMax:   []core.Peak{{Position: 5, Value: 6}},
		},
		{
			name:      "flat signal",
			y:         []float64{2, 2, 2, 2, 2, 2},
			lookahead: 1,
		},
		{
			name:      "lookahead covers whole signal",
			y:         []float64{0, 5, 0},
			lookahead: 3,
		},
		{
			name:      "empty signal",
			y:         nil,
			lookahead: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectIndexed(tt.y, tt.lookahead, tt.delta)
			if err != nil {
				t.Fatalf("DetectIndexed() error = %v", err)
			}
			if !samePeaks(got.Maxima, tt.wantMax) {
				t.Errorf("Maxima: expected %v, got %v", tt.wantMax, got.Maxima)
			}
			if !samePeaks(got.Minima, tt.wantMin) {
				t.Errorf("Minima: expected %v, got %v", tt.wantMin, got.Minima)
			}
		})
	}
}

func TestDetectUsesXPositions(t *testing.T) {
	y := []float64{0, 1, 5, 1, 0, 1, 4, 1, 0}
	x := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}

	got, err := Detect(y, x, 2, 0)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if !samePeaks(got.Maxima, []core.Peak{{Position: 0.3, Value: 5}}) {
		t.Errorf("Unexpected maxima %v", got.Maxima)
	}
	if !samePeaks(got.Minima, []core.Peak{{Position: 0.5, Value: 0}}) {
		t.Errorf("Unexpected minima %v", got.Minima)
	}
}

func TestDetectPreconditions(t *testing.T) {
	tests := []struct {
		name      string
		y, x      []float64
		lookahead int
		delta     float64
		want      error
	}{
		{"length mismatch", []float64{1, 2, 3}, []float64{1, 2}, 1, 0, ErrLengthMismatch},
		{"zero lookahead", []float64{1}, []float64{1}, 0, 0, ErrLookahead},
		{"negative lookahead", []float64{1}, []float64{1}, -4, 0, ErrLookahead},
		{"negative delta", []float64{1}, []float64{1}, 1, -0.1, ErrDelta},
		{"NaN delta", []float64{1}, []float64{1}, 1, math.NaN(), ErrDelta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Detect(tt.y, tt.x, tt.lookahead, tt.delta)
			if !errors.Is(err, tt.want) {
				t.Errorf("Detect() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDetectOrderingOnSine(t *testing.T) {
	n := 400
	y := make([]float64, n)
	for i := range y {
		y[i] = math.Sin(2 * math.Pi * float64(i) / 50)
	}

	got, err := DetectIndexed(y, 10, 0.1)
	if err != nil {
		t.Fatalf("DetectIndexed() error = %v", err)
	}
	if len(got.Maxima) == 0 || len(got.Minima) == 0 {
		t.Fatalf("Expected maxima and minima, got %+v", got)
	}

	for _, list := range [][]core.Peak{got.Maxima, got.Minima} {
		for i := 1; i < len(list); i++ {
			if !(list[i].Position > list[i-1].Position) {
				t.Errorf("Positions not strictly increasing: %v", list)
				break
			}
		}
	}
	for _, p := range got.Maxima {
		if p.Value < 0.99 {
			t.Errorf("Maximum %v is not near the crest", p)
		}
	}
	for _, p := range got.Minima {
		if p.Value > -0.99 {
			t.Errorf("Minimum %v is not near the trough", p)
		}
	}

	// successive peaks of both kinds alternate
	diff := len(got.Maxima) - len(got.Minima)
	if diff < -1 || diff > 1 {
		t.Errorf("Expected alternating peaks, got %d maxima and %d minima", len(got.Maxima), len(got.Minima))
	}
}

func TestDetectIsIdempotent(t *testing.T) {
	y := []float64{0, 1, 5, 1, 0, 1, 4, 1, 0}
	a, _ := DetectIndexed(y, 2, 0)
	b, _ := DetectIndexed(y, 2, 0)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Expected identical results, got %+v and %+v", a, b)
	}
}

func samePeaks(got, want []core.Peak) bool {
	if len(got) == 0 && len(want) == 0 {
		return true
	}
	return reflect.DeepEqual(got, want)
}
