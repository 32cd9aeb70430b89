// Package peaks locates alternating local maxima and minima in a sampled signal.
//
// The detector follows Billauer's peakdet: a candidate extreme is confirmed
// once the signal has moved delta away from it and the next lookahead
// samples do not reach it again. Maxima and minima alternate; after the scan
// the first confirmed peak is dropped because it almost always stems from
// the start of the signal rather than from a real peak.
package peaks

import (
	"errors"
	"fmt"
	"math"

	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
)

var (
	// ErrLengthMismatch is returned when x and y differ in length.
	ErrLengthMismatch = errors.New("peaks: x and y must have the same length")
	// ErrLookahead is returned for a lookahead below 1.
	ErrLookahead = errors.New("peaks: lookahead must be 1 or above")
	// ErrDelta is returned for a negative or NaN delta.
	ErrDelta = errors.New("peaks: delta must be a non-negative number")
)

// hunt is the state of the scan.
type hunt int

const (
	huntEither hunt = iota // nothing confirmed yet, track both extremes
	huntMax                // last confirmed peak was a minimum
	huntMin                // last confirmed peak was a maximum
)

// extreme is a running maximum or minimum with its x position.
type extreme struct {
	set   bool
	value float64
	pos   float64
}

// Detect returns the maxima and minima of y, positioned by x.
func Detect(y, x []float64, lookahead int, delta float64) (core.Peaks, error) {
	if len(x) != len(y) {
		return core.Peaks{}, fmt.Errorf("%w (x=%d, y=%d)", ErrLengthMismatch, len(x), len(y))
	}
	if lookahead < 1 {
		return core.Peaks{}, fmt.Errorf("%w (got %d)", ErrLookahead, lookahead)
	}
	if math.IsNaN(delta) || delta < 0 {
		return core.Peaks{}, fmt.Errorf("%w (got %v)", ErrDelta, delta)
	}

	var (
		result     core.Peaks
		firstIsMax bool
		found      bool
		state      = huntEither
		hi, lo     extreme
	)

	length := len(y)
	// the last lookahead samples can never be confirmed
	for i := 0; i < length-lookahead; i++ {
		v := y[i]

		if state != huntMin && (!hi.set || v > hi.value) {
			hi = extreme{set: true, value: v, pos: x[i]}
		}
		if state != huntMax && (!lo.set || v < lo.value) {
			lo = extreme{set: true, value: v, pos: x[i]}
		}

		if state != huntMin && hi.set && v < hi.value-delta {
			if windowMax(y[i:i+lookahead]) < hi.value {
				result.Maxima = append(result.Maxima, core.Peak{Position: hi.pos, Value: hi.value})
				if !found {
					found, firstIsMax = true, true
				}
				state = huntMin
				hi, lo = extreme{}, extreme{}
				if i+lookahead >= length {
					break
				}
				continue
			}
		}

		if state != huntMax && lo.set && v > lo.value+delta {
			if windowMin(y[i:i+lookahead]) > lo.value {
				result.Minima = append(result.Minima, core.Peak{Position: lo.pos, Value: lo.value})
				if !found {
					found, firstIsMax = true, false
				}
				state = huntMax
				hi, lo = extreme{}, extreme{}
				if i+lookahead >= length {
					break
				}
			}
		}
	}

	if found {
		if firstIsMax {
			result.Maxima = result.Maxima[1:]
		} else {
			result.Minima = result.Minima[1:]
		}
	}

	return result, nil
}

// DetectIndexed runs Detect with the sample index as x axis.
func DetectIndexed(y []float64, lookahead int, delta float64) (core.Peaks, error) {
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	return Detect(y, x, lookahead, delta)
}

func windowMax(w []float64) float64 {
	m := w[0]
	for _, v := range w[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func windowMin(w []float64) float64 {
	m := w[0]
	for _, v := range w[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
