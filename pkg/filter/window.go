// Package filter provides the window selection used by mass and elution time traces
package filter

import (
	"strconv"

	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
)

// Config holds the center and the ± interval of a trace window
type Config struct {
	Center   float64 // Mass in Da or elution time in minutes
	Interval float64 // ± deviation around Center
}

// Window converts the configuration to inclusive bounds.
//
// Both bounds are rounded to one decimal, the lower bound is clamped at 0.
// ok is false when the upper bound is not positive: no mass weighs 0 Da and
// no sample elutes before minute 0, so such a window cannot select anything.
func (c Config) Window() (w core.Window, ok bool) {
	lower := Round1(c.Center - c.Interval)
	if !(lower > 0) {
		lower = 0
	}
	upper := Round1(c.Center + c.Interval)

	if !(upper > 0) {
		return core.Window{}, false
	}
	return core.Window{Lower: lower, Upper: upper}, true
}

// NewWindow is shorthand for Config{center, interval}.Window().
func NewWindow(center, interval float64) (core.Window, bool) {
	return Config{Center: center, Interval: interval}.Window()
}

// Round1 rounds v to one decimal place. Halfway cases are decided on the
// exact binary value and round to even, so 0.25 becomes 0.2 and 0.35
// (stored as 0.34999...) becomes 0.3.
func Round1(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}
