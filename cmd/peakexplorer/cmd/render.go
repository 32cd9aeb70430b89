package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
	"github.com/ChrisMcGann/PeakExplorer/pkg/pipeline"
)

var (
	colorPrimary = lipgloss.Color("12")  // bright blue
	colorDim     = lipgloss.Color("240") // gray
	colorWarn    = lipgloss.Color("11")  // bright yellow

	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorDim)

	styleWarn = lipgloss.NewStyle().
			Foreground(colorWarn)

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

const labelWidth = 16

// field is one labelled line of a terminal table.
type field struct {
	label string
	value string
	warn  bool
}

// isTerminal reports whether w is a terminal. Styled output is only used
// for terminals; pipes and files get plain text.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderTable writes a titled list of fields to w.
func renderTable(w io.Writer, title string, fields []field) error {
	styled := isTerminal(w)

	var b strings.Builder
	if styled {
		b.WriteString(styleTitle.Render(title))
	} else {
		b.WriteString(title)
	}
	b.WriteString("\n")

	for _, f := range fields {
		label := fmt.Sprintf("%-*s", labelWidth, f.label)
		value := f.value
		if styled {
			label = styleLabel.Render(label)
			if f.warn {
				value = styleWarn.Render(value)
			}
		}
		b.WriteString(label + " " + value + "\n")
	}

	out := b.String()
	if styled {
		out = styleBox.Render(strings.TrimRight(out, "\n")) + "\n"
	}
	_, err := io.WriteString(w, out)
	return err
}

// report is the terminal summary of an analysis run.
type report struct {
	res *pipeline.Result

	ExcelPath    string
	DatabasePath string
	RunID        string
}

func newReport(res *pipeline.Result) *report {
	return &report{res: res}
}

func (r *report) fields() []field {
	res := r.res
	s := &res.Summary

	fields := []field{
		{label: "Records", value: fmt.Sprintf("%d", res.Records)},
		{label: "Elution time", value: rangeOf(s.ElutionTimes, "min")},
		{label: "Ion masses", value: fmt.Sprintf("%d distinct, %s", len(s.IonMasses), rangeOf(s.IonMasses, "Da"))},
		{label: "Total counts", value: fmt.Sprintf("%g", sum(s.TotalCountsPerTime))},
	}

	fields = append(fields, traceField("Mass trace", res.Options.FollowMassTrace, res.MassTrace))
	fields = append(fields, traceField("Time trace", res.Options.FollowTimeTrace, res.TimeTrace))

	fields = append(fields,
		field{label: "Maxima", value: formatPeaks(res.Peaks.Maxima)},
		field{label: "Minima", value: formatPeaks(res.Peaks.Minima)},
	)

	if r.ExcelPath != "" {
		fields = append(fields, field{label: "Excel report", value: r.ExcelPath})
	}
	if r.DatabasePath != "" {
		fields = append(fields, field{label: "Database", value: fmt.Sprintf("%s (run %s)", r.DatabasePath, r.RunID)})
	}
	return fields
}

// Render writes the report to w.
func (r *report) Render(w io.Writer) error {
	title := "PeakExplorer analysis"
	if r.res.Source != "" {
		title += ": " + r.res.Source
	}
	return renderTable(w, title, r.fields())
}

func traceField(label string, requested bool, tr *core.Trace) field {
	switch {
	case !requested:
		return field{label: label, value: "off"}
	case tr == nil:
		return field{label: label, value: "empty window, skipped", warn: true}
	default:
		return field{label: label, value: fmt.Sprintf("%s, window %s, %g counts", tr.Label(), tr.Window, sum(tr.Values))}
	}
}

func formatPeaks(peaks []core.Peak) string {
	if len(peaks) == 0 {
		return "none"
	}
	parts := make([]string, len(peaks))
	for i, p := range peaks {
		parts[i] = fmt.Sprintf("%g (%g)", p.Position, p.Value)
	}
	return strings.Join(parts, ", ")
}

// rangeOf formats the smallest and largest value of v.
func rangeOf(v []float64, unit string) string {
	if len(v) == 0 {
		return "-"
	}
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return fmt.Sprintf("%g-%g %s", lo, hi, unit)
}

func sum(v []float64) float64 {
	total := 0.0
	for _, x := range v {
		total += x
	}
	return total
}
