// Package pipeline runs a complete analysis: parse, aggregate, follow the
// configured traces and detect peaks in the chromatogram.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ChrisMcGann/PeakExplorer/pkg/aggregate"
	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
	"github.com/ChrisMcGann/PeakExplorer/pkg/logging"
	"github.com/ChrisMcGann/PeakExplorer/pkg/peaks"
	"github.com/ChrisMcGann/PeakExplorer/pkg/reader/ascii"
)

// ErrNoRecords is returned when an input holds no rows at all.
var ErrNoRecords = errors.New("no records found")

// Options controls a single analysis run.
type Options struct {
	Parser ascii.Config

	FollowMassTrace bool
	Mass            float64 // Da
	MassInterval    float64 // ± Da

	FollowTimeTrace bool
	Time            float64 // min
	TimeInterval    float64 // ± min

	Lookahead int
	Delta     float64
}

// DefaultOptions mirrors the defaults of the settings file.
func DefaultOptions() Options {
	return Options{
		Parser:          ascii.DefaultConfig(),
		FollowMassTrace: true,
		Mass:            465,
		MassInterval:    0.5,
		FollowTimeTrace: true,
		Time:            4,
		TimeInterval:    0.4,
		Lookahead:       50,
		Delta:           0,
	}
}

// Result is the outcome of one analysis run.
type Result struct {
	Source  string
	Options Options
	Records int
	Summary core.Summary

	// nil when the trace was not requested or its window is invalid
	MassTrace *core.Trace
	TimeTrace *core.Trace

	Peaks core.Peaks
}

// ChromatogramRow is one line of the counts per time table.
type ChromatogramRow struct {
	ElutionTime float64
	Counts      float64
	Trace       float64 // mass trace value, 0 without trace
}

// SpectrumRow is one line of the counts per mass table.
type SpectrumRow struct {
	Mass   float64
	Counts float64
	Trace  float64 // elution time trace value, 0 without trace
}

// ChromatogramRows zips elution times, total counts and the mass trace.
func (r *Result) ChromatogramRows() []ChromatogramRow {
	rows := make([]ChromatogramRow, len(r.Summary.ElutionTimes))
	for i, t := range r.Summary.ElutionTimes {
		rows[i] = ChromatogramRow{ElutionTime: t, Counts: r.Summary.TotalCountsPerTime[i]}
		if r.MassTrace != nil && i < len(r.MassTrace.Values) {
			rows[i].Trace = r.MassTrace.Values[i]
		}
	}
	return rows
}

// SpectrumRows zips ion masses, total counts and the elution time trace.
func (r *Result) SpectrumRows() []SpectrumRow {
	rows := make([]SpectrumRow, len(r.Summary.IonMasses))
	for i, m := range r.Summary.IonMasses {
		rows[i] = SpectrumRow{Mass: m, Counts: r.Summary.TotalCountsPerMass[i]}
		if r.TimeTrace != nil && i < len(r.TimeTrace.Values) {
			rows[i].Trace = r.TimeTrace.Values[i]
		}
	}
	return rows
}

// AnalyzeFile parses the file at path and runs the analysis on it.
func AnalyzeFile(path string, opts Options, logger *slog.Logger) (*Result, []core.Record, error) {
	if logger == nil {
		logger = slog.Default()
	}

	parser, err := ascii.NewParser(opts.Parser, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid parser settings: %w", err)
	}

	start := time.Now()
	records, err := parser.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Parsing finished", slog.Int("records", len(records)), slog.Duration("took", time.Since(start)))

	res, err := Run(records, opts, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Source = path
	return res, records, nil
}

// Run analyzes already parsed records. records are not modified.
func Run(records []core.Record, opts Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	logger.Info("Data analysis starts", slog.Int("records", len(records)))
	start := time.Now()

	res := &Result{
		Options: opts,
		Records: len(records),
		Summary: aggregate.Summarize(records),
	}

	if opts.FollowMassTrace {
		if tr, ok := aggregate.MassTrace(records, opts.Mass, opts.MassInterval); ok {
			res.MassTrace = &tr
			logger.Debug("Mass trace", slog.String("window", tr.Window.String()), slog.Int("entries", len(tr.Values)))
		} else {
			logging.Note(logger, "Mass trace window is empty, trace skipped",
				slog.Float64("mass", opts.Mass), slog.Float64("interval", opts.MassInterval))
		}
	}

	if opts.FollowTimeTrace {
		if tr, ok := aggregate.ElutionTimeTrace(records, opts.Time, opts.TimeInterval); ok {
			res.TimeTrace = &tr
			logger.Debug("Time trace", slog.String("window", tr.Window.String()), slog.Int("entries", len(tr.Values)))
		} else {
			logging.Note(logger, "Elution time window is empty, trace skipped",
				slog.Float64("time", opts.Time), slog.Float64("interval", opts.TimeInterval))
		}
	}

	x, y := res.Summary.Chromatogram()
	found, err := peaks.Detect(y, x, opts.Lookahead, opts.Delta)
	if err != nil {
		return nil, fmt.Errorf("failed to detect peaks: %w", err)
	}
	res.Peaks = found

	logger.Info("Data analysis finished",
		slog.Int("ion_masses", len(res.Summary.IonMasses)),
		slog.Int("maxima", len(found.Maxima)),
		slog.Int("minima", len(found.Minima)),
		slog.Duration("took", time.Since(start)))

	return res, nil
}
