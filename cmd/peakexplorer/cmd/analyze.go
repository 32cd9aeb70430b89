package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/PeakExplorer/pkg/config"
	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
	"github.com/ChrisMcGann/PeakExplorer/pkg/pipeline"
	"github.com/ChrisMcGann/PeakExplorer/pkg/reader/ascii"
	"github.com/ChrisMcGann/PeakExplorer/pkg/writer/excel"
	"github.com/ChrisMcGann/PeakExplorer/pkg/writer/sqlite"
)

var (
	// Flags for analyze command
	mass         float64
	massInterval float64
	elutionTime  float64
	timeInterval float64
	noMassTrace  bool
	noTimeTrace  bool
	lookahead    int
	delta        float64
	writeExcel   bool
	excelOut     string
	dbOut        string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze an HPLC-MS ascii file",
	Long: `Read an HPLC-MS ascii file, compute chromatogram and mass spectrum, follow
the mass and elution time traces and detect peaks in the chromatogram.

Examples:
  # Analyze with the settings from peakexplorer.toml
  peakexplorer analyze run1.ascii

  # Follow mass 425 Da within ±1 Da and write the Excel report
  peakexplorer analyze run1.ascii --mass 425 --mass-interval 1 --excel

  # Semicolon separated export with decimal comma, results into a database
  peakexplorer analyze run1.csv --delimiter ";" --decimal "," --db results.db`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.Float64Var(&mass, "mass", 465, "Mass of the mass trace in Da")
	f.Float64Var(&massInterval, "mass-interval", 0.5, "Half width of the mass trace window in Da")
	f.Float64Var(&elutionTime, "time", 4, "Elution time of the time trace in min")
	f.Float64Var(&timeInterval, "time-interval", 0.4, "Half width of the time trace window in min")
	f.BoolVar(&noMassTrace, "no-mass-trace", false, "Do not follow the mass trace")
	f.BoolVar(&noTimeTrace, "no-time-trace", false, "Do not follow the elution time trace")
	f.IntVar(&lookahead, "lookahead", 50, "Samples after a peak candidate needed to confirm it")
	f.Float64Var(&delta, "delta", 0, "Minimum drop between a peak and the following samples")
	f.BoolVar(&writeExcel, "excel", false, "Write the Excel report next to the input file")
	f.StringVar(&excelOut, "excel-out", "", "Write the Excel report to this path (implies --excel)")
	f.StringVar(&dbOut, "db", "", "Append records and results to this SQLite database")
}

// applyAnalyzeFlags copies the analyze flags given on the command line
// into the settings. Commands without these flags are not affected.
func applyAnalyzeFlags(cmd *cobra.Command, s *config.Settings) {
	flags := cmd.Flags()
	if flags.Lookup("mass") == nil {
		return
	}

	if flags.Changed("mass") {
		s.Analysis.Mass = mass
	}
	if flags.Changed("mass-interval") {
		s.Analysis.MassInterval = massInterval
	}
	if flags.Changed("time") {
		s.Analysis.Time = elutionTime
	}
	if flags.Changed("time-interval") {
		s.Analysis.TimeInterval = timeInterval
	}
	if flags.Changed("no-mass-trace") {
		s.Analysis.FollowMassTrace = !noMassTrace
	}
	if flags.Changed("no-time-trace") {
		s.Analysis.FollowTimeTrace = !noTimeTrace
	}
	if flags.Changed("lookahead") {
		s.Analysis.Lookahead = lookahead
	}
	if flags.Changed("delta") {
		s.Analysis.Delta = delta
	}
}

func analysisOptions(s *config.Settings) pipeline.Options {
	return pipeline.Options{
		Parser:          s.ParserConfig(),
		FollowMassTrace: s.Analysis.FollowMassTrace,
		Mass:            s.Analysis.Mass,
		MassInterval:    s.Analysis.MassInterval,
		FollowTimeTrace: s.Analysis.FollowTimeTrace,
		Time:            s.Analysis.Time,
		TimeInterval:    s.Analysis.TimeInterval,
		Lookahead:       s.Analysis.Lookahead,
		Delta:           s.Analysis.Delta,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	inputFile := args[0]

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, s)
	if err != nil {
		return err
	}
	defer logger.Close()

	res, records, err := pipeline.AnalyzeFile(inputFile, analysisOptions(s), logger.Logger)
	if err != nil {
		var perr *ascii.ParseError
		if errors.As(err, &perr) {
			return fmt.Errorf("file cannot be read with the current settings: %w", err)
		}
		return err
	}

	rep := newReport(res)

	if writeExcel || excelOut != "" {
		path := excelOut
		if path == "" {
			path = excel.ResultFilename(inputFile)
		}
		if err := excel.Write(path, res); err != nil {
			return fmt.Errorf("failed to write Excel report: %w", err)
		}
		logger.Info("Excel report written", "path", path)
		rep.ExcelPath = path
	}

	if dbOut != "" {
		runID, err := exportDatabase(dbOut, res, records)
		if err != nil {
			return err
		}
		logger.Info("Run exported", "path", dbOut, "run_id", runID)
		rep.DatabasePath = dbOut
		rep.RunID = runID
	}

	return rep.Render(cmd.OutOrStdout())
}

func exportDatabase(path string, res *pipeline.Result, records []core.Record) (string, error) {
	writer, err := sqlite.NewWriter(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output database: %w", err)
	}
	defer writer.Close()

	runID, err := writer.WriteResult(res, records)
	if err != nil {
		return "", fmt.Errorf("failed to write run: %w", err)
	}

	// Finalize database
	if err := writer.Finalize(); err != nil {
		return "", fmt.Errorf("failed to finalize database: %w", err)
	}
	return runID, nil
}
