// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/PeakExplorer/pkg/config"
	"github.com/ChrisMcGann/PeakExplorer/pkg/logging"
)

var (
	// Persistent flags
	configFile   string
	debug        bool
	logFile      string
	delimiter    string
	decimal      string
	encodingName string
	colTime      int
	colCount     int
	colData      int
)

var rootCmd = &cobra.Command{
	Use:   "peakexplorer",
	Short: "PeakExplorer - HPLC-MS raw data analysis tool",
	Long: `PeakExplorer reads HPLC-MS raw data exported as delimited text and derives
the chromatogram (total counts per elution time) and the mass spectrum
(total counts per ion mass).

Supported features:
- Mass trace and elution time trace around configurable windows
- Peak detection in the chromatogram
- Excel report with charts
- SQLite export of records and results`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(configCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", config.DefaultFilename, "Settings file (TOML), skipped if missing")
	pf.BoolVar(&debug, "debug", false, "Log at debug level")
	pf.StringVar(&logFile, "log-file", "", "Also write log messages to this file")
	pf.StringVar(&delimiter, "delimiter", ",", "Field delimiter of the input file")
	pf.StringVar(&decimal, "decimal", ".", "Decimal point used in the input file")
	pf.StringVar(&encodingName, "encoding", "utf-8", "Text encoding of the input file")
	pf.IntVar(&colTime, "col-time", 0, "Column of the elution time (0-based)")
	pf.IntVar(&colCount, "col-count", 7, "Column of the declared number of masses (0-based)")
	pf.IntVar(&colData, "col-data", 8, "First column of the '<mass> <count>' fields (0-based)")
}

// loadSettings resolves the settings file and the environment, then applies
// every flag given on the command line.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	s, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("delimiter") {
		s.CSV.Delimiter = delimiter
	}
	if flags.Changed("decimal") {
		s.CSV.Decimal = decimal
	}
	if flags.Changed("encoding") {
		s.CSV.Encoding = encodingName
	}
	if flags.Changed("col-time") {
		s.Data.ColRetention = colTime
	}
	if flags.Changed("col-count") {
		s.Data.ColNumberMasses = colCount
	}
	if flags.Changed("col-data") {
		s.Data.ColDataStarts = colData
	}
	if debug {
		s.Log.Level = "debug"
	}
	if logFile != "" {
		s.Log.File = logFile
	}

	applyAnalyzeFlags(cmd, s)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// newLogger creates the logger for a command. The caller closes it.
func newLogger(cmd *cobra.Command, s *config.Settings) (*logging.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:  s.Log.Level,
		File:   s.Log.File,
		Format: s.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective settings",
	Long: `Print the settings resulting from the settings file, PEAKEXPLORER_* environment
variables and command line flags in TOML format. The output can be used as a
starting point for a settings file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		return s.Write(cmd.OutOrStdout())
	},
}
