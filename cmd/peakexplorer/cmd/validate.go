package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/PeakExplorer/pkg/aggregate"
	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
	"github.com/ChrisMcGann/PeakExplorer/pkg/pipeline"
	"github.com/ChrisMcGann/PeakExplorer/pkg/reader/ascii"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate input file format and contents",
	Long: `Validate that an input file can be read with the current settings. Every
rejected row is listed with its line number and the reason.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize HPLC-MS ascii file contents",
	Long:  `Print summary statistics about an input file including row count, elution time and mass ranges and total counts.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

// parseInput reads the input file with the resolved settings.
func parseInput(cmd *cobra.Command, inputFile string) ([]core.Record, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd, s)
	if err != nil {
		return nil, err
	}
	defer logger.Close()

	parser, err := ascii.NewParser(s.ParserConfig(), logger.Logger)
	if err != nil {
		return nil, err
	}
	return parser.ParseFile(inputFile)
}

func runValidate(cmd *cobra.Command, args []string) error {
	inputFile := args[0]
	out := cmd.OutOrStdout()

	records, err := parseInput(cmd, inputFile)
	if err != nil {
		var perr *ascii.ParseError
		if !errors.As(err, &perr) {
			return err
		}
		if perr.Cause != nil {
			return fmt.Errorf("file cannot be read with the current settings: %w", err)
		}
		for _, rowErr := range perr.RowErrors {
			fmt.Fprintf(out, "%s\n", rowErr)
		}
		return fmt.Errorf("file cannot be read with the current settings: %d invalid rows", len(perr.RowErrors))
	}

	if len(records) == 0 {
		return fmt.Errorf("%s: %w", inputFile, pipeline.ErrNoRecords)
	}

	fmt.Fprintf(out, "%s is valid: %d records\n", inputFile, len(records))
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	inputFile := args[0]

	records, err := parseInput(cmd, inputFile)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("%s: %w", inputFile, pipeline.ErrNoRecords)
	}

	s := aggregate.Summarize(records)

	pairs := 0
	for _, n := range s.NumberOfMassesPerTime {
		pairs += n
	}

	busiest := 0
	for i, c := range s.TotalCountsPerTime {
		if c > s.TotalCountsPerTime[busiest] {
			busiest = i
		}
	}

	fields := []field{
		{label: "Records", value: fmt.Sprintf("%d", s.Rows())},
		{label: "Mass/count pairs", value: fmt.Sprintf("%d", pairs)},
		{label: "Elution time", value: rangeOf(s.ElutionTimes, "min")},
		{label: "Ion masses", value: fmt.Sprintf("%d distinct, %s", len(s.IonMasses), rangeOf(s.IonMasses, "Da"))},
		{label: "Total counts", value: fmt.Sprintf("%g", sum(s.TotalCountsPerTime))},
		{label: "Highest counts", value: fmt.Sprintf("%g at %g min", s.TotalCountsPerTime[busiest], s.ElutionTimes[busiest])},
	}
	return renderTable(cmd.OutOrStdout(), "Summary: "+inputFile, fields)
}
