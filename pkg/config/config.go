// Package config loads PeakExplorer settings.
//
// Settings are resolved in this order: built-in defaults, an optional TOML
// file, then PEAKEXPLORER_* environment variables. Command line flags are
// applied on top by the caller before Validate is run.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"github.com/ChrisMcGann/PeakExplorer/pkg/reader/ascii"
)

// DefaultFilename is looked up in the working directory when no settings
// file is given.
const DefaultFilename = "peakexplorer.toml"

// EnvPrefix prefixes all environment overrides, e.g. PEAKEXPLORER_CSV_DELIMITER.
const EnvPrefix = "PEAKEXPLORER"

// Settings is the complete configuration of an analysis run.
type Settings struct {
	CSV      CSVSettings      `toml:"csv"`
	Data     DataSettings     `toml:"data"`
	Analysis AnalysisSettings `toml:"analysis"`
	Log      LogSettings      `toml:"log"`
}

// CSVSettings describes how the input text is split and decoded.
type CSVSettings struct {
	Delimiter string `toml:"delimiter" validate:"len=1"`
	Decimal   string `toml:"decimal" validate:"len=1"`
	Encoding  string `toml:"encoding" validate:"required"`
}

// DataSettings holds the column layout of the instrument export.
type DataSettings struct {
	ColRetention    int `toml:"col_retention" split_words:"true" validate:"min=0"`
	ColNumberMasses int `toml:"col_number_masses" split_words:"true" validate:"min=0"`
	ColDataStarts   int `toml:"col_data_starts" split_words:"true" validate:"min=0"`
}

// AnalysisSettings holds trace windows and peak detection parameters.
type AnalysisSettings struct {
	Mass            float64 `toml:"mass" validate:"gte=0"`                                     // Da
	MassInterval    float64 `toml:"mass_interval" split_words:"true" validate:"gte=0,lte=16"` // ± Da
	Time            float64 `toml:"time" validate:"gte=0"`                                     // min
	TimeInterval    float64 `toml:"time_interval" split_words:"true" validate:"gte=0,lte=1"`  // ± min
	FollowMassTrace bool    `toml:"follow_mass_trace" split_words:"true"`
	FollowTimeTrace bool    `toml:"follow_time_trace" split_words:"true"`
	Lookahead       int     `toml:"lookahead" validate:"min=1"`
	Delta           float64 `toml:"delta" validate:"gte=0"`
}

// LogSettings configures the application logger.
type LogSettings struct {
	Level  string `toml:"level" validate:"oneof=debug info note warn warning error"`
	File   string `toml:"file"`
	Format string `toml:"format" validate:"oneof=text json"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		CSV: CSVSettings{
			Delimiter: ",",
			Decimal:   ".",
			Encoding:  "utf-8",
		},
		Data: DataSettings{
			ColRetention:    0,
			ColNumberMasses: 7,
			ColDataStarts:   8,
		},
		Analysis: AnalysisSettings{
			Mass:            465,
			MassInterval:    0.5,
			Time:            4,
			TimeInterval:    0.4,
			FollowMassTrace: true,
			FollowTimeTrace: true,
			Lookahead:       50,
			Delta:           0,
		},
		Log: LogSettings{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load resolves settings from defaults, the TOML file at path and the
// environment. A missing file is not an error; an empty path skips the file.
func Load(path string) (*Settings, error) {
	s := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, s); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, s); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	return s, nil
}

// Validate checks all settings against their constraints.
func (s *Settings) Validate() error {
	v := validator.New()
	if err := v.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed '%s=%s' (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
			}
			return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid settings: %w", err)
	}

	if err := s.ParserConfig().Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// ParserConfig returns the input layout described by the settings.
func (s *Settings) ParserConfig() ascii.Config {
	return ascii.Config{
		Delimiter:         s.CSV.Delimiter,
		Decimal:           s.CSV.Decimal,
		Encoding:          s.CSV.Encoding,
		ElutionTimeColumn: s.Data.ColRetention,
		MassCountColumn:   s.Data.ColNumberMasses,
		DataStartColumn:   s.Data.ColDataStarts,
	}
}

// Write encodes the settings as TOML.
func (s *Settings) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(s)
}
