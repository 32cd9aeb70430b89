// Package ascii reads HPLC-MS raw data exported as delimited text ("ascii" files).
//
// Each row describes one elution time. Besides a handful of fixed columns a
// row carries a variable number of "<mass> <count>" fields. A file is only
// accepted as a whole: a single malformed row fails the complete file.
package ascii

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// Config describes the layout of an input file. It is passed by value to
// every parse call and never modified.
type Config struct {
	Delimiter string // Field separator, exactly one character
	Decimal   string // Decimal point used in the file, replaced by "."
	Encoding  string // Text encoding name, e.g. "utf-8", "windows-1252"

	ElutionTimeColumn int // Column holding the elution time in minutes
	MassCountColumn   int // Column holding the declared number of masses
	DataStartColumn   int // First column of the "<mass> <count>" fields
}

// DefaultConfig returns the layout written by the instrument software.
func DefaultConfig() Config {
	return Config{
		Delimiter:         ",",
		Decimal:           ".",
		Encoding:          "utf-8",
		ElutionTimeColumn: 0,
		MassCountColumn:   7,
		DataStartColumn:   8,
	}
}

// Validate checks that the configuration can be used for parsing.
func (c Config) Validate() error {
	var errs []string

	if utf8.RuneCountInString(c.Delimiter) != 1 {
		errs = append(errs, fmt.Sprintf("delimiter must be a single character, got %q", c.Delimiter))
	} else if r, _ := utf8.DecodeRuneInString(c.Delimiter); r == '\r' || r == '\n' || r == '"' || r == ' ' || r == utf8.RuneError {
		errs = append(errs, fmt.Sprintf("delimiter %q is not allowed", c.Delimiter))
	}
	if utf8.RuneCountInString(c.Decimal) != 1 {
		errs = append(errs, fmt.Sprintf("decimal point must be a single character, got %q", c.Decimal))
	}
	if _, err := lookupEncoding(c.Encoding); err != nil {
		errs = append(errs, err.Error())
	}
	if c.ElutionTimeColumn < 0 {
		errs = append(errs, "elution time column must not be negative")
	}
	if c.MassCountColumn < 0 {
		errs = append(errs, "mass count column must not be negative")
	}
	if c.DataStartColumn < 0 {
		errs = append(errs, "data start column must not be negative")
	}

	if len(errs) > 0 {
		return &core.ValidationError{
			Field:   "Config",
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}

// Parser converts delimited text into records.
type Parser struct {
	cfg    Config
	enc    encoding.Encoding
	isUTF8 bool
	logger *slog.Logger
}

// NewParser creates a parser for the given layout. A nil logger uses slog.Default().
func NewParser(cfg Config, logger *slog.Logger) (*Parser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	enc, err := lookupEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	name, _ := htmlindex.Name(enc)

	return &Parser{
		cfg:    cfg,
		enc:    enc,
		isUTF8: name == "utf-8",
		logger: logger,
	}, nil
}

// Config returns the layout used by the parser.
func (p *Parser) Config() Config {
	return p.cfg
}

// Parse reads a complete file from r. On success it returns exactly one
// record per row; on failure it returns a *ParseError and no records.
func Parse(r io.Reader, cfg Config) ([]core.Record, error) {
	p, err := NewParser(cfg, nil)
	if err != nil {
		return nil, err
	}
	return p.Parse(r, "")
}

// ParseFile reads the file at path.
func ParseFile(path string, cfg Config) ([]core.Record, error) {
	p, err := NewParser(cfg, nil)
	if err != nil {
		return nil, err
	}
	return p.ParseFile(path)
}

// ParseFile opens and parses the file at path.
func (p *Parser) ParseFile(path string) ([]core.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	return p.Parse(f, path)
}

// Parse reads all rows from r. source names the input in errors and logs.
func (p *Parser) Parse(r io.Reader, source string) ([]core.Record, error) {
	p.logger.Info("Parsing input", slog.String("source", source))

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Source: source, Cause: err}
	}

	text, err := p.decode(raw)
	if err != nil {
		p.logger.Error("Cannot decode input", slog.String("source", source), slog.String("encoding", p.cfg.Encoding), slog.Any("error", err))
		return nil, &ParseError{Source: source, Cause: err}
	}

	delim, _ := utf8.DecodeRuneInString(p.cfg.Delimiter)
	cr := csv.NewReader(bytes.NewReader(text))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		records []core.Record
		rowErrs []*RowError
		// physical lines consumed by the csv reader so far
		lastLine int
		offset   int64
	)

	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var line int
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				line = csvErr.Line
			}
			p.logger.Error("Structural error while reading input",
				slog.String("source", source), slog.Int("line", line), slog.Any("error", err))
			return nil, &ParseError{Source: source, Cause: err}
		}

		line, _ := cr.FieldPos(0)
		rowErrs = append(rowErrs, p.emptyRows(lastLine+1, line)...)
		end := cr.InputOffset()
		lastLine += bytes.Count(text[offset:end], []byte("\n"))
		offset = end

		rec, err := p.ParseRow(line, fields)
		if err != nil {
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				rowErr = &RowError{Line: line, Column: -1, Reason: err.Error()}
			}
			rowErrs = append(rowErrs, rowErr)
			continue
		}
		records = append(records, rec)
	}

	if lastLine < physicalLines(text) && int(offset) == len(text) {
		// last record without a final line break
		lastLine++
	}
	rowErrs = append(rowErrs, p.emptyRows(lastLine+1, physicalLines(text)+1)...)

	if len(rowErrs) > 0 {
		perr := newRowsError(source, rowErrs)
		p.logger.Error("Input contains invalid rows",
			slog.String("source", source), slog.Int("invalid_rows", len(rowErrs)))
		return nil, perr
	}

	p.logger.Info("Parsed input", slog.String("source", source), slog.Int("records", len(records)))
	return records, nil
}

// ParseRow validates and converts the fields of one row. line is only used
// for error reporting. Any failure is returned as *RowError.
func (p *Parser) ParseRow(line int, fields []string) (core.Record, error) {
	cfg := p.cfg

	if len(fields) < cfg.DataStartColumn {
		return p.reject(line, -1, nil, "expected at least %d fields, got %d", cfg.DataStartColumn, len(fields))
	}

	// normalize decimal separator in every field
	if cfg.Decimal != "." {
		normalized := make([]string, len(fields))
		for i, f := range fields {
			normalized[i] = strings.ReplaceAll(f, cfg.Decimal, ".")
		}
		fields = normalized
	}

	elutionTime, err := numberAt(fields, cfg.ElutionTimeColumn)
	if err != nil {
		return p.reject(line, cfg.ElutionTimeColumn, err, "invalid elution time")
	}
	declared, err := numberAt(fields, cfg.MassCountColumn)
	if err != nil {
		return p.reject(line, cfg.MassCountColumn, err, "invalid number of masses")
	}
	if declared == 0 {
		p.logger.Warn("No masses for elution time",
			slog.Float64("elution_time", elutionTime), slog.Int("line", line))
		return core.Record{}, &RowError{Line: line, Column: cfg.MassCountColumn, Reason: "no masses declared"}
	}

	rec := core.Record{ElutionTime: elutionTime}
	if cfg.DataStartColumn < len(fields) {
		rec.MassCounts = make([]core.MassCount, 0, len(fields)-cfg.DataStartColumn)
	}
	for col := cfg.DataStartColumn; col < len(fields); col++ {
		mc, err := parseMassCount(fields[col])
		if err != nil {
			return p.reject(line, col, err, "invalid mass/count field %q", fields[col])
		}
		rec.MassCounts = append(rec.MassCounts, mc)
	}

	if err := rec.Validate(); err != nil {
		return p.reject(line, -1, err, "invalid record")
	}

	return rec, nil
}

func (p *Parser) reject(line, col int, cause error, format string, args ...interface{}) (core.Record, error) {
	rowErr := &RowError{
		Line:   line,
		Column: col,
		Reason: fmt.Sprintf(format, args...),
		Err:    cause,
	}
	p.logger.Info("Wrong format while parsing row", slog.Int("line", line), slog.String("reason", rowErr.Error()))
	return core.Record{}, rowErr
}

// emptyRows rejects the lines in [from, to). The csv reader skips empty
// lines, but an empty line is still a row without any field.
func (p *Parser) emptyRows(from, to int) []*RowError {
	var rowErrs []*RowError
	for line := from; line < to; line++ {
		_, err := p.ParseRow(line, nil)
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			rowErrs = append(rowErrs, rowErr)
		}
	}
	return rowErrs
}

// physicalLines counts the lines of text. A final line break does not
// start another line.
func physicalLines(text []byte) int {
	if len(text) == 0 {
		return 0
	}
	n := bytes.Count(text, []byte("\n"))
	if text[len(text)-1] != '\n' {
		n++
	}
	return n
}

// parseMassCount parses a "<mass> <count>" field. Tokens are separated by a
// single space; tokens after the second are ignored.
func parseMassCount(field string) (core.MassCount, error) {
	parts := strings.Split(field, " ")
	if len(parts) < 2 {
		return core.MassCount{}, fmt.Errorf("expected \"<mass> <count>\"")
	}

	mass, err := parseNumber(parts[0])
	if err != nil {
		return core.MassCount{}, fmt.Errorf("invalid mass: %w", err)
	}
	count, err := parseNumber(parts[1])
	if err != nil {
		return core.MassCount{}, fmt.Errorf("invalid count: %w", err)
	}

	return core.MassCount{Mass: mass, Count: count}, nil
}

func numberAt(fields []string, col int) (float64, error) {
	if col >= len(fields) {
		return 0, fmt.Errorf("column %d missing", col)
	}
	return parseNumber(fields[col])
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// decode converts raw bytes in the configured encoding to UTF-8. Invalid
// UTF-8 input is an error rather than being replaced.
func (p *Parser) decode(raw []byte) ([]byte, error) {
	if p.isUTF8 {
		if !utf8.Valid(raw) {
			off := firstInvalidUTF8(raw)
			return nil, fmt.Errorf("invalid utf-8 at line %d (byte offset %d)", bytes.Count(raw[:off], []byte{'\n'})+1, off)
		}
		return raw, nil
	}

	text, err := p.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s input: %w", p.cfg.Encoding, err)
	}
	return text, nil
}

func firstInvalidUTF8(b []byte) int {
	for off := 0; off < len(b); {
		r, size := utf8.DecodeRune(b[off:])
		if r == utf8.RuneError && size == 1 {
			return off
		}
		off += size
	}
	return len(b)
}

// lookupEncoding resolves WHATWG labels first and IANA names second.
func lookupEncoding(name string) (encoding.Encoding, error) {
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}
