// Package sqlite provides SQLite database export of analysis runs
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
	"github.com/ChrisMcGann/PeakExplorer/pkg/pipeline"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// Date format for RunTable and HeaderTable (ISO 8601)
	creationDateFormat = "2006-01-02 15:04:05"
	// Schema version written to HeaderTable
	schemaVersion = 1
)

// Writer handles writing analysis runs to SQLite database files
type Writer struct {
	db         *sql.DB
	outputPath string
	closed     bool
}

// NewWriter creates a new SQLite writer. Existing databases are appended to.
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId TEXT PRIMARY KEY,
		SourceFile TEXT,
		CreationDate TEXT,
		RecordCount INTEGER,
		Delimiter TEXT,
		DecimalPoint TEXT,
		Encoding TEXT,
		Mass DOUBLE,
		MassInterval DOUBLE,
		Time DOUBLE,
		TimeInterval DOUBLE,
		Lookahead INTEGER,
		Delta DOUBLE
	);

	CREATE TABLE IF NOT EXISTS RecordTable (
		RecordId INTEGER PRIMARY KEY,
		RunId TEXT REFERENCES RunTable(RunId),
		ElutionTime DOUBLE,
		NumberOfMasses INTEGER,
		blobMass BLOB,
		blobCount BLOB
	);

	CREATE TABLE IF NOT EXISTS ChromatogramTable (
		RunId TEXT REFERENCES RunTable(RunId),
		ElutionTime DOUBLE,
		TotalCounts DOUBLE,
		TotalMasses DOUBLE,
		NumberOfMasses INTEGER,
		MaxMass DOUBLE,
		MinMass DOUBLE,
		MassTrace DOUBLE
	);

	CREATE TABLE IF NOT EXISTS MassSpectrumTable (
		RunId TEXT REFERENCES RunTable(RunId),
		IonMass DOUBLE,
		TotalCounts DOUBLE,
		TimeTrace DOUBLE
	);

	CREATE TABLE IF NOT EXISTS PeakTable (
		RunId TEXT REFERENCES RunTable(RunId),
		Kind TEXT,
		Position DOUBLE,
		Value DOUBLE
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		LastModifiedDate TEXT,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// WriteResult writes one analysis run together with the records it was
// computed from and returns the generated run id. Everything is written in
// a single transaction.
func (w *Writer) WriteResult(res *pipeline.Result, records []core.Record) (string, error) {
	if w.closed {
		return "", fmt.Errorf("writer for %s is closed", w.outputPath)
	}

	tx, err := w.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}

	runID := uuid.New().String()
	if err := writeRun(tx, runID, res, records); err != nil {
		tx.Rollback()
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

func writeRun(tx *sql.Tx, runID string, res *pipeline.Result, records []core.Record) error {
	opts := res.Options

	_, err := tx.Exec(`
		INSERT INTO RunTable (
			RunId, SourceFile, CreationDate, RecordCount, Delimiter, DecimalPoint,
			Encoding, Mass, MassInterval, Time, TimeInterval, Lookahead, Delta
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		res.Source,
		time.Now().Format(creationDateFormat),
		res.Records,
		opts.Parser.Delimiter,
		opts.Parser.Decimal,
		opts.Parser.Encoding,
		traceParam(res.MassTrace != nil, opts.Mass),
		traceParam(res.MassTrace != nil, opts.MassInterval),
		traceParam(res.TimeTrace != nil, opts.Time),
		traceParam(res.TimeTrace != nil, opts.TimeInterval),
		opts.Lookahead,
		opts.Delta,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	recordStmt, err := tx.Prepare(`
		INSERT INTO RecordTable (RunId, ElutionTime, NumberOfMasses, blobMass, blobCount)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record statement: %w", err)
	}
	defer recordStmt.Close()

	for i := range records {
		rec := &records[i]
		massBlob, countBlob := encodeMassCounts(rec.MassCounts)
		if _, err := recordStmt.Exec(runID, rec.ElutionTime, rec.Len(), massBlob, countBlob); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.Name(), err)
		}
	}

	chromStmt, err := tx.Prepare(`
		INSERT INTO ChromatogramTable (
			RunId, ElutionTime, TotalCounts, TotalMasses, NumberOfMasses, MaxMass, MinMass, MassTrace
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare chromatogram statement: %w", err)
	}
	defer chromStmt.Close()

	s := &res.Summary
	for i, row := range res.ChromatogramRows() {
		_, err := chromStmt.Exec(
			runID,
			row.ElutionTime,
			row.Counts,
			s.TotalMassesPerTime[i],
			s.NumberOfMassesPerTime[i],
			s.MaxMassPerTime[i],
			s.MinMassPerTime[i],
			traceParam(res.MassTrace != nil, row.Trace),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chromatogram row %d: %w", i, err)
		}
	}

	spectrumStmt, err := tx.Prepare(`
		INSERT INTO MassSpectrumTable (RunId, IonMass, TotalCounts, TimeTrace)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare mass spectrum statement: %w", err)
	}
	defer spectrumStmt.Close()

	for _, row := range res.SpectrumRows() {
		if _, err := spectrumStmt.Exec(runID, row.Mass, row.Counts, traceParam(res.TimeTrace != nil, row.Trace)); err != nil {
			return fmt.Errorf("failed to insert mass %g: %w", row.Mass, err)
		}
	}

	peakStmt, err := tx.Prepare(`INSERT INTO PeakTable (RunId, Kind, Position, Value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare peak statement: %w", err)
	}
	defer peakStmt.Close()

	for _, p := range res.Peaks.Maxima {
		if _, err := peakStmt.Exec(runID, "max", p.Position, p.Value); err != nil {
			return fmt.Errorf("failed to insert peak: %w", err)
		}
	}
	for _, p := range res.Peaks.Minima {
		if _, err := peakStmt.Exec(runID, "min", p.Position, p.Value); err != nil {
			return fmt.Errorf("failed to insert peak: %w", err)
		}
	}

	return nil
}

// traceParam stores NULL for traces that were not computed.
func traceParam(present bool, v float64) interface{} {
	if !present {
		return nil
	}
	return v
}

// encodeMassCounts encodes masses and counts as little-endian float64 blobs
func encodeMassCounts(pairs []core.MassCount) (masses, counts []byte) {
	masses = make([]byte, len(pairs)*8)
	counts = make([]byte, len(pairs)*8)
	for i, mc := range pairs {
		binary.LittleEndian.PutUint64(masses[i*8:], math.Float64bits(mc.Mass))
		binary.LittleEndian.PutUint64(counts[i*8:], math.Float64bits(mc.Count))
	}
	return masses, counts
}

// Finalize updates the single HeaderTable row and closes the database
func (w *Writer) Finalize() error {
	if w.closed {
		return nil
	}

	if err := w.writeHeader(); err != nil {
		w.Close()
		return err
	}

	return w.Close()
}

// writeHeader creates the header row on first use and refreshes it afterwards.
// The description counts every run stored in the database.
func (w *Writer) writeHeader() error {
	var runs, headers int
	if err := w.db.QueryRow(`SELECT COUNT(*) FROM RunTable`).Scan(&runs); err != nil {
		return fmt.Errorf("failed to count runs: %w", err)
	}
	if err := w.db.QueryRow(`SELECT COUNT(*) FROM HeaderTable`).Scan(&headers); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	now := time.Now().Format(creationDateFormat)
	description := fmt.Sprintf("%d analysis runs", runs)

	var err error
	if headers == 0 {
		_, err = w.db.Exec(`
			INSERT INTO HeaderTable (version, CreationDate, LastModifiedDate, Description)
			VALUES (?, ?, ?, ?)
		`, schemaVersion, now, now, description)
	} else {
		_, err = w.db.Exec(`
			UPDATE HeaderTable SET version = ?, LastModifiedDate = ?, Description = ?
		`, schemaVersion, now, description)
	}
	if err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// Close closes the database connection without touching the header
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
