package oracle

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/crillab/satswarm/cnf"
)

// ResultRow is one benchmark's worth of comparison data, written as a
// single CSV row by ResultsWriter (spec §11's supplemented
// --results_csv flag; original_source/src/main.rs wrote an equivalent
// csv::Writer row per TestResult).
type ResultRow struct {
	File          string
	Topology      string
	Bandwidth     int
	ClauseWidth   int
	SimVerdict    cnf.Status
	OracleVerdict cnf.Status
	Agreement     Agreement
	Cycles        int
	BusyCycles    int
	IdleCycles    int
}

// ResultsWriter appends ResultRow records to a CSV file, writing the header
// exactly once.
type ResultsWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

var resultsHeader = []string{
	"file", "topology", "bandwidth", "clause_width",
	"sim_verdict", "oracle_verdict", "agreement",
	"cycles", "busy_cycles", "idle_cycles",
}

// NewResultsWriter wraps an io.Writer (typically an *os.File opened by the
// caller) as a ResultsWriter.
func NewResultsWriter(w io.Writer) *ResultsWriter {
	return &ResultsWriter{w: csv.NewWriter(w)}
}

// Write appends one row, writing the header first if this is the first call.
func (rw *ResultsWriter) Write(row ResultRow) error {
	if !rw.wroteHeader {
		if err := rw.w.Write(resultsHeader); err != nil {
			return fmt.Errorf("oracle: write csv header: %w", err)
		}
		rw.wroteHeader = true
	}
	record := []string{
		row.File,
		row.Topology,
		fmt.Sprintf("%d", row.Bandwidth),
		fmt.Sprintf("%d", row.ClauseWidth),
		row.SimVerdict.String(),
		row.OracleVerdict.String(),
		row.Agreement.String(),
		fmt.Sprintf("%d", row.Cycles),
		fmt.Sprintf("%d", row.BusyCycles),
		fmt.Sprintf("%d", row.IdleCycles),
	}
	if err := rw.w.Write(record); err != nil {
		return fmt.Errorf("oracle: write csv row: %w", err)
	}
	return nil
}

// Flush flushes any buffered rows and returns the first error, if any,
// encountered while writing.
func (rw *ResultsWriter) Flush() error {
	rw.w.Flush()
	return rw.w.Error()
}
