package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/jszwec/csvutil"

	"github.com/smukkama/era5-sync/internal/planner"
)

// Row is one month of one region and variable
type Row struct {
	Region     string `csv:"region"`
	Variable   string `csv:"variable"`
	Month      string `csv:"month"`
	Expected   int    `csv:"expected"`
	Observed   int    `csv:"observed"`
	Incomplete bool   `csv:"incomplete"`
}

// Rows flattens coverage tables in input order
func Rows(coverage []planner.VariableCoverage) []Row {
	var rows []Row
	for _, vc := range coverage {
		for _, m := range vc.Table {
			rows = append(rows, Row{
				Region:     vc.Region,
				Variable:   vc.Variable,
				Month:      m.Month.String(),
				Expected:   m.Expected,
				Observed:   m.Observed,
				Incomplete: m.Incomplete(),
			})
		}
	}
	return rows
}

// Write writes the coverage report as CSV with a header row
func Write(w io.Writer, coverage []planner.VariableCoverage) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	rows := Rows(coverage)
	var err error
	if len(rows) == 0 {
		err = enc.EncodeHeader(Row{})
	} else {
		err = enc.Encode(rows)
	}
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the coverage report to path
func WriteFile(path string, coverage []planner.VariableCoverage) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	if err := Write(f, coverage); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
