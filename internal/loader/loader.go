// Package loader ingests raw tabular data from the supported sources:
// delimited files, public spreadsheet URLs, and the bundled sample dataset.
// It produces untyped RawTable values; all coercion happens downstream in
// the cleaner.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"pisopatrol/dashboard/internal/dasherror"
	"pisopatrol/dashboard/internal/logging"
)

// RawTable is an uninterpreted table with a header row. Cell values are kept
// verbatim until the cleaner coerces them.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Empty reports whether the table has no data rows.
func (t *RawTable) Empty() bool {
	return len(t.Rows) == 0
}

// Cell returns the value of the named column in the given row, and whether
// the column exists. Short rows read as empty cells.
func (t *RawTable) Cell(row int, header string) (string, bool) {
	for i, h := range t.Headers {
		if h == header {
			if i < len(t.Rows[row]) {
				return t.Rows[row][i], true
			}
			return "", true
		}
	}
	return "", false
}

// RowMap returns the given row as a header-keyed map of verbatim values,
// used to surface rejected rows in their original form.
func (t *RawTable) RowMap(row int) map[string]string {
	m := make(map[string]string, len(t.Headers))
	for i, h := range t.Headers {
		if i < len(t.Rows[row]) {
			m[h] = t.Rows[row][i]
		} else {
			m[h] = ""
		}
	}
	return m
}

// Loader reads raw tables from files and readers.
type Loader struct {
	delimiter rune
	log       logging.Logger
}

// New creates a Loader with the given CSV delimiter.
func New(delimiter rune, log logging.Logger) *Loader {
	if log == nil {
		log = logging.GetLogger()
	}
	return &Loader{delimiter: delimiter, log: log}
}

// LoadCSVFile reads a delimited file with a header row into a RawTable.
func (l *Loader) LoadCSVFile(path string) (*RawTable, error) {
	l.log.Info("Reading CSV file", logging.F("file", path))

	file, err := os.Open(path)
	if err != nil {
		return nil, &dasherror.IngestError{Source: path, Err: err}
	}
	defer func() {
		if err := file.Close(); err != nil {
			l.log.WithError(err).Warn("Failed to close file")
		}
	}()

	table, err := l.LoadCSVReader(file)
	if err != nil {
		return nil, &dasherror.IngestError{Source: path, Err: err}
	}

	l.log.Info("Successfully read CSV data", logging.F("rows", len(table.Rows)))
	return table, nil
}

// LoadCSVReader reads delimited data with a header row from r.
func (l *Loader) LoadCSVReader(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = l.delimiter
	reader.FieldsPerRecord = -1 // ragged rows are handled per cell
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row found")
	}

	return &RawTable{
		Headers: records[0],
		Rows:    records[1:],
	}, nil
}
