package loader

import (
	"bytes"
	_ "embed"

	"pisopatrol/dashboard/internal/dasherror"
)

//go:embed sampledata/sample.csv
var sampleCSV []byte

// LoadSample returns the bundled sample dataset so the dashboard can be
// explored without any user data.
func (l *Loader) LoadSample() (*RawTable, error) {
	// The bundled file is always comma-delimited, regardless of the
	// configured delimiter for user uploads.
	sample := &Loader{delimiter: ',', log: l.log}
	table, err := sample.LoadCSVReader(bytes.NewReader(sampleCSV))
	if err != nil {
		return nil, &dasherror.IngestError{Source: "sample data", Err: err}
	}
	return table, nil
}
