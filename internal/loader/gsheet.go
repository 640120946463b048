package loader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"pisopatrol/dashboard/internal/dasherror"
	"pisopatrol/dashboard/internal/logging"
)

// sheetIDPattern extracts the spreadsheet ID from the /d/<id>/ path segment
// of a share URL.
var sheetIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)

// SheetURL resolves a public spreadsheet share URL and sheet name into the
// CSV export endpoint for that sheet.
func SheetURL(rawURL, sheetName string) (string, error) {
	match := sheetIDPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", fmt.Errorf("invalid spreadsheet URL, could not find sheet ID: %s", rawURL)
	}
	sheetID := match[1]

	return fmt.Sprintf(
		"https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
		sheetID, url.QueryEscape(sheetName),
	), nil
}

// FetchSheet downloads a public spreadsheet's named sheet as CSV and parses
// it into a RawTable. The sheet must be link-viewable; a failed fetch leaves
// any previously ingested table untouched (the caller never sees a partial
// result).
func (l *Loader) FetchSheet(ctx context.Context, rawURL, sheetName string, timeout time.Duration) (*RawTable, error) {
	exportURL, err := SheetURL(rawURL, sheetName)
	if err != nil {
		return nil, &dasherror.IngestError{Source: rawURL, Err: err}
	}

	l.log.Info("Fetching spreadsheet",
		logging.F("sheet", sheetName),
		logging.F("url", exportURL))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, &dasherror.IngestError{Source: rawURL, Err: err}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &dasherror.IngestError{Source: rawURL, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			l.log.WithError(err).Warn("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &dasherror.IngestError{
			Source: rawURL,
			Err:    fmt.Errorf("unexpected status %s fetching sheet %q", resp.Status, sheetName),
		}
	}

	table, err := l.LoadCSVReader(resp.Body)
	if err != nil {
		return nil, &dasherror.IngestError{Source: rawURL, Err: err}
	}

	l.log.Info("Successfully fetched spreadsheet", logging.F("rows", len(table.Rows)))
	return table, nil
}
