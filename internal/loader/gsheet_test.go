package loader

import (
	"context"
	"testing"
	"time"

	"pisopatrol/dashboard/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetURL(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		sheet   string
		want    string
		wantErr bool
	}{
		{
			name:   "share url",
			rawURL: "https://docs.google.com/spreadsheets/d/1AbC_dEf-123/edit#gid=0",
			sheet:  "Transactions",
			want:   "https://docs.google.com/spreadsheets/d/1AbC_dEf-123/gviz/tq?tqx=out:csv&sheet=Transactions",
		},
		{
			name:   "sheet name with spaces",
			rawURL: "https://docs.google.com/spreadsheets/d/xyz/edit",
			sheet:  "My Budget 2025",
			want:   "https://docs.google.com/spreadsheets/d/xyz/gviz/tq?tqx=out:csv&sheet=My+Budget+2025",
		},
		{
			name:    "no sheet id",
			rawURL:  "https://example.com/not-a-sheet",
			sheet:   "Sheet1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SheetURL(tt.rawURL, tt.sheet)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchSheetInvalidURL(t *testing.T) {
	l := New(',', logging.NewMockLogger())
	_, err := l.FetchSheet(context.Background(), "https://example.com/plain", "Sheet1", time.Second)
	assert.Error(t, err)
}
