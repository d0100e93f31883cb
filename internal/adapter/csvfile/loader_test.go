package csvfile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/crash-map-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "Crash_Severity,Crash_Nature,Crash_Type,Crash_Longitude_GDA94,Crash_Latitude_GDA94,Loc_Post_Code,Count_Casualty_Fatality"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readString(t *testing.T, s string) (domain.Dataset, domain.LoadStats, error) {
	t.Helper()
	return Read(context.Background(), strings.NewReader(s), discardLogger())
}

func TestLoad_Fixture(t *testing.T) {
	d, stats, err := Load(context.Background(), filepath.Join("testdata", "locations.csv"), discardLogger())
	require.NoError(t, err)

	assert.Equal(t, domain.LoadStats{Rows: 5, Accepted: 5, Rejected: 0}, stats)
	require.Len(t, d, 5)

	first := d[0]
	assert.Equal(t, -26.5, first.Latitude)
	assert.Equal(t, 153.1, first.Longitude)
	assert.Equal(t, 2, first.Fatalities)
	assert.Equal(t, "Head-on", first.Nature)
	assert.Equal(t, "Multi-Vehicle", first.Type)
	assert.Equal(t, domain.SeverityFatal, first.Severity)
	assert.Equal(t, "4556", first.PostCode)
	assert.Equal(t, "Buderim", first.Extra["Loc_Suburb"])
	assert.Equal(t, "1", first.Extra["Count_Casualty_Hospitalised"])
	assert.NotContains(t, first.Extra, domain.ColumnLatitude)
}

func TestLoad_PostCodeKeepsLeadingZero(t *testing.T) {
	d, _, err := Load(context.Background(), filepath.Join("testdata", "locations.csv"), discardLogger())
	require.NoError(t, err)

	require.Len(t, d, 5)
	assert.Equal(t, "0800", d[4].PostCode)
}

func TestLoad_FixtureFiltersToThreeFatal(t *testing.T) {
	d, _, err := Load(context.Background(), filepath.Join("testdata", "locations.csv"), discardLogger())
	require.NoError(t, err)

	fatal := domain.FilterFatal(d)

	require.Len(t, fatal, 3)
	assert.Equal(t, "Head-on", fatal[0].Nature)
	assert.Equal(t, "Hit pedestrian", fatal[1].Nature)
	assert.Equal(t, "Overturned", fatal[2].Nature)
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")

	_, _, err := Load(context.Background(), path, discardLogger())
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, path, le.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoader_UsesConfiguredPath(t *testing.T) {
	l := NewLoader(filepath.Join("testdata", "locations.csv"), discardLogger())

	d, stats, err := l.LoadDataset(context.Background())
	require.NoError(t, err)
	assert.Len(t, d, 5)
	assert.Equal(t, 5, stats.Accepted)
	assert.Equal(t, filepath.Join("testdata", "locations.csv"), l.Path())
}

func TestRead_MissingRequiredColumn(t *testing.T) {
	_, _, err := readString(t, "Crash_Severity,Crash_Nature\nFatal,Head-on\n")
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), domain.ColumnLatitude)
	assert.Contains(t, err.Error(), domain.ColumnPostCode)
}

func TestRead_EmptyInput(t *testing.T) {
	_, _, err := readString(t, "")
	require.Error(t, err)

	var le *LoadError
	assert.ErrorAs(t, err, &le)
}

func TestRead_MalformedCSV(t *testing.T) {
	_, _, err := readString(t, testHeader+"\nFatal,\"unterminated,x,153.1,-26.5,4556,1\n")
	require.Error(t, err)

	var le *LoadError
	assert.ErrorAs(t, err, &le)
}

func TestRead_HeaderOnly(t *testing.T) {
	d, stats, err := readString(t, testHeader+"\n")
	require.NoError(t, err)
	assert.NotNil(t, d)
	assert.Empty(t, d)
	assert.Equal(t, domain.LoadStats{}, stats)
}

func TestRead_RejectsBadCoordinates(t *testing.T) {
	input := testHeader + "\n" +
		"Fatal,Head-on,Multi-Vehicle,153.1,-26.5,4556,1\n" +
		"Fatal,Angle,Multi-Vehicle,,-26.5,4556,1\n" +
		"Fatal,Angle,Multi-Vehicle,153.1,abc,4556,1\n" +
		"Fatal,Angle,Multi-Vehicle,153.1,-95,4556,1\n" +
		"Fatal,Angle,Multi-Vehicle,200,-26.5,4556,1\n" +
		"Fatal,Angle,Multi-Vehicle,NaN,-26.5,4556,1\n"

	d, stats, err := readString(t, input)
	require.NoError(t, err)

	require.Len(t, d, 1)
	assert.Equal(t, "Head-on", d[0].Nature)
	assert.Equal(t, domain.LoadStats{Rows: 6, Accepted: 1, Rejected: 5}, stats)
}

func TestRead_FatalityCount(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int
		wantRej bool
	}{
		{name: "integer", value: "2", want: 2},
		{name: "blank is zero", value: "", want: 0},
		{name: "whole float", value: "3.0", want: 3},
		{name: "fractional", value: "1.5", wantRej: true},
		{name: "negative", value: "-1", wantRej: true},
		{name: "text", value: "two", wantRej: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, stats, err := readString(t, testHeader+"\nFatal,Head-on,Multi-Vehicle,153.1,-26.5,4556,"+tt.value+"\n")
			require.NoError(t, err)

			if tt.wantRej {
				assert.Empty(t, d)
				assert.Equal(t, 1, stats.Rejected)
				return
			}
			require.Len(t, d, 1)
			assert.Equal(t, tt.want, d[0].Fatalities)
		})
	}
}

func TestRead_PostCodeIsVerbatimText(t *testing.T) {
	input := testHeader + "\n" +
		"Fatal,Head-on,Multi-Vehicle,153.1,-26.5,0870,1\n" +
		"Fatal,Head-on,Multi-Vehicle,153.1,-26.5,4000.0,1\n" +
		"Fatal,Head-on,Multi-Vehicle,153.1,-26.5,UNKNOWN,1\n"

	d, _, err := readString(t, input)
	require.NoError(t, err)

	require.Len(t, d, 3)
	assert.Equal(t, "0870", d[0].PostCode)
	assert.Equal(t, "4000.0", d[1].PostCode)
	assert.Equal(t, "UNKNOWN", d[2].PostCode)
}

func TestRead_ByteOrderMarkHeader(t *testing.T) {
	d, _, err := readString(t, "\ufeff"+testHeader+"\nFatal,Head-on,Multi-Vehicle,153.1,-26.5,4556,1\n")
	require.NoError(t, err)
	assert.Len(t, d, 1)
}

func TestRead_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Read(ctx, strings.NewReader(testHeader+"\nFatal,Head-on,Multi-Vehicle,153.1,-26.5,4556,1\n"), discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRead_SeverityKeptVerbatim(t *testing.T) {
	d, stats, err := readString(t, testHeader+"\n"+
		"Fatal ,Head-on,Multi-Vehicle,153.1,-26.5,4556,1\n"+
		" Fatal,Angle,Multi-Vehicle,153.0,-27.4,4000,1\n"+
		"Fatal,Overturned,Single Vehicle,152.9,-27.1,4500,1\n")
	require.NoError(t, err)
	require.Equal(t, 3, stats.Accepted)

	assert.Equal(t, "Fatal ", d[0].Severity)
	assert.Equal(t, " Fatal", d[1].Severity)

	fatal := domain.FilterFatal(d)
	require.Len(t, fatal, 1)
	assert.Equal(t, "Overturned", fatal[0].Nature)
}
