package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SeverityFatal is the severity value that marks a fatal crash.
const SeverityFatal = "Fatal"

// Source column names in locations.csv.
const (
	ColumnLatitude   = "Crash_Latitude_GDA94"
	ColumnLongitude  = "Crash_Longitude_GDA94"
	ColumnFatalities = "Count_Casualty_Fatality"
	ColumnNature     = "Crash_Nature"
	ColumnType       = "Crash_Type"
	ColumnSeverity   = "Crash_Severity"
	ColumnPostCode   = "Loc_Post_Code"
)

// RequiredColumns lists the header columns a dataset must carry.
var RequiredColumns = []string{
	ColumnLatitude,
	ColumnLongitude,
	ColumnFatalities,
	ColumnNature,
	ColumnType,
	ColumnSeverity,
	ColumnPostCode,
}

// CrashRecord is one row of the crash dataset.
type CrashRecord struct {
	Latitude   float64           `json:"latitude"`
	Longitude  float64           `json:"longitude"`
	Fatalities int               `json:"fatalities"`
	Nature     string            `json:"nature"`
	Type       string            `json:"type"`
	Severity   string            `json:"severity"`
	PostCode   string            `json:"post_code,omitempty"` // verbatim text, never parsed
	Extra      map[string]string `json:"extra,omitempty"`
}

// IsFatal reports whether the record's severity is exactly SeverityFatal.
func (r CrashRecord) IsFatal() bool {
	return r.Severity == SeverityFatal
}

// Dataset is an ordered collection of crash records in source file order.
type Dataset []CrashRecord

// Coordinates returns the [lat, lng] pair of every record, in order.
func (d Dataset) Coordinates() [][2]float64 {
	out := make([][2]float64, len(d))
	for i, r := range d {
		out[i] = [2]float64{r.Latitude, r.Longitude}
	}
	return out
}

// RecordID produces a deterministic ID for a crash record.
func RecordID(r CrashRecord) string {
	input := fmt.Sprintf("%.6f|%.6f|%s|%s|%s", r.Latitude, r.Longitude, r.Nature, r.Type, r.PostCode)
	hash := sha256.Sum256([]byte(input))
	return "crash-" + hex.EncodeToString(hash[:8])
}

// LoadStats summarizes how many source rows made it into a Dataset.
type LoadStats struct {
	Rows     int // data rows read, excluding the header
	Accepted int
	Rejected int
}
