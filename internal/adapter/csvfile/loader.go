package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/crash-map-service/internal/domain"
)

// ErrMissingColumn is wrapped by a LoadError when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// LoadError reports a dataset that could not be loaded at all.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return "load dataset: " + e.Err.Error()
	}
	return fmt.Sprintf("load dataset %s: %s", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader reads a crash dataset from a fixed path.
// It implements pipeline.Loader.
type Loader struct {
	path   string
	logger *slog.Logger
}

// NewLoader creates a Loader for the CSV file at path.
func NewLoader(path string, logger *slog.Logger) *Loader {
	return &Loader{path: path, logger: logger}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.path }

// LoadDataset reads and parses the configured file.
func (l *Loader) LoadDataset(ctx context.Context) (domain.Dataset, domain.LoadStats, error) {
	return Load(ctx, l.path, l.logger)
}

// Load opens the file at path and parses it with Read.
func Load(ctx context.Context, path string, logger *slog.Logger) (domain.Dataset, domain.LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.LoadStats{}, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	d, stats, err := Read(ctx, f, logger)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, domain.LoadStats{}, err
	}
	return d, stats, nil
}

// Read parses a crash CSV with a header row. Rows whose coordinates or
// fatality count cannot be used are skipped and logged; structural problems
// (malformed CSV, empty input, missing columns) fail the whole read.
func Read(ctx context.Context, r io.Reader, logger *slog.Logger) (domain.Dataset, domain.LoadStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.LoadStats{}, &LoadError{Err: errors.New("empty file, no header row")}
	}
	if err != nil {
		return nil, domain.LoadStats{}, &LoadError{Err: fmt.Errorf("read header: %w", err)}
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, domain.LoadStats{}, &LoadError{Err: err}
	}

	var stats domain.LoadStats
	d := make(domain.Dataset, 0)

	for {
		if err := ctx.Err(); err != nil {
			return nil, domain.LoadStats{}, &LoadError{Err: err}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.LoadStats{}, &LoadError{Err: fmt.Errorf("read row: %w", err)}
		}
		stats.Rows++

		line, _ := reader.FieldPos(0)
		rec, err := parseRow(row, header, cols)
		if err != nil {
			stats.Rejected++
			logger.Warn("rejecting crash record", "line", line, "error", err)
			continue
		}
		d = append(d, rec)
		stats.Accepted++
	}

	return d, stats, nil
}

// columns maps each required field to its header index.
type columns struct {
	lat, lng, fatalities, nature, crashType, severity, postCode int
	known                                                      map[int]bool
}

func indexColumns(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := idx[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	c := columns{
		lat:        lookup(domain.ColumnLatitude),
		lng:        lookup(domain.ColumnLongitude),
		fatalities: lookup(domain.ColumnFatalities),
		nature:     lookup(domain.ColumnNature),
		crashType:  lookup(domain.ColumnType),
		severity:   lookup(domain.ColumnSeverity),
		postCode:   lookup(domain.ColumnPostCode),
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	c.known = map[int]bool{
		c.lat: true, c.lng: true, c.fatalities: true, c.nature: true,
		c.crashType: true, c.severity: true, c.postCode: true,
	}
	return c, nil
}

func parseRow(row, header []string, c columns) (domain.CrashRecord, error) {
	lat, err := parseCoordinate(field(row, c.lat), 90)
	if err != nil {
		return domain.CrashRecord{}, fmt.Errorf("latitude: %w", err)
	}
	lng, err := parseCoordinate(field(row, c.lng), 180)
	if err != nil {
		return domain.CrashRecord{}, fmt.Errorf("longitude: %w", err)
	}
	fatalities, err := parseCount(field(row, c.fatalities))
	if err != nil {
		return domain.CrashRecord{}, fmt.Errorf("fatality count: %w", err)
	}

	rec := domain.CrashRecord{
		Latitude:   lat,
		Longitude:  lng,
		Fatalities: fatalities,
		Nature:     strings.TrimSpace(field(row, c.nature)),
		Type:       strings.TrimSpace(field(row, c.crashType)),
		Severity:   field(row, c.severity), // verbatim, matched exactly by FilterFatal
		PostCode:   field(row, c.postCode),
	}

	for i, name := range header {
		if c.known[i] || i >= len(row) {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string, len(header)-len(c.known))
		}
		rec.Extra[strings.TrimSpace(name)] = row[i]
	}
	return rec, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseCoordinate parses a decimal-degree value and checks it lies within ±limit.
func parseCoordinate(s string, limit float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	if math.IsNaN(v) || v < -limit || v > limit {
		return 0, fmt.Errorf("value %q out of range", s)
	}
	return v, nil
}

// parseCount parses a non-negative integer; blank means zero. Values written
// as floats ("2.0") are accepted when they are whole numbers.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative value %q", s)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative value %q", s)
	}
	return int(f), nil
}
