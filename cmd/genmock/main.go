// Command genmock writes a synthetic crash locations dataset in the source
// column layout, scattered around the default map center. It is used to
// produce local fixtures without downloading the published dataset.
//
// Usage:
//
//	go run ./cmd/genmock -out locations.csv -rows 5000 -fatal-ratio 0.02 -seed 42
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/crash-map-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Approximate bounds of south-east Queensland.
const (
	minLat, maxLat = -28.2, -24.8
	minLng, maxLng = 151.8, 153.6
)

var header = []string{
	"Crash_Ref_Number",
	domain.ColumnSeverity,
	"Crash_Year",
	"Crash_Month",
	"Crash_Day_Of_Week",
	"Crash_Hour",
	domain.ColumnNature,
	domain.ColumnType,
	domain.ColumnLongitude,
	domain.ColumnLatitude,
	domain.ColumnPostCode,
	domain.ColumnFatalities,
	"Count_Casualty_Hospitalised",
}

var (
	natures    = []string{"Head-on", "Rear-end", "Angle", "Hit pedestrian", "Overturned", "Hit object", "Sideswipe", "Fall from vehicle"}
	crashTypes = []string{"Multi-Vehicle", "Single Vehicle", "Hit pedestrian", "Other"}
	nonFatal   = []string{"Hospitalisation", "Medical treatment", "Minor injury", "Property damage only"}
	postCodes  = []string{"4000", "4101", "4217", "4350", "4551", "4556", "4558", "4570", "4680", "0872"}
)

// options controls dataset generation.
type options struct {
	rows       int
	fatalRatio float64
	seed       uint64
	years      int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "locations.csv", "output path for the generated dataset")
	rows := flag.Int("rows", 1000, "number of crash rows to generate")
	fatalRatio := flag.Float64("fatal-ratio", 0.02, "share of rows with Fatal severity (0..1)")
	seed := flag.Uint64("seed", 0, "random seed; 0 derives one from the current time")
	flag.Parse()

	opts := options{rows: *rows, fatalRatio: *fatalRatio, seed: *seed, years: 5}
	if err := opts.validate(); err != nil {
		flag.Usage()
		return err
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	fatal, err := generate(f, opts, clockwork.NewRealClock())
	if err != nil {
		return fmt.Errorf("generate dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	log.Printf("wrote %s: %d rows, %d fatal", *out, opts.rows, fatal)
	return nil
}

func (o options) validate() error {
	if o.rows < 0 {
		return errors.New("-rows must not be negative")
	}
	if o.fatalRatio < 0 || o.fatalRatio > 1 {
		return fmt.Errorf("-fatal-ratio must be within 0..1, got %g", o.fatalRatio)
	}
	return nil
}

// generate writes a header plus opts.rows crash rows to w and returns how many
// rows were fatal. Crash years cover the opts.years before the clock's year.
func generate(w io.Writer, opts options, clock clockwork.Clock) (int, error) {
	now := clock.Now()
	seed := opts.seed
	if seed == 0 {
		seed = uint64(now.UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	years := max(opts.years, 1)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	var fatal int
	for i := range opts.rows {
		severity := nonFatal[rng.IntN(len(nonFatal))]
		dead, hospitalised := 0, rng.IntN(3)
		if rng.Float64() < opts.fatalRatio {
			severity = domain.SeverityFatal
			dead = 1 + rng.IntN(3)
			fatal++
		}
		month := time.Month(1 + rng.IntN(12))

		row := []string{
			strconv.Itoa(i + 1),
			severity,
			strconv.Itoa(now.Year() - 1 - rng.IntN(years)),
			month.String(),
			time.Weekday(rng.IntN(7)).String(),
			strconv.Itoa(rng.IntN(24)),
			natures[rng.IntN(len(natures))],
			crashTypes[rng.IntN(len(crashTypes))],
			formatCoord(minLng + rng.Float64()*(maxLng-minLng)),
			formatCoord(minLat + rng.Float64()*(maxLat-minLat)),
			postCodes[rng.IntN(len(postCodes))],
			strconv.Itoa(dead),
			strconv.Itoa(hospitalised),
		}
		if err := cw.Write(row); err != nil {
			return fatal, err
		}
	}

	cw.Flush()
	return fatal, cw.Error()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
