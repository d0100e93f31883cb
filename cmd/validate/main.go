// Command validate loads a crash locations dataset with the service's own
// loader and checks it is fit for the fatal crash map: rows parse, the fatal
// subset is consistent, postcodes keep their leading zeros, and the map
// renders.
//
// Usage:
//
//	go run ./cmd/validate -dataset locations.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/couchcryptid/crash-map-service/internal/adapter/csvfile"
	"github.com/couchcryptid/crash-map-service/internal/crashmap"
	"github.com/couchcryptid/crash-map-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxReported caps the per-phase error lines printed.
const maxReported = 20

func main() {
	dataset := flag.String("dataset", "locations.csv", "path to the crash locations CSV")
	logLevel := flag.String("log-level", "warn", "log level for loader warnings")
	flag.Parse()

	logger := sharedobs.NewLogger(*logLevel, "text").With("service", "crash-map")
	os.Exit(run(context.Background(), *dataset, os.Stdout, logger))
}

func run(ctx context.Context, path string, out io.Writer, logger *slog.Logger) int {
	fmt.Fprintln(out, "=== Crash Dataset Validation ===")
	fmt.Fprintln(out)

	all, stats, err := csvfile.Load(ctx, path, logger)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load dataset: %v\n", err)
		return 1
	}
	fatal := domain.FilterFatal(all)

	phases := []*phase{
		validateRows(all, stats),
		validateFatalSubset(all, fatal),
		validatePostCodes(all),
		validateRender(fatal),
	}

	fmt.Fprintf(out, "Dataset: %s\n", path)
	fmt.Fprintf(out, "Rows: %d read, %d accepted, %d rejected\n", stats.Rows, stats.Accepted, stats.Rejected)
	fmt.Fprintf(out, "Fatal: %d records, %d deaths\n", len(fatal), countDeaths(fatal))
	printSeverities(out, all)
	printPostCodes(out, all)

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Fprintf(out, "  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Rows ──

func validateRows(all domain.Dataset, stats domain.LoadStats) *phase {
	p := &phase{name: "Phase 1: Rows"}
	if stats.Accepted != len(all) {
		p.errorf("accepted count %d does not match dataset length %d", stats.Accepted, len(all))
	}
	if stats.Accepted+stats.Rejected != stats.Rows {
		p.errorf("accepted %d + rejected %d != rows %d", stats.Accepted, stats.Rejected, stats.Rows)
	}
	if len(all) == 0 {
		p.errorf("no usable crash rows")
	}
	return p
}

// ── Phase 2: Fatal subset ──
// Fatal severity and a positive fatality count must agree.

func validateFatalSubset(all, fatal domain.Dataset) *phase {
	p := &phase{name: "Phase 2: Fatal subset"}
	for i, r := range all {
		switch {
		case r.IsFatal() && r.Fatalities == 0:
			p.errorf("record %d (%s): fatal severity with zero fatalities", i+1, domain.RecordID(r))
		case !r.IsFatal() && r.Fatalities > 0:
			p.errorf("record %d (%s): severity %q with %d fatalities", i+1, domain.RecordID(r), r.Severity, r.Fatalities)
		}
	}
	if len(fatal) > len(all) {
		p.errorf("fatal subset larger than dataset: %d > %d", len(fatal), len(all))
	}
	return p
}

// ── Phase 3: Postcodes ──
// Australian postcodes are four digits; shorter values have lost a leading zero.

func validatePostCodes(all domain.Dataset) *phase {
	p := &phase{name: "Phase 3: Postcodes"}
	for i, r := range all {
		if r.PostCode == "" || !isDigits(r.PostCode) {
			continue
		}
		if len(r.PostCode) != 4 {
			p.errorf("record %d: postcode %q is not four digits", i+1, r.PostCode)
		}
	}
	return p
}

// ── Phase 4: Map rendering ──

func validateRender(fatal domain.Dataset) *phase {
	p := &phase{name: "Phase 4: Map rendering"}
	frags, err := crashmap.Compose(crashmap.DefaultView(), fatal).Render()
	if err != nil {
		p.errorf("render: %v", err)
		return p
	}
	if got := strings.Count(string(frags.Script), "L.circleMarker("); got != 2*len(fatal) {
		p.errorf("expected %d circle markers, rendered %d", 2*len(fatal), got)
	}
	return p
}

// ── Reporting ──

func countDeaths(d domain.Dataset) int {
	n := 0
	for _, r := range d {
		n += r.Fatalities
	}
	return n
}

type severityCount struct {
	severity string
	count    int
}

func printSeverities(out io.Writer, d domain.Dataset) {
	counts := domain.CountBySeverity(d)
	sc := make([]severityCount, 0, len(counts))
	for s, c := range counts {
		sc = append(sc, severityCount{s, c})
	}
	sort.Slice(sc, func(i, j int) bool {
		if sc[i].count != sc[j].count {
			return sc[i].count > sc[j].count
		}
		return sc[i].severity < sc[j].severity
	})
	fmt.Fprintf(out, "Severities (%d):", len(sc))
	for _, s := range sc {
		fmt.Fprintf(out, " %q=%d", s.severity, s.count)
	}
	fmt.Fprintln(out)
}

func printPostCodes(out io.Writer, d domain.Dataset) {
	var leadingZero, blank int
	for _, r := range d {
		switch {
		case r.PostCode == "":
			blank++
		case strings.HasPrefix(r.PostCode, "0"):
			leadingZero++
		}
	}
	fmt.Fprintf(out, "Postcodes: %d with leading zero, %d blank\n", leadingZero, blank)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
