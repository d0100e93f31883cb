package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/crash-map-service/internal/domain"
	"github.com/couchcryptid/crash-map-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// ErrNotLoaded is returned by CheckReadiness before the first successful load.
var ErrNotLoaded = errors.New("crash dataset has not been loaded yet")

// Loader reads the full crash dataset from its source.
type Loader interface {
	LoadDataset(ctx context.Context) (domain.Dataset, domain.LoadStats, error)
}

// Exporter publishes a freshly loaded snapshot somewhere downstream.
type Exporter interface {
	Export(ctx context.Context, snap *Snapshot) error
}

// Snapshot is an immutable, fully filtered view of one dataset load.
type Snapshot struct {
	All      domain.Dataset
	Fatal    domain.Dataset
	Stats    domain.LoadStats
	LoadedAt time.Time
}

// Pipeline loads the crash dataset, filters it to fatal crashes, and holds
// the result for concurrent readers. Readers never take a lock: each load
// builds a new Snapshot and swaps the pointer.
type Pipeline struct {
	loader   Loader
	exporter Exporter
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock

	current atomic.Pointer[Snapshot]
	loadMu  sync.Mutex
}

// New creates a Pipeline. exporter may be nil; clock may be nil for real time.
func New(loader Loader, exporter Exporter, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		loader:   loader,
		exporter: exporter,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
	}
}

// CheckReadiness returns nil once a snapshot is available.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.current.Load() == nil {
		return ErrNotLoaded
	}
	return nil
}

// Snapshot returns the current snapshot without loading, or nil.
func (p *Pipeline) Snapshot() *Snapshot {
	return p.current.Load()
}

// Current returns the current snapshot, loading the dataset first if no load
// has succeeded yet.
func (p *Pipeline) Current(ctx context.Context) (*Snapshot, error) {
	if snap := p.current.Load(); snap != nil {
		return snap, nil
	}

	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	// Another caller may have finished the load while we waited.
	if snap := p.current.Load(); snap != nil {
		return snap, nil
	}
	p.logger.Info("dataset not warmed up, loading on first request")
	return p.load(ctx)
}

// Load reads, filters and publishes a new snapshot. On failure the previous
// snapshot, if any, stays in place.
func (p *Pipeline) Load(ctx context.Context) (*Snapshot, error) {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()
	return p.load(ctx)
}

func (p *Pipeline) load(ctx context.Context) (*Snapshot, error) {
	start := p.clock.Now()
	p.logger.Info("data loading")

	all, stats, err := p.loader.LoadDataset(ctx)
	if err != nil {
		p.metrics.DatasetLoads.WithLabelValues("error").Inc()
		p.logger.Error("data load failed", "error", err)
		return nil, err
	}

	snap := &Snapshot{
		All:      all,
		Fatal:    domain.FilterFatal(all),
		Stats:    stats,
		LoadedAt: p.clock.Now(),
	}
	p.current.Store(snap)

	elapsed := p.clock.Since(start)
	p.metrics.DatasetLoads.WithLabelValues("success").Inc()
	p.metrics.DatasetLoadDuration.Observe(elapsed.Seconds())
	p.metrics.DatasetRecords.WithLabelValues("all").Set(float64(len(snap.All)))
	p.metrics.DatasetRecords.WithLabelValues("fatal").Set(float64(len(snap.Fatal)))
	p.metrics.DatasetRejected.Set(float64(stats.Rejected))

	p.logger.Info("data loaded",
		"records", len(snap.All),
		"fatal", len(snap.Fatal),
		"rejected", stats.Rejected,
		"duration", elapsed,
	)

	p.export(ctx, snap)
	return snap, nil
}

// export runs the optional exporter. Export failures never fail the load.
func (p *Pipeline) export(ctx context.Context, snap *Snapshot) {
	if p.exporter == nil {
		return
	}
	if err := p.exporter.Export(ctx, snap); err != nil {
		p.metrics.ExportRecords.WithLabelValues("error").Add(float64(len(snap.Fatal)))
		p.logger.Error("export fatal crashes failed", "error", err, "records", len(snap.Fatal))
		return
	}
	p.metrics.ExportRecords.WithLabelValues("success").Add(float64(len(snap.Fatal)))
}
