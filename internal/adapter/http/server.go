package http

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/crash-map-service/internal/crashmap"
	"github.com/couchcryptid/crash-map-service/internal/mapview"
	"github.com/couchcryptid/crash-map-service/internal/observability"
	"github.com/couchcryptid/crash-map-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Page titles.
const (
	LandingTitle = "QLD Crash Map"
	MapTitle     = "QLD Crash Map Annotated"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Dataset gives request handlers access to the shared crash snapshot.
type Dataset interface {
	sharedobs.ReadinessChecker
	Current(ctx context.Context) (*pipeline.Snapshot, error)
	Load(ctx context.Context) (*pipeline.Snapshot, error)
}

// Server exposes the map pages plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	data       Dataset
	view       crashmap.View
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /, /crashmap, /crashmap/fatal.geojson,
// /_ah/warmup, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, data Dataset, view crashmap.View, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		data:    data,
		view:    view,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /crashmap", s.handleCrashMap)
	mux.HandleFunc("GET /crashmap/fatal.geojson", s.handleGeoJSON)
	mux.HandleFunc("GET /_ah/warmup", s.handleWarmup)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(data))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// pageData fills templates/page.html. The fragments are pre-rendered markup
// and are inserted without escaping.
type pageData struct {
	Title   string
	Landing bool
	Map     template.HTML
	Header  template.HTML
	Script  template.JS
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	_ = s.writePage(w, pageData{Title: LandingTitle, Landing: true})
}

func (s *Server) handleCrashMap(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	snap, err := s.data.Current(r.Context())
	if err != nil {
		s.metrics.MapRenders.WithLabelValues("unavailable").Inc()
		s.logger.Error("crash dataset unavailable", "error", err)
		http.Error(w, "crash dataset unavailable", http.StatusServiceUnavailable)
		return
	}

	frags, err := crashmap.Compose(s.view, snap.Fatal).Render()
	if err != nil {
		s.metrics.MapRenders.WithLabelValues("error").Inc()
		s.logger.Error("render crash map failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := s.writePage(w, pageFromFragments(MapTitle, frags)); err != nil {
		s.metrics.MapRenders.WithLabelValues("error").Inc()
		return
	}
	s.metrics.MapRenders.WithLabelValues("success").Inc()
	s.metrics.MapRenderDuration.Observe(time.Since(start).Seconds())
	s.logger.Debug("crash map rendered", "markers", len(snap.Fatal), "duration", time.Since(start))
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	snap, err := s.data.Current(r.Context())
	if err != nil {
		s.logger.Error("crash dataset unavailable", "error", err)
		http.Error(w, "crash dataset unavailable", http.StatusServiceUnavailable)
		return
	}

	body, err := crashmap.FeatureCollection(snap.Fatal).MarshalJSON()
	if err != nil {
		s.logger.Error("encode geojson failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("write geojson response", "error", err)
	}
}

func (s *Server) handleWarmup(w http.ResponseWriter, r *http.Request) {
	snap, err := s.data.Load(r.Context())
	if err != nil {
		s.logger.Error("warm-up failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "error",
			"error":  "crash dataset unavailable",
		})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "loaded",
		"records":   len(snap.All),
		"fatal":     len(snap.Fatal),
		"rejected":  snap.Stats.Rejected,
		"loaded_at": snap.LoadedAt.Format(time.RFC3339),
	})
}

func pageFromFragments(title string, f mapview.Fragments) pageData {
	return pageData{Title: title, Map: f.HTML, Header: f.Header, Script: f.Script}
}

// writePage renders into a buffer first so a template error can still
// produce a clean 500. A non-nil error means the page was not sent.
func (s *Server) writePage(w http.ResponseWriter, data pageData) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("execute page template", "error", err, "title", data.Title)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("write page response", "error", err)
		return err
	}
	return nil
}
