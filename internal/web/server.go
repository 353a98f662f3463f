package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vbonduro/homeinv/internal/imagestore"
	"github.com/vbonduro/homeinv/internal/metrics"
	"github.com/vbonduro/homeinv/internal/service"
)

type Server struct {
	locations *service.LocationService
	inventory *service.InventoryService
	imgStore  imagestore.ImageStore
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	mux       *http.ServeMux
	logger    *slog.Logger
}

func NewServer(
	locations *service.LocationService,
	inventory *service.InventoryService,
	imgStore imagestore.ImageStore,
	m *metrics.Metrics,
	registry *prometheus.Registry,
	logger *slog.Logger,
) *Server {
	s := &Server{
		locations: locations,
		inventory: inventory,
		imgStore:  imgStore,
		metrics:   m,
		registry:  registry,
		mux:       http.NewServeMux(),
		logger:    logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/locations", s.handleListLocations)
	s.mux.HandleFunc("POST /api/locations", s.handleCreateLocation)
	s.mux.HandleFunc("GET /api/locations/{id}", s.handleGetLocation)
	s.mux.HandleFunc("PUT /api/locations/{id}", s.handleUpdateLocation)
	s.mux.HandleFunc("DELETE /api/locations/{id}", s.handleDeleteLocation)
	s.mux.HandleFunc("GET /api/locations/{id}/breadcrumbs", s.handleBreadcrumbs)
	s.mux.HandleFunc("GET /api/locations/{id}/subtree", s.handleSubtree)
	s.mux.HandleFunc("GET /api/locations/{id}/regions", s.handleListRegions)
	s.mux.HandleFunc("PUT /api/locations/{id}/regions", s.handleSetRegions)
	s.mux.HandleFunc("GET /api/locations/{id}/regions/at", s.handleRegionAt)

	s.mux.HandleFunc("GET /api/inventory", s.handleListItems)
	s.mux.HandleFunc("POST /api/inventory", s.handleCreateItem)
	s.mux.HandleFunc("GET /api/inventory/{id}", s.handleGetItem)
	s.mux.HandleFunc("PUT /api/inventory/{id}", s.handleUpdateItem)
	s.mux.HandleFunc("DELETE /api/inventory/{id}", s.handleDeleteItem)
	s.mux.HandleFunc("POST /api/inventory/{id}/consume", s.handleConsumeItem)
	s.mux.HandleFunc("GET /api/inventory/{id}/highlight", s.handleHighlightItem)

	s.mux.HandleFunc("GET /api/search", s.handleSearch)
	s.mux.HandleFunc("GET /uploads/{category}/{filename}", s.handleGetImage)

	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)
		s.metrics.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(r.Method).Observe(elapsed.Seconds())
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.instrument(securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// parseOptionalID parses a form or query value into an id pointer; an empty
// value means absent.
func parseOptionalID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
