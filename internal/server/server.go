// Package server serves rendered course diagrams over HTTP.
//
// The server loads one catalog at startup and is otherwise stateless: every
// request carries its own selection and geometry in the query string.
//
//	GET  /graph.{format}  rendered diagram (png, svg, pdf, json, dot, graphviz-svg)
//	GET  /layout          layout and statuses as JSON
//	GET  /hover           hit-test a pointer position
//	POST /recommend       one recommendation for a transcript
//	GET  /healthz         liveness
//	GET  /metrics         Prometheus metrics
//
// Query parameters shared by the diagram endpoints:
//
//	select         comma-separated course IDs
//	layer_spacing  distance between layers
//	slot_spacing   distance between courses in a layer
//	radius         hexagon and hit radius
//	width, height  canvas size (default: fit the layout)
//	scale          raster scale
//	inset          edge inset
//	detailed       node-link labels with names and credits
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/coursegraph/pkg/advisor"
	"github.com/matzehuels/coursegraph/pkg/cache"
	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/observability/prom"
	"github.com/matzehuels/coursegraph/pkg/pipeline"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 10 * time.Second
	maxHeaderBytes  = 1 << 20
	maxBodyBytes    = 1 << 20
)

// Config configures a [Server].
type Config struct {
	Addr    string
	Catalog *catalog.Catalog // nil uses the embedded catalog

	// Cache stores rendered artifacts. Nil disables caching.
	Cache cache.Cache

	// Recommender backs POST /recommend. Nil disables the endpoint.
	Recommender advisor.Recommender

	// Metrics is served on /metrics and records every request. Nil
	// disables both.
	Metrics *prom.Metrics

	Logger *log.Logger
}

// Server is the HTTP front end to the pipeline.
type Server struct {
	addr        string
	catalog     *catalog.Catalog
	catalogHash string
	runner      *pipeline.Runner
	rec         advisor.Recommender
	metrics     *prom.Metrics
	logger      *log.Logger
	router      chi.Router
}

// New hashes the catalog and builds the router.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	hash, err := pipeline.CatalogHash(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("hash catalog: %w", err)
	}

	s := &Server{
		addr:        cfg.Addr,
		catalog:     cfg.Catalog,
		catalogHash: hash,
		runner:      pipeline.NewRunner(cfg.Cache, nil, cfg.Logger),
		rec:         cfg.Recommender,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
	if s.addr == "" {
		s.addr = DefaultAddr
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph.{format}", s.handleGraph)
	r.Get("/layout", s.handleLayout)
	r.Get("/hover", s.handleHover)
	if s.rec != nil {
		r.Post("/recommend", s.handleRecommend)
	}
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.addr }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:           s.addr,
		Handler:        s.router,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		MaxHeaderBytes: maxHeaderBytes,
		BaseContext:    func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr, "courses", s.catalog.Len())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the artifact cache.
func (s *Server) Close() error { return s.runner.Close() }

// observe logs each request and records it in the metrics, labelled by
// route pattern rather than raw path.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveRequest(r.Method, route, status, d)
		}
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
