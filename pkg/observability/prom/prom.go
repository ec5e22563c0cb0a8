// Package prom implements the observability hooks with Prometheus collectors.
//
// A [Metrics] value owns its own registry, so several instances (one per
// test, for example) never collide. Serve it with
// promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}).
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/coursegraph/pkg/observability"
)

const namespace = "coursegraph"

// Metrics holds every coursegraph collector.
type Metrics struct {
	registry *prometheus.Registry

	CatalogLoads      *prometheus.CounterVec
	CatalogCourses    prometheus.Gauge
	LayoutDuration    prometheus.Histogram
	LayoutLayers      prometheus.Gauge
	RendersTotal      *prometheus.CounterVec
	RenderDuration    *prometheus.HistogramVec
	Recommendations   *prometheus.CounterVec
	RecommendDuration prometheus.Histogram
	CacheEvents       *prometheus.CounterVec
	CacheBytes        prometheus.Counter
	ClientRequests    *prometheus.CounterVec
	ClientDuration    *prometheus.HistogramVec
	ServerRequests    *prometheus.CounterVec
	ServerDuration    *prometheus.HistogramVec
}

// New creates a registry with Go runtime collectors and all coursegraph
// metrics registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CatalogLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_loads_total",
			Help:      "Catalog loads by source and result",
		}, []string{"source", "result"}),
		CatalogCourses: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_courses",
			Help:      "Number of courses in the most recently loaded catalog",
		}),
		LayoutDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Layer assignment and layout latency",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		LayoutLayers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layout_layers",
			Help:      "Number of layers in the most recent layout",
		}),
		RendersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Render passes by format and result",
		}, []string{"format", "result"}),
		RenderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Render latency by format",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		Recommendations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendation requests by model and result",
		}, []string{"model", "result"}),
		RecommendDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_duration_seconds",
			Help:      "Recommendation request latency",
			Buckets:   []float64{.25, .5, 1, 2, 5, 10, 30},
		}),
		CacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache hits, misses and writes by key type",
		}, []string{"key_type", "event"}),
		CacheBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache",
		}),
		ClientRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Outgoing HTTP requests by host and status",
		}, []string{"method", "host", "status"}),
		ClientDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_client_request_duration_seconds",
			Help:      "Outgoing HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "host"}),
		ServerRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Served HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		ServerDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Served HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Install registers m as the pipeline, advisor, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetAdvisorHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.ServerRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.ServerDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, source string, courses int, _ time.Duration, err error) {
	m.CatalogLoads.WithLabelValues(source, result(err)).Inc()
	if err == nil {
		m.CatalogCourses.Set(float64(courses))
	}
}

func (m *Metrics) OnLayoutStart(context.Context, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, _, layers int, d time.Duration) {
	m.LayoutDuration.Observe(d.Seconds())
	m.LayoutLayers.Set(float64(layers))
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	for _, f := range formats {
		m.RendersTotal.WithLabelValues(f, result(err)).Inc()
		m.RenderDuration.WithLabelValues(f).Observe(d.Seconds())
	}
}

func (m *Metrics) OnRecommendStart(context.Context, string) {}

func (m *Metrics) OnRecommendComplete(_ context.Context, model string, _ int, d time.Duration, err error) {
	m.Recommendations.WithLabelValues(model, result(err)).Inc()
	m.RecommendDuration.Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheEvents.WithLabelValues(keyType, "set").Inc()
	m.CacheBytes.Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	m.ClientRequests.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	m.ClientDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, host, _ string, _ error) {
	m.ClientRequests.WithLabelValues(method, host, "error").Inc()
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.AdvisorHooks  = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
