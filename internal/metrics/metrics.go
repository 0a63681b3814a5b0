// Package metrics exposes Prometheus metrics for the layer engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type BuildInfo struct {
	Version  string
	Revision string
}

type Provider struct {
	reg       *prometheus.Registry
	buildInfo *prometheus.GaugeVec
}

func Init(build BuildInfo) *Provider {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "geolayers_build_info",
			Help: "Build info for this binary (value is always 1).",
		},
		[]string{"version", "revision"},
	)
	reg.MustRegister(info)
	if build.Version == "" {
		build.Version = "dev"
	}
	info.WithLabelValues(build.Version, build.Revision).Set(1)

	return &Provider{reg: reg, buildInfo: info}
}

func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func (p *Provider) Registerer() prometheus.Registerer { return p.reg }

func (p *Provider) Gatherer() prometheus.Gatherer { return p.reg }

// LayerMetrics holds the collectors updated by the ingestion and query engine.
// A nil *LayerMetrics is valid and records nothing.
type LayerMetrics struct {
	ingests        *prometheus.CounterVec
	ingestDuration prometheus.Histogram
	ingestBytes    prometheus.Counter
	layers         prometheus.Gauge
	queries        *prometheus.CounterVec
	sortCache      *prometheus.CounterVec
}

func NewLayerMetrics(reg prometheus.Registerer) *LayerMetrics {
	m := &LayerMetrics{
		ingests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geolayers_ingests_total",
			Help: "Layer imports by result.",
		}, []string{"result"}),
		ingestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "geolayers_ingest_duration_seconds",
			Help:    "Time spent reading, parsing and storing an import.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		ingestBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geolayers_ingest_bytes_total",
			Help: "Bytes read from imported files.",
		}),
		layers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geolayers_layers",
			Help: "Layers currently held in the store.",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geolayers_queries_total",
			Help: "Query engine operations by operation and result.",
		}, []string{"op", "result"}),
		sortCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geolayers_sort_cache_lookups_total",
			Help: "Sort order cache lookups by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.ingests, m.ingestDuration, m.ingestBytes, m.layers, m.queries, m.sortCache)
	return m
}

func (m *LayerMetrics) ObserveIngest(result string, d time.Duration, bytes int64) {
	if m == nil {
		return
	}
	m.ingests.WithLabelValues(result).Inc()
	m.ingestDuration.Observe(d.Seconds())
	m.ingestBytes.Add(float64(bytes))
}

func (m *LayerMetrics) SetLayers(n int) {
	if m == nil {
		return
	}
	m.layers.Set(float64(n))
}

func (m *LayerMetrics) ObserveQuery(op, result string) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(op, result).Inc()
}

func (m *LayerMetrics) SortCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.sortCache.WithLabelValues(result).Inc()
}
