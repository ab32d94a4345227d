package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metricsRegistry struct {
	registry       *prometheus.Registry
	uploadsTotal   *prometheus.CounterVec
	mintsTotal     *prometheus.CounterVec
	uploadDuration prometheus.Histogram
	streamClients  prometheus.Gauge
}

func newMetricsRegistry() *metricsRegistry {
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nft_minter_metadata_uploads_total",
		Help: "Total number of metadata uploads to Filebase",
	}, []string{"result"})

	mints := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nft_minter_mints_total",
		Help: "Total number of mint attempts by outcome",
	}, []string{"result"})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "nft_minter_metadata_upload_duration_seconds",
		Help:    "Latency of metadata uploads",
		Buckets: prometheus.DefBuckets,
	})

	clients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nft_minter_stream_clients",
		Help: "Number of connected status stream clients",
	})

	r := prometheus.NewRegistry()
	r.MustRegister(uploads, mints, duration, clients)

	return &metricsRegistry{
		registry:       r,
		uploadsTotal:   uploads,
		mintsTotal:     mints,
		uploadDuration: duration,
		streamClients:  clients,
	}
}

func (m *metricsRegistry) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metricsRegistry) incUpload(result string, seconds float64) {
	m.uploadsTotal.WithLabelValues(result).Inc()
	m.uploadDuration.Observe(seconds)
}

func (m *metricsRegistry) incMint(result string) {
	m.mintsTotal.WithLabelValues(result).Inc()
}
