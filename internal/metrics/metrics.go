package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdeck_provider_calls_total",
			Help: "Total weather provider API calls",
		},
		[]string{"endpoint", "status"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherdeck_provider_latency_seconds",
			Help:    "Weather provider call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CacheFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdeck_cache_fallbacks_total",
			Help: "Fetches that fell back to the cached response after a live failure",
		},
		[]string{"endpoint", "outcome"},
	)

	ToastsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdeck_toasts_emitted_total",
			Help: "Total user-facing toast notifications emitted",
		},
		[]string{"type"},
	)

	PersistWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdeck_persist_writes_total",
			Help: "Write-behind persistence attempts by result",
		},
		[]string{"slice", "result"},
	)
)
