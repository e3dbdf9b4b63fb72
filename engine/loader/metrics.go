package loader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load results recorded on loadsTotal and reloadsTotal.
const (
	resultOK     = "ok"
	resultCached = "cached"
	resultError  = "error"
)

var (
	loadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oxy",
			Subsystem: "renderstate",
			Name:      "loads_total",
			Help:      "Render-state load requests by result (ok, cached, error)",
		},
		[]string{"result"},
	)

	reloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oxy",
			Subsystem: "renderstate",
			Name:      "reloads_total",
			Help:      "Render-state reloads that bypass the cache, by result (ok, error)",
		},
		[]string{"result"},
	)

	parseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "oxy",
			Subsystem: "renderstate",
			Name:      "parse_duration_seconds",
			Help:      "Time spent parsing one render-state file",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		},
	)
)
