package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "instrux",
		Subsystem: "content_cache",
		Name:      "lookups_total",
		Help:      "Parsed revision content lookups by result (hit, miss).",
	}, []string{"result"})

	diffEntries = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "instrux",
		Subsystem: "compare",
		Name:      "diff_entries",
		Help:      "Number of entries produced per revision comparison.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})
)
