package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bestsplit_sync_records_total",
		Help: "Remote records processed during sync, by kind and outcome.",
	}, []string{"kind", "outcome"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bestsplit_sync_retries_total",
		Help: "Remote writes retried after a transient failure.",
	}, []string{"op"})

	writeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bestsplit_sync_write_failures_total",
		Help: "Remote writes that failed even after the retry.",
	}, []string{"op"})

	syncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bestsplit_sync_duration_seconds",
		Help:    "Duration of per-group sync pulls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
)

const (
	outcomeApplied        = "applied"
	outcomeSkippedInvalid = "skipped_invalid"
	outcomeSkippedOrphan  = "skipped_orphan"
	outcomeError          = "error"
)
