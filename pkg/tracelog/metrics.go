package tracelog

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// Metrics holds the writer counters. Failure counters cover the degraded
// paths: fetches and flushes that were reported and skipped, not fatal.
type Metrics struct {
	MessagesCommitted prometheus.Counter
	PayloadBytes      prometheus.Counter
	PagesFlushed      prometheus.Counter
	FlushFailures     prometheus.Counter
	FilesOpened       prometheus.Counter
	OpenFailures      prometheus.Counter
	Rotations         prometheus.Counter
	DroppedAllocs     prometheus.Counter
}

// GetMetrics returns the process-wide writer metrics, registered on the
// default registerer on first use.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return metrics
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		MessagesCommitted: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "stylus_tracelog_messages_committed_total",
				Help: "Total number of messages committed to the staging page",
			},
		),
		PayloadBytes: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "stylus_tracelog_payload_bytes_total",
				Help: "Total payload bytes committed, excluding headers and padding",
			},
		),
		PagesFlushed: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "stylus_tracelog_pages_flushed_total",
				Help: "Total number of staging pages flushed to the backing file",
			},
		),
		FlushFailures: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "stylus_tracelog_flush_failures_total",
				Help: "Total number of page flushes that failed and were dropped",
			},
		),
		FilesOpened: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "stylus_tracelog_files_opened_total",
				Help: "Total number of trace files created",
			},
		),
		OpenFailures: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "stylus_tracelog_open_failures_total",
				Help: "Total number of trace file open attempts that failed",
			},
		),
		Rotations: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "stylus_tracelog_rotations_total",
				Help: "Total number of trace file rollovers",
			},
		),
		DroppedAllocs: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "stylus_tracelog_dropped_allocs_total",
				Help: "Total number of allocations dropped because no page was available",
			},
		),
	}
}
