package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lithoglyph_commits_total",
			Help: "Total number of transaction commits by result",
		},
		[]string{"result"},
	)

	CommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lithoglyph_commit_duration_seconds",
			Help:    "Time from commit call to phase 6 completion",
			Buckets: prometheus.DefBuckets,
		},
	)

	CorruptionTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lithoglyph_corruption_total",
			Help: "Total number of blocks that failed checksum validation",
		},
	)

	BlocksAllocatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lithoglyph_blocks_allocated_total",
			Help: "Total number of blocks handed out by the allocator",
		},
	)

	BlocksFreedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lithoglyph_blocks_freed_total",
			Help: "Total number of blocks returned to the free list",
		},
	)

	FileGrowthTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lithoglyph_file_growth_total",
			Help: "Total number of times the block file was extended",
		},
	)

	JournalRecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lithoglyph_journal_records_total",
			Help: "Total number of journal records appended",
		},
	)

	ReplayRecordsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lithoglyph_replay_records_total",
			Help: "Records replayed the last time a database was opened",
		},
	)

	ProofVerifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lithoglyph_proof_verify_total",
			Help: "Total proof_verify calls by proof type and outcome",
		},
		[]string{"proof_type", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		CommitsTotal,
		CommitDuration,
		CorruptionTotal,
		BlocksAllocatedTotal,
		BlocksFreedTotal,
		FileGrowthTotal,
		JournalRecordsTotal,
		ReplayRecordsGauge,
		ProofVerifyTotal,
	)
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
