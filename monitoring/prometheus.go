package monitoring

import (
	"net/http"
	"time"

	"github.com/mezonai/powchain/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type nodePromMetrics struct {
	nodeUpUnixSeconds prometheus.Gauge
	acceptedBlocks    prometheus.Counter
	rejectedBlocks    *prometheus.CounterVec
	blockHeight       prometheus.Gauge
	accumulatedDiff   prometheus.Gauge
	blockTime         prometheus.Histogram
	hashAttempts      prometheus.Counter
	miningDuration    prometheus.Histogram
	panicCount        prometheus.Counter
}

func newNodePromMetrics() *nodePromMetrics {
	return &nodePromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "powchain_node_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the node",
			},
		),
		acceptedBlocks: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "powchain_node_accepted_block_count",
				Help: "The total number of blocks that passed validation and were stored",
			},
		),
		rejectedBlocks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powchain_node_rejected_block_count",
				Help: "The total number of rejected blocks",
			},
			[]string{"reason"},
		),
		blockHeight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "powchain_node_block_height",
				Help: "Index of the frontier block",
			},
		),
		accumulatedDiff: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "powchain_node_accumulated_difficulty",
				Help: "Accumulated difficulty of the frontier block",
			},
		),
		blockTime: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "powchain_node_block_time",
				Help: "Seconds between the timestamps of two consecutive frontier blocks",
			},
		),
		hashAttempts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "powchain_miner_hash_attempts",
				Help: "The total number of nonces hashed by the miner",
			},
		),
		miningDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "powchain_miner_duration_seconds",
				Help:    "Wall time spent searching for a nonce",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "powchain_node_panic_count",
				Help: "The total number of recovered goroutine panics",
			},
		),
	}
}

// Registered once at package load so recording never needs a nil check.
var nodeMetrics = newNodePromMetrics()

func InitMetrics() {
	nodeMetrics.nodeUpUnixSeconds.SetToCurrentTime()
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

func IncreaseAcceptedBlockCount() {
	nodeMetrics.acceptedBlocks.Inc()
}

// InitRejectedBlockReasons creates a zero series per reason so dashboards see
// every label before the first rejection.
func InitRejectedBlockReasons(reasons []string) {
	for _, r := range reasons {
		nodeMetrics.rejectedBlocks.WithLabelValues(r).Add(0)
	}
}

func RecordRejectedBlock(reason string) {
	nodeMetrics.rejectedBlocks.With(prometheus.Labels{
		"reason": reason,
	}).Inc()
}

func SetBlockHeight(index uint32) {
	nodeMetrics.blockHeight.Set(float64(index))
}

func SetAccumulatedDifficulty(accDiff uint64) {
	nodeMetrics.accumulatedDiff.Set(float64(accDiff))
}

func RecordBlockTime(seconds uint64) {
	nodeMetrics.blockTime.Observe(float64(seconds))
}

func AddHashAttempts(n uint64) {
	nodeMetrics.hashAttempts.Add(float64(n))
}

func RecordMiningDuration(duration time.Duration) {
	nodeMetrics.miningDuration.Observe(duration.Seconds())
}

func IncreasePanicCount() {
	nodeMetrics.panicCount.Inc()
}
