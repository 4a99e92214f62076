package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SnapshotMetrics tracks snapshot lifecycle operations and the jobs
// they spawn.
type SnapshotMetrics struct {
	operations    *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	expiredSwept  prometheus.Counter
	liveSnapshots prometheus.Gauge
}

var (
	snapshotMetricsOnce sync.Once
	snapshotMetrics     *SnapshotMetrics
)

func Snapshot() *SnapshotMetrics {
	return SnapshotWithConfig(Config{})
}

func SnapshotWithConfig(cfg Config) *SnapshotMetrics {
	snapshotMetricsOnce.Do(func() {
		snapshotMetrics = newSnapshotMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return snapshotMetrics
}

func ResetSnapshotMetricsForTest() {
	snapshotMetricsOnce = sync.Once{}
	snapshotMetrics = nil
}

func newSnapshotMetrics(registerer prometheus.Registerer, cfg Config) *SnapshotMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "gridbase"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "gridbase_snapshot_operations_total",
			Help:        "Snapshot lifecycle operations by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"operation", "result"}, // operation: create | restore | delete; result: accepted | rejected
	)

	jobDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "gridbase_snapshot_job_duration_seconds",
			Help: "Duration of snapshot background jobs.",
			Buckets: []float64{
				1,
				5,
				15,
				60,
				300,   // 5m
				900,   // 15m
				3600,  // 1h
				14400, // 4h
			},
			ConstLabels: constLabels,
		},
		[]string{"type", "result"}, // result: success | failed
	)

	expiredSwept := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "gridbase_snapshots_expired_total",
			Help:        "Snapshots flagged for deletion by the expiration sweeper.",
			ConstLabels: constLabels,
		},
	)

	liveSnapshots := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "gridbase_snapshots_live",
			Help:        "Snapshots currently counted toward workspace quotas.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(
		operations,
		jobDuration,
		expiredSwept,
		liveSnapshots,
	)

	return &SnapshotMetrics{
		operations:    operations,
		jobDuration:   jobDuration,
		expiredSwept:  expiredSwept,
		liveSnapshots: liveSnapshots,
	}
}

func (m *SnapshotMetrics) IncOperation(operation, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

func (m *SnapshotMetrics) ObserveJobDuration(jobType, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(jobType, result).Observe(duration.Seconds())
}

func (m *SnapshotMetrics) AddExpired(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.expiredSwept.Add(float64(count))
}

func (m *SnapshotMetrics) SetLiveSnapshots(value int64) {
	if m == nil {
		return
	}
	m.liveSnapshots.Set(float64(value))
}
