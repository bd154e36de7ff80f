// Package metrics exposes Prometheus instrumentation for scans, deletions and
// backups.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	instance *Metrics
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	ScansTotal     *prometheus.CounterVec   // site_janitor_scans_total{policy,outcome}
	ScanDuration   *prometheus.HistogramVec // site_janitor_scan_duration_seconds{policy}
	ObjectsScanned *prometheus.CounterVec   // site_janitor_objects_scanned_total{policy}

	ObjectsDeleted      prometheus.Counter // site_janitor_objects_deleted_total
	DeleteChunkFailures prometheus.Counter // site_janitor_delete_chunk_failures_total

	BackupsTotal *prometheus.CounterVec // site_janitor_backups_total{outcome}
	BackupBytes  prometheus.Counter     // site_janitor_backup_bytes_total
}

// Init registers the service metrics with registry, or the default registerer
// when registry is nil. Metrics are only registered once; subsequent calls
// return the same instance.
func Init(registry prometheus.Registerer) *Metrics {
	once.Do(func() {
		if registry == nil {
			registry = prometheus.DefaultRegisterer
		}
		instance = New(registry)
	})
	return instance
}

// New registers a fresh set of metrics with registry. Tests use it with a
// private registry.
func New(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		ScansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "site_janitor_scans_total",
			Help: "Reconciliation scans by policy and outcome",
		}, []string{"policy", "outcome"}),

		ScanDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "site_janitor_scan_duration_seconds",
			Help:    "Reconciliation scan duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"policy"}),

		ObjectsScanned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "site_janitor_objects_scanned_total",
			Help: "Storage entries classified by scans",
		}, []string{"policy"}),

		ObjectsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "site_janitor_objects_deleted_total",
			Help: "Objects removed by confirmed deletions",
		}),

		DeleteChunkFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "site_janitor_delete_chunk_failures_total",
			Help: "Bulk delete chunks that failed",
		}),

		BackupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "site_janitor_backups_total",
			Help: "Backup exports by outcome",
		}, []string{"outcome"}),

		BackupBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "site_janitor_backup_bytes_total",
			Help: "Bytes written into backup archives",
		}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveScan records one finished scan. A nil receiver is a no-op.
func (m *Metrics) ObserveScan(policy string, seconds float64, scanned int, err error) {
	if m == nil {
		return
	}
	m.ScansTotal.WithLabelValues(policy, outcome(err)).Inc()
	m.ScanDuration.WithLabelValues(policy).Observe(seconds)
	if err == nil {
		m.ObjectsScanned.WithLabelValues(policy).Add(float64(scanned))
	}
}

// ObserveDeleted records a successful delete chunk.
func (m *Metrics) ObserveDeleted(n int) {
	if m == nil {
		return
	}
	m.ObjectsDeleted.Add(float64(n))
}

// ObserveChunkFailure records a failed delete chunk.
func (m *Metrics) ObserveChunkFailure() {
	if m == nil {
		return
	}
	m.DeleteChunkFailures.Inc()
}

// ObserveBackup records one finished export of size bytes.
func (m *Metrics) ObserveBackup(size int, err error) {
	if m == nil {
		return
	}
	m.BackupsTotal.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.BackupBytes.Add(float64(size))
	}
}
