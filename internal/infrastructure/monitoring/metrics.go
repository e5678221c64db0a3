package monitoring

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/multierr"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/shared/id"
)

// Metrics holds all Prometheus metrics. It implements object.Observer;
// install it with object.SetObserver. The live gauges read the runtime's
// process-wide counters, so they include objects allocated before
// installation.
type Metrics struct {
	// Object metrics
	ObjectsLive      prometheus.GaugeFunc
	ObjectsAllocated prometheus.Counter
	ObjectsDestroyed prometheus.Counter
	Resurrections    prometheus.Counter

	// Weak reference metrics
	WeakExtensionsLive prometheus.GaugeFunc
	WeakUpgrades       *prometheus.CounterVec

	// Registry metrics
	Registrations   *prometheus.CounterVec
	CycleRejections prometheus.Counter

	// Broadcast metrics
	Broadcasts        *prometheus.CounterVec
	BroadcastFanout   prometheus.Histogram
	BroadcastDuration *prometheus.HistogramVec

	// Diagnostics server metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Stress scenario metrics
	ScenarioRuns     *prometheus.CounterVec
	ScenarioDuration *prometheus.HistogramVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for the JSON API.
type MetricsSnapshot struct {
	Broadcasts       int64   `json:"broadcasts"`
	FailedBroadcasts int64   `json:"failed_broadcasts"`
	BroadcastSeconds float64 `json:"broadcast_seconds"`
	CycleRejections  int64   `json:"cycle_rejections"`
	FailedUpgrades   int64   `json:"failed_upgrades"`
	Resurrections    int64   `json:"resurrections"`
}

var _ object.Observer = (*Metrics)(nil)

// NewMetrics registers the collectors with reg under namespace.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{startTime: time.Now()}

	// Object metrics
	m.ObjectsLive = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "objects_live",
			Help:      "Number of managed objects allocated and not yet destroyed",
		},
		func() float64 { return float64(object.ReadStats().LiveObjects) },
	)
	m.ObjectsAllocated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "objects_allocated_total",
		Help:      "Total number of managed objects allocated",
	})
	m.ObjectsDestroyed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "objects_destroyed_total",
		Help:      "Total number of managed objects destroyed",
	})
	m.Resurrections = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "objects_resurrected_total",
		Help:      "Teardowns aborted because a weak upgrade revived the object",
	})

	// Weak reference metrics
	m.WeakExtensionsLive = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weak_extensions_live",
			Help:      "Number of weak extensions not yet freed",
		},
		func() float64 { return float64(object.ReadStats().LiveWeakExtensions) },
	)
	m.WeakUpgrades = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weak_upgrades_total",
			Help:      "Weak to strong upgrades by result",
		},
		[]string{"result"},
	)

	// Registry metrics
	m.Registrations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_registrations_total",
			Help:      "Client registration changes by operation",
		},
		[]string{"op"},
	)
	m.CycleRejections = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycle_rejections_total",
		Help:      "Client registrations rejected as dependency cycles",
	})

	// Broadcast metrics
	m.Broadcasts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Completed broadcasts by command and status",
		},
		[]string{"command", "status"},
	)
	m.BroadcastFanout = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "broadcast_fanout",
		Help:      "Clients in each broadcast snapshot",
		Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256},
	})
	m.BroadcastDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "broadcast_duration_seconds",
			Help:      "Broadcast duration in seconds",
			Buckets:   []float64{.00001, .0001, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"command"},
	)

	// Diagnostics server metrics
	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of diagnostics HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Diagnostics HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Stress scenario metrics
	m.ScenarioRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenario_runs_total",
			Help:      "Stress scenario runs by status",
		},
		[]string{"scenario", "status"},
	)
	m.ScenarioDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scenario_duration_seconds",
			Help:      "Stress scenario duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(.01, 4, 8),
		},
		[]string{"scenario"},
	)

	// System metrics
	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the metrics were registered",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

func (m *Metrics) ObjectAllocated(id.ObjectID) {
	m.ObjectsAllocated.Inc()
}

func (m *Metrics) ObjectDestroyed(id.ObjectID) {
	m.ObjectsDestroyed.Inc()
}

func (m *Metrics) ObjectResurrected(id.ObjectID) {
	m.Resurrections.Inc()

	m.mu.Lock()
	m.snapshot.Resurrections++
	m.mu.Unlock()
}

// Weak extension lifetimes are read from object.ReadStats.
func (m *Metrics) WeakExtensionCreated(id.ObjectID) {}
func (m *Metrics) WeakExtensionFreed(id.ObjectID)   {}

func (m *Metrics) WeakUpgrade(_ id.ObjectID, ok bool) {
	if ok {
		m.WeakUpgrades.WithLabelValues("success").Inc()
		return
	}
	m.WeakUpgrades.WithLabelValues("expired").Inc()

	m.mu.Lock()
	m.snapshot.FailedUpgrades++
	m.mu.Unlock()
}

func (m *Metrics) ClientRegistered(_, _ id.ObjectID) {
	m.Registrations.WithLabelValues("register").Inc()
}

func (m *Metrics) ClientDeregistered(_, _ id.ObjectID) {
	m.Registrations.WithLabelValues("deregister").Inc()
}

func (m *Metrics) CycleRejected(_, _ id.ObjectID) {
	m.CycleRejections.Inc()

	m.mu.Lock()
	m.snapshot.CycleRejections++
	m.mu.Unlock()
}

func (m *Metrics) BroadcastFinished(_ context.Context, ev object.BroadcastEvent) {
	cmd := ev.Command.String()
	status := broadcastStatus(ev.Err)

	m.Broadcasts.WithLabelValues(cmd, status).Inc()
	m.BroadcastFanout.Observe(float64(ev.Clients))
	m.BroadcastDuration.WithLabelValues(cmd).Observe(ev.Duration.Seconds())

	m.mu.Lock()
	m.snapshot.Broadcasts++
	m.snapshot.BroadcastSeconds += ev.Duration.Seconds()
	if ev.Err != nil {
		m.snapshot.FailedBroadcasts++
	}
	m.mu.Unlock()
}

// RecordHTTPRequest records a diagnostics server request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordScenario records one stress scenario run.
func (m *Metrics) RecordScenario(scenario, status string, duration time.Duration) {
	m.ScenarioRuns.WithLabelValues(scenario, status).Inc()
	m.ScenarioDuration.WithLabelValues(scenario).Observe(duration.Seconds())
}

// Snapshot returns the current JSON-friendly values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

func broadcastStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, object.ErrReentrantBroadcast):
		return "reentrant"
	}

	// A combined error is "unsupported" only if every failure is.
	for _, e := range multierr.Errors(err) {
		if !errors.Is(e, object.ErrUnsupported) {
			return "error"
		}
	}
	return "unsupported"
}
