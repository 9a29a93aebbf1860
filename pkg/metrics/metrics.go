// Package metrics exports runtime activity as Prometheus collectors.
//
// A single Metrics value implements the observer interfaces of the
// scheduler, the renderer and the remote host, so one instance can be
// passed to all three:
//
//	m := metrics.New(metrics.WithRegistry(reg))
//	s := scheduler.New(loop, scheduler.WithObserver(m))
//	r := renderer.New(doc, renderer.WithScheduler(s), renderer.WithObserver(m))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vrt/pkg/host/remote"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/scheduler"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "vrt").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush and update durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vrt",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors.
type Metrics struct {
	flushesTotal      prometheus.Counter
	jobsTotal         prometheus.Counter
	flushDuration     prometheus.Histogram
	recursiveUpdates  prometheus.Counter
	hostOpsTotal      *prometheus.CounterVec
	mountsTotal       *prometheus.CounterVec
	unmountsTotal     *prometheus.CounterVec
	updateDuration    *prometheus.HistogramVec
	mountedComponents prometheus.Gauge
	framesSent        prometheus.Counter
	frameBytes        prometheus.Counter
}

var (
	_ scheduler.Observer = (*Metrics)(nil)
	_ renderer.Observer  = (*Metrics)(nil)
	_ remote.Observer    = (*Metrics)(nil)
)

// New registers the collectors with the configured registry. Registering
// twice on the same registry panics, as with promauto.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	if len(config.Buckets) == 0 {
		config.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(config.Registry)
	return &Metrics{
		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scheduler_flushes_total",
			Help:        "Total number of scheduler flushes",
			ConstLabels: config.ConstLabels,
		}),

		jobsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scheduler_jobs_total",
			Help:        "Total number of jobs run by the scheduler",
			ConstLabels: config.ConstLabels,
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scheduler_flush_duration_seconds",
			Help:        "Scheduler flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		recursiveUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scheduler_recursive_updates_total",
			Help:        "Jobs skipped for exceeding the recursion limit",
			ConstLabels: config.ConstLabels,
		}),

		hostOpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_ops_total",
			Help:        "Host mutations by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		mountsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "component_mounts_total",
			Help:        "Component mounts by component name",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		unmountsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "component_unmounts_total",
			Help:        "Component unmounts by component name",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		updateDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "component_update_duration_seconds",
			Help:        "Component re-render and patch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),

		mountedComponents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounted_components",
			Help:        "Number of currently mounted component instances",
			ConstLabels: config.ConstLabels,
		}),

		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "remote_frames_sent_total",
			Help:        "Protocol frames produced by remote hosts",
			ConstLabels: config.ConstLabels,
		}),

		frameBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "remote_frame_bytes_total",
			Help:        "Encoded protocol bytes produced by remote hosts",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// FlushDone implements scheduler.Observer.
func (m *Metrics) FlushDone(jobs int, d time.Duration) {
	m.flushesTotal.Inc()
	m.jobsTotal.Add(float64(jobs))
	m.flushDuration.Observe(d.Seconds())
}

// RecursionLimitExceeded implements scheduler.Observer.
func (m *Metrics) RecursionLimitExceeded(*scheduler.Job) {
	m.recursiveUpdates.Inc()
}

// HostOp implements renderer.Observer.
func (m *Metrics) HostOp(op string) {
	m.hostOpsTotal.WithLabelValues(op).Inc()
}

// ComponentMounted implements renderer.Observer.
func (m *Metrics) ComponentMounted(name string) {
	m.mountsTotal.WithLabelValues(componentLabel(name)).Inc()
	m.mountedComponents.Inc()
}

// ComponentUnmounted implements renderer.Observer.
func (m *Metrics) ComponentUnmounted(name string) {
	m.unmountsTotal.WithLabelValues(componentLabel(name)).Inc()
	m.mountedComponents.Dec()
}

// ComponentUpdated implements renderer.Observer.
func (m *Metrics) ComponentUpdated(name string, d time.Duration) {
	m.updateDuration.WithLabelValues(componentLabel(name)).Observe(d.Seconds())
}

// FramesSent implements remote.Observer.
func (m *Metrics) FramesSent(frames, bytes int) {
	m.framesSent.Add(float64(frames))
	m.frameBytes.Add(float64(bytes))
}

func componentLabel(name string) string {
	if name == "" {
		return "anonymous"
	}
	return name
}
