package vrt

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vrt/pkg/metrics"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/scheduler"
)

// Config configures a Runtime.
type Config struct {
	// Dev enables development warnings such as duplicate keys and prop
	// validation.
	Dev bool

	// MaxRecursion is how many times one job may re-run within a flush.
	// Default: scheduler.DefaultRecursionLimit
	MaxRecursion int

	// ThrowUnhandledErrors panics on errors no handler captured.
	ThrowUnhandledErrors bool

	// Logger receives warnings and unhandled errors.
	// Default: slog.Default()
	Logger *slog.Logger

	// Registry enables Prometheus metrics when set.
	Registry prometheus.Registerer

	// Metrics shares already registered collectors between runtimes. It
	// takes precedence over Registry.
	Metrics *metrics.Metrics

	// MetricsOptions are passed to metrics.New after the registry.
	MetricsOptions []metrics.Option

	// Tracer receives a span per scheduler flush.
	// Default: the global OpenTelemetry tracer provider
	Tracer trace.Tracer
}

// Runtime bundles the loop, scheduler and renderer of one host.
type Runtime struct {
	config   Config
	loop     *scheduler.Loop
	sched    *scheduler.Scheduler
	renderer *renderer.Renderer
	metrics  *metrics.Metrics
}

// New creates a runtime rendering into host.
func New(host HostOps, config Config) *Runtime {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	rt := &Runtime{config: config, loop: scheduler.NewLoop(), metrics: config.Metrics}
	if rt.metrics == nil && config.Registry != nil {
		opts := append([]metrics.Option{metrics.WithRegistry(config.Registry)}, config.MetricsOptions...)
		rt.metrics = metrics.New(opts...)
	}

	schedOpts := []scheduler.Option{
		scheduler.WithLogger(config.Logger),
		scheduler.WithRecursionLimit(config.MaxRecursion),
	}
	if config.Tracer != nil {
		schedOpts = append(schedOpts, scheduler.WithTracer(config.Tracer))
	}
	renderOpts := []renderer.Option{renderer.WithLogger(config.Logger)}
	if rt.metrics != nil {
		schedOpts = append(schedOpts, scheduler.WithObserver(rt.metrics))
		renderOpts = append(renderOpts, renderer.WithObserver(rt.metrics))
	}
	rt.sched = scheduler.New(rt.loop, schedOpts...)
	rt.renderer = renderer.New(host, append(renderOpts, renderer.WithScheduler(rt.sched))...)

	app := rt.renderer.AppContext()
	app.Config.Dev = config.Dev
	app.Config.ThrowUnhandledErrors = config.ThrowUnhandledErrors
	return rt
}

// Loop returns the loop all rendering runs on.
func (rt *Runtime) Loop() *scheduler.Loop { return rt.loop }

// Scheduler returns the job scheduler.
func (rt *Runtime) Scheduler() *scheduler.Scheduler { return rt.sched }

// Renderer returns the renderer.
func (rt *Runtime) Renderer() *renderer.Renderer { return rt.renderer }

// Metrics returns the collectors, or nil when metrics are off.
func (rt *Runtime) Metrics() *metrics.Metrics { return rt.metrics }

// CreateApp creates an application for root carrying the runtime's
// configuration.
func (rt *Runtime) CreateApp(root *Definition, rootProps Props) *App {
	app := rt.renderer.CreateApp(root, rootProps)
	app.Config().Dev = rt.config.Dev
	app.Config().ThrowUnhandledErrors = rt.config.ThrowUnhandledErrors
	return app
}

// Render renders v into container, replacing what was rendered there.
// A nil v unmounts.
func (rt *Runtime) Render(v *VNode, container any) {
	rt.renderer.Render(v, container)
}

// Do runs fn on the calling goroutine as one loop task and drains the
// microtasks it queued, flushing every update fn triggered.
func (rt *Runtime) Do(fn func()) { rt.loop.Do(fn) }

// Dispatch queues fn to run on the loop goroutine. It is safe for
// concurrent use.
func (rt *Runtime) Dispatch(fn func()) { rt.loop.Dispatch(fn) }
