package metrics_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/host/memdom"
	"github.com/vango-dev/vrt/pkg/metrics"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/vdom"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		total := 0.0
		for _, m := range mf.GetMetric() {
			switch {
			case m.Counter != nil:
				total += m.GetCounter().GetValue()
			case m.Gauge != nil:
				total += m.GetGauge().GetValue()
			case m.Histogram != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		return total
	}
	return 0
}

func TestObserversFeedCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))

	loop := scheduler.NewLoop()
	sched := scheduler.New(loop, scheduler.WithObserver(m))
	doc := memdom.New(memdom.WithOpLog(false))
	r := renderer.New(doc, renderer.WithScheduler(sched), renderer.WithObserver(m))

	count := reactive.NewSignal(0)
	counter := &component.Definition{
		Name: "Counter",
		Setup: func(*component.Ctx) any {
			return component.RenderFunc(func() *vdom.VNode {
				return vdom.Span(fmt.Sprint(count.Get()))
			})
		},
	}
	root := doc.Element("div")
	r.Render(vdom.H(counter, nil), root)

	assert.Equal(t, 1.0, gather(t, reg, "vrt_component_mounts_total"))
	assert.Equal(t, 1.0, gather(t, reg, "vrt_mounted_components"))
	assert.Equal(t, 3.0, gather(t, reg, "vrt_host_ops_total"), "createElement, setElementText and insert")

	loop.Do(func() { count.Set(1) })
	assert.Equal(t, 1.0, gather(t, reg, "vrt_scheduler_flushes_total"))
	assert.GreaterOrEqual(t, gather(t, reg, "vrt_scheduler_jobs_total"), 1.0)
	assert.Equal(t, 1.0, gather(t, reg, "vrt_component_update_duration_seconds"))

	r.Render(nil, root)
	assert.Equal(t, 1.0, gather(t, reg, "vrt_component_unmounts_total"))
	assert.Equal(t, 0.0, gather(t, reg, "vrt_mounted_components"))
}

func TestFramesSent(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace("app"))

	m.FramesSent(2, 100)
	m.FramesSent(1, 20)
	assert.Equal(t, 3.0, gather(t, reg, "app_remote_frames_sent_total"))
	assert.Equal(t, 120.0, gather(t, reg, "app_remote_frame_bytes_total"))
}

func TestRecursionLimitCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))
	m.RecursionLimitExceeded(&scheduler.Job{Name: "loop"})
	m.FlushDone(3, time.Millisecond)

	assert.Equal(t, 1.0, gather(t, reg, "vrt_scheduler_recursive_updates_total"))
	assert.Equal(t, 3.0, gather(t, reg, "vrt_scheduler_jobs_total"))
}

func TestAnonymousComponentLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg), metrics.WithConstLabels(prometheus.Labels{"app": "test"}))
	m.ComponentMounted("")

	assert.Equal(t, 1.0, gather(t, reg, "vrt_component_mounts_total"))
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "vrt_component_mounts_total" {
			continue
		}
		labels := map[string]string{}
		for _, lp := range mf.GetMetric()[0].GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		assert.Equal(t, map[string]string{"app": "test", "component": "anonymous"}, labels)
	}
}

func TestRegisteringTwicePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(metrics.WithRegistry(reg))
	assert.Panics(t, func() { metrics.New(metrics.WithRegistry(reg)) })
}
