// Package vrt is the public API of the runtime.
//
// It re-exports the types most applications need and wires a host, a
// scheduler loop, a renderer and optional Prometheus metrics together:
//
//	doc := memdom.New()
//	rt := vrt.New(doc, vrt.Config{Dev: true})
//	app := rt.CreateApp(Counter, nil)
//	app.Mount(doc.Body())
//
// All rendering happens on the goroutine driving rt.Loop(). Code running
// on other goroutines hands work over with Dispatch.
package vrt

import (
	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// =============================================================================
// Core types
// =============================================================================

// VNode is a virtual node.
type VNode = vdom.VNode

// Props are vnode properties.
type Props = vdom.Props

// Definition describes a component.
type Definition = component.Definition

// Ctx is passed to Setup and Render.
type Ctx = component.Ctx

// RenderFunc is returned by Setup to render the component.
type RenderFunc = component.RenderFunc

// App is a mounted application.
type App = renderer.App

// HostOps is the set of host mutations a renderer drives.
type HostOps = renderer.HostOps

// Instance is a live component instance.
type Instance = component.Instance

// =============================================================================
// Built-in components
// =============================================================================

var (
	// KeepAlive caches the instances of its deactivated children.
	KeepAlive = renderer.KeepAlive

	// Transition runs enter and leave hooks around its single child.
	Transition = renderer.Transition
)

// H creates a vnode for an element tag, a component definition or a
// built-in.
func H(typ any, props Props, children ...any) *VNode {
	return vdom.H(typ, props, children...)
}

// Teleport renders children into the host node matched by to.
func Teleport(to any, disabled bool, children ...any) *VNode {
	return vdom.Teleport(to, disabled, children...)
}

// Suspense shows fallback until every async dependency of content resolved.
func Suspense(props Props, content, fallback *VNode) *VNode {
	return vdom.Suspense(props, content, fallback)
}

// =============================================================================
// Reactivity
// =============================================================================

// NewSignal creates a reactive value.
func NewSignal[T any](initial T) *reactive.Signal[T] {
	return reactive.NewSignal(initial)
}

// NewComputed creates a cached derived value.
func NewComputed[T any](fn func() T) *reactive.Computed[T] {
	return reactive.NewComputed(fn)
}

// Batch defers effects triggered inside fn until it returns.
func Batch(fn func()) {
	reactive.Batch(fn)
}

// =============================================================================
// Lifecycle and injection, valid during Setup
// =============================================================================

// OnMounted registers fn to run after the component is inserted.
func OnMounted(fn func()) { component.OnMounted(fn) }

// OnUpdated registers fn to run after the component re-rendered.
func OnUpdated(fn func()) { component.OnUpdated(fn) }

// OnUnmounted registers fn to run after the component was removed.
func OnUnmounted(fn func()) { component.OnUnmounted(fn) }

// Provide makes value available to descendants under key.
func Provide(key, value any) { component.Provide(key, value) }

// Inject looks key up in the ancestors and the application.
func Inject(key any) (any, bool) { return component.Inject(key) }

// Watch runs cb whenever source returns a changed value.
func Watch(source func() any, cb func(value, old any, onCleanup component.OnCleanup), opts ...component.WatchOptions) component.StopHandle {
	return component.Watch(source, cb, opts...)
}

// WatchEffect runs fn now and again whenever its dependencies change.
func WatchEffect(fn func(onCleanup component.OnCleanup), opts ...component.WatchOptions) component.StopHandle {
	return component.WatchEffect(fn, opts...)
}
