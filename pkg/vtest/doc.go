// Package vtest provides testing helpers for components.
//
// A Harness mounts a component into an in-memory document and drives it
// the way a host would: events are dispatched inside a loop task, so every
// update they trigger is flushed before the helper returns.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.Mount(Counter, nil)
//	    vtest.ExpectContains(t, h, "count: 0")
//
//	    h.Click("button")
//	    vtest.ExpectContains(t, h, "count: 1")
//	}
//
// # One-Liner Rendering
//
// For stateless trees, RenderToString mounts, serializes and unmounts:
//
//	html := vtest.RenderToString(vdom.Div(vdom.Class("card"), "hi"))
package vtest
