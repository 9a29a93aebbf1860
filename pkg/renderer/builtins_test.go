package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/host/memdom"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/vdom"
)

func addModal(f *fixture) *memdom.Node {
	modal := f.doc.Element("div")
	f.doc.PatchProp(modal, "id", nil, "modal", "")
	f.doc.Insert(modal, f.doc.Body(), nil)
	f.doc.ResetOps()
	return modal
}

func TestTeleportRendersIntoTarget(t *testing.T) {
	f := newFixture(t)
	modal := addModal(f)

	f.render(vdom.Div(vdom.Teleport("#modal", false, vdom.Span("dialog")), vdom.P("main")))
	assert.Equal(t, "<div><p>main</p></div>", f.html())
	assert.Equal(t, "<span>dialog</span>", modal.HTML())

	f.render(vdom.Div(vdom.Teleport("#modal", false, vdom.Span("updated")), vdom.P("main")))
	assert.Equal(t, "<span>updated</span>", modal.HTML())

	f.render(nil)
	assert.Empty(t, f.html())
	assert.Empty(t, modal.HTML())
	assert.Empty(t, modal.Children(), "target markers are removed too")
}

func TestTeleportToggleDisabled(t *testing.T) {
	f := newFixture(t)
	modal := addModal(f)
	tree := func(disabled bool) *vdom.VNode {
		return vdom.Div(vdom.Teleport("#modal", disabled, vdom.Span(vdom.Key("s"), "content")))
	}

	f.render(tree(true))
	assert.Equal(t, "<div><span>content</span></div>", f.html())
	assert.Empty(t, modal.HTML())
	span := f.root.FirstChild().QuerySelector("span")
	require.NotNil(t, span)

	f.render(tree(false))
	assert.Equal(t, "<div></div>", f.html())
	assert.Equal(t, "<span>content</span>", modal.HTML())
	assert.Same(t, span, modal.QuerySelector("span"), "content is moved, not recreated")

	f.render(tree(true))
	assert.Equal(t, "<div><span>content</span></div>", f.html())
	assert.Empty(t, modal.HTML())
}

func TestTeleportMissingTargetWarns(t *testing.T) {
	f := newFixture(t)
	var warnings []string
	f.r.AppContext().Config.WarnHandler = func(msg string, _ *component.Instance, _ string) {
		warnings = append(warnings, msg)
	}
	host := &component.Definition{
		Name:   "Host",
		Render: func(*component.Ctx) *vdom.VNode { return vdom.Teleport("#nowhere", false, vdom.Span("x")) },
	}
	f.render(vdom.H(host, nil))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "invalid teleport target")
}

func TestKeepAliveCachesInstances(t *testing.T) {
	f := newFixture(t)
	type counts struct{ setup, activated, deactivated, unmounted int }
	stats := map[string]*counts{"A": {}, "B": {}}
	def := func(name string) *component.Definition {
		return &component.Definition{
			Name: name,
			Setup: func(*component.Ctx) any {
				c := stats[name]
				c.setup++
				component.OnActivated(func() { c.activated++ })
				component.OnDeactivated(func() { c.deactivated++ })
				component.OnUnmounted(func() { c.unmounted++ })
				return component.RenderFunc(func() *vdom.VNode { return vdom.Span(name) })
			},
		}
	}
	a, b := def("A"), def("B")
	current := reactive.NewSignal("A")
	view := &component.Definition{
		Name: "View",
		Setup: func(*component.Ctx) any {
			return component.RenderFunc(func() *vdom.VNode {
				child := a
				if current.Get() == "B" {
					child = b
				}
				return vdom.H(renderer.KeepAlive, nil, vdom.H(child, nil))
			})
		},
	}

	f.render(vdom.H(view, nil))
	assert.Equal(t, "<span>A</span>", f.html())
	assert.Equal(t, counts{setup: 1, activated: 1}, *stats["A"])

	f.loop.Do(func() { current.Set("B") })
	assert.Equal(t, "<span>B</span>", f.html())
	assert.Equal(t, counts{setup: 1, activated: 1, deactivated: 1}, *stats["A"])
	assert.Equal(t, counts{setup: 1, activated: 1}, *stats["B"])

	f.loop.Do(func() { current.Set("A") })
	assert.Equal(t, "<span>A</span>", f.html())
	assert.Equal(t, counts{setup: 1, activated: 2, deactivated: 1}, *stats["A"])
	assert.Equal(t, counts{setup: 1, activated: 1, deactivated: 1}, *stats["B"])

	f.render(nil)
	assert.Empty(t, f.html())
	assert.Equal(t, 1, stats["A"].unmounted)
	assert.Equal(t, 1, stats["B"].unmounted)
}

func TestSuspenseShowsFallbackUntilResolved(t *testing.T) {
	f := newFixture(t)
	promise, settle := component.Deferred()
	async := &component.Definition{
		Name:  "Async",
		Setup: func(*component.Ctx) any { return promise },
	}
	var events []string
	props := vdom.Props{
		"onPending":  func() { events = append(events, "pending") },
		"onFallback": func() { events = append(events, "fallback") },
		"onResolve":  func() { events = append(events, "resolve") },
	}

	f.render(vdom.Suspense(props, vdom.H(async, nil), vdom.Span("loading")))
	assert.Equal(t, "<span>loading</span>", f.html())
	assert.Equal(t, []string{"pending", "fallback"}, events)

	settle(component.RenderFunc(func() *vdom.VNode { return vdom.Div("done") }), nil)
	assert.Equal(t, "<span>loading</span>", f.html(), "continuations run on the loop")

	require.Equal(t, 1, f.loop.RunPending())
	assert.Equal(t, "<div>done</div>", f.html())
	assert.Equal(t, []string{"pending", "fallback", "resolve"}, events)
}

func TestSuspenseDefersMountedHooks(t *testing.T) {
	f := newFixture(t)
	promise, settle := component.Deferred()
	var mounted []string
	sync := &component.Definition{
		Name: "Sync",
		Setup: func(*component.Ctx) any {
			component.OnMounted(func() { mounted = append(mounted, "sync") })
			return component.RenderFunc(func() *vdom.VNode { return vdom.Span("sync") })
		},
	}
	async := &component.Definition{
		Name: "Async",
		Setup: func(*component.Ctx) any {
			component.OnMounted(func() { mounted = append(mounted, "async") })
			return promise
		},
	}

	f.render(vdom.Suspense(nil, vdom.Div(vdom.H(sync, nil), vdom.H(async, nil)), vdom.Span("loading")))
	assert.Empty(t, mounted, "hooks wait for the boundary")

	settle(component.RenderFunc(func() *vdom.VNode { return vdom.Span("async") }), nil)
	f.loop.RunPending()
	assert.Equal(t, "<div><span>sync</span><span>async</span></div>", f.html())
	assert.ElementsMatch(t, []string{"sync", "async"}, mounted)
}

func TestTransitionDelaysRemoval(t *testing.T) {
	f := newFixture(t)
	show := reactive.NewSignal(true)
	var done func()
	var left []vdom.Node
	props := vdom.Props{
		"onLeave": func(el vdom.Node, remove func()) {
			left = append(left, el)
			done = remove
		},
	}
	view := &component.Definition{
		Name: "View",
		Setup: func(*component.Ctx) any {
			return component.RenderFunc(func() *vdom.VNode {
				if show.Get() {
					return vdom.H(renderer.Transition, props, vdom.Div("x"))
				}
				return vdom.H(renderer.Transition, props)
			})
		},
	}

	f.render(vdom.H(view, nil))
	assert.Equal(t, "<div>x</div>", f.html())
	el := f.root.FirstChild()

	f.loop.Do(func() { show.Set(false) })
	require.NotNil(t, done)
	require.Len(t, left, 1)
	assert.Same(t, el, left[0])
	assert.Contains(t, f.html(), "<div>x</div>", "removal waits for the leave hook")

	done()
	assert.NotContains(t, f.html(), "<div>x</div>")
}

func TestTransitionEnterHooksAfterMount(t *testing.T) {
	f := newFixture(t)
	show := reactive.NewSignal(false)
	var calls []string
	props := vdom.Props{
		"onBeforeEnter": func(vdom.Node) { calls = append(calls, "beforeEnter") },
		"onEnter":       func(vdom.Node) { calls = append(calls, "enter") },
		"onAfterEnter":  func(vdom.Node) { calls = append(calls, "afterEnter") },
	}
	view := &component.Definition{
		Name: "View",
		Setup: func(*component.Ctx) any {
			return component.RenderFunc(func() *vdom.VNode {
				if show.Get() {
					return vdom.H(renderer.Transition, props, vdom.P("hello"))
				}
				return vdom.H(renderer.Transition, props)
			})
		},
	}

	f.render(vdom.H(view, nil))
	assert.Empty(t, calls, "no appear transition on initial render")

	f.loop.Do(func() { show.Set(true) })
	assert.Equal(t, "<p>hello</p>", f.html())
	assert.Equal(t, []string{"beforeEnter", "enter", "afterEnter"}, calls)
}

type aliveCounts struct{ setup, activated, deactivated, unmounted int }

// aliveDefs builds span-rendering components that count their lifecycle.
func aliveDefs(names ...string) (map[string]*component.Definition, map[string]*aliveCounts) {
	defs := map[string]*component.Definition{}
	stats := map[string]*aliveCounts{}
	for _, name := range names {
		c := &aliveCounts{}
		stats[name] = c
		defs[name] = &component.Definition{
			Name: name,
			Setup: func(*component.Ctx) any {
				c.setup++
				component.OnActivated(func() { c.activated++ })
				component.OnDeactivated(func() { c.deactivated++ })
				component.OnUnmounted(func() { c.unmounted++ })
				return component.RenderFunc(func() *vdom.VNode { return vdom.Span(name) })
			},
		}
	}
	return defs, stats
}

func keepAliveView(defs map[string]*component.Definition, current *reactive.Signal[string], props func() vdom.Props) *component.Definition {
	return &component.Definition{
		Name: "View",
		Setup: func(*component.Ctx) any {
			return component.RenderFunc(func() *vdom.VNode {
				return vdom.H(renderer.KeepAlive, props(), vdom.H(defs[current.Get()], nil))
			})
		},
	}
}

func TestKeepAliveMaxEvictsLeastRecentlyUsed(t *testing.T) {
	f := newFixture(t)
	defs, stats := aliveDefs("A", "B", "C")
	current := reactive.NewSignal("A")
	f.render(vdom.H(keepAliveView(defs, current, func() vdom.Props { return vdom.Props{"max": 2} }), nil))

	f.loop.Do(func() { current.Set("B") })
	f.loop.Do(func() { current.Set("C") })
	assert.Equal(t, "<span>C</span>", f.html())
	assert.Equal(t, 1, stats["A"].unmounted, "A is evicted when C enters a full cache")
	assert.Zero(t, stats["B"].unmounted)

	f.loop.Do(func() { current.Set("A") })
	assert.Equal(t, "<span>A</span>", f.html())
	assert.Equal(t, 2, stats["A"].setup, "an evicted instance is set up again")
	assert.Equal(t, 1, stats["B"].unmounted, "B is now the least recently used")
	assert.Zero(t, stats["C"].unmounted)

	f.loop.Do(func() { current.Set("C") })
	assert.Equal(t, 1, stats["C"].setup, "C is still cached")
	assert.Equal(t, 2, stats["C"].activated)
}

func TestKeepAliveIncludePrunesCache(t *testing.T) {
	f := newFixture(t)
	defs, stats := aliveDefs("A", "B")
	current := reactive.NewSignal("A")
	include := reactive.NewSignal("A,B")
	f.render(vdom.H(keepAliveView(defs, current, func() vdom.Props {
		return vdom.Props{"include": include.Get()}
	}), nil))

	f.loop.Do(func() { current.Set("B") })
	require.Equal(t, 1, stats["A"].deactivated)
	require.Zero(t, stats["A"].unmounted)

	f.loop.Do(func() { include.Set("B") })
	assert.Equal(t, 1, stats["A"].unmounted, "A no longer matches include")
	assert.Zero(t, stats["B"].unmounted, "the current child stays mounted")

	f.loop.Do(func() { current.Set("A") })
	assert.Equal(t, "<span>A</span>", f.html())
	assert.Equal(t, 2, stats["A"].setup)
	assert.Equal(t, 1, stats["B"].deactivated, "B is still cached")

	f.loop.Do(func() { current.Set("B") })
	assert.Equal(t, 2, stats["A"].unmounted, "an uncached child is unmounted normally")
	assert.Equal(t, 1, stats["B"].setup)
}

func TestKeepAliveExcludeIsNotCached(t *testing.T) {
	f := newFixture(t)
	defs, stats := aliveDefs("A", "B")
	current := reactive.NewSignal("A")
	f.render(vdom.H(keepAliveView(defs, current, func() vdom.Props {
		return vdom.Props{"exclude": []string{"A"}}
	}), nil))

	f.loop.Do(func() { current.Set("B") })
	f.loop.Do(func() { current.Set("A") })
	assert.Equal(t, "<span>A</span>", f.html())
	assert.Equal(t, 2, stats["A"].setup)
	assert.Equal(t, 1, stats["A"].unmounted)
	assert.Zero(t, stats["A"].deactivated)
	assert.Equal(t, 1, stats["B"].deactivated)
}

func transitionView(show *reactive.Signal[string], props vdom.Props) *component.Definition {
	return &component.Definition{
		Name: "View",
		Setup: func(*component.Ctx) any {
			return component.RenderFunc(func() *vdom.VNode {
				name := show.Get()
				return vdom.H(renderer.Transition, props, vdom.Div(vdom.Key(name), name))
			})
		},
	}
}

func TestTransitionOutIn(t *testing.T) {
	f := newFixture(t)
	show := reactive.NewSignal("a")
	var done func()
	props := vdom.Props{
		"mode":    "out-in",
		"onLeave": func(_ vdom.Node, remove func()) { done = remove },
	}
	f.render(vdom.H(transitionView(show, props), nil))
	assert.Equal(t, "<div>a</div>", f.html())

	f.loop.Do(func() { show.Set("b") })
	require.NotNil(t, done)
	assert.Equal(t, "<div>a</div>", f.html(), "b waits for a to leave")

	f.loop.Do(done)
	assert.Equal(t, "<div>b</div>", f.html())
}

func TestTransitionInOut(t *testing.T) {
	f := newFixture(t)
	show := reactive.NewSignal("a")
	var enterDone, leaveDone func()
	props := vdom.Props{
		"mode":    "in-out",
		"onEnter": func(_ vdom.Node, done func()) { enterDone = done },
		"onLeave": func(_ vdom.Node, done func()) { leaveDone = done },
	}
	f.render(vdom.H(transitionView(show, props), nil))
	assert.Equal(t, "<div>a</div>", f.html())

	f.loop.Do(func() { show.Set("b") })
	require.NotNil(t, enterDone)
	assert.Nil(t, leaveDone, "a only leaves after b entered")
	assert.Contains(t, f.html(), "<div>a</div>")
	assert.Contains(t, f.html(), "<div>b</div>")

	f.loop.Do(enterDone)
	require.NotNil(t, leaveDone)
	assert.Contains(t, f.html(), "<div>a</div>")

	f.loop.Do(leaveDone)
	assert.Equal(t, "<div>b</div>", f.html())
}
