package renderer_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

func TestComponentRendersOncePerTick(t *testing.T) {
	f := newFixture(t)
	count := reactive.NewSignal(0)
	renders := 0
	counter := &component.Definition{
		Name: "Counter",
		Setup: func(*component.Ctx) any {
			return component.RenderFunc(func() *vdom.VNode {
				renders++
				return vdom.Span(fmt.Sprint(count.Get()))
			})
		},
	}
	f.render(vdom.H(counter, nil))
	require.Equal(t, 1, renders)
	f.doc.ResetOps()

	f.loop.Do(func() {
		count.Set(1)
		count.Set(2)
		count.Set(3)
	})
	assert.Equal(t, 2, renders)
	assert.Equal(t, "<span>3</span>", f.html())
	assert.Equal(t, 1, f.doc.CountOps("setElementText"), "ops: %v", f.doc.Ops())
}

func TestParentUpdatesBeforeChild(t *testing.T) {
	f := newFixture(t)
	tick := reactive.NewSignal(0)
	var order []string

	child := &component.Definition{
		Name: "Child",
		Setup: func(*component.Ctx) any {
			return component.RenderFunc(func() *vdom.VNode {
				order = append(order, "child")
				return vdom.Span(vdom.Textf("c%d", tick.Get()))
			})
		},
	}
	parent := &component.Definition{
		Name: "Parent",
		Setup: func(*component.Ctx) any {
			return component.RenderFunc(func() *vdom.VNode {
				order = append(order, "parent")
				return vdom.Div(vdom.Textf("p%d", tick.Get()), vdom.H(child, nil))
			})
		},
	}
	f.render(vdom.H(parent, nil))
	order = nil

	f.loop.Do(func() { tick.Set(1) })
	assert.Equal(t, []string{"parent", "child"}, order)
	assert.Equal(t, "<div>p1<span>c1</span></div>", f.html())
}

func TestLifecycleHookOrder(t *testing.T) {
	f := newFixture(t)
	tick := reactive.NewSignal(0)
	var calls []string
	hooks := func(name string) {
		component.OnBeforeMount(func() { calls = append(calls, name+":beforeMount") })
		component.OnMounted(func() { calls = append(calls, name+":mounted") })
		component.OnBeforeUpdate(func() { calls = append(calls, name+":beforeUpdate") })
		component.OnUpdated(func() { calls = append(calls, name+":updated") })
		component.OnBeforeUnmount(func() { calls = append(calls, name+":beforeUnmount") })
		component.OnUnmounted(func() { calls = append(calls, name+":unmounted") })
	}

	child := &component.Definition{
		Name: "Child",
		Setup: func(*component.Ctx) any {
			hooks("child")
			return component.RenderFunc(func() *vdom.VNode { return vdom.Span("child") })
		},
	}
	parent := &component.Definition{
		Name: "Parent",
		Setup: func(*component.Ctx) any {
			hooks("parent")
			return component.RenderFunc(func() *vdom.VNode {
				return vdom.Div(vdom.Textf("%d", tick.Get()), vdom.H(child, nil))
			})
		},
	}

	f.render(vdom.H(parent, nil))
	assert.Equal(t, []string{
		"parent:beforeMount", "child:beforeMount",
		"child:mounted", "parent:mounted",
	}, calls)

	calls = nil
	f.loop.Do(func() { tick.Set(1) })
	assert.Equal(t, []string{"parent:beforeUpdate", "parent:updated"}, calls)

	calls = nil
	f.render(nil)
	assert.Equal(t, []string{
		"parent:beforeUnmount", "child:beforeUnmount",
		"child:unmounted", "parent:unmounted",
	}, calls)
}

func TestUnmountStopsEffects(t *testing.T) {
	f := newFixture(t)
	source := reactive.NewSignal(0)
	watched, computed := 0, 0
	def := &component.Definition{
		Name: "Watcher",
		Setup: func(*component.Ctx) any {
			double := reactive.NewComputed(func() int {
				computed++
				return source.Get() * 2
			})
			component.Watch(func() any { return source.Get() }, func(_, _ any, _ component.OnCleanup) {
				watched++
			})
			component.WatchEffect(func(component.OnCleanup) { _ = double.Get() })
			return component.RenderFunc(func() *vdom.VNode { return vdom.Text("w") })
		},
	}
	f.render(vdom.H(def, nil))
	f.loop.Do(func() { source.Set(1) })
	require.Equal(t, 1, watched)
	computedBefore := computed

	f.render(nil)
	f.loop.Do(func() { source.Set(2) })
	assert.Equal(t, 1, watched)
	assert.Equal(t, computedBefore, computed)
}

func TestPropsUpdateChild(t *testing.T) {
	f := newFixture(t)
	label := reactive.NewSignal("a")
	childRenders := 0
	child := &component.Definition{
		Name:  "Label",
		Props: component.PropsOptions{"text": {Type: component.PropString}},
		Render: func(ctx *component.Ctx) *vdom.VNode {
			childRenders++
			return vdom.Span(vdom.Textf("%v", ctx.Prop("text")))
		},
	}
	other := reactive.NewSignal(0)
	parent := &component.Definition{
		Name: "Parent",
		Setup: func(*component.Ctx) any {
			return component.RenderFunc(func() *vdom.VNode {
				return vdom.Div(
					vdom.Textf("%d", other.Get()),
					vdom.H(child, vdom.Props{"text": label.Get()}),
				)
			})
		},
	}
	f.render(vdom.H(parent, nil))
	require.Equal(t, 1, childRenders)

	// Unrelated parent state: the child is skipped.
	f.loop.Do(func() { other.Set(1) })
	assert.Equal(t, 1, childRenders)

	f.loop.Do(func() { label.Set("b") })
	assert.Equal(t, 2, childRenders)
	assert.Equal(t, "<div>1<span>b</span></div>", f.html())
}

func TestComponentRootElementMovesWithKeyedDiff(t *testing.T) {
	f := newFixture(t)
	item := &component.Definition{
		Name:  "Item",
		Props: component.PropsOptions{"name": {}},
		Render: func(ctx *component.Ctx) *vdom.VNode {
			return vdom.Li(vdom.Textf("%v", ctx.Prop("name")))
		},
	}
	list := func(names ...string) *vdom.VNode {
		var items []*vdom.VNode
		for _, n := range names {
			items = append(items, vdom.H(item, vdom.Props{"key": n, "name": n}))
		}
		return vdom.Ul(items)
	}
	f.render(list("a", "b", "c"))
	f.render(list("c", "a", "b"))
	assert.Equal(t, "<ul><li>c</li><li>a</li><li>b</li></ul>", f.html())
}

func TestAttrsFallthrough(t *testing.T) {
	f := newFixture(t)
	button := &component.Definition{
		Name:   "Btn",
		Props:  component.PropsOptions{"label": {}},
		Render: func(ctx *component.Ctx) *vdom.VNode { return vdom.Button(vdom.Class("btn"), vdom.Textf("%v", ctx.Prop("label"))) },
	}
	f.render(vdom.H(button, vdom.Props{"label": "Go", "class": "primary", "id": "go"}))
	assert.Equal(t, `<button class="btn primary" id="go">Go</button>`, f.html())
}

func TestTemplateRefs(t *testing.T) {
	f := newFixture(t)
	var got []any
	def := &component.Definition{
		Name: "Reffed",
		Render: func(*component.Ctx) *vdom.VNode {
			return vdom.Div(vdom.Ref(func(el any) { got = append(got, el) }))
		},
	}
	f.render(vdom.H(def, nil))
	require.Len(t, got, 1)
	assert.Same(t, f.root.FirstChild(), got[0])

	f.render(nil)
	require.Len(t, got, 2)
	assert.Nil(t, got[1])
}

func TestRenderErrorLeavesPlaceholder(t *testing.T) {
	f := newFixture(t)
	var codes []errors.ErrorCode
	f.r.AppContext().Config.ErrorHandler = func(err error, _ *component.Instance, code errors.ErrorCode) {
		codes = append(codes, code)
	}
	broken := &component.Definition{
		Name:   "Broken",
		Render: func(*component.Ctx) *vdom.VNode { panic("render failed") },
	}
	f.render(vdom.Div(vdom.H(broken, nil), vdom.Span("sibling")))

	assert.Equal(t, []errors.ErrorCode{errors.RenderFunction}, codes)
	assert.Equal(t, "<div><!----><span>sibling</span></div>", f.html())
}

func TestHookErrorDoesNotAbortFlush(t *testing.T) {
	f := newFixture(t)
	var codes []errors.ErrorCode
	f.r.AppContext().Config.ErrorHandler = func(_ error, _ *component.Instance, code errors.ErrorCode) {
		codes = append(codes, code)
	}
	secondRan := false
	def := &component.Definition{
		Name: "Hooks",
		Setup: func(*component.Ctx) any {
			component.OnMounted(func() { panic("first") })
			component.OnMounted(func() { secondRan = true })
			return component.RenderFunc(func() *vdom.VNode { return vdom.Text("ok") })
		},
	}
	f.render(vdom.H(def, nil))
	assert.True(t, secondRan)
	assert.Equal(t, []errors.ErrorCode{errors.MountedHook}, codes)
}

func TestAsyncSetupWithoutSuspense(t *testing.T) {
	f := newFixture(t)
	var codes []errors.ErrorCode
	f.r.AppContext().Config.ErrorHandler = func(_ error, _ *component.Instance, code errors.ErrorCode) {
		codes = append(codes, code)
	}
	p, _ := component.Deferred()
	def := &component.Definition{
		Name:  "Async",
		Setup: func(*component.Ctx) any { return p },
	}
	f.render(vdom.Div(vdom.H(def, nil)))
	assert.Equal(t, []errors.ErrorCode{errors.AsyncSetup}, codes)
	assert.Equal(t, "<div><!----></div>", f.html())
}

func TestEmitReachesParentListener(t *testing.T) {
	f := newFixture(t)
	var got []any
	child := &component.Definition{
		Name:  "Emitter",
		Emits: []string{"pick"},
		Setup: func(ctx *component.Ctx) any {
			component.OnMounted(func() { ctx.Emit("pick", 42) })
			return component.RenderFunc(func() *vdom.VNode { return vdom.Text("e") })
		},
	}
	f.render(vdom.H(child, vdom.Props{"onPick": func(v any) { got = append(got, v) }}))
	assert.Equal(t, []any{42}, got)
}

func TestProvideInject(t *testing.T) {
	f := newFixture(t)
	leaf := &component.Definition{
		Name: "Leaf",
		Setup: func(*component.Ctx) any {
			theme := component.InjectOr("theme", "none")
			return component.RenderFunc(func() *vdom.VNode { return vdom.Span(fmt.Sprint(theme)) })
		},
	}
	middle := &component.Definition{
		Name:   "Middle",
		Render: func(*component.Ctx) *vdom.VNode { return vdom.H(leaf, nil) },
	}
	provider := &component.Definition{
		Name: "Provider",
		Setup: func(*component.Ctx) any {
			component.Provide("theme", "dark")
			return component.RenderFunc(func() *vdom.VNode {
				return vdom.Div(vdom.H(middle, nil), vdom.H(leaf, nil))
			})
		},
	}
	f.render(vdom.Div(vdom.H(provider, nil), vdom.H(leaf, nil)))
	assert.Equal(t, "<div><div><span>dark</span><span>dark</span></div><span>none</span></div>", f.html())
}
