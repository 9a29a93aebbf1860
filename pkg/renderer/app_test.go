package renderer_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/vdom"
)

type countingPlugin struct{ installs int }

func (p *countingPlugin) Install(app *renderer.App, _ ...any) {
	p.installs++
	app.Provide("plugin", "installed")
}

func TestAppMountAndUnmount(t *testing.T) {
	f := newFixture(t)
	greeting := &component.Definition{
		Name:  "Greeting",
		Props: component.PropsOptions{"name": {Type: component.PropString}},
		Setup: func(ctx *component.Ctx) any {
			ctx.Expose(map[string]any{"kind": "greeting"})
			return component.RenderFunc(func() *vdom.VNode {
				return vdom.H1(fmt.Sprintf("Hello %v", ctx.Prop("name")))
			})
		},
	}
	app := f.r.CreateApp(greeting, vdom.Props{"name": "world"})

	cleaned := 0
	app.OnUnmount(func() { cleaned++ })

	public := app.Mount(f.root)
	assert.True(t, app.Mounted())
	assert.Equal(t, "<h1>Hello world</h1>", f.html())
	assert.Equal(t, map[string]any{"kind": "greeting"}, public)

	app.Unmount()
	assert.False(t, app.Mounted())
	assert.Empty(t, f.html())
	assert.Equal(t, 1, cleaned)
}

func TestAppMountTwiceWarns(t *testing.T) {
	f := newFixture(t)
	root := &component.Definition{Name: "Root", Render: func(*component.Ctx) *vdom.VNode { return vdom.P("x") }}
	app := f.r.CreateApp(root, nil)

	app.Mount(f.root)
	assert.Nil(t, app.Mount(f.root))
	assert.Equal(t, "<p>x</p>", f.html())
}

func TestAppProvideAndPlugins(t *testing.T) {
	f := newFixture(t)
	var seen []any
	child := &component.Definition{
		Name: "Child",
		Setup: func(*component.Ctx) any {
			seen = append(seen, component.InjectOr("plugin", nil), component.InjectOr("user", nil))
			return nil
		},
		Render: func(*component.Ctx) *vdom.VNode { return vdom.Text("c") },
	}
	root := &component.Definition{
		Name:   "Root",
		Render: func(*component.Ctx) *vdom.VNode { return vdom.H(child, nil) },
	}

	plugin := &countingPlugin{}
	app := f.r.CreateApp(root, nil).
		Use(plugin).
		Use(plugin).
		Provide("user", "ada")
	assert.Equal(t, 1, plugin.installs)

	app.Mount(f.root)
	assert.Equal(t, []any{"installed", "ada"}, seen)

	var outside any
	app.RunWithContext(func() { outside, _ = component.Inject("user") })
	assert.Equal(t, "ada", outside)
}

func TestAppGlobalComponents(t *testing.T) {
	f := newFixture(t)
	badge := &component.Definition{
		Name:   "AppBadge",
		Render: func(*component.Ctx) *vdom.VNode { return vdom.Span(vdom.Class("badge"), "new") },
	}
	root := &component.Definition{
		Name: "Root",
		Setup: func(*component.Ctx) any {
			def, ok := component.ResolveComponent("app-badge")
			require.True(t, ok)
			return component.RenderFunc(func() *vdom.VNode { return vdom.Div(vdom.H(def, nil)) })
		},
	}
	app := f.r.CreateApp(root, nil).Component("AppBadge", badge)
	app.Mount(f.root)
	assert.Equal(t, `<div><span class="badge">new</span></div>`, f.html())
}

func TestAppErrorHandler(t *testing.T) {
	f := newFixture(t)
	root := &component.Definition{
		Name:  "Root",
		Setup: func(*component.Ctx) any { panic("setup broke") },
	}
	var got []errors.ErrorCode
	app := f.r.CreateApp(root, nil)
	app.Config().ErrorHandler = func(_ error, _ *component.Instance, code errors.ErrorCode) {
		got = append(got, code)
	}
	app.Mount(f.root)
	assert.Equal(t, []errors.ErrorCode{errors.SetupFunction}, got)
}

func TestAppUnmountCleanupErrorsAreReported(t *testing.T) {
	f := newFixture(t)
	root := &component.Definition{Name: "Root", Render: func(*component.Ctx) *vdom.VNode { return vdom.P("x") }}
	var got []errors.ErrorCode
	app := f.r.CreateApp(root, nil)
	app.Config().ErrorHandler = func(_ error, _ *component.Instance, code errors.ErrorCode) {
		got = append(got, code)
	}
	app.OnUnmount(func() { panic("cleanup broke") })
	app.Mount(f.root)
	app.Unmount()
	assert.Empty(t, f.html())
	assert.Equal(t, []errors.ErrorCode{errors.AppUnmountCleanup}, got)
}
