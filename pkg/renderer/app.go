package renderer

import (
	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// Plugin extends an application.
type Plugin interface {
	Install(app *App, options ...any)
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(app *App, options ...any)

// Install implements Plugin.
func (f PluginFunc) Install(app *App, options ...any) { f(app, options...) }

// App is a root component bound to its own application context.
type App struct {
	r         *Renderer
	root      *component.Definition
	rootProps vdom.Props
	ctx       *component.AppContext

	plugins   []Plugin
	container vdom.Node
	vnode     *vdom.VNode
	mounted   bool
	cleanups  []func()
}

// CreateApp creates an application for root. rootProps are passed to the
// root component on mount.
func (r *Renderer) CreateApp(root *component.Definition, rootProps vdom.Props) *App {
	a := &App{
		r:         r,
		root:      root,
		rootProps: rootProps,
		ctx:       component.NewAppContext(r.sched, r.logger),
	}
	a.ctx.Config.Dev = r.app.Config.Dev
	a.ctx.App = a
	return a
}

// Config returns the application configuration. Changes apply to
// components mounted afterwards and to warnings and errors reported later.
func (a *App) Config() *component.AppConfig { return &a.ctx.Config }

// Context returns the application context.
func (a *App) Context() *component.AppContext { return a.ctx }

// Use installs p once; installing the same plugin again only warns.
func (a *App) Use(p Plugin, options ...any) *App {
	for _, installed := range a.plugins {
		if !reactive.HasChanged(installed, p) {
			component.Warn(nil, "plugin has already been applied to target app")
			return a
		}
	}
	a.plugins = append(a.plugins, p)
	p.Install(a, options...)
	return a
}

// Component registers a global component.
func (a *App) Component(name string, def *component.Definition) *App {
	if _, ok := a.ctx.Components[name]; ok {
		component.Warn(nil, "component %q has already been registered in target app", name)
	}
	a.ctx.Components[name] = def
	return a
}

// Directive registers a global directive.
func (a *App) Directive(name string, d *vdom.Directive) *App {
	if _, ok := a.ctx.Directives[name]; ok {
		component.Warn(nil, "directive %q has already been registered in target app", name)
	}
	a.ctx.Directives[name] = d
	return a
}

// Provide makes value injectable in every component of the app.
func (a *App) Provide(key, value any) *App {
	if _, ok := a.ctx.Provides.Lookup(key); ok {
		component.Warn(nil, "app already provides property with key %v; it will be overwritten with the new value", key)
	}
	a.ctx.Provides.Set(key, value)
	return a
}

// RunWithContext runs fn with the app as the injection context, so Inject
// works outside of components.
func (a *App) RunWithContext(fn func()) {
	component.RunWithApp(a.ctx, fn)
}

// OnUnmount registers fn to run when the app unmounts.
func (a *App) OnUnmount(fn func()) {
	a.cleanups = append(a.cleanups, fn)
}

// Mount renders the root component into container and returns its public
// value (the exposed map, or the instance).
func (a *App) Mount(container vdom.Node) any {
	if a.mounted {
		component.Warn(nil, "app has already been mounted; create a new app instance to mount it again")
		return nil
	}
	v := vdom.NewComponent(a.root, a.rootProps, nil)
	a.r.render(v, container, a.ctx)
	a.container = container
	a.vnode = v
	a.mounted = true
	if inst := component.InstanceOf(v); inst != nil {
		return inst.PublicValue()
	}
	return nil
}

// Mounted reports whether the app is mounted.
func (a *App) Mounted() bool { return a.mounted }

// Unmount runs the OnUnmount callbacks and removes the tree.
func (a *App) Unmount() {
	if !a.mounted {
		component.Warn(nil, "cannot unmount an app that is not mounted")
		return
	}
	root := component.InstanceOf(a.vnode)
	for _, fn := range a.cleanups {
		component.CallWithErrorHandling(fn, root, errors.AppUnmountCleanup)
	}
	a.r.render(nil, a.container, a.ctx)
	a.mounted = false
	a.vnode = nil
}
