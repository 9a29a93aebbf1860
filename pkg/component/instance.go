package component

import (
	"strings"
	"sync/atomic"

	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/vdom"
)

var uidCounter atomic.Int64

// SuspenseBoundary is the part of a suspense boundary instances need.
type SuspenseBoundary interface {
	// QueueEffect holds job until the boundary resolves. It returns false
	// when the boundary has no pending branch.
	QueueEffect(job *scheduler.Job) bool
}

// KeepAliveContext connects a KeepAlive instance to the renderer.
type KeepAliveContext struct {
	// Renderer is owned by the renderer package.
	Renderer any

	Activate   func(v *vdom.VNode, container, anchor vdom.Node, namespace string, optimized bool)
	Deactivate func(v *vdom.VNode)
}

// Instance is a mounted (or mounting) component.
//
// Parent and Root are non-owning back-references. The renderer owns the
// tree of instances through vnode.Instance.
type Instance struct {
	UID    int
	Type   *Definition
	Parent *Instance
	Root   *Instance

	AppContext *AppContext

	VNode   *vdom.VNode
	Next    *vdom.VNode
	SubTree *vdom.VNode

	// Effect, Job and Update are installed by the renderer.
	Effect *reactive.Effect
	Job    *scheduler.Job
	Update func()

	Scope *reactive.Scope

	render RenderFunc

	props        *reactive.Map
	attrs        vdom.Props
	attrsVersion *reactive.Signal[int]
	slots        vdom.Slots
	setupState   map[string]any
	exposed      map[string]any

	// Refs holds named template refs.
	Refs map[string]any

	Provides *Provides

	propsDefaults map[string]any
	emitted       map[string]bool
	emits         normalizedEmits

	hooks         [hookCount][]*scheduler.Job
	errorCaptured []ErrorCapturedHook

	IsMounted     bool
	IsUnmounted   bool
	IsDeactivated bool

	// AsyncDep is set while an async setup is pending.
	AsyncDep      *Promise
	AsyncResolved bool

	Suspense   SuspenseBoundary
	SuspenseID int

	KeepAlive *KeepAliveContext

	ctx *Ctx
}

// NewInstance allocates an instance for v. Setup is not run.
func NewInstance(v *vdom.VNode, parent *Instance, app *AppContext, suspense SuspenseBoundary) *Instance {
	def, _ := v.Comp.(*Definition)
	if app == nil {
		if parent != nil {
			app = parent.AppContext
		} else {
			app = emptyAppContext()
		}
	}

	inst := &Instance{
		UID:          int(uidCounter.Add(1)) - 1,
		Type:         def,
		Parent:       parent,
		AppContext:   app,
		VNode:        v,
		Scope:        reactive.NewScope(true),
		attrs:        vdom.Props{},
		attrsVersion: reactive.NewSignal(0),
		slots:        vdom.Slots{},
		Refs:         make(map[string]any),
		emitted:      make(map[string]bool),
		emits:        def.normalizedEmits(),
		Suspense:     suspense,
	}
	if parent != nil {
		inst.Provides = parent.Provides
		inst.Root = parent.Root
	} else {
		inst.Provides = app.Provides
		inst.Root = inst
	}
	inst.ctx = &Ctx{inst: inst}
	if def != nil && def.KeepAlive {
		inst.KeepAlive = &KeepAliveContext{}
	}
	return inst
}

// InstanceUID implements vdom.Instance.
func (i *Instance) InstanceUID() int { return i.UID }

// Name returns the component name.
func (i *Instance) Name() string {
	return i.Type.ComponentName()
}

// Props returns the reactive props map.
func (i *Instance) Props() *reactive.Map { return i.props }

// Attrs returns the fallthrough attributes. Reading them from a render
// function subscribes to attrs changes.
func (i *Instance) Attrs() vdom.Props {
	i.attrsVersion.Get()
	return i.attrs
}

// Slots returns the current slots.
func (i *Instance) Slots() vdom.Slots { return i.slots }

// SetupState returns the state map returned by setup, if any.
func (i *Instance) SetupState() map[string]any { return i.setupState }

// Exposed returns the public surface set with Expose, or nil.
func (i *Instance) Exposed() map[string]any { return i.exposed }

// Ctx returns the context passed to setup and render.
func (i *Instance) Ctx() *Ctx { return i.ctx }

// PublicValue is what a template ref to this component receives: the
// exposed map when Expose was called, the instance otherwise.
func (i *Instance) PublicValue() any {
	if i.exposed != nil {
		return i.exposed
	}
	return i
}

// ToggleRecurse controls whether the render effect and job may re-trigger
// themselves.
func (i *Instance) ToggleRecurse(allowed bool) {
	if i.Effect != nil {
		i.Effect.SetAllowRecurse(allowed)
	}
	if i.Job != nil {
		if allowed {
			i.Job.Set(scheduler.AllowRecurse)
		} else {
			i.Job.Clear(scheduler.AllowRecurse)
		}
	}
}

// Scheduler returns the scheduler of the owning application.
func (i *Instance) Scheduler() *scheduler.Scheduler {
	return i.AppContext.Scheduler
}

// Trace renders the ancestor chain, "<App> > <List> > <Row>".
func (i *Instance) Trace() string {
	var names []string
	for cur := i; cur != nil; cur = cur.Parent {
		names = append(names, "<"+cur.Name()+">")
	}
	for l, r := 0, len(names)-1; l < r; l, r = l+1, r-1 {
		names[l], names[r] = names[r], names[l]
	}
	return strings.Join(names, " > ")
}

// IsKeepAlive reports whether v is a KeepAlive vnode.
func IsKeepAlive(v *vdom.VNode) bool {
	if v == nil || v.Kind != vdom.KindComponent {
		return false
	}
	d, ok := v.Comp.(*Definition)
	return ok && d.KeepAlive
}

// InstanceOf returns the instance attached to a component vnode.
func InstanceOf(v *vdom.VNode) *Instance {
	if v == nil {
		return nil
	}
	inst, _ := v.Instance.(*Instance)
	return inst
}
