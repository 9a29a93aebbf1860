package component

import (
	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// Ctx is handed to Setup and Render. It is bound to one instance.
type Ctx struct {
	inst *Instance
}

// Instance returns the bound instance.
func (c *Ctx) Instance() *Instance { return c.inst }

// Props returns the reactive props map.
func (c *Ctx) Props() *reactive.Map { return c.inst.props }

// Prop reads one prop, subscribing the caller.
func (c *Ctx) Prop(name string) any { return c.inst.props.Get(name) }

// Attrs returns the fallthrough attributes.
func (c *Ctx) Attrs() vdom.Props { return c.inst.Attrs() }

// Slots returns the current slots.
func (c *Ctx) Slots() vdom.Slots { return c.inst.slots }

// Slot renders a slot; see Instance.RenderSlot.
func (c *Ctx) Slot(name string, props vdom.Props, fallback ...*vdom.VNode) []*vdom.VNode {
	var fb func() []*vdom.VNode
	if len(fallback) > 0 {
		fb = func() []*vdom.VNode { return fallback }
	}
	return c.inst.RenderSlot(name, props, fb)
}

// Emit emits event to the parent.
func (c *Ctx) Emit(event string, args ...any) { c.inst.Emit(event, args...) }

// Expose restricts what template refs to this instance see.
func (c *Ctx) Expose(public map[string]any) {
	if c.inst.exposed != nil {
		Warn(c.inst, "expose() should be called only once per setup()")
	}
	if public == nil {
		public = map[string]any{}
	}
	c.inst.exposed = public
}

// State returns a value from the map returned by setup.
func (c *Ctx) State(key string) any { return c.inst.setupState[key] }

// Global returns an application-wide property.
func (c *Ctx) Global(key string) any {
	return c.inst.AppContext.Config.GlobalProperties[key]
}

// SetupComponent initializes props and slots and runs the setup function.
// If setup returned a *Promise the instance's AsyncDep is set and the
// returned promise must be awaited by the caller.
func SetupComponent(inst *Instance) *Promise {
	v := inst.VNode
	inst.InitProps(v.Props)
	inst.InitSlots(v)

	def := inst.Type
	if def == nil {
		HandleError(errors.Errorf("component vnode has no definition, got %T", v.Comp), inst, errors.SetupFunction)
		inst.render = func() *vdom.VNode { return vdom.Comment("") }
		return nil
	}
	if def.Setup == nil {
		finishSetup(inst)
		return nil
	}

	var result any
	func() {
		reset := SetCurrentInstance(inst)
		reactive.PauseTracking()
		defer func() {
			reactive.ResetTracking()
			reset()
		}()
		CallWithErrorHandling(func() { result = def.Setup(inst.ctx) }, inst, errors.SetupFunction)
	}()

	if p, ok := result.(*Promise); ok {
		inst.AsyncDep = p
		return p
	}
	HandleSetupResult(inst, result)
	return nil
}

// HandleSetupResult installs what setup (or an async setup) produced.
func HandleSetupResult(inst *Instance, result any) {
	switch r := result.(type) {
	case RenderFunc:
		inst.render = r
	case func() *vdom.VNode:
		inst.render = r
	case map[string]any:
		inst.setupState = r
	case nil:
	default:
		Warn(inst, "setup() should return a render function or a state map, got %T", result)
	}
	finishSetup(inst)
}

func finishSetup(inst *Instance) {
	if inst.render != nil {
		return
	}
	if inst.Type != nil && inst.Type.Render != nil {
		render, ctx := inst.Type.Render, inst.ctx
		inst.render = func() *vdom.VNode { return render(ctx) }
		return
	}
	Warn(inst, "component is missing a render function")
	inst.render = func() *vdom.VNode { return vdom.Comment("") }
}

// HasRender reports whether setup finished and a render function exists.
func (i *Instance) HasRender() bool { return i.render != nil }
