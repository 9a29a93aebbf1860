package renderer

import (
	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// Transition attaches enter and leave hooks to its single child. It does
// not animate anything itself; hosts drive animations from the hooks.
//
// Hooks are func(vdom.Node), or func(vdom.Node, func()) for onEnter,
// onLeave and onAppear, which then own calling done.
var Transition = &component.Definition{
	Name: "BaseTransition",
	Props: component.PropsOptions{
		"mode":      {Type: component.PropString},
		"appear":    {Type: component.PropBool},
		"persisted": {Type: component.PropBool},

		"onBeforeEnter":    {},
		"onEnter":          {},
		"onAfterEnter":     {},
		"onEnterCancelled": {},

		"onBeforeLeave":    {},
		"onLeave":          {},
		"onAfterLeave":     {},
		"onLeaveCancelled": {},

		"onBeforeAppear":    {},
		"onAppear":          {},
		"onAfterAppear":     {},
		"onAppearCancelled": {},
	},
	Setup: transitionSetup,
}

type leaveKey struct {
	kind vdom.VKind
	tag  string
	comp vdom.Component
	key  string
}

func leaveKeyOf(v *vdom.VNode) leaveKey {
	return leaveKey{kind: v.Kind, tag: v.Tag, comp: v.Comp, key: v.Key}
}

type transitionState struct {
	isMounted    bool
	isLeaving    bool
	isUnmounting bool

	leaving map[leaveKey]*vdom.VNode
	// Pending done callbacks per host node. Calling one with true cancels
	// the running enter or leave.
	enterCb map[vdom.Node]func(cancelled bool)
	leaveCb map[vdom.Node]func(cancelled bool)
}

func transitionSetup(ctx *component.Ctx) any {
	inst := ctx.Instance()
	state := &transitionState{
		leaving: make(map[leaveKey]*vdom.VNode),
		enterCb: make(map[vdom.Node]func(bool)),
		leaveCb: make(map[vdom.Node]func(bool)),
	}
	component.OnMounted(func() { state.isMounted = true })
	component.OnBeforeUnmount(func() { state.isUnmounting = true })

	return component.RenderFunc(func() *vdom.VNode {
		var children []*vdom.VNode
		if slot, ok := ctx.Slots()["default"]; ok {
			children = slot(nil)
		}
		if len(children) == 0 {
			return nil
		}
		child := firstNonComment(children)
		if child == nil {
			return nil
		}
		props := ctx.Props().Raw()
		mode, _ := props["mode"].(string)

		if state.isLeaving {
			return emptyPlaceholder(child)
		}
		inner := transitionInner(child)
		if inner == nil {
			return emptyPlaceholder(child)
		}

		var enterHooks *vdom.TransitionHooks
		enterHooks = resolveTransitionHooks(inner, props, state, inst, func(h *vdom.TransitionHooks) { enterHooks = h })
		if inner.Kind != vdom.KindComment {
			component.SetTransitionHooks(inner, enterHooks)
		}

		var oldInner *vdom.VNode
		if inst.SubTree != nil {
			oldInner = transitionInner(inst.SubTree)
		}
		if oldInner == nil || oldInner.Kind == vdom.KindComment || vdom.IsSameVNodeType(inner, oldInner) ||
			deepestSubTree(inst).Kind == vdom.KindComment {
			return child
		}

		leavingHooks := resolveTransitionHooks(oldInner, props, state, inst, nil)
		component.SetTransitionHooks(oldInner, leavingHooks)
		switch {
		case mode == "out-in" && inner.Kind != vdom.KindComment:
			state.isLeaving = true
			leavingHooks.AfterLeave = func() {
				state.isLeaving = false
				if inst.Job == nil || !inst.Job.Has(scheduler.Disposed) {
					inst.Update()
				}
				leavingHooks.AfterLeave = nil
			}
			return emptyPlaceholder(child)
		case mode == "in-out" && inner.Kind != vdom.KindComment:
			old := oldInner
			leavingHooks.DelayLeave = func(el vdom.Node, earlyRemove, delayedLeave func()) {
				state.leaving[leaveKeyOf(old)] = old
				state.leaveCb[el] = func(bool) {
					earlyRemove()
					delete(state.leaveCb, el)
					enterHooks.DelayedLeave = nil
				}
				enterHooks.DelayedLeave = func() {
					delayedLeave()
					enterHooks.DelayedLeave = nil
				}
			}
		}
		return child
	})
}

// resolveTransitionHooks builds the hooks for v from the transition props.
// postClone receives the hooks resolved for clones of v.
func resolveTransitionHooks(v *vdom.VNode, props map[string]any, state *transitionState, inst *component.Instance, postClone func(*vdom.TransitionHooks)) *vdom.TransitionHooks {
	appear, _ := props["appear"].(bool)
	persisted, _ := props["persisted"].(bool)
	mode, _ := props["mode"].(string)
	key := leaveKeyOf(v)

	callHook := func(name string, el vdom.Node) {
		if h := props[name]; h != nil {
			component.CallWithAsyncErrorHandling(h, inst, errors.TransitionHook, el)
		}
	}
	// callAsyncHook calls done itself unless the hook takes it.
	callAsyncHook := func(name string, el vdom.Node, done func()) {
		switch h := props[name].(type) {
		case func(vdom.Node, func()):
			component.CallWithErrorHandling(func() { h(el, done) }, inst, errors.TransitionHook)
		default:
			callHook(name, el)
			done()
		}
	}
	pick := func(appearName, enterName string) string {
		if props[appearName] != nil {
			return appearName
		}
		return enterName
	}

	h := &vdom.TransitionHooks{Mode: mode, Persisted: persisted}
	h.BeforeEnter = func(el vdom.Node) {
		hook := "onBeforeEnter"
		if !state.isMounted {
			if !appear {
				return
			}
			hook = pick("onBeforeAppear", "onBeforeEnter")
		}
		if cb := state.leaveCb[el]; cb != nil {
			cb(true)
		}
		if leavingV := state.leaving[key]; leavingV != nil && vdom.IsSameVNodeType(v, leavingV) {
			if cb := state.leaveCb[leavingV.El]; cb != nil {
				cb(false)
			}
		}
		callHook(hook, el)
	}
	h.Enter = func(el vdom.Node) {
		hook, afterHook, cancelHook := "onEnter", "onAfterEnter", "onEnterCancelled"
		if !state.isMounted {
			if !appear {
				return
			}
			hook = pick("onAppear", "onEnter")
			afterHook = pick("onAfterAppear", "onAfterEnter")
			cancelHook = pick("onAppearCancelled", "onEnterCancelled")
		}
		called := false
		done := func(cancelled bool) {
			if called {
				return
			}
			called = true
			if cancelled {
				callHook(cancelHook, el)
			} else {
				callHook(afterHook, el)
			}
			if h.DelayedLeave != nil {
				h.DelayedLeave()
			}
			delete(state.enterCb, el)
		}
		state.enterCb[el] = done
		if props[hook] == nil {
			done(false)
			return
		}
		callAsyncHook(hook, el, func() { done(false) })
	}
	h.Leave = func(el vdom.Node, remove func()) {
		if cb := state.enterCb[el]; cb != nil {
			cb(true)
		}
		if state.isUnmounting {
			remove()
			return
		}
		callHook("onBeforeLeave", el)
		called := false
		done := func(cancelled bool) {
			if called {
				return
			}
			called = true
			remove()
			if cancelled {
				callHook("onLeaveCancelled", el)
			} else {
				callHook("onAfterLeave", el)
			}
			delete(state.leaveCb, el)
			if state.leaving[key] == v {
				delete(state.leaving, key)
			}
		}
		state.leaveCb[el] = done
		state.leaving[key] = v
		if props["onLeave"] == nil {
			done(false)
			return
		}
		callAsyncHook("onLeave", el, func() { done(false) })
	}
	h.Clone = func(c *vdom.VNode) *vdom.TransitionHooks {
		hooks := resolveTransitionHooks(c, props, state, inst, postClone)
		if postClone != nil {
			postClone(hooks)
		}
		return hooks
	}
	return h
}

func firstNonComment(children []*vdom.VNode) *vdom.VNode {
	var found *vdom.VNode
	for _, c := range children {
		if c.Kind == vdom.KindComment {
			continue
		}
		if found != nil {
			component.Warn(nil, "Transition can only be used on a single element or component; use TransitionGroup for lists")
			break
		}
		found = c
	}
	if found == nil {
		return children[0]
	}
	return found
}

// transitionInner looks through KeepAlive and Teleport wrappers.
func transitionInner(v *vdom.VNode) *vdom.VNode {
	switch {
	case v.Kind == vdom.KindTeleport:
		if len(v.Children) > 0 {
			return firstNonComment(v.Children)
		}
		return v
	case !component.IsKeepAlive(v):
		return v
	}
	if inst := component.InstanceOf(v); inst != nil {
		return inst.SubTree
	}
	switch v.Shape {
	case vdom.ChildArray:
		if len(v.Children) > 0 {
			return v.Children[0]
		}
	case vdom.ChildSlots:
		if s, ok := v.Slots["default"]; ok {
			if nodes := s(nil); len(nodes) > 0 {
				return nodes[0]
			}
		}
	}
	return nil
}

// emptyPlaceholder is rendered while the old child leaves in out-in mode.
// A KeepAlive child stays, without children, so its cache survives.
func emptyPlaceholder(v *vdom.VNode) *vdom.VNode {
	if component.IsKeepAlive(v) {
		c := vdom.Clone(v, nil)
		c.Children = nil
		c.Slots = nil
		c.Shape = vdom.ChildNone
		return c
	}
	return nil
}

func deepestSubTree(inst *component.Instance) *vdom.VNode {
	sub := inst.SubTree
	for {
		child := component.InstanceOf(sub)
		if child == nil || child.SubTree == nil {
			return sub
		}
		sub = child.SubTree
	}
}
