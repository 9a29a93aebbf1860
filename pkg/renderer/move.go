package renderer

import (
	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

type moveType uint8

const (
	moveEnter moveType = iota
	moveLeave
	moveReorder
)

// unmount tears v down: refs, hooks, children, then (if doRemove) its
// host nodes. Kept-alive components are deactivated instead.
func (r *Renderer) unmount(v *vdom.VNode, parent *component.Instance, s *suspenseBoundary, doRemove, optimized bool) {
	if v.Ref != nil {
		reactive.PauseTracking()
		r.setRef(v.Ref, nil, parent, s, v, true)
		reactive.ResetTracking()
	}

	if v.HasFlag(vdom.ShouldKeepAlive) && parent != nil && parent.KeepAlive != nil {
		parent.KeepAlive.Deactivate(v)
		return
	}

	invokeDirs := v.Kind == vdom.KindElement && len(v.Dirs) > 0
	if h := v.Prop("onVnodeBeforeUnmount"); h != nil && !component.IsKeepAlive(v) {
		r.invokeVNodeHook(h, parent, v, nil)
	}

	if v.Kind == vdom.KindComponent {
		if inst := component.InstanceOf(v); inst != nil {
			r.unmountComponent(inst, s, doRemove)
		}
	} else {
		if v.Kind == vdom.KindSuspense {
			if b, ok := v.Suspense.(*suspenseBoundary); ok {
				b.unmount(s, doRemove)
			}
			return
		}
		if invokeDirs {
			r.invokeDirectiveHook(v, nil, parent, dirBeforeUnmount)
		}
		switch {
		case v.Kind == vdom.KindTeleport:
			r.removeTeleport(v, parent, s, doRemove)
		case v.DynamicChildren != nil && v.PatchFlag != vdom.PatchBail &&
			(v.Kind != vdom.KindFragment || v.PatchFlag.Has(vdom.PatchStableFragment)):
			r.unmountChildren(v.DynamicChildren, parent, s, false, true)
		case (v.Kind == vdom.KindFragment && (v.PatchFlag.Has(vdom.PatchKeyedFragment) || v.PatchFlag.Has(vdom.PatchUnkeyedFragment))) ||
			(!optimized && v.Shape == vdom.ChildArray):
			r.unmountChildren(v.Children, parent, s, false, false)
		}
		if doRemove {
			r.remove(v)
		}
	}

	unmountedHook := v.Prop("onVnodeUnmounted")
	if unmountedHook != nil || invokeDirs {
		r.queuePost(func() {
			if unmountedHook != nil {
				r.invokeVNodeHook(unmountedHook, parent, v, nil)
			}
			if invokeDirs {
				r.invokeDirectiveHook(v, nil, parent, dirUnmounted)
			}
		}, s)
	}
}

// remove detaches the host nodes of v, running its leave transition first.
func (r *Renderer) remove(v *vdom.VNode) {
	switch v.Kind {
	case vdom.KindFragment:
		r.removeFragment(v.El, v.Anchor)
		return
	case vdom.KindStatic:
		r.removeStatic(v)
		return
	}

	el := v.El
	t := v.Transition
	performRemove := func() {
		r.ops.Remove(el)
		if t != nil && !t.Persisted && t.AfterLeave != nil {
			t.AfterLeave()
		}
	}
	if v.Kind == vdom.KindElement && t != nil && !t.Persisted && t.Leave != nil {
		performLeave := func() { t.Leave(el, performRemove) }
		if t.DelayLeave != nil {
			t.DelayLeave(el, performRemove, performLeave)
		} else {
			performLeave()
		}
		return
	}
	performRemove()
}

func (r *Renderer) removeFragment(cur, end vdom.Node) {
	for cur != nil && cur != end {
		next := r.ops.NextSibling(cur)
		r.ops.Remove(cur)
		cur = next
	}
	if end != nil {
		r.ops.Remove(end)
	}
}

// move re-inserts every host node of v before anchor in container.
func (r *Renderer) move(v *vdom.VNode, container, anchor vdom.Node, mt moveType, s *suspenseBoundary) {
	switch v.Kind {
	case vdom.KindComponent:
		if inst := component.InstanceOf(v); inst != nil && inst.SubTree != nil {
			r.move(inst.SubTree, container, anchor, mt, nil)
		}
		return
	case vdom.KindSuspense:
		if b, ok := v.Suspense.(*suspenseBoundary); ok {
			b.move(container, anchor, mt)
		}
		return
	case vdom.KindTeleport:
		r.moveTeleport(v, container, anchor, teleportReorder)
		return
	case vdom.KindFragment:
		r.ops.Insert(v.El, container, anchor)
		for _, c := range v.Children {
			r.move(c, container, anchor, mt, nil)
		}
		r.ops.Insert(v.Anchor, container, anchor)
		return
	case vdom.KindStatic:
		r.moveStatic(v, container, anchor)
		return
	}

	el := v.El
	t := v.Transition
	if mt == moveReorder || v.Kind != vdom.KindElement || t == nil {
		r.ops.Insert(el, container, anchor)
		return
	}
	switch mt {
	case moveEnter:
		if t.BeforeEnter != nil {
			t.BeforeEnter(el)
		}
		r.ops.Insert(el, container, anchor)
		if t.Enter != nil {
			r.queuePost(func() { t.Enter(el) }, s)
		}
	case moveLeave:
		reinsert := func() { r.ops.Insert(el, container, anchor) }
		performLeave := func() {
			if t.Leave == nil {
				reinsert()
				return
			}
			t.Leave(el, func() {
				reinsert()
				if t.AfterLeave != nil {
					t.AfterLeave()
				}
			})
		}
		if t.DelayLeave != nil {
			t.DelayLeave(el, reinsert, performLeave)
		} else {
			performLeave()
		}
	}
}
