package renderer

import (
	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

type teleportMove uint8

const (
	teleportTargetChange teleportMove = iota
	teleportToggle
	teleportReorder
)

// processTeleport mounts or patches a teleport. Two empty text markers
// hold its logical position; two more delimit its children in the target.
func (r *Renderer) processTeleport(n1, n2 *vdom.VNode, container, anchor vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	disabled := isTeleportDisabled(n2)
	if n1 == nil {
		n2.El = r.ops.CreateText("")
		n2.Anchor = r.ops.CreateText("")
		r.ops.Insert(n2.El, container, anchor)
		r.ops.Insert(n2.Anchor, container, anchor)

		mount := func(c, a vdom.Node) {
			if n2.Shape == vdom.ChildArray {
				r.mountChildren(n2.Children, c, a, parent, s, ns, optimized)
			}
		}
		mountToTarget := func() {
			target := r.resolveTarget(n2, parent)
			n2.Target = target
			if target == nil {
				if !disabled {
					component.Warn(parent, "invalid teleport target on mount: %v", n2.Prop("to"))
				}
				return
			}
			n2.TargetStart = r.ops.CreateText("")
			n2.TargetAnchor = r.ops.CreateText("")
			r.ops.Insert(n2.TargetStart, target, nil)
			r.ops.Insert(n2.TargetAnchor, target, nil)
			if !disabled {
				mount(target, n2.TargetAnchor)
			}
		}

		if disabled {
			mount(container, n2.Anchor)
		}
		if isTeleportDeferred(n2) {
			r.queuePost(mountToTarget, s)
		} else {
			mountToTarget()
		}
		return
	}

	n2.El, n2.Anchor = n1.El, n1.Anchor
	n2.Target, n2.TargetStart, n2.TargetAnchor = n1.Target, n1.TargetStart, n1.TargetAnchor
	wasDisabled := isTeleportDisabled(n1)
	currentContainer, currentAnchor := n2.Target, n2.TargetAnchor
	if wasDisabled {
		currentContainer, currentAnchor = container, n2.Anchor
	}

	if n2.DynamicChildren != nil && n1.DynamicChildren != nil && len(n1.DynamicChildren) == len(n2.DynamicChildren) {
		r.patchBlockChildren(n1.DynamicChildren, n2.DynamicChildren, currentContainer, parent, s, ns)
		r.traverseStaticChildren(n1, n2)
	} else if !optimized {
		r.patchChildren(n1, n2, currentContainer, currentAnchor, parent, s, ns, false)
	}

	if disabled {
		if !wasDisabled {
			r.moveTeleport(n2, container, n2.Anchor, teleportToggle)
		} else if reactive.HasChanged(n1.Prop("to"), n2.Prop("to")) {
			// The target is only resolved when the teleport is enabled.
			n2.Props["to"] = n1.Prop("to")
		}
		return
	}
	if reactive.HasChanged(n1.Prop("to"), n2.Prop("to")) {
		next := r.resolveTarget(n2, parent)
		if next == nil {
			component.Warn(parent, "invalid teleport target on update: %v", n2.Prop("to"))
			return
		}
		n2.Target = next
		r.moveTeleport(n2, next, nil, teleportTargetChange)
		return
	}
	if wasDisabled {
		r.moveTeleport(n2, n2.Target, n2.TargetAnchor, teleportToggle)
	}
}

func (r *Renderer) moveTeleport(v *vdom.VNode, container, anchor vdom.Node, mt teleportMove) {
	if mt == teleportTargetChange && v.TargetStart != nil {
		r.ops.Insert(v.TargetStart, container, anchor)
	}
	reorder := mt == teleportReorder
	if reorder {
		r.ops.Insert(v.El, container, anchor)
	}
	if !reorder || isTeleportDisabled(v) {
		if v.Shape == vdom.ChildArray {
			for _, c := range v.Children {
				r.move(c, container, anchor, moveReorder, nil)
			}
		}
	}
	if reorder {
		r.ops.Insert(v.Anchor, container, anchor)
	}
	if mt == teleportTargetChange && v.TargetAnchor != nil {
		r.ops.Insert(v.TargetAnchor, container, anchor)
	}
}

// removeTeleport drops the target markers and unmounts the children. The
// logical position markers go with doRemove.
func (r *Renderer) removeTeleport(v *vdom.VNode, parent *component.Instance, s *suspenseBoundary, doRemove bool) {
	if v.TargetStart != nil {
		r.ops.Remove(v.TargetStart)
	}
	if v.TargetAnchor != nil {
		r.ops.Remove(v.TargetAnchor)
	}
	if doRemove && v.Anchor != nil {
		r.ops.Remove(v.Anchor)
	}
	if v.Shape != vdom.ChildArray {
		return
	}
	shouldRemove := doRemove || !isTeleportDisabled(v)
	for _, c := range v.Children {
		r.unmount(c, parent, s, shouldRemove, c.DynamicChildren != nil)
	}
}

func (r *Renderer) resolveTarget(v *vdom.VNode, parent *component.Instance) vdom.Node {
	switch to := v.Prop("to").(type) {
	case nil:
		return nil
	case string:
		q, ok := r.raw.(Querier)
		if !ok {
			component.Warn(parent, "host does not support teleport target selectors, pass a node instead of %q", to)
			return nil
		}
		return q.QuerySelector(to)
	default:
		return to
	}
}

func isTeleportDisabled(v *vdom.VNode) bool {
	switch d := v.Prop("disabled").(type) {
	case bool:
		return d
	case string:
		return d == "" || d == "true" || d == "disabled"
	}
	return false
}

func isTeleportDeferred(v *vdom.VNode) bool {
	d, _ := v.Prop("defer").(bool)
	return d
}
