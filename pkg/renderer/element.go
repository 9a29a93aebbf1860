package renderer

import (
	"reflect"
	"sort"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

func (r *Renderer) processElement(n1, n2 *vdom.VNode, container, anchor vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	ns = elementNamespace(n2.Tag, ns)
	if n1 == nil {
		r.mountElement(n2, container, anchor, parent, s, ns, optimized)
		return
	}
	r.patchElement(n1, n2, parent, s, ns, optimized)
}

func (r *Renderer) mountElement(v *vdom.VNode, container, anchor vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	el := r.ops.CreateElement(v.Tag, ns, v.Props)
	v.El = el

	switch v.Shape {
	case vdom.ChildText:
		r.ops.SetElementText(el, v.Text)
	case vdom.ChildArray:
		r.mountChildren(v.Children, el, nil, parent, s, childNamespace(v, ns), optimized)
	}

	if len(v.Dirs) > 0 {
		r.invokeDirectiveHook(v, nil, parent, dirCreated)
	}
	r.setScopeID(el, v, parent)

	if v.Props != nil {
		for _, key := range sortedPropKeys(v.Props) {
			r.ops.PatchProp(el, key, nil, v.Props[key], ns)
		}
		// value must follow min/max/step and friends.
		if val, ok := v.Props["value"]; ok {
			r.ops.PatchProp(el, "value", nil, val, ns)
		}
		if h := v.Props["onVnodeBeforeMount"]; h != nil {
			r.invokeVNodeHook(h, parent, v, nil)
		}
	}
	if len(v.Dirs) > 0 {
		r.invokeDirectiveHook(v, nil, parent, dirBeforeMount)
	}

	needTransition := (s == nil || !s.isPending()) && v.Transition != nil && !v.Transition.Persisted
	if needTransition && v.Transition.BeforeEnter != nil {
		r.callTransitionHook(parent, func() { v.Transition.BeforeEnter(el) })
	}
	r.ops.Insert(el, container, anchor)

	mountedHook := v.Prop("onVnodeMounted")
	if mountedHook != nil || needTransition || len(v.Dirs) > 0 {
		r.queuePost(func() {
			if mountedHook != nil {
				r.invokeVNodeHook(mountedHook, parent, v, nil)
			}
			if needTransition && v.Transition.Enter != nil {
				r.callTransitionHook(parent, func() { v.Transition.Enter(el) })
			}
			if len(v.Dirs) > 0 {
				r.invokeDirectiveHook(v, nil, parent, dirMounted)
			}
		}, s)
	}
}

// setScopeID applies the element's own scope id and, for a component
// root, the scope ids of the components it is the root of.
func (r *Renderer) setScopeID(el vdom.Node, v *vdom.VNode, parent *component.Instance) {
	setter, ok := r.raw.(ScopeIDSetter)
	if !ok {
		return
	}
	if v.ScopeID != "" {
		setter.SetScopeID(el, v.ScopeID)
		r.noteOp("setScopeId")
	}
	for cur := parent; cur != nil && cur.SubTree == v; cur = cur.Parent {
		if id := cur.VNode.ScopeID; id != "" {
			setter.SetScopeID(el, id)
			r.noteOp("setScopeId")
		}
		v = cur.VNode
	}
}

func (r *Renderer) mountChildren(children []*vdom.VNode, container, anchor vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	for i, c := range children {
		child := vdom.Normalize(c)
		children[i] = child
		r.patch(nil, child, container, anchor, parent, s, ns, optimized)
	}
}

func (r *Renderer) patchElement(n1, n2 *vdom.VNode, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	el := n1.El
	n2.El = el

	flag := n2.PatchFlag
	if flag >= 0 && n1.PatchFlag.Has(vdom.PatchFullProps) {
		flag |= vdom.PatchFullProps
		n2.PatchFlag = flag
	}
	oldProps, newProps := n1.Props, n2.Props

	if parent != nil {
		parent.ToggleRecurse(false)
	}
	if h := newProps["onVnodeBeforeUpdate"]; h != nil {
		r.invokeVNodeHook(h, parent, n2, n1)
	}
	if len(n2.Dirs) > 0 {
		r.invokeDirectiveHook(n2, n1, parent, dirBeforeUpdate)
	}
	if parent != nil {
		parent.ToggleRecurse(true)
	}

	childNS := childNamespace(n2, ns)
	blockPatched := false
	if n2.DynamicChildren != nil && n1.DynamicChildren != nil && len(n1.DynamicChildren) == len(n2.DynamicChildren) {
		r.patchBlockChildren(n1.DynamicChildren, n2.DynamicChildren, el, parent, s, childNS)
		blockPatched = true
	} else if !optimized || n2.DynamicChildren != nil {
		r.patchChildren(n1, n2, el, nil, parent, s, childNS, false)
	}

	switch {
	case flag > 0:
		if flag.Has(vdom.PatchFullProps) {
			r.patchProps(el, oldProps, newProps, ns)
			break
		}
		if flag.Has(vdom.PatchClass) && reactive.HasChanged(oldProps["class"], newProps["class"]) {
			r.ops.PatchProp(el, "class", nil, newProps["class"], ns)
		}
		if flag.Has(vdom.PatchStyle) {
			r.ops.PatchProp(el, "style", oldProps["style"], newProps["style"], ns)
		}
		if flag.Has(vdom.PatchProps) {
			for _, key := range n2.DynamicProps {
				prev, next := oldProps[key], newProps[key]
				if reactive.HasChanged(next, prev) || key == "value" {
					r.ops.PatchProp(el, key, prev, next, ns)
				}
			}
		}
		if flag.Has(vdom.PatchText) && n1.Text != n2.Text {
			r.ops.SetElementText(el, n2.Text)
		}
	case !optimized && !blockPatched:
		r.patchProps(el, oldProps, newProps, ns)
	}

	updatedHook := newProps["onVnodeUpdated"]
	if updatedHook != nil || len(n2.Dirs) > 0 {
		r.queuePost(func() {
			if updatedHook != nil {
				r.invokeVNodeHook(updatedHook, parent, n2, n1)
			}
			if len(n2.Dirs) > 0 {
				r.invokeDirectiveHook(n2, n1, parent, dirUpdated)
			}
		}, s)
	}
}

// patchProps is the full props diff: removed keys first, then changed
// keys in sorted order, then value unconditionally.
func (r *Renderer) patchProps(el vdom.Node, oldProps, newProps vdom.Props, ns string) {
	if sameProps(oldProps, newProps) {
		return
	}
	for _, key := range sortedPropKeys(oldProps) {
		if _, ok := newProps[key]; !ok {
			r.ops.PatchProp(el, key, oldProps[key], nil, ns)
		}
	}
	if _, ok := oldProps["value"]; ok {
		if _, still := newProps["value"]; !still {
			r.ops.PatchProp(el, "value", oldProps["value"], nil, ns)
		}
	}
	for _, key := range sortedPropKeys(newProps) {
		prev, next := oldProps[key], newProps[key]
		if reactive.HasChanged(next, prev) {
			r.ops.PatchProp(el, key, prev, next, ns)
		}
	}
	// value is always patched: the host value may have drifted from the
	// vnode through user input.
	if val, ok := newProps["value"]; ok {
		r.ops.PatchProp(el, "value", oldProps["value"], val, ns)
	}
}

// patchBlockChildren patches the dynamic descendants of a block in place.
// Their container is only needed when a child is replaced or is a
// fragment, component or teleport, whose nodes it must resolve itself.
func (r *Renderer) patchBlockChildren(oldChildren, newChildren []*vdom.VNode, fallback vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string) {
	for i, next := range newChildren {
		old := oldChildren[i]
		container := fallback
		if old.El != nil && (old.Kind == vdom.KindFragment ||
			!vdom.IsSameVNodeType(old, next) ||
			old.Kind == vdom.KindComponent ||
			old.Kind == vdom.KindTeleport ||
			old.Kind == vdom.KindSuspense) {
			container = r.ops.ParentNode(old.El)
		}
		r.patch(old, next, container, nil, parent, s, ns, true)
	}
}

func sortedPropKeys(p vdom.Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		if k == "value" || component.IsReservedProp(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameProps(a, b vdom.Props) bool {
	if a == nil || b == nil {
		return len(a) == 0 && len(b) == 0
	}
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}

func (r *Renderer) invokeVNodeHook(h any, inst *component.Instance, v, prev *vdom.VNode) {
	switch fn := h.(type) {
	case func(*vdom.VNode):
		component.CallWithErrorHandling(func() { fn(v) }, inst, errors.VNodeHook)
	case func(*vdom.VNode, *vdom.VNode):
		component.CallWithErrorHandling(func() { fn(v, prev) }, inst, errors.VNodeHook)
	default:
		component.CallWithAsyncErrorHandling(h, inst, errors.VNodeHook, v, prev)
	}
}

func (r *Renderer) callTransitionHook(inst *component.Instance, fn func()) {
	component.CallWithErrorHandling(fn, inst, errors.TransitionHook)
}
