package component

import "github.com/vango-dev/vrt/pkg/vdom"

// InitSlots captures the slots of the instance vnode.
func (i *Instance) InitSlots(v *vdom.VNode) {
	i.slots = normalizeSlots(v)
}

// UpdateSlots replaces the slots with those of v. Compiled stable slots
// are kept in optimized mode.
func (i *Instance) UpdateSlots(v *vdom.VNode, optimized bool) {
	if v.HasFlag(vdom.CompiledSlots) && optimized && !v.PatchFlag.Has(vdom.PatchDynamicSlots) {
		return
	}
	i.slots = normalizeSlots(v)
}

func normalizeSlots(v *vdom.VNode) vdom.Slots {
	out := vdom.Slots{}
	switch v.Shape {
	case vdom.ChildSlots:
		for name, s := range v.Slots {
			if s != nil {
				out[name] = s
			}
		}
	case vdom.ChildArray, vdom.ChildText:
		children := v.Children
		if v.Shape == vdom.ChildText {
			children = []*vdom.VNode{vdom.Text(v.Text)}
		}
		out["default"] = func(vdom.Props) []*vdom.VNode { return children }
	}
	return out
}

// RenderSlot renders the named slot, or fallback when the slot is missing
// or renders nothing.
func (i *Instance) RenderSlot(name string, props vdom.Props, fallback func() []*vdom.VNode) []*vdom.VNode {
	var nodes []*vdom.VNode
	if s, ok := i.slots[name]; ok {
		nodes = s(props)
	}
	if !hasRenderable(nodes) && fallback != nil {
		nodes = fallback()
	}
	out := make([]*vdom.VNode, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, vdom.CloneIfMounted(n))
		}
	}
	return out
}

func hasRenderable(nodes []*vdom.VNode) bool {
	for _, n := range nodes {
		if n == nil || n.Kind == vdom.KindComment {
			continue
		}
		if n.Kind == vdom.KindFragment && !hasRenderable(n.Children) {
			continue
		}
		return true
	}
	return false
}
