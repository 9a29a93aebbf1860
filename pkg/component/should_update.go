package component

import (
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// ShouldUpdateComponent decides whether a component vnode patch must
// re-render the child. It relies on patch flags when optimized; otherwise
// props are compared shallowly and any slot content forces an update.
func ShouldUpdateComponent(prev, next *vdom.VNode, optimized bool) bool {
	emits := EmitListenerChecker(next.Comp)
	if inst := InstanceOf(prev); inst != nil {
		emits = inst.IsEmitListener
	}

	if len(next.Dirs) > 0 || next.Transition != nil {
		return true
	}

	if optimized && next.PatchFlag >= 0 {
		switch {
		case next.PatchFlag.Has(vdom.PatchDynamicSlots):
			return true
		case next.PatchFlag.Has(vdom.PatchFullProps):
			if prev.Props == nil {
				return next.Props != nil
			}
			return hasPropsChanged(prev.Props, next.Props, emits)
		case next.PatchFlag.Has(vdom.PatchProps):
			for _, key := range next.DynamicProps {
				if reactive.HasChanged(next.Props[key], prev.Props[key]) && !emits(key) {
					return true
				}
			}
		}
		return false
	}

	if hasSlotContent(prev) || hasSlotContent(next) {
		if !hasSlotContent(next) || !next.HasFlag(vdom.CompiledSlots) {
			return true
		}
	}
	if prev.Props == nil && next.Props == nil {
		return false
	}
	if prev.Props == nil {
		return next.Props != nil
	}
	if next.Props == nil {
		return true
	}
	return hasPropsChanged(prev.Props, next.Props, emits)
}

func hasSlotContent(v *vdom.VNode) bool {
	switch v.Shape {
	case vdom.ChildSlots:
		return len(v.Slots) > 0
	case vdom.ChildArray:
		return len(v.Children) > 0
	case vdom.ChildText:
		return true
	}
	return false
}

func hasPropsChanged(prev, next vdom.Props, emits func(string) bool) bool {
	if len(prev) != len(next) {
		return true
	}
	for key, nv := range next {
		pv, ok := prev[key]
		if (!ok || reactive.HasChanged(nv, pv)) && !emits(key) {
			return true
		}
	}
	return false
}
