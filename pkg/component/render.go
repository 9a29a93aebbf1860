package component

import (
	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// RenderComponentRoot runs the render function and applies attrs
// fallthrough, inherited directives and transition hooks to the root.
// A failing render yields a comment placeholder.
func RenderComponentRoot(inst *Instance) *vdom.VNode {
	prev := vdom.SetRenderingInstance(inst)
	defer vdom.SetRenderingInstance(prev)

	depth := vdom.BlockDepth()
	var root *vdom.VNode
	failed := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				failed = true
				vdom.ResetBlocks(depth)
				HandleError(errors.FromPanic(r), inst, errors.RenderFunction)
			}
		}()
		root = vdom.Normalize(inst.render())
	}()
	if failed || root == nil {
		root = vdom.Comment("")
	}

	attrs := inst.attrs
	if len(attrs) > 0 && (inst.Type == nil || !inst.Type.NoInheritAttrs) {
		switch root.Kind {
		case vdom.KindElement, vdom.KindComponent:
			root = vdom.Clone(root, inheritableAttrs(inst, attrs))
		default:
			if inst.AppContext.Config.Dev && !failed {
				Warn(inst, "extraneous non-props attributes were passed to component but could not be inherited because it renders a %s root", root.Kind)
			}
		}
	}

	if len(inst.VNode.Dirs) > 0 {
		root = vdom.Clone(root, nil)
		root.Dirs = append(append([]*vdom.DirectiveBinding(nil), root.Dirs...), inst.VNode.Dirs...)
	}
	if inst.VNode.Transition != nil {
		SetTransitionHooks(root, inst.VNode.Transition)
	}
	return root
}

// inheritableAttrs drops v-model listeners for declared props; the child
// owns those through its own emits.
func inheritableAttrs(inst *Instance, attrs vdom.Props) vdom.Props {
	np := inst.Type.normalizedProps()
	out := make(vdom.Props, len(attrs))
	for k, v := range attrs {
		if isModelListener(k) {
			if _, ok := np.lookup(k[len("onUpdate:"):]); ok {
				continue
			}
		}
		out[k] = v
	}
	return out
}

// SetTransitionHooks attaches hooks to v, descending into component
// subtrees and suspense branches.
func SetTransitionHooks(v *vdom.VNode, hooks *vdom.TransitionHooks) {
	switch {
	case v.Kind == vdom.KindComponent && InstanceOf(v) != nil:
		v.Transition = hooks
		SetTransitionHooks(InstanceOf(v).SubTree, hooks)
	case v.Kind == vdom.KindSuspense:
		if v.SSContent != nil {
			v.SSContent.Transition = hooks.CloneFor(v.SSContent)
		}
		if v.SSFallback != nil {
			v.SSFallback.Transition = hooks.CloneFor(v.SSFallback)
		}
	default:
		v.Transition = hooks
	}
}
