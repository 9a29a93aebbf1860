package vdom

// DirectiveHook is called by the renderer at a point in an element's life.
// prev is nil except for update hooks.
type DirectiveHook func(el Node, binding *DirectiveBinding, vnode, prev *VNode)

// Directive is a reusable set of element lifecycle hooks.
type Directive struct {
	Name string

	Created       DirectiveHook
	BeforeMount   DirectiveHook
	Mounted       DirectiveHook
	BeforeUpdate  DirectiveHook
	Updated       DirectiveHook
	BeforeUnmount DirectiveHook
	Unmounted     DirectiveHook

	// Deep makes the bound value a deep dependency of the render.
	Deep bool
}

// DirectiveBinding binds a directive to one element.
type DirectiveBinding struct {
	Dir       *Directive
	Instance  Instance
	Value     any
	OldValue  any
	Arg       string
	Modifiers map[string]bool
}

// Use binds dir to the element being built.
func Use(dir *Directive, value any, arg string, modifiers ...string) *DirectiveBinding {
	b := &DirectiveBinding{
		Dir:      dir,
		Instance: RenderingInstance(),
		Value:    value,
		Arg:      arg,
	}
	if len(modifiers) > 0 {
		b.Modifiers = make(map[string]bool, len(modifiers))
		for _, m := range modifiers {
			b.Modifiers[m] = true
		}
	}
	return b
}

// WithDirectives attaches directive bindings to v.
func WithDirectives(v *VNode, bindings ...*DirectiveBinding) *VNode {
	inst := RenderingInstance()
	for _, b := range bindings {
		if b == nil || b.Dir == nil {
			continue
		}
		if b.Instance == nil {
			b.Instance = inst
		}
		v.Dirs = append(v.Dirs, b)
	}
	return v
}
