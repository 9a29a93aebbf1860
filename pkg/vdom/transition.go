package vdom

// TransitionHooks are attached to a vnode by a transition component and
// invoked by the renderer around insertion and removal of the host node.
type TransitionHooks struct {
	// Mode is "", "out-in" or "in-out".
	Mode string

	// Persisted transitions toggle visibility instead of inserting and
	// removing the node; leave is called without removing.
	Persisted bool

	BeforeEnter func(el Node)
	Enter       func(el Node)
	// Leave must call remove once the leave animation finished.
	Leave func(el Node, remove func())

	// DelayLeave postpones a leave until the entering node is ready.
	DelayLeave func(el Node, earlyRemove func(), delayedLeave func())
	// DelayedLeave is set while a leave is postponed.
	DelayedLeave func()
	// AfterLeave runs after the leaving node was removed.
	AfterLeave func()

	// Clone resolves hooks for a clone of the vnode.
	Clone func(v *VNode) *TransitionHooks
}

// CloneFor returns the hooks to use for v, a clone of the vnode h was
// resolved for.
func (h *TransitionHooks) CloneFor(v *VNode) *TransitionHooks {
	if h.Clone != nil {
		return h.Clone(v)
	}
	c := *h
	return &c
}
