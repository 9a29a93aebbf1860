package renderer

import (
	"time"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/vdom"
)

func (r *Renderer) processComponent(n1, n2 *vdom.VNode, container, anchor vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	if n1 != nil {
		r.updateComponent(n1, n2, optimized)
		return
	}
	if n2.HasFlag(vdom.KeptAlive) && parent != nil && parent.KeepAlive != nil {
		parent.KeepAlive.Activate(n2, container, anchor, ns, optimized)
		return
	}
	r.mountComponent(n2, container, anchor, parent, s, ns, optimized)
}

func (r *Renderer) mountComponent(v *vdom.VNode, container, anchor vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	var app *component.AppContext
	if parent == nil {
		app = r.rootApp
	}
	var boundary component.SuspenseBoundary
	if s != nil {
		boundary = s
	}
	inst := component.NewInstance(v, parent, app, boundary)
	v.Instance = inst
	if s != nil {
		inst.SuspenseID = s.pendingID
	}

	if inst.KeepAlive != nil {
		r.initKeepAlive(inst)
	}

	component.SetupComponent(inst)

	if inst.AsyncDep != nil {
		if s != nil {
			s.registerDep(inst, optimized)
		} else {
			component.HandleError(errors.New(errors.AsyncSetup).
				WithHint("render the component inside a Suspense boundary"), inst, errors.AsyncSetup)
		}
		// Keep a placeholder in the tree until setup resolves.
		if v.El == nil {
			placeholder := &vdom.VNode{Kind: vdom.KindComment}
			inst.SubTree = placeholder
			r.processComment(nil, placeholder, container, anchor)
			v.El = placeholder.El
		}
		return
	}

	r.setupRenderEffect(inst, v, container, anchor, s, ns, optimized)
	if r.observer != nil {
		r.observer.ComponentMounted(inst.Name())
	}
}

func (r *Renderer) updateComponent(n1, n2 *vdom.VNode, optimized bool) {
	inst := component.InstanceOf(n1)
	n2.Instance = inst
	if inst == nil {
		return
	}
	if !component.ShouldUpdateComponent(n1, n2, optimized) {
		n2.El = n1.El
		inst.VNode = n2
		return
	}
	if inst.AsyncDep != nil && !inst.AsyncResolved {
		// Still pending: just take the new props, the render effect is
		// installed once setup resolves.
		r.updateComponentPreRender(inst, n2, optimized)
		return
	}
	inst.Next = n2
	inst.Update()
}

// setupRenderEffect installs the render effect of inst and runs it once,
// which mounts the subtree. Later triggers queue inst.Job.
func (r *Renderer) setupRenderEffect(inst *component.Instance, initial *vdom.VNode, container, anchor vdom.Node, s *suspenseBoundary, ns string, optimized bool) {
	update := func() {
		if !inst.IsMounted {
			r.mountSubTree(inst, initial, container, anchor, s, ns)
			return
		}
		r.updateSubTree(inst, ns, optimized)
	}

	inst.Scope.Run(func() {
		inst.Effect = reactive.NewEffect(update)
	})
	if inst.Effect == nil {
		return
	}
	job := &scheduler.Job{
		ID:    inst.UID,
		Owner: inst,
		Name:  inst.Name(),
	}
	effect := inst.Effect
	job.Fn = func() error {
		effect.RunIfDirty()
		return nil
	}
	inst.Job = job
	inst.Update = func() {
		if effect.Active() {
			effect.Run()
		}
	}
	sched := inst.Scheduler()
	effect.Scheduler = func() { sched.QueueJob(job) }

	inst.ToggleRecurse(true)
	inst.Update()
}

func (r *Renderer) mountSubTree(inst *component.Instance, initial *vdom.VNode, container, anchor vdom.Node, s *suspenseBoundary, ns string) {
	v := inst.VNode

	inst.ToggleRecurse(false)
	inst.InvokeHooks(component.HookBeforeMount)
	if h := v.Prop("onVnodeBeforeMount"); h != nil {
		r.invokeVNodeHook(h, inst.Parent, v, nil)
	}
	inst.ToggleRecurse(true)

	sub := component.RenderComponentRoot(inst)
	inst.SubTree = sub
	r.patch(nil, sub, container, anchor, inst, s, ns, false)
	initial.El = sub.El

	r.queueHooks(inst.Hooks(component.HookMounted), s)
	if h := v.Prop("onVnodeMounted"); h != nil {
		r.queuePost(func() { r.invokeVNodeHook(h, inst.Parent, v, nil) }, s)
	}
	if v.HasFlag(vdom.ShouldKeepAlive) {
		r.queueHooks(inst.Hooks(component.HookActivated), s)
	}
	inst.IsMounted = true
}

func (r *Renderer) updateSubTree(inst *component.Instance, ns string, optimized bool) {
	start := time.Now()
	next := inst.Next
	selfTriggered := next == nil
	v := inst.VNode
	var s *suspenseBoundary
	if b, ok := inst.Suspense.(*suspenseBoundary); ok {
		s = b
	}

	inst.ToggleRecurse(false)
	if next != nil {
		next.El = v.El
		r.updateComponentPreRender(inst, next, optimized)
	} else {
		next = v
	}
	inst.InvokeHooks(component.HookBeforeUpdate)
	if h := next.Prop("onVnodeBeforeUpdate"); h != nil {
		r.invokeVNodeHook(h, inst.Parent, next, v)
	}
	inst.ToggleRecurse(true)

	nextTree := component.RenderComponentRoot(inst)
	prevTree := inst.SubTree
	inst.SubTree = nextTree

	container := r.ops.ParentNode(prevTree.El)
	r.patch(prevTree, nextTree, container, r.getNextHostNode(prevTree), inst, s, ns, false)
	next.El = nextTree.El
	if selfTriggered {
		updateHOCHostEl(inst, nextTree.El)
	}

	r.queueHooks(inst.Hooks(component.HookUpdated), s)
	if h := next.Prop("onVnodeUpdated"); h != nil {
		prev := v
		r.queuePost(func() { r.invokeVNodeHook(h, inst.Parent, next, prev) }, s)
	}
	if r.observer != nil {
		r.observer.ComponentUpdated(inst.Name(), time.Since(start))
	}
}

// updateComponentPreRender installs next as the instance vnode and
// applies its props and slots, then runs the pre watchers of inst so they
// see the new props before the render.
func (r *Renderer) updateComponentPreRender(inst *component.Instance, next *vdom.VNode, optimized bool) {
	next.Instance = inst
	prevProps := inst.VNode.Props
	inst.VNode = next
	inst.Next = nil
	inst.UpdateProps(next.Props, prevProps, optimized)
	inst.UpdateSlots(next, optimized)

	reactive.PauseTracking()
	inst.Scheduler().FlushPreFlushCbsFor(inst.UID)
	reactive.ResetTracking()
}

// updateHOCHostEl propagates a changed root element to ancestors whose
// subtree is the vnode of the component below them.
func updateHOCHostEl(inst *component.Instance, el vdom.Node) {
	v := inst.VNode
	for p := inst.Parent; p != nil; p = p.Parent {
		root := p.SubTree
		if root == nil {
			return
		}
		if b, ok := root.Suspense.(*suspenseBoundary); ok && b.activeBranch == v {
			root.El = v.El
		}
		if root != v {
			return
		}
		v = p.VNode
		v.El = el
	}
}

func (r *Renderer) unmountComponent(inst *component.Instance, s *suspenseBoundary, doRemove bool) {
	inst.InvalidateMount()
	inst.InvokeHooks(component.HookBeforeUnmount)

	inst.Scope.Stop()
	if inst.Job != nil {
		inst.Job.Dispose()
	}
	if inst.SubTree != nil {
		r.unmount(inst.SubTree, inst, s, doRemove, false)
	}

	r.queueHooks(inst.Hooks(component.HookUnmounted), s)
	r.queuePost(func() { inst.IsUnmounted = true }, s)

	if s != nil && s.isPending() && !s.isUnmounted && inst.AsyncDep != nil &&
		!inst.AsyncResolved && inst.SuspenseID == s.pendingID {
		s.deps--
		if s.deps == 0 {
			s.resolve(false, false)
		}
	}
	if r.observer != nil {
		r.observer.ComponentUnmounted(inst.Name())
	}
}
