package renderer

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/vdom"
)

var suspenseIDCounter atomic.Int64

func nextSuspenseID() int { return int(suspenseIDCounter.Add(1)) }

// suspenseBoundary tracks the async dependencies of one suspense vnode.
// The pending branch renders into a detached container until every
// dependency resolved, then moves into place.
type suspenseBoundary struct {
	r *Renderer

	vnode           *vdom.VNode
	parent          *suspenseBoundary
	parentComponent *component.Instance
	ns              string
	optimized       bool

	container       vdom.Node
	hiddenContainer vdom.Node
	anchor          vdom.Node
	initialAnchor   vdom.Node

	deps      int
	pendingID int
	// timeout in milliseconds before the fallback shows on re-entering the
	// pending state; negative disables it.
	timeout int

	activeBranch  *vdom.VNode
	pendingBranch *vdom.VNode
	isInFallback  bool
	isUnmounted   bool

	effects []*scheduler.Job

	suspensible      bool
	parentSuspenseID int
}

func (r *Renderer) newSuspenseBoundary(v *vdom.VNode, parent *suspenseBoundary, parentComponent *component.Instance, container, anchor vdom.Node, ns string, optimized bool) *suspenseBoundary {
	b := &suspenseBoundary{
		r:               r,
		vnode:           v,
		parent:          parent,
		parentComponent: parentComponent,
		ns:              ns,
		optimized:       optimized,
		container:       container,
		hiddenContainer: r.ops.CreateElement("div", "", nil),
		anchor:          anchor,
		initialAnchor:   anchor,
		pendingID:       nextSuspenseID(),
		timeout:         suspenseTimeout(v.Prop("timeout")),
		isInFallback:    true,
		suspensible:     isSuspensible(v),
	}
	if b.suspensible && parent != nil && parent.pendingBranch != nil {
		b.parentSuspenseID = parent.pendingID
		parent.deps++
	}
	v.Suspense = b
	return b
}

// QueueEffect implements component.SuspenseBoundary.
func (b *suspenseBoundary) QueueEffect(job *scheduler.Job) bool {
	if b.pendingBranch == nil {
		return false
	}
	b.effects = append(b.effects, job)
	return true
}

func (b *suspenseBoundary) isPending() bool {
	return b.pendingBranch != nil
}

// resolve swaps the pending branch in. With resume the pending branch was
// patched in place and only the bookkeeping remains.
func (b *suspenseBoundary) resolve(resume, sync bool) {
	r := b.r
	active, pending := b.activeBranch, b.pendingBranch
	pendingID := b.pendingID
	effects := b.effects

	delayEnter := false
	if !resume {
		delayEnter = active != nil && pending.Transition != nil && pending.Transition.Mode == "out-in"
		if delayEnter {
			active.Transition.AfterLeave = func() {
				if pendingID != b.pendingID {
					return
				}
				anchor := b.anchor
				if anchor == b.initialAnchor {
					anchor = r.getNextHostNode(active)
				}
				r.move(pending, b.container, anchor, moveEnter, nil)
				r.sched.QueuePostFlushCbs(effects)
			}
		}
		if active != nil {
			if r.ops.ParentNode(active.El) == b.container {
				b.anchor = r.getNextHostNode(active)
			}
			r.unmount(active, b.parentComponent, b, true, false)
		}
		if !delayEnter {
			r.move(pending, b.container, b.anchor, moveEnter, nil)
		}
	}

	b.setActiveBranch(pending)
	b.pendingBranch = nil
	b.isInFallback = false

	hasUnresolvedAncestor := false
	for p := b.parent; p != nil; p = p.parent {
		if p.pendingBranch != nil {
			p.effects = append(p.effects, effects...)
			hasUnresolvedAncestor = true
			break
		}
	}
	if !hasUnresolvedAncestor && !delayEnter {
		r.sched.QueuePostFlushCbs(effects)
	}
	b.effects = nil

	if b.suspensible && b.parent != nil && b.parent.pendingBranch != nil && b.parentSuspenseID == b.parent.pendingID {
		b.parent.deps--
		if b.parent.deps == 0 && !sync {
			b.parent.resolve(false, false)
		}
	}
	b.triggerEvent("onResolve")
}

// fallback replaces the active branch with the fallback while the pending
// branch keeps loading.
func (b *suspenseBoundary) fallback(fallback *vdom.VNode) {
	if b.pendingBranch == nil {
		return
	}
	r := b.r
	active := b.activeBranch
	b.triggerEvent("onFallback")

	anchor := r.getNextHostNode(active)
	mountFallback := func() {
		if !b.isInFallback {
			return
		}
		r.patch(nil, fallback, b.container, anchor, b.parentComponent, nil, b.ns, b.optimized)
		b.setActiveBranch(fallback)
	}
	delayEnter := fallback.Transition != nil && fallback.Transition.Mode == "out-in"
	if delayEnter && active.Transition != nil {
		active.Transition.AfterLeave = mountFallback
	}
	b.isInFallback = true
	r.unmount(active, b.parentComponent, nil, true, false)
	if !delayEnter {
		mountFallback()
	}
}

func (b *suspenseBoundary) move(container, anchor vdom.Node, mt moveType) {
	if b.activeBranch != nil {
		b.r.move(b.activeBranch, container, anchor, mt, nil)
	}
	b.container = container
}

func (b *suspenseBoundary) next() vdom.Node {
	if b.activeBranch == nil {
		return nil
	}
	return b.r.getNextHostNode(b.activeBranch)
}

// registerDep counts the async setup of inst as a dependency and finishes
// mounting it once the setup settles.
func (b *suspenseBoundary) registerDep(inst *component.Instance, optimized bool) {
	r := b.r
	inPending := b.pendingBranch != nil
	if inPending {
		b.deps++
	}
	inst.AsyncDep.Then(r.sched.Loop(), func(result any, err error) {
		if err != nil {
			component.HandleError(err, inst, errors.SetupFunction)
			result = nil
		}
		if inst.IsUnmounted || b.isUnmounted || b.pendingID != inst.SuspenseID {
			return
		}
		inst.AsyncResolved = true
		v := inst.VNode
		component.HandleSetupResult(inst, result)

		placeholder := inst.SubTree.El
		r.setupRenderEffect(inst, v, r.ops.ParentNode(placeholder), r.getNextHostNode(inst.SubTree), b, b.ns, optimized)
		r.ops.Remove(placeholder)
		updateHOCHostEl(inst, v.El)
		if r.observer != nil {
			r.observer.ComponentMounted(inst.Name())
		}

		if inPending {
			b.deps--
			if b.deps == 0 {
				b.resolve(false, false)
			}
		}
	})
}

func (b *suspenseBoundary) unmount(parentSuspense *suspenseBoundary, doRemove bool) {
	b.isUnmounted = true
	if b.activeBranch != nil {
		b.r.unmount(b.activeBranch, b.parentComponent, parentSuspense, doRemove, false)
	}
	if b.pendingBranch != nil {
		b.r.unmount(b.pendingBranch, b.parentComponent, parentSuspense, doRemove, false)
	}
}

func (b *suspenseBoundary) setActiveBranch(branch *vdom.VNode) {
	b.activeBranch = branch
	el := branch.El
	for el == nil {
		inst := component.InstanceOf(branch)
		if inst == nil || inst.SubTree == nil {
			break
		}
		branch = inst.SubTree
		el = branch.El
	}
	b.vnode.El = el
	if pc := b.parentComponent; pc != nil && pc.SubTree == b.vnode {
		pc.VNode.El = el
		updateHOCHostEl(pc, el)
	}
}

func (b *suspenseBoundary) triggerEvent(name string) {
	if h := b.vnode.Prop(name); h != nil {
		component.CallWithAsyncErrorHandling(h, b.parentComponent, errors.ComponentEventHandler)
	}
}

func (r *Renderer) processSuspense(n1, n2 *vdom.VNode, container, anchor vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	if n1 == nil {
		r.mountSuspense(n2, container, anchor, parent, s, ns, optimized)
		return
	}
	b, _ := n1.Suspense.(*suspenseBoundary)
	if s != nil && s.deps > 0 && b != nil && !b.isInFallback {
		// The parent boundary is still resolving; it patches this one
		// once it resolves.
		n2.Suspense = b
		b.vnode = n2
		n2.El = n1.El
		return
	}
	r.patchSuspense(n1, n2, container, anchor, parent, ns, optimized)
}

func (r *Renderer) mountSuspense(v *vdom.VNode, container, anchor vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	b := r.newSuspenseBoundary(v, s, parent, container, anchor, ns, optimized)
	b.pendingBranch = v.SSContent
	r.patch(nil, v.SSContent, b.hiddenContainer, nil, parent, b, ns, optimized)
	if b.deps > 0 {
		b.triggerEvent("onPending")
		b.triggerEvent("onFallback")
		r.patch(nil, v.SSFallback, container, anchor, parent, nil, ns, optimized)
		b.setActiveBranch(v.SSFallback)
		return
	}
	b.resolve(false, true)
}

func (r *Renderer) patchSuspense(n1, n2 *vdom.VNode, container, anchor vdom.Node, parent *component.Instance, ns string, optimized bool) {
	b := n1.Suspense.(*suspenseBoundary)
	n2.Suspense = b
	b.vnode = n2
	n2.El = n1.El
	newBranch, newFallback := n2.SSContent, n2.SSFallback
	active, pending, inFallback := b.activeBranch, b.pendingBranch, b.isInFallback

	if pending != nil {
		b.pendingBranch = newBranch
		if vdom.IsSameVNodeType(newBranch, pending) {
			r.patch(pending, newBranch, b.hiddenContainer, nil, parent, b, ns, optimized)
			switch {
			case b.deps <= 0:
				b.resolve(false, false)
			case inFallback:
				r.patch(active, newFallback, container, anchor, parent, nil, ns, optimized)
				b.setActiveBranch(newFallback)
			}
			return
		}

		b.pendingID = nextSuspenseID()
		r.unmount(pending, parent, b, false, false)
		b.deps = 0
		b.effects = nil
		b.hiddenContainer = r.ops.CreateElement("div", "", nil)

		switch {
		case inFallback:
			r.patch(nil, newBranch, b.hiddenContainer, nil, parent, b, ns, optimized)
			if b.deps <= 0 {
				b.resolve(false, false)
			} else {
				r.patch(active, newFallback, container, anchor, parent, nil, ns, optimized)
				b.setActiveBranch(newFallback)
			}
		case active != nil && vdom.IsSameVNodeType(newBranch, active):
			r.patch(active, newBranch, container, anchor, parent, b, ns, optimized)
			b.resolve(true, false)
		default:
			r.patch(nil, newBranch, b.hiddenContainer, nil, parent, b, ns, optimized)
			if b.deps <= 0 {
				b.resolve(false, false)
			}
		}
		return
	}

	if active != nil && vdom.IsSameVNodeType(newBranch, active) {
		r.patch(active, newBranch, container, anchor, parent, b, ns, optimized)
		b.setActiveBranch(newBranch)
		return
	}

	b.triggerEvent("onPending")
	b.pendingBranch = newBranch
	if inst := component.InstanceOf(newBranch); newBranch.HasFlag(vdom.KeptAlive) && inst != nil {
		b.pendingID = inst.SuspenseID
	} else {
		b.pendingID = nextSuspenseID()
	}
	r.patch(nil, newBranch, b.hiddenContainer, nil, parent, b, ns, optimized)
	if b.deps <= 0 {
		b.resolve(false, false)
		return
	}
	switch {
	case b.timeout > 0:
		id := b.pendingID
		loop := r.sched.Loop()
		time.AfterFunc(time.Duration(b.timeout)*time.Millisecond, func() {
			loop.Dispatch(func() {
				if b.pendingID == id {
					b.fallback(newFallback)
				}
			})
		})
	case b.timeout == 0:
		b.fallback(newFallback)
	}
}

func isSuspensible(v *vdom.VNode) bool {
	switch s := v.Prop("suspensible").(type) {
	case nil:
		return false
	case bool:
		return s
	}
	return true
}

func suspenseTimeout(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case time.Duration:
		return int(t / time.Millisecond)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return -1
}
