package renderer

import (
	"log/slog"
	"time"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// Observer is notified about renderer activity.
type Observer interface {
	// HostOp is called for every host mutation, with the HostOps method
	// name ("insert", "patchProp", ...).
	HostOp(op string)

	ComponentMounted(name string)
	ComponentUnmounted(name string)
	ComponentUpdated(name string, d time.Duration)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithScheduler makes the renderer queue its jobs on s. By default every
// renderer gets its own scheduler on a fresh Loop.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(r *Renderer) {
		r.sched = s
	}
}

// WithLogger sets the logger for warnings and unhandled errors.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// WithObserver sets the activity observer.
func WithObserver(o Observer) Option {
	return func(r *Renderer) {
		r.observer = o
	}
}

// Renderer reconciles vnode trees against a host.
// It must only be used from the goroutine driving its scheduler loop.
type Renderer struct {
	ops HostOps
	raw HostOps

	sched    *scheduler.Scheduler
	logger   *slog.Logger
	observer Observer

	// app backs components rendered with Render rather than through an App.
	app *component.AppContext
	// rootApp is the context used for root components while a root render
	// is in progress.
	rootApp *component.AppContext

	roots    map[vdom.Node]*vdom.VNode
	flushing bool
}

// New creates a renderer driving ops.
func New(ops HostOps, opts ...Option) *Renderer {
	r := &Renderer{
		ops:   ops,
		raw:   ops,
		roots: make(map[vdom.Node]*vdom.VNode),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.sched == nil {
		r.sched = scheduler.New(scheduler.NewLoop(), scheduler.WithLogger(r.logger))
	}
	if r.observer != nil {
		r.ops = &observedHost{HostOps: ops, obs: r.observer}
	}
	r.sched.SetErrorHandler(r.handleJobError)
	r.app = component.NewAppContext(r.sched, r.logger)
	return r
}

// Scheduler returns the scheduler the renderer queues jobs on.
func (r *Renderer) Scheduler() *scheduler.Scheduler { return r.sched }

// AppContext returns the context of components rendered with Render.
func (r *Renderer) AppContext() *component.AppContext { return r.app }

// Host returns the host operations the renderer was created with.
func (r *Renderer) Host() HostOps { return r.raw }

// Render mounts, patches or (with a nil vnode) unmounts the tree rendered
// into container, then flushes pending pre and post callbacks.
func (r *Renderer) Render(v *vdom.VNode, container vdom.Node) {
	r.render(v, container, r.app)
}

func (r *Renderer) render(v *vdom.VNode, container vdom.Node, app *component.AppContext) {
	prev := r.roots[container]
	if v == nil {
		if prev != nil {
			r.unmount(prev, nil, nil, true, false)
		}
		delete(r.roots, container)
	} else {
		prevApp := r.rootApp
		r.rootApp = app
		r.patch(prev, v, container, nil, nil, nil, "", false)
		r.rootApp = prevApp
		r.roots[container] = v
	}
	if !r.flushing {
		r.flushing = true
		r.sched.FlushPreFlushCbs()
		r.sched.FlushPostFlushCbs()
		r.flushing = false
	}
}

// Root returns the vnode currently rendered into container.
func (r *Renderer) Root(container vdom.Node) *vdom.VNode {
	return r.roots[container]
}

func (r *Renderer) handleJobError(err error, owner any, code errors.ErrorCode) {
	if inst, ok := owner.(*component.Instance); ok && inst != nil {
		component.HandleError(err, inst, code)
		return
	}
	r.logger.Error("scheduler job failed",
		slog.String("code", code.String()),
		slog.Any("error", err),
	)
}

// patch reconciles n1 into n2. A nil n1 mounts n2.
func (r *Renderer) patch(n1, n2 *vdom.VNode, container, anchor vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	if n1 == n2 {
		return
	}
	if n1 != nil && !vdom.IsSameVNodeType(n1, n2) {
		anchor = r.getNextHostNode(n1)
		r.unmount(n1, parent, s, true, false)
		n1 = nil
	}
	if n2.PatchFlag == vdom.PatchBail {
		optimized = false
		n2.DynamicChildren = nil
	}

	switch n2.Kind {
	case vdom.KindText:
		r.processText(n1, n2, container, anchor)
	case vdom.KindComment:
		r.processComment(n1, n2, container, anchor)
	case vdom.KindStatic:
		if n1 == nil {
			r.mountStatic(n2, container, anchor, ns)
		} else {
			r.patchStatic(n1, n2, container, ns)
		}
	case vdom.KindFragment:
		r.processFragment(n1, n2, container, anchor, parent, s, ns, optimized)
	case vdom.KindElement:
		r.processElement(n1, n2, container, anchor, parent, s, ns, optimized)
	case vdom.KindComponent:
		r.processComponent(n1, n2, container, anchor, parent, s, ns, optimized)
	case vdom.KindTeleport:
		r.processTeleport(n1, n2, container, anchor, parent, s, ns, optimized)
	case vdom.KindSuspense:
		r.processSuspense(n1, n2, container, anchor, parent, s, ns, optimized)
	default:
		component.Warn(parent, "invalid vnode kind %v", n2.Kind)
	}

	switch {
	case n2.Ref != nil:
		var oldRef any
		if n1 != nil {
			oldRef = n1.Ref
		}
		r.setRef(n2.Ref, oldRef, parent, s, n2, false)
	case n1 != nil && n1.Ref != nil:
		r.setRef(n1.Ref, nil, parent, s, n1, true)
	}
}

func (r *Renderer) processText(n1, n2 *vdom.VNode, container, anchor vdom.Node) {
	if n1 == nil {
		n2.El = r.ops.CreateText(n2.Text)
		r.ops.Insert(n2.El, container, anchor)
		return
	}
	n2.El = n1.El
	if n2.Text != n1.Text {
		r.ops.SetText(n2.El, n2.Text)
	}
}

// processComment never updates the content of a mounted comment.
func (r *Renderer) processComment(n1, n2 *vdom.VNode, container, anchor vdom.Node) {
	if n1 == nil {
		n2.El = r.ops.CreateComment(n2.Text)
		r.ops.Insert(n2.El, container, anchor)
		return
	}
	n2.El = n1.El
}

func (r *Renderer) mountStatic(v *vdom.VNode, container, anchor vdom.Node, ns string) {
	if si, ok := r.raw.(StaticInserter); ok {
		v.El, v.Anchor = si.InsertStaticContent(v.Text, container, anchor, ns)
		r.noteOp("insertStaticContent")
		return
	}
	v.El = r.ops.CreateText(v.Text)
	v.Anchor = v.El
	r.ops.Insert(v.El, container, anchor)
}

func (r *Renderer) patchStatic(n1, n2 *vdom.VNode, container vdom.Node, ns string) {
	if n1.Text == n2.Text {
		n2.El, n2.Anchor = n1.El, n1.Anchor
		n2.StaticCount = n1.StaticCount
		return
	}
	anchor := r.ops.NextSibling(n1.Anchor)
	r.removeStatic(n1)
	r.mountStatic(n2, container, anchor, ns)
}

func (r *Renderer) moveStatic(v *vdom.VNode, container, anchor vdom.Node) {
	el := v.El
	for el != nil && el != v.Anchor {
		next := r.ops.NextSibling(el)
		r.ops.Insert(el, container, anchor)
		el = next
	}
	r.ops.Insert(v.Anchor, container, anchor)
}

func (r *Renderer) removeStatic(v *vdom.VNode) {
	el := v.El
	for el != nil && el != v.Anchor {
		next := r.ops.NextSibling(el)
		r.ops.Remove(el)
		el = next
	}
	r.ops.Remove(v.Anchor)
}

func (r *Renderer) processFragment(n1, n2 *vdom.VNode, container, anchor vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	if n1 == nil {
		n2.El = r.ops.CreateText("")
		n2.Anchor = r.ops.CreateText("")
		r.ops.Insert(n2.El, container, anchor)
		r.ops.Insert(n2.Anchor, container, anchor)
		r.mountChildren(n2.Children, container, n2.Anchor, parent, s, ns, optimized)
		return
	}
	n2.El, n2.Anchor = n1.El, n1.Anchor
	if n2.PatchFlag > 0 && n2.PatchFlag.Has(vdom.PatchStableFragment) &&
		n2.DynamicChildren != nil && n1.DynamicChildren != nil &&
		len(n1.DynamicChildren) == len(n2.DynamicChildren) {
		r.patchBlockChildren(n1.DynamicChildren, n2.DynamicChildren, container, parent, s, ns)
		if n2.Key != "" || (parent != nil && n2 == parent.SubTree) {
			r.traverseStaticChildren(n1, n2)
		}
		return
	}
	r.patchChildren(n1, n2, container, n2.Anchor, parent, s, ns, optimized)
}

// traverseStaticChildren carries host nodes over to hoisted children of a
// stable fragment, which the block patch never visits.
func (r *Renderer) traverseStaticChildren(n1, n2 *vdom.VNode) {
	if n1.Shape != vdom.ChildArray || n2.Shape != vdom.ChildArray {
		return
	}
	for i, c1 := range n1.Children {
		if i >= len(n2.Children) {
			return
		}
		c2 := n2.Children[i]
		if c2.Kind == vdom.KindElement && c2.DynamicChildren == nil {
			if c2.PatchFlag <= 0 || c2.PatchFlag.Has(vdom.PatchNeedHydration) {
				c2 = vdom.CloneIfMounted(c2)
				n2.Children[i] = c2
				c2.El = c1.El
			}
			r.traverseStaticChildren(c1, c2)
		}
		if c2.Kind == vdom.KindText && c2.El == nil {
			c2.El = c1.El
		}
		if c2.Kind == vdom.KindComment && c2.El == nil {
			c2.El = c1.El
		}
	}
}

// getNextHostNode returns the host node after everything v rendered.
func (r *Renderer) getNextHostNode(v *vdom.VNode) vdom.Node {
	switch v.Kind {
	case vdom.KindComponent:
		if inst := component.InstanceOf(v); inst != nil && inst.SubTree != nil {
			return r.getNextHostNode(inst.SubTree)
		}
	case vdom.KindSuspense:
		if b, ok := v.Suspense.(*suspenseBoundary); ok && b != nil {
			return b.next()
		}
	}
	if v.Anchor != nil {
		return r.ops.NextSibling(v.Anchor)
	}
	if v.El == nil {
		return nil
	}
	return r.ops.NextSibling(v.El)
}

// setRef assigns a template ref. Values are set after the patch, in the
// post flush; clearing happens right away.
func (r *Renderer) setRef(raw, oldRaw any, parent *component.Instance, s *suspenseBoundary, v *vdom.VNode, isUnmount bool) {
	owner, _ := v.RefOwner.(*component.Instance)
	if owner == nil {
		owner = parent
	}
	if owner == nil {
		return
	}

	var value any
	if !isUnmount {
		if inst := component.InstanceOf(v); inst != nil && v.Kind == vdom.KindComponent {
			value = inst.PublicValue()
		} else {
			value = v.El
		}
	}

	if oldRaw != nil && reactive.HasChanged(oldRaw, raw) {
		switch old := oldRaw.(type) {
		case string:
			delete(owner.Refs, old)
		case func(any):
			component.CallWithErrorHandling(func() { old(nil) }, owner, errors.FunctionRef)
		case vdom.RefSetter:
			old.SetRef(nil)
		}
	}

	switch ref := raw.(type) {
	case func(any):
		component.CallWithErrorHandling(func() { ref(value) }, owner, errors.FunctionRef)
	case string:
		if value == nil {
			delete(owner.Refs, ref)
			return
		}
		job := &scheduler.Job{ID: scheduler.FirstID, Name: "ref", Fn: func() error {
			owner.Refs[ref] = value
			return nil
		}}
		r.queuePostRenderEffect(job, s)
	case vdom.RefSetter:
		if value == nil {
			ref.SetRef(nil)
			return
		}
		job := &scheduler.Job{ID: scheduler.FirstID, Name: "ref", Fn: func() error {
			ref.SetRef(value)
			return nil
		}}
		r.queuePostRenderEffect(job, s)
	default:
		component.Warn(owner, "invalid template ref type: %T", raw)
	}
}

// queuePostRenderEffect runs job after the current flush, or after the
// suspense boundary resolves if it is pending.
func (r *Renderer) queuePostRenderEffect(job *scheduler.Job, s *suspenseBoundary) {
	if s != nil && s.QueueEffect(job) {
		return
	}
	r.sched.QueuePostFlushCb(job)
}

func (r *Renderer) queuePost(fn func(), s *suspenseBoundary) {
	r.queuePostRenderEffect(scheduler.NewJob(func() error {
		fn()
		return nil
	}), s)
}

func (r *Renderer) queueHooks(jobs []*scheduler.Job, s *suspenseBoundary) {
	if len(jobs) == 0 {
		return
	}
	if s != nil && s.isPending() {
		for _, j := range jobs {
			s.QueueEffect(j)
		}
		return
	}
	r.sched.QueuePostFlushCbs(jobs)
}

func (r *Renderer) dev(inst *component.Instance) bool {
	if inst != nil {
		return inst.AppContext.Config.Dev
	}
	return r.app.Config.Dev
}

func (r *Renderer) noteOp(op string) {
	if r.observer != nil {
		r.observer.HostOp(op)
	}
}
