package renderer

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/swiss"

	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// KeepAlive caches the component instances it renders instead of
// unmounting them when they are switched out.
//
// Props: include and exclude (a comma separated string, a []string or a
// *regexp.Regexp matched against component names) and max (the cache
// size; the least recently used entry is evicted first).
var KeepAlive = &component.Definition{
	Name:      "KeepAlive",
	KeepAlive: true,
	Props: component.PropsOptions{
		"include": {},
		"exclude": {},
		"max":     {},
	},
	Setup: keepAliveSetup,
}

// cacheKey identifies a cached child: its key, or its component when the
// child is unkeyed.
type cacheKey struct {
	key  string
	comp vdom.Component
}

func keyOf(v *vdom.VNode) cacheKey {
	if v.Key != "" {
		return cacheKey{key: v.Key}
	}
	return cacheKey{comp: v.Comp}
}

type keepAliveCache struct {
	r       *Renderer
	inst    *component.Instance
	entries swiss.Map[cacheKey, *vdom.VNode]
	// keys in least recently used order.
	keys    []cacheKey
	current *vdom.VNode
	storage vdom.Node

	pendingKey *cacheKey
}

func (r *Renderer) initKeepAlive(inst *component.Instance) {
	inst.KeepAlive.Renderer = r
}

func keepAliveSetup(ctx *component.Ctx) any {
	inst := ctx.Instance()
	r, ok := inst.KeepAlive.Renderer.(*Renderer)
	if !ok {
		component.Warn(inst, "KeepAlive used outside of a renderer")
		return component.RenderFunc(func() *vdom.VNode { return nil })
	}
	c := &keepAliveCache{
		r:       r,
		inst:    inst,
		storage: r.ops.CreateElement("div", "", nil),
	}
	c.entries.Init(8)
	inst.KeepAlive.Activate = c.activate
	inst.KeepAlive.Deactivate = c.deactivate

	component.Watch(func() any {
		return [2]any{ctx.Prop("include"), ctx.Prop("exclude")}
	}, func(value, _ any, _ component.OnCleanup) {
		pair := value.([2]any)
		if pair[0] != nil {
			c.prune(func(name string) bool { return matchesPattern(pair[0], name) })
		}
		if pair[1] != nil {
			c.prune(func(name string) bool { return !matchesPattern(pair[1], name) })
		}
	}, component.WatchOptions{Flush: component.FlushPost, Equal: func(a, b any) bool {
		x, _ := a.([2]any)
		y, _ := b.([2]any)
		return !reactive.HasChanged(x[0], y[0]) && !reactive.HasChanged(x[1], y[1])
	}})

	component.OnMounted(c.cacheSubtree)
	component.OnUpdated(c.cacheSubtree)
	component.OnBeforeUnmount(c.unmountAll)

	return component.RenderFunc(func() *vdom.VNode {
		return c.render(ctx)
	})
}

func (c *keepAliveCache) suspense() *suspenseBoundary {
	b, _ := c.inst.Suspense.(*suspenseBoundary)
	return b
}

func (c *keepAliveCache) activate(v *vdom.VNode, container, anchor vdom.Node, ns string, optimized bool) {
	r := c.r
	child := component.InstanceOf(v)
	s := c.suspense()
	r.move(v, container, anchor, moveEnter, s)
	r.patch(child.VNode, v, container, anchor, child, s, ns, optimized)
	r.queuePost(func() {
		child.IsDeactivated = false
		child.InvokeHooks(component.HookActivated)
		if h := v.Prop("onVnodeMounted"); h != nil {
			r.invokeVNodeHook(h, child.Parent, v, nil)
		}
	}, s)
}

func (c *keepAliveCache) deactivate(v *vdom.VNode) {
	r := c.r
	child := component.InstanceOf(v)
	s := c.suspense()
	child.InvalidateMount()
	r.move(v, c.storage, nil, moveLeave, s)
	r.queuePost(func() {
		child.InvokeHooks(component.HookDeactivated)
		if h := v.Prop("onVnodeUnmounted"); h != nil {
			r.invokeVNodeHook(h, child.Parent, v, nil)
		}
		child.IsDeactivated = true
	}, s)
}

func (c *keepAliveCache) unmount(v *vdom.VNode) {
	resetKeepAliveFlags(v)
	c.r.unmount(v, c.inst, c.suspense(), true, false)
}

func (c *keepAliveCache) prune(keep func(name string) bool) {
	var drop []cacheKey
	c.entries.All(func(k cacheKey, v *vdom.VNode) bool {
		if name := v.Comp.ComponentName(); name != "" && !keep(name) {
			drop = append(drop, k)
		}
		return true
	})
	for _, k := range drop {
		c.pruneEntry(k)
	}
}

func (c *keepAliveCache) pruneEntry(k cacheKey) {
	cached, ok := c.entries.Get(k)
	switch {
	case ok && (c.current == nil || !vdom.IsSameVNodeType(cached, c.current)):
		c.unmount(cached)
	case c.current != nil:
		// The current child stays mounted and is unmounted normally later.
		resetKeepAliveFlags(c.current)
	}
	c.entries.Delete(k)
	c.keys = slices.DeleteFunc(c.keys, func(x cacheKey) bool { return x == k })
}

func (c *keepAliveCache) cacheSubtree() {
	if c.pendingKey == nil {
		return
	}
	k := *c.pendingKey
	sub := c.inst.SubTree
	if sub.Kind == vdom.KindSuspense {
		b, _ := sub.Suspense.(*suspenseBoundary)
		c.r.queuePost(func() { c.entries.Put(k, innerChild(c.inst.SubTree)) }, b)
		return
	}
	c.entries.Put(k, innerChild(sub))
}

func (c *keepAliveCache) unmountAll() {
	sub := c.inst.SubTree
	c.entries.All(func(_ cacheKey, cached *vdom.VNode) bool {
		cur := innerChild(sub)
		if cur != nil && cached.Comp == cur.Comp && cached.Key == cur.Key {
			// The current child is unmounted with the subtree; it only
			// gets its deactivated hooks here.
			resetKeepAliveFlags(cur)
			if child := component.InstanceOf(cur); child != nil {
				c.r.queueHooks(child.Hooks(component.HookDeactivated), c.suspense())
			}
			return true
		}
		c.unmount(cached)
		return true
	})
}

func (c *keepAliveCache) render(ctx *component.Ctx) *vdom.VNode {
	c.pendingKey = nil
	slot, ok := ctx.Slots()["default"]
	if !ok {
		c.current = nil
		return nil
	}
	children := slot(nil)
	if len(children) == 0 {
		c.current = nil
		return nil
	}
	if len(children) > 1 {
		component.Warn(c.inst, "KeepAlive should contain exactly one component child")
		c.current = nil
		return vdom.Fragment(children)
	}
	raw := children[0]
	if raw.Kind != vdom.KindComponent && raw.Kind != vdom.KindSuspense {
		c.current = nil
		return raw
	}

	v := innerChild(raw)
	if v.Kind == vdom.KindComment {
		c.current = nil
		return v
	}
	name := v.Comp.ComponentName()
	props := ctx.Props().Raw()
	include, exclude := props["include"], props["exclude"]
	if (include != nil && !matchesPattern(include, name)) || (exclude != nil && matchesPattern(exclude, name)) {
		v.Flags &^= vdom.ShouldKeepAlive
		c.current = v
		return raw
	}

	k := keyOf(v)
	cached, hit := c.entries.Get(k)
	if v.El != nil {
		v = vdom.Clone(v, nil)
		if raw.Kind == vdom.KindSuspense {
			raw.SSContent = v
		}
	}
	c.pendingKey = &k

	if hit {
		v.El = cached.El
		v.Instance = cached.Instance
		if v.Transition != nil {
			component.SetTransitionHooks(v, v.Transition)
		}
		v.Flags |= vdom.KeptAlive
		c.touch(k)
	} else {
		c.keys = append(c.keys, k)
		if limit := cacheMax(props["max"]); limit > 0 && len(c.keys) > limit {
			c.pruneEntry(c.keys[0])
		}
	}
	v.Flags |= vdom.ShouldKeepAlive
	c.current = v
	if raw.Kind == vdom.KindSuspense {
		return raw
	}
	return v
}

func (c *keepAliveCache) touch(k cacheKey) {
	c.keys = slices.DeleteFunc(c.keys, func(x cacheKey) bool { return x == k })
	c.keys = append(c.keys, k)
}

func innerChild(v *vdom.VNode) *vdom.VNode {
	if v != nil && v.Kind == vdom.KindSuspense {
		return v.SSContent
	}
	return v
}

func resetKeepAliveFlags(v *vdom.VNode) {
	v.Flags &^= vdom.ShouldKeepAlive | vdom.KeptAlive
}

func matchesPattern(pattern any, name string) bool {
	switch p := pattern.(type) {
	case string:
		return slices.Contains(strings.Split(p, ","), name)
	case []string:
		return slices.Contains(p, name)
	case *regexp.Regexp:
		return p.MatchString(name)
	}
	return false
}

func cacheMax(v any) int {
	switch m := v.(type) {
	case int:
		return m
	case int64:
		return int(m)
	case float64:
		return int(m)
	case string:
		n, _ := strconv.Atoi(m)
		return n
	}
	return 0
}
