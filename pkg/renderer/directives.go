package renderer

import (
	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

type dirHook uint8

const (
	dirCreated dirHook = iota
	dirBeforeMount
	dirMounted
	dirBeforeUpdate
	dirUpdated
	dirBeforeUnmount
	dirUnmounted
)

func (h dirHook) of(d *vdom.Directive) vdom.DirectiveHook {
	switch h {
	case dirCreated:
		return d.Created
	case dirBeforeMount:
		return d.BeforeMount
	case dirMounted:
		return d.Mounted
	case dirBeforeUpdate:
		return d.BeforeUpdate
	case dirUpdated:
		return d.Updated
	case dirBeforeUnmount:
		return d.BeforeUnmount
	case dirUnmounted:
		return d.Unmounted
	}
	return nil
}

// invokeDirectiveHook calls hook on every directive bound to v. Bindings
// of prev provide the old values.
func (r *Renderer) invokeDirectiveHook(v, prev *vdom.VNode, inst *component.Instance, hook dirHook) {
	for i, b := range v.Dirs {
		if prev != nil && i < len(prev.Dirs) {
			b.OldValue = prev.Dirs[i].Value
		}
		fn := hook.of(b.Dir)
		if fn == nil {
			continue
		}
		binding := b
		reactive.PauseTracking()
		component.CallWithErrorHandling(func() { fn(v.El, binding, v, prev) }, inst, errors.DirectiveHook)
		reactive.ResetTracking()
	}
}
