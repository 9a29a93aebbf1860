package component

import (
	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// Emit calls the parent's listener for event. "update-value" and
// "updateValue" both find an onUpdateValue listener; an onXOnce listener
// fires at most once per instance.
func (i *Instance) Emit(event string, args ...any) {
	if i.IsUnmounted {
		return
	}
	props := i.VNode.Props

	if i.AppContext.Config.Dev && i.emits != nil && !i.emits[event] && !i.emits[Camelize(event)] {
		if _, declared := i.Type.normalizedProps().lookup(HandlerKey(Camelize(event))); !declared {
			Warn(i, "component emitted event %q but it is neither declared in the emits option nor as an %q prop", event, HandlerKey(Camelize(event)))
		}
	}

	name := HandlerKey(event)
	handler := props[name]
	if handler == nil {
		name = HandlerKey(Camelize(event))
		handler = props[name]
	}
	if handler == nil && isModelListener(name) {
		name = HandlerKey(Hyphenate(event))
		handler = props[name]
	}
	if handler != nil {
		i.callHandler(handler, args)
	}

	if once := props[name+"Once"]; once != nil {
		if i.emitted[name] {
			return
		}
		i.emitted[name] = true
		i.callHandler(once, args)
	}
}

func (i *Instance) callHandler(h any, args []any) {
	CallWithAsyncErrorHandling(h, i, errors.ComponentEventHandler, args...)
}

// IsEmitListener reports whether key is a listener for a declared event.
func (i *Instance) IsEmitListener(key string) bool {
	return i.emits.isEmitListener(key)
}

// EmitListenerChecker returns a predicate for def's declared listeners.
func EmitListenerChecker(c vdom.Component) func(key string) bool {
	def, _ := c.(*Definition)
	ne := def.normalizedEmits()
	return ne.isEmitListener
}
