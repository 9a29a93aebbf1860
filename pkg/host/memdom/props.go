package memdom

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// domProps are set as properties rather than attributes.
var domProps = map[string]bool{
	"value":         true,
	"checked":       true,
	"selected":      true,
	"indeterminate": true,
	"innerHTML":     true,
	"textContent":   true,
}

// Event is passed to listeners.
type Event struct {
	Type          string
	Target        *Node
	CurrentTarget *Node
	Payload       any

	stopped bool
}

// StopPropagation keeps the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// IsDOMProp reports whether PatchProp stores key as a DOM property rather
// than an attribute.
func IsDOMProp(key string) bool { return domProps[key] }

type listener struct {
	handler any
	once    bool
	capture bool
}

// PatchProp implements the host operation: class and style are normalized,
// on* keys become listeners, DOM properties are stored as properties and
// everything else is an attribute.
func (d *Document) PatchProp(el vdom.Node, key string, prev, next any, namespace string) {
	n := asNode(el)
	if n == nil {
		return
	}
	d.log(Op{Kind: "patchProp", Node: n, Key: key, Value: next})

	switch {
	case key == "class":
		if cls := vdom.NormalizeClass(next); cls != "" {
			n.setAttr("class", cls)
		} else {
			n.removeAttr("class")
		}
	case key == "style":
		if style := vdom.StringifyStyle(vdom.NormalizeStyle(next)); style != "" {
			n.setAttr("style", style)
		} else {
			n.removeAttr("style")
		}
	case vdom.IsListenerKey(key):
		d.patchEvent(n, key, next)
	case domProps[key]:
		d.patchDOMProp(n, key, next)
	default:
		patchAttr(n, key, next)
	}
}

func (d *Document) patchDOMProp(n *Node, key string, next any) {
	switch key {
	case "innerHTML":
		n.replaceChildren()
		if s, ok := next.(string); ok && s != "" {
			for _, c := range d.parseFragment(s, n.Namespace) {
				n.insertBefore(c, nil)
			}
		}
	case "textContent":
		if s := fmt.Sprint(orEmpty(next)); s != "" {
			t := d.newNode(TextNode)
			t.Data = s
			n.replaceChildren(t)
		} else {
			n.replaceChildren()
		}
	case "value":
		if next == nil {
			delete(n.props, key)
			n.removeAttr("value")
			return
		}
		s := fmt.Sprint(next)
		n.setProp(key, s)
		// <option> reflects its value for serialization.
		if n.Tag == "option" {
			n.setAttr("value", s)
		}
	default:
		if next == nil {
			delete(n.props, key)
			return
		}
		n.setProp(key, next)
	}
}

func patchAttr(n *Node, key string, next any) {
	if isBooleanAttr(key) {
		on := false
		switch v := next.(type) {
		case bool:
			on = v
		case string:
			on = true
		case nil:
		default:
			on = true
		}
		if on {
			n.setAttr(key, "")
		} else {
			n.removeAttr(key)
		}
		return
	}
	if next == nil {
		n.removeAttr(key)
		return
	}
	n.setAttr(key, attrToString(next))
}

func (d *Document) patchEvent(n *Node, key string, next any) {
	name, once, capture := parseEventKey(key)
	if next == nil {
		delete(n.listeners, name)
		return
	}
	if l, ok := n.listeners[name]; ok {
		// Swapping the handler of an existing listener, like the browser
		// invoker pattern, needs no remove/add.
		l.handler = next
		l.once = once
		l.capture = capture
		return
	}
	if n.listeners == nil {
		n.listeners = make(map[string]*listener)
	}
	n.listeners[name] = &listener{handler: next, once: once, capture: capture}
}

// parseEventKey turns "onClickOnce" into ("click", true, false). Names
// after a colon keep their case: "onUpdate:modelValue" is
// "update:modelValue".
func parseEventKey(key string) (name string, once, capture bool) {
	for {
		switch {
		case strings.HasSuffix(key, "Once"):
			once = true
			key = strings.TrimSuffix(key, "Once")
			continue
		case strings.HasSuffix(key, "Capture"):
			capture = true
			key = strings.TrimSuffix(key, "Capture")
			continue
		case strings.HasSuffix(key, "Passive"):
			key = strings.TrimSuffix(key, "Passive")
			continue
		}
		break
	}
	if len(key) > 3 && key[2] == ':' {
		return key[3:], once, capture
	}
	if i := strings.IndexByte(key, ':'); i >= 0 {
		head, _ := vdom.EventName(key[:i])
		return head + key[i:], once, capture
	}
	name, _ = vdom.EventName(key)
	return component.Hyphenate(name), once, capture
}

// ListenerEvent returns the event name a listener prop key listens for.
func ListenerEvent(key string) string {
	name, _, _ := parseEventKey(key)
	return name
}

// Dispatch fires event at target and bubbles it to the ancestors. It
// returns the number of listeners called. Listener panics and returned
// errors are reported, never propagated.
func (d *Document) Dispatch(target *Node, event string, payload any) int {
	e := &Event{Type: event, Target: target, Payload: payload}
	path := []*Node{}
	for cur := target; cur != nil; cur = cur.parent {
		path = append(path, cur)
	}

	called := 0
	// Capture listeners run root first, then bubbling ones target first.
	for i := len(path) - 1; i >= 0 && !e.stopped; i-- {
		if l := path[i].listeners[event]; l != nil && l.capture {
			called += d.invoke(path[i], event, l, e)
		}
	}
	for _, cur := range path {
		if e.stopped {
			break
		}
		if l := cur.listeners[event]; l != nil && !l.capture {
			called += d.invoke(cur, event, l, e)
		}
	}
	return called
}

func (d *Document) invoke(n *Node, event string, l *listener, e *Event) int {
	if l.once {
		delete(n.listeners, event)
	}
	e.CurrentTarget = n
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.FromPanic(r)
			}
		}()
		if fn, ok := l.handler.(func(*Event)); ok {
			fn(e)
			return nil
		}
		return component.InvokeHandler(l.handler, e)
	}()
	if err != nil {
		d.reportError(errors.Wrap(err, errors.NativeEventHandler), event, n)
	}
	return 1
}

func (d *Document) reportError(err error, event string, target *Node) {
	if d.onError != nil {
		d.onError(err, event, target)
		return
	}
	d.logger.Error("event listener failed",
		slog.String("event", event),
		slog.String("target", target.String()),
		slog.Any("error", err),
	)
}

// SetValue simulates user input: it sets the value property of el and
// dispatches an input event.
func (d *Document) SetValue(el *Node, value string) {
	el.setProp("value", value)
	d.Dispatch(el, "input", value)
}

// SetChecked simulates toggling a checkbox and dispatches a change event.
func (d *Document) SetChecked(el *Node, checked bool) {
	el.setProp("checked", checked)
	d.Dispatch(el, "change", checked)
}

func (n *Node) setAttr(k, v string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[k] = v
}

func (n *Node) removeAttr(k string) {
	delete(n.attrs, k)
}

func (n *Node) setProp(k string, v any) {
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[k] = v
}

func orEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}
