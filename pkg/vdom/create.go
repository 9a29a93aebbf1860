package vdom

import (
	"fmt"
	"strconv"
)

// Attr represents a single attribute or DOM property.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event listener prop ("onClick").
type EventHandler struct {
	Event   string
	Handler any
}

// Hint carries compiler patch hints into the variadic element API.
type Hint struct {
	Flag         PatchFlags
	DynamicProps []string
}

// Dynamic marks the element being built with patch hints.
func Dynamic(flag PatchFlags, dynamicProps ...string) Hint {
	return Hint{Flag: flag, DynamicProps: dynamicProps}
}

// H creates an element or component vnode. typ is a tag name or a Component.
// children may be a string, a *VNode, a []*VNode, a Slots map (components)
// or a list of those.
func H(typ any, props Props, children ...any) *VNode {
	var ch any
	switch len(children) {
	case 0:
	case 1:
		ch = children[0]
	default:
		ch = children
	}
	switch t := typ.(type) {
	case string:
		return newElement(t, props, ch, 0, nil)
	case Component:
		return NewComponent(t, props, ch)
	default:
		panic(fmt.Sprintf("vdom: invalid vnode type %T", typ))
	}
}

// ElementVNode creates an element with compiler hints. It is the entry
// point for compiled render functions.
func ElementVNode(tag string, props Props, children any, flag PatchFlags, dynamicProps []string) *VNode {
	return newElement(tag, props, children, flag, dynamicProps)
}

func newElement(tag string, props Props, children any, flag PatchFlags, dynamicProps []string) *VNode {
	v := &VNode{
		Kind:         KindElement,
		Tag:          tag,
		PatchFlag:    flag,
		DynamicProps: dynamicProps,
	}
	v.applyProps(props)
	v.setChildren(children)
	return track(v)
}

// applyProps moves the reserved key and ref props onto the node.
func (v *VNode) applyProps(props Props) {
	if props == nil {
		return
	}
	rest := make(Props, len(props))
	for k, val := range props {
		switch k {
		case "key":
			v.Key = keyString(val)
		case "ref":
			v.Ref = val
			v.RefOwner = RenderingInstance()
		default:
			rest[k] = val
		}
	}
	if len(rest) > 0 {
		v.Props = rest
	}
}

func keyString(k any) string {
	switch t := k.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// setChildren normalizes children into Shape/Children/Text.
func (v *VNode) setChildren(children any) {
	switch c := children.(type) {
	case nil:
		v.Shape = ChildNone
	case string:
		v.Shape = ChildText
		v.Text = c
	case *VNode:
		if c == nil {
			return
		}
		v.Shape = ChildArray
		v.Children = []*VNode{c}
	case []*VNode:
		v.Shape = ChildArray
		v.Children = c
	case []any:
		v.Shape = ChildArray
		v.Children = flattenChildren(c, nil)
	case Slots:
		v.Shape = ChildSlots
		v.Slots = c
	case Slot:
		v.Shape = ChildSlots
		v.Slots = Slots{"default": c}
	case func(Props) []*VNode:
		v.Shape = ChildSlots
		v.Slots = Slots{"default": c}
	default:
		v.Shape = ChildText
		v.Text = fmt.Sprint(c)
	}
}

func flattenChildren(in []any, out []*VNode) []*VNode {
	if out == nil {
		out = make([]*VNode, 0, len(in))
	}
	for _, c := range in {
		switch t := c.(type) {
		case nil:
		case *VNode:
			if t != nil {
				out = append(out, t)
			}
		case []*VNode:
			out = append(out, t...)
		case []any:
			out = flattenChildren(t, out)
		case string:
			out = append(out, Text(t))
		default:
			out = append(out, Text(fmt.Sprint(t)))
		}
	}
	return out
}

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// DynText creates a text node whose content changes between renders.
func DynText(content string) *VNode {
	return track(&VNode{Kind: KindText, Text: content, PatchFlag: PatchText})
}

// Comment creates a comment node.
func Comment(content string) *VNode {
	return &VNode{Kind: KindComment, Text: content}
}

// Static creates pre-rendered markup holding count top-level host nodes.
func Static(html string, count int) *VNode {
	return &VNode{Kind: KindStatic, Text: html, StaticCount: count}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	return &VNode{
		Kind:     KindFragment,
		Shape:    ChildArray,
		Children: flattenChildren(children, nil),
	}
}

// FragmentVNode creates a fragment with compiler hints.
func FragmentVNode(props Props, children []*VNode, flag PatchFlags) *VNode {
	v := &VNode{Kind: KindFragment, Shape: ChildArray, Children: children, PatchFlag: flag}
	v.applyProps(props)
	return track(v)
}

// NewComponent creates a component vnode. Children become the default slot
// unless they already are Slots.
func NewComponent(def Component, props Props, children any) *VNode {
	v := &VNode{Kind: KindComponent, Comp: def}
	v.applyProps(props)
	switch c := children.(type) {
	case nil:
	case Slots, Slot, func(Props) []*VNode:
		v.setChildren(c)
	default:
		tmp := &VNode{}
		tmp.setChildren(c)
		nodes := tmp.Children
		if tmp.Shape == ChildText {
			nodes = []*VNode{Text(tmp.Text)}
		}
		v.Shape = ChildSlots
		v.Slots = Slots{"default": func(Props) []*VNode { return nodes }}
	}
	return track(v)
}

// ComponentVNode creates a component vnode with compiler hints.
func ComponentVNode(def Component, props Props, slots Slots, flag PatchFlags, dynamicProps []string) *VNode {
	v := &VNode{Kind: KindComponent, Comp: def, PatchFlag: flag, DynamicProps: dynamicProps}
	v.applyProps(props)
	if slots != nil {
		v.Shape = ChildSlots
		v.Slots = slots
	}
	return track(v)
}

// Teleport renders children into the container selected by to, which may be
// a selector string or a host node. When disabled, children render in place.
func Teleport(to any, disabled bool, children ...any) *VNode {
	return &VNode{
		Kind:     KindTeleport,
		Props:    Props{"to": to, "disabled": disabled},
		Shape:    ChildArray,
		Children: flattenChildren(children, nil),
	}
}

// Suspense creates an async boundary showing fallback while content has
// unresolved async dependencies. Recognized props: timeout (int ms),
// suspensible (bool), onPending, onFallback, onResolve.
func Suspense(props Props, content, fallback *VNode) *VNode {
	v := &VNode{Kind: KindSuspense}
	v.applyProps(props)
	if content == nil {
		content = Comment("")
	}
	if fallback == nil {
		fallback = Comment("")
	}
	v.SSContent = content
	v.SSFallback = fallback
	return track(v)
}

// WithKey sets the reconciliation key of v and returns it.
func WithKey(key any, v *VNode) *VNode {
	v.Key = keyString(key)
	return v
}
