package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindComment                // Comment node, also used as placeholder
	KindFragment               // Grouping without wrapper, bounded by two anchors
	KindComponent              // Nested component
	KindTeleport               // Children rendered into another container
	KindSuspense               // Async boundary
	KindStatic                 // Pre-rendered markup
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindTeleport:
		return "Teleport"
	case KindSuspense:
		return "Suspense"
	case KindStatic:
		return "Static"
	default:
		return "Unknown"
	}
}

// Node is a host node handle. Its concrete type belongs to the host.
type Node = any

// Props holds attributes, DOM properties and event handlers.
type Props map[string]any

// Component is a component definition.
type Component interface {
	ComponentName() string
}

// Instance is the non-owning view of a live component instance.
type Instance interface {
	InstanceUID() int
}

// Slot renders slot content.
type Slot func(props Props) []*VNode

// Slots maps slot names to slot functions.
type Slots map[string]Slot

// VNode is the virtual DOM node.
type VNode struct {
	Kind VKind
	Tag  string    // Element tag name (e.g., "div")
	Comp Component // For KindComponent

	Props Props
	Key   string // Reconciliation key; "" means unkeyed

	// Ref is a template ref: a string name, a func(any), or a RefSetter.
	Ref      any
	RefOwner Instance

	Shape    ChildShape
	Children []*VNode
	Text     string // Text and comment content, text children, static markup
	Slots    Slots

	PatchFlag       PatchFlags
	DynamicProps    []string
	DynamicChildren []*VNode // non-nil marks a block
	Flags           NodeFlags

	Dirs       []*DirectiveBinding
	Transition *TransitionHooks
	ScopeID    string

	// Host state, filled in by the renderer.
	El           Node
	Anchor       Node
	Target       Node
	TargetStart  Node
	TargetAnchor Node
	StaticCount  int

	// Instance links a component vnode to its instance. Non-owning.
	Instance Instance
	// Suspense links a suspense vnode to its boundary. Non-owning.
	Suspense any

	SSContent  *VNode
	SSFallback *VNode
}

// RefSetter receives template ref values.
type RefSetter interface {
	SetRef(v any)
}

// IsSameVNodeType reports whether n2 can be patched into n1 in place.
// Kind, tag or component, and key must all match.
func IsSameVNodeType(n1, n2 *VNode) bool {
	if n1 == nil || n2 == nil {
		return false
	}
	if n1.Kind != n2.Kind || n1.Key != n2.Key {
		return false
	}
	switch n1.Kind {
	case KindElement:
		return n1.Tag == n2.Tag
	case KindComponent:
		return n1.Comp == n2.Comp
	}
	return true
}

// IsMounted reports whether the renderer attached host state to the node.
func (v *VNode) IsMounted() bool {
	return v != nil && v.El != nil
}

// HasFlag reports whether the node carries all bits of f.
func (v *VNode) HasFlag(f NodeFlags) bool {
	return v.Flags&f == f
}

// Prop returns the named prop, or nil.
func (v *VNode) Prop(name string) any {
	if v == nil || v.Props == nil {
		return nil
	}
	return v.Props[name]
}

// Clone returns a shallow copy of v that keeps its host state. extra props
// are merged over the existing ones; merging marks the clone FULL_PROPS so
// the renderer does not trust the original hints.
func Clone(v *VNode, extra Props) *VNode {
	c := *v
	if extra != nil {
		c.Props = MergeProps(v.Props, extra)
		if k, ok := extra["key"].(string); ok {
			c.Key = k
		}
		if r, ok := extra["ref"]; ok {
			c.Ref = r
			c.RefOwner = RenderingInstance()
		}
		if v.Kind != KindFragment {
			if v.PatchFlag == PatchCached {
				c.PatchFlag = PatchFullProps
			} else {
				c.PatchFlag = v.PatchFlag | PatchFullProps
			}
		}
	}
	if v.Children != nil {
		c.Children = append([]*VNode(nil), v.Children...)
	}
	if v.SSContent != nil {
		c.SSContent = Clone(v.SSContent, nil)
	}
	if v.SSFallback != nil {
		c.SSFallback = Clone(v.SSFallback, nil)
	}
	return &c
}

// CloneIfMounted returns v, or a clone of v if it is already mounted.
// Reusing a mounted node in a new tree would corrupt its host references.
func CloneIfMounted(v *VNode) *VNode {
	if v.El == nil || v.PatchFlag == PatchCached {
		return v
	}
	return Clone(v, nil)
}
