package memdom

import "slices"

// NodeType discriminates host nodes.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
)

// String returns the node type name.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// Node is an element, text or comment node of a Document.
type Node struct {
	id   uint32
	doc  *Document
	Type NodeType

	// Tag is the element tag name; Namespace is "", "svg" or "mathml".
	Tag       string
	Namespace string

	// Data is the content of text and comment nodes.
	Data string

	attrs     map[string]string
	props     map[string]any
	listeners map[string]*listener
	scopeIDs  []string

	parent   *Node
	children []*Node
}

// ID returns the document-unique id of n. Ids start at 1.
func (n *Node) ID() uint32 { return n.id }

// Parent returns the parent element, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// FirstChild returns the first child node, or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// Attr returns the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// Attrs returns a copy of the attributes.
func (n *Node) Attrs() map[string]string {
	out := make(map[string]string, len(n.attrs))
	for k, v := range n.attrs {
		out[k] = v
	}
	return out
}

// Prop returns a DOM property such as value or checked.
func (n *Node) Prop(name string) any {
	return n.props[name]
}

// ScopeIDs returns the scoped style ids applied to n.
func (n *Node) ScopeIDs() []string { return n.scopeIDs }

// HasListener reports whether n listens for event.
func (n *Node) HasListener(event string) bool {
	_, ok := n.listeners[event]
	return ok
}

// TextContent concatenates the text of n and its descendants.
func (n *Node) TextContent() string {
	switch n.Type {
	case TextNode:
		return n.Data
	case CommentNode:
		return ""
	}
	var b []byte
	var walk func(*Node)
	walk = func(c *Node) {
		for _, cc := range c.children {
			switch cc.Type {
			case TextNode:
				b = append(b, cc.Data...)
			case ElementNode:
				walk(cc)
			}
		}
	}
	walk(n)
	return string(b)
}

func (n *Node) indexOf(child *Node) int {
	return slices.Index(n.children, child)
}

func (n *Node) nextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

func (n *Node) detach() {
	p := n.parent
	if p == nil {
		return
	}
	if i := p.indexOf(n); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	n.parent = nil
}

// insertBefore places child before anchor, or last when anchor is nil or
// not a child of n.
func (n *Node) insertBefore(child, anchor *Node) {
	child.detach()
	child.parent = n
	if anchor != nil {
		if i := n.indexOf(anchor); i >= 0 {
			n.children = slices.Insert(n.children, i, child)
			return
		}
	}
	n.children = append(n.children, child)
}

func (n *Node) replaceChildren(children ...*Node) {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = n.children[:0]
	for _, c := range children {
		n.insertBefore(c, nil)
	}
}

// Walk calls fn for n and every descendant in document order until fn
// returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
