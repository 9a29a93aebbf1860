package memdom

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/vrt/pkg/vdom"
)

// Op is one recorded host operation.
type Op struct {
	Kind   string
	Node   *Node
	Parent *Node
	Anchor *Node
	Key    string
	Value  any
}

// String renders the op for test failure output.
func (o Op) String() string {
	switch o.Kind {
	case "insert":
		return fmt.Sprintf("insert %s into %s before %s", o.Node, o.Parent, o.Anchor)
	case "patchProp":
		return fmt.Sprintf("patchProp %s %s=%v", o.Node, o.Key, o.Value)
	case "setText", "setElementText":
		return fmt.Sprintf("%s %s %q", o.Kind, o.Node, o.Value)
	}
	return fmt.Sprintf("%s %s", o.Kind, o.Node)
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger for listener errors.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		d.logger = l
	}
}

// WithOpLog turns the op log on or off. It is on by default; long-lived
// documents should turn it off.
func WithOpLog(on bool) Option {
	return func(d *Document) {
		d.record = on
	}
}

// WithErrorHandler routes listener errors to h instead of the logger.
func WithErrorHandler(h func(err error, event string, target *Node)) Option {
	return func(d *Document) {
		d.onError = h
	}
}

// Document is an in-memory host tree. Its methods implement the renderer's
// host operations. A Document is not safe for concurrent use.
type Document struct {
	body    *Node
	nextID  uint32
	ops     []Op
	record  bool
	logger  *slog.Logger
	onError func(err error, event string, target *Node)

	templates map[string]*Node
}

// New creates a document with an empty body.
func New(opts ...Option) *Document {
	d := &Document{
		record:    true,
		logger:    slog.Default(),
		templates: make(map[string]*Node),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.body = d.newNode(ElementNode)
	d.body.Tag = "body"
	return d
}

// Body returns the document body. Teleport selectors resolve below it.
func (d *Document) Body() *Node { return d.body }

// NodeByID finds an attached node by id. Detached nodes are not found.
func (d *Document) NodeByID(id uint32) *Node {
	var found *Node
	d.body.Walk(func(n *Node) bool {
		if n.id == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Ops returns the recorded operations.
func (d *Document) Ops() []Op { return d.ops }

// ResetOps clears the op log.
func (d *Document) ResetOps() { d.ops = d.ops[:0] }

// CountOps returns how many recorded ops are of the given kind, or the
// total when kind is empty.
func (d *Document) CountOps(kind string) int {
	if kind == "" {
		return len(d.ops)
	}
	n := 0
	for _, op := range d.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

func (d *Document) log(op Op) {
	if d.record {
		d.ops = append(d.ops, op)
	}
}

func (d *Document) newNode(t NodeType) *Node {
	d.nextID++
	return &Node{id: d.nextID, doc: d, Type: t}
}

// Element creates a detached element without recording an op. Tests use
// it to build containers.
func (d *Document) Element(tag string) *Node {
	n := d.newNode(ElementNode)
	n.Tag = tag
	return n
}

// CreateElement implements the host operation.
func (d *Document) CreateElement(tag, namespace string, props vdom.Props) vdom.Node {
	n := d.newNode(ElementNode)
	n.Tag = tag
	n.Namespace = namespace
	if tag == "select" {
		if multiple, _ := props["multiple"].(bool); multiple {
			n.setAttr("multiple", "")
		}
	}
	d.log(Op{Kind: "createElement", Node: n, Value: tag})
	return n
}

// CreateText implements the host operation.
func (d *Document) CreateText(text string) vdom.Node {
	n := d.newNode(TextNode)
	n.Data = text
	d.log(Op{Kind: "createText", Node: n, Value: text})
	return n
}

// CreateComment implements the host operation.
func (d *Document) CreateComment(text string) vdom.Node {
	n := d.newNode(CommentNode)
	n.Data = text
	d.log(Op{Kind: "createComment", Node: n, Value: text})
	return n
}

// Insert implements the host operation.
func (d *Document) Insert(child, parent, anchor vdom.Node) {
	c, p := asNode(child), asNode(parent)
	if c == nil || p == nil {
		return
	}
	a := asNode(anchor)
	p.insertBefore(c, a)
	d.log(Op{Kind: "insert", Node: c, Parent: p, Anchor: a})
}

// Remove implements the host operation.
func (d *Document) Remove(child vdom.Node) {
	c := asNode(child)
	if c == nil {
		return
	}
	parent := c.parent
	c.detach()
	d.log(Op{Kind: "remove", Node: c, Parent: parent})
}

// SetText implements the host operation.
func (d *Document) SetText(node vdom.Node, text string) {
	n := asNode(node)
	if n == nil {
		return
	}
	n.Data = text
	d.log(Op{Kind: "setText", Node: n, Value: text})
}

// SetElementText implements the host operation.
func (d *Document) SetElementText(el vdom.Node, text string) {
	n := asNode(el)
	if n == nil {
		return
	}
	if text == "" {
		n.replaceChildren()
	} else {
		t := d.newNode(TextNode)
		t.Data = text
		n.replaceChildren(t)
	}
	delete(n.props, "innerHTML")
	d.log(Op{Kind: "setElementText", Node: n, Value: text})
}

// ParentNode implements the host operation.
func (d *Document) ParentNode(node vdom.Node) vdom.Node {
	n := asNode(node)
	if n == nil || n.parent == nil {
		return nil
	}
	return n.parent
}

// NextSibling implements the host operation.
func (d *Document) NextSibling(node vdom.Node) vdom.Node {
	n := asNode(node)
	if n == nil {
		return nil
	}
	if s := n.nextSibling(); s != nil {
		return s
	}
	return nil
}

// SetScopeID marks el with a scoped style id attribute.
func (d *Document) SetScopeID(el vdom.Node, id string) {
	n := asNode(el)
	if n == nil {
		return
	}
	n.scopeIDs = append(n.scopeIDs, id)
	n.setAttr(id, "")
	d.log(Op{Kind: "setScopeId", Node: n, Value: id})
}

func asNode(v vdom.Node) *Node {
	n, _ := v.(*Node)
	return n
}

// String renders a short description, "<div#3>" or "#text#4".
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Type {
	case ElementNode:
		return fmt.Sprintf("<%s#%d>", n.Tag, n.id)
	case TextNode:
		return fmt.Sprintf("#text#%d", n.id)
	case CommentNode:
		return fmt.Sprintf("#comment#%d", n.id)
	}
	return "#unknown"
}
