package memdom

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/vango-dev/vrt/pkg/vdom"
)

// parseFragment parses markup into detached nodes. It is lenient in the
// way HTML is: unknown entities pass through and void elements need no
// closing tag.
func (d *Document) parseFragment(content, namespace string) []*Node {
	root := d.newNode(ElementNode)
	dec := xml.NewDecoder(strings.NewReader("<root>" + content + "</root>"))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	stack := []*Node{root}
	top := func() *Node { return stack[len(stack)-1] }
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF || err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				continue
			}
			el := d.newNode(ElementNode)
			el.Tag = t.Name.Local
			el.Namespace = elementNamespace(el.Tag, top().Namespace, namespace)
			for _, a := range t.Attr {
				name := a.Name.Local
				if a.Name.Space != "" {
					name = a.Name.Space + ":" + name
				}
				el.setAttr(name, a.Value)
			}
			top().insertBefore(el, nil)
			if !isVoidElement(el.Tag) {
				stack = append(stack, el)
			}
		case xml.EndElement:
			depth--
			if len(stack) > 1 && top().Tag == t.Name.Local {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if depth == 0 {
				continue
			}
			txt := d.newNode(TextNode)
			txt.Data = string(t)
			top().insertBefore(txt, nil)
		case xml.Comment:
			c := d.newNode(CommentNode)
			c.Data = string(t)
			top().insertBefore(c, nil)
		}
	}

	out := append([]*Node(nil), root.children...)
	root.replaceChildren()
	return out
}

func elementNamespace(tag, parentNS, fallback string) string {
	switch tag {
	case "svg":
		return "svg"
	case "math":
		return "mathml"
	}
	if parentNS != "" {
		return parentNS
	}
	return fallback
}

// InsertStaticContent parses content once per namespace, then inserts a
// clone of the parsed nodes before anchor.
func (d *Document) InsertStaticContent(content string, parent, anchor vdom.Node, namespace string) (first, last vdom.Node) {
	p, a := asNode(parent), asNode(anchor)
	if p == nil {
		return nil, nil
	}
	key := namespace + "\x00" + content
	tpl, ok := d.templates[key]
	if !ok {
		tpl = d.newNode(ElementNode)
		tpl.Tag = "template"
		for _, c := range d.parseFragment(content, namespace) {
			tpl.insertBefore(c, nil)
		}
		d.templates[key] = tpl
	}

	var firstNode, lastNode *Node
	for _, c := range tpl.children {
		clone := d.cloneNode(c, true)
		p.insertBefore(clone, a)
		if firstNode == nil {
			firstNode = clone
		}
		lastNode = clone
	}
	if firstNode == nil {
		// Empty markup still needs a node to anchor the static range.
		firstNode = d.newNode(TextNode)
		p.insertBefore(firstNode, a)
		lastNode = firstNode
	}
	d.log(Op{Kind: "insertStaticContent", Node: firstNode, Parent: p, Anchor: a, Value: content})
	return firstNode, lastNode
}

// CloneNode copies n, with its descendants when deep is set. Listeners
// are not copied.
func (d *Document) CloneNode(node vdom.Node, deep bool) vdom.Node {
	n := asNode(node)
	if n == nil {
		return nil
	}
	c := d.cloneNode(n, deep)
	d.log(Op{Kind: "cloneNode", Node: c})
	return c
}

func (d *Document) cloneNode(n *Node, deep bool) *Node {
	c := d.newNode(n.Type)
	c.Tag, c.Namespace, c.Data = n.Tag, n.Namespace, n.Data
	for k, v := range n.attrs {
		c.setAttr(k, v)
	}
	for k, v := range n.props {
		c.setProp(k, v)
	}
	c.scopeIDs = append([]string(nil), n.scopeIDs...)
	if deep {
		for _, child := range n.children {
			c.insertBefore(d.cloneNode(child, true), nil)
		}
	}
	return c
}

// QuerySelector finds the first element below the body matching a simple
// selector: "#id", ".class", "tag" or "tag#id".
func (d *Document) QuerySelector(selector string) vdom.Node {
	if n := d.body.QuerySelector(selector); n != nil {
		return n
	}
	return nil
}

// QuerySelector finds the first descendant of n matching selector.
func (n *Node) QuerySelector(selector string) *Node {
	match := compileSelector(selector)
	var found *Node
	for _, c := range n.children {
		c.Walk(func(x *Node) bool {
			if x.Type == ElementNode && match(x) {
				found = x
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

func compileSelector(sel string) func(*Node) bool {
	sel = strings.TrimSpace(sel)
	tag, id, class := sel, "", ""
	if i := strings.IndexByte(sel, '#'); i >= 0 {
		tag, id = sel[:i], sel[i+1:]
	} else if i := strings.IndexByte(sel, '.'); i >= 0 {
		tag, class = sel[:i], sel[i+1:]
	}
	return func(n *Node) bool {
		if tag != "" && n.Tag != tag {
			return false
		}
		if id != "" && n.attrs["id"] != id {
			return false
		}
		if class != "" {
			for _, c := range strings.Fields(n.attrs["class"]) {
				if c == class {
					return true
				}
			}
			return false
		}
		return true
	}
}
