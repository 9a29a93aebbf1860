package renderer

import "github.com/vango-dev/vrt/pkg/vdom"

// HostOps is the set of primitive mutations a host must provide. Nodes are
// opaque to the renderer but must be comparable.
type HostOps interface {
	CreateElement(tag, namespace string, props vdom.Props) vdom.Node
	CreateText(text string) vdom.Node
	CreateComment(text string) vdom.Node

	// Insert places child before anchor in parent. A nil anchor appends.
	// Inserting a node that already has a parent moves it.
	Insert(child, parent, anchor vdom.Node)
	Remove(child vdom.Node)

	SetText(node vdom.Node, text string)
	SetElementText(el vdom.Node, text string)

	ParentNode(node vdom.Node) vdom.Node
	NextSibling(node vdom.Node) vdom.Node

	// PatchProp applies one prop change. next == nil removes the prop.
	PatchProp(el vdom.Node, key string, prev, next any, namespace string)
}

// Querier resolves teleport target selectors.
type Querier interface {
	QuerySelector(selector string) vdom.Node
}

// ScopeIDSetter applies scoped style ids to elements.
type ScopeIDSetter interface {
	SetScopeID(el vdom.Node, id string)
}

// StaticInserter parses static markup into nodes inserted before anchor
// and returns the first and last inserted node.
type StaticInserter interface {
	InsertStaticContent(content string, parent, anchor vdom.Node, namespace string) (first, last vdom.Node)
}

const (
	nsSVG    = "svg"
	nsMathML = "mathml"
)

func childNamespace(v *vdom.VNode, current string) string {
	switch {
	case current == nsSVG && v.Tag == "foreignObject":
		return ""
	case current == nsMathML && v.Tag == "annotation-xml" && v.Props["encoding"] == "text/html":
		return ""
	}
	return current
}

func elementNamespace(tag, current string) string {
	switch tag {
	case "svg":
		return nsSVG
	case "math":
		return nsMathML
	}
	return current
}
