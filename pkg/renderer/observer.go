package renderer

import "github.com/vango-dev/vrt/pkg/vdom"

// observedHost reports every mutation to an Observer before forwarding it.
// Reads (ParentNode, NextSibling) are not reported.
type observedHost struct {
	HostOps
	obs Observer
}

func (h *observedHost) CreateElement(tag, namespace string, props vdom.Props) vdom.Node {
	h.obs.HostOp("createElement")
	return h.HostOps.CreateElement(tag, namespace, props)
}

func (h *observedHost) CreateText(text string) vdom.Node {
	h.obs.HostOp("createText")
	return h.HostOps.CreateText(text)
}

func (h *observedHost) CreateComment(text string) vdom.Node {
	h.obs.HostOp("createComment")
	return h.HostOps.CreateComment(text)
}

func (h *observedHost) Insert(child, parent, anchor vdom.Node) {
	h.obs.HostOp("insert")
	h.HostOps.Insert(child, parent, anchor)
}

func (h *observedHost) Remove(child vdom.Node) {
	h.obs.HostOp("remove")
	h.HostOps.Remove(child)
}

func (h *observedHost) SetText(node vdom.Node, text string) {
	h.obs.HostOp("setText")
	h.HostOps.SetText(node, text)
}

func (h *observedHost) SetElementText(el vdom.Node, text string) {
	h.obs.HostOp("setElementText")
	h.HostOps.SetElementText(el, text)
}

func (h *observedHost) PatchProp(el vdom.Node, key string, prev, next any, namespace string) {
	h.obs.HostOp("patchProp")
	h.HostOps.PatchProp(el, key, prev, next, namespace)
}
