// Package vdom provides the virtual node model consumed by the renderer.
//
// A VNode describes what to render: an element, text, comment, fragment,
// component, teleport, suspense boundary or pre-rendered static markup.
// VNodes are created fresh on every render and diffed against the previous
// tree by the renderer, which fills in the host node references (El,
// Anchor) as it mounts them.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P("Content"),
//	    OnClick(handler),
//	)
//
// # Compiler Hints
//
// PatchFlags mark which parts of a node are dynamic. Nodes created while a
// block is open and carrying a positive patch flag are collected into the
// block's DynamicChildren, which the renderer diffs as a flat list:
//
//	vdom.OpenBlock()
//	root := vdom.CreateElementBlock("div", nil, []any{
//	    vdom.H("h1", nil, "static title"),
//	    vdom.ElementVNode("p", nil, msg, vdom.PatchText, nil),
//	}, 0, nil)
//
// The bit values match the flags emitted by template compilers so compiled
// render functions can be consumed unchanged.
package vdom
