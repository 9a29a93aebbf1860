// Package memdom is an in-memory host for the renderer.
//
// A Document records every host operation it performs, which makes it the
// host of choice for tests and for server-side rendering: render into a
// container, then serialize it with WriteHTML or inspect the op log.
//
//	doc := memdom.New()
//	r := renderer.New(doc)
//	r.Render(vdom.Div(vdom.Class("box"), "hi"), doc.Body())
//	doc.Body().HTML() // <div class="box">hi</div>
package memdom
