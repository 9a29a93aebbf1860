package vtest

import (
	"strings"
	"testing"

	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/host/memdom"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// Harness is a component mounted into an in-memory document.
type Harness struct {
	Doc      *memdom.Document
	Root     *memdom.Node
	Renderer *renderer.Renderer
	App      *renderer.App
}

// Mount creates an application for def and mounts it into a fresh
// container below the document body.
func Mount(def *component.Definition, props vdom.Props, opts ...renderer.Option) *Harness {
	doc := memdom.New()
	root := doc.Element("div")
	doc.Insert(root, doc.Body(), nil)
	r := renderer.New(doc, opts...)
	app := r.CreateApp(def, props)
	app.Mount(root)
	doc.ResetOps()
	return &Harness{Doc: doc, Root: root, Renderer: r, App: app}
}

// RenderToString renders node into a fresh document and returns the HTML.
//
// Example:
//
//	html := vtest.RenderToString(MyComponent())
//	if !strings.Contains(html, "expected text") {
//	    t.Error("missing expected text")
//	}
func RenderToString(node *vdom.VNode) string {
	doc := memdom.New(memdom.WithOpLog(false))
	root := doc.Element("div")
	r := renderer.New(doc)
	r.Render(node, root)
	html := root.HTML()
	r.Render(nil, root)
	return html
}

// HTML serializes the mounted tree.
func (h *Harness) HTML() string { return h.Root.HTML() }

// Do runs fn as a loop task and flushes the updates it triggered.
func (h *Harness) Do(fn func()) { h.Renderer.Scheduler().Loop().Do(fn) }

// Find returns the first element matching selector, or nil.
func (h *Harness) Find(selector string) *memdom.Node { return h.Root.QuerySelector(selector) }

// Click dispatches a click on the element matching selector. It reports
// whether the element exists.
func (h *Harness) Click(selector string) bool {
	return h.Trigger(selector, "click", nil)
}

// Trigger dispatches event with payload on the element matching selector.
func (h *Harness) Trigger(selector, event string, payload any) bool {
	n := h.Find(selector)
	if n == nil {
		return false
	}
	h.Do(func() { h.Doc.Dispatch(n, event, payload) })
	return true
}

// Input simulates typing value into the element matching selector.
func (h *Harness) Input(selector, value string) bool {
	n := h.Find(selector)
	if n == nil {
		return false
	}
	h.Do(func() { h.Doc.SetValue(n, value) })
	return true
}

// Unmount unmounts the application.
func (h *Harness) Unmount() { h.App.Unmount() }

// ExpectContains asserts that the mounted HTML contains expected.
//
// Example:
//
//	vtest.ExpectContains(t, h, "Welcome Admin")
func ExpectContains(t testing.TB, h *Harness, expected string) {
	t.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the mounted HTML does not contain
// unexpected.
func ExpectNotContains(t testing.TB, h *Harness, unexpected string) {
	t.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectAttribute asserts that the element matching selector carries attr
// with value.
//
// Example:
//
//	vtest.ExpectAttribute(t, h, "button", "class", "btn-primary")
func ExpectAttribute(t testing.TB, h *Harness, selector, attr, value string) {
	t.Helper()
	n := h.Find(selector)
	if n == nil {
		t.Errorf("no element matches %q in:\n%s", selector, truncate(h.HTML(), 500))
		return
	}
	if got, ok := n.Attr(attr); !ok || got != value {
		t.Errorf("%s[%s] = %q, want %q", selector, attr, got, value)
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
