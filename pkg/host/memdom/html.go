package memdom

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// voidElements cannot have children and have no closing tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

func isVoidElement(tag string) bool {
	return voidElements[tag]
}

// booleanAttrs render as a bare name when present.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"formnovalidate":  true,
	"hidden":          true,
	"inert":           true,
	"ismap":           true,
	"itemscope":       true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"nomodule":        true,
	"novalidate":      true,
	"open":            true,
	"playsinline":     true,
	"readonly":        true,
	"required":        true,
	"reversed":        true,
	"selected":        true,
}

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}

// inlineElements stay on one line in pretty output.
var inlineElements = map[string]bool{
	"a":      true,
	"abbr":   true,
	"b":      true,
	"br":     true,
	"button": true,
	"code":   true,
	"em":     true,
	"i":      true,
	"label":  true,
	"mark":   true,
	"small":  true,
	"span":   true,
	"strong": true,
	"sub":    true,
	"sup":    true,
	"time":   true,
	"u":      true,
}

func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// escapeAttr also escapes whitespace that would break attribute parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

func attrToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// RenderOptions configures HTML serialization.
type RenderOptions struct {
	// Pretty indents block elements, one per line.
	Pretty bool
	// Indent defaults to two spaces.
	Indent string
	// Comments keeps comment nodes. Anchors of fragments and teleports
	// are empty text nodes and never show up.
	Comments bool
}

// HTML serializes the children of n.
func (n *Node) HTML() string {
	var b strings.Builder
	_ = n.WriteHTML(&b, RenderOptions{Comments: true})
	return b.String()
}

// OuterHTML serializes n itself.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	w := &htmlWriter{w: &b, opts: RenderOptions{Comments: true}}
	w.node(n, 0)
	return b.String()
}

// WriteHTML writes the children of n to w.
func (n *Node) WriteHTML(w io.Writer, opts RenderOptions) error {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	hw := &htmlWriter{w: w, opts: opts}
	for _, c := range n.children {
		hw.node(c, 0)
	}
	return hw.err
}

type htmlWriter struct {
	w    io.Writer
	opts RenderOptions
	err  error
}

func (h *htmlWriter) write(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) indent(depth int) {
	if h.opts.Pretty && depth > 0 {
		h.write(strings.Repeat(h.opts.Indent, depth))
	}
}

func (h *htmlWriter) newline() {
	if h.opts.Pretty {
		h.write("\n")
	}
}

func (h *htmlWriter) node(n *Node, depth int) {
	switch n.Type {
	case TextNode:
		if n.Data == "" {
			return
		}
		h.write(escapeHTML(n.Data))
	case CommentNode:
		if h.opts.Comments {
			h.write("<!--" + n.Data + "-->")
		}
	case ElementNode:
		h.element(n, depth)
	}
}

func (h *htmlWriter) element(n *Node, depth int) {
	h.indent(depth)
	h.write("<" + n.Tag)

	keys := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := n.attrs[k]
		if v == "" && (isBooleanAttr(k) || strings.HasPrefix(k, "data-v-")) {
			h.write(" " + k)
			continue
		}
		h.write(" " + k + `="` + escapeAttr(v) + `"`)
	}
	if v, ok := n.props["value"].(string); ok && n.Tag == "input" {
		h.write(` value="` + escapeAttr(v) + `"`)
	}
	if c, ok := n.props["checked"].(bool); ok && c {
		h.write(" checked")
	}
	if s, ok := n.props["selected"].(bool); ok && s {
		h.write(" selected")
	}

	if isVoidElement(n.Tag) {
		h.write(">")
		h.newline()
		return
	}
	h.write(">")

	block := len(n.children) > 0 && !inlineElements[n.Tag] && !onlyText(n)
	if block {
		h.newline()
	}
	if n.Tag == "textarea" {
		if v, ok := n.props["value"].(string); ok {
			h.write(escapeHTML(v))
		}
	} else {
		for _, c := range n.children {
			if (c.Type == TextNode && c.Data == "") || (c.Type == CommentNode && !h.opts.Comments) {
				continue
			}
			if block && c.Type != ElementNode {
				h.indent(depth + 1)
				h.node(c, depth+1)
				h.newline()
				continue
			}
			h.node(c, depth+1)
		}
	}
	if block {
		h.indent(depth)
	}
	h.write("</" + n.Tag + ">")
	h.newline()
}

func onlyText(n *Node) bool {
	for _, c := range n.children {
		if c.Type == ElementNode {
			return false
		}
	}
	return true
}
