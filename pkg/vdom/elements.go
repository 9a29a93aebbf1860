package vdom

// voidElements are elements that cannot have children.
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

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// createElement creates an element from variadic arguments.
// Arguments can be: nil, Attr, []Attr, EventHandler, Hint, *DirectiveBinding,
// *VNode, []*VNode, string, or Component (rendered as a child component).
func createElement(tag string, args []any) *VNode {
	var (
		props    Props
		children []any
		hint     Hint
		dirs     []*DirectiveBinding
	)
	setProp := func(k string, v any) {
		if props == nil {
			props = make(Props)
		}
		if prev, ok := props[k]; ok && isListenerKey(k) {
			props[k] = chainHandlers(prev, v)
			return
		}
		props[k] = v
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
		case Attr:
			if v.Key != "" {
				setProp(v.Key, v.Value)
			}
		case []Attr:
			for _, a := range v {
				if a.Key != "" {
					setProp(a.Key, a.Value)
				}
			}
		case EventHandler:
			setProp(v.Event, v.Handler)
		case Hint:
			hint = v
		case *DirectiveBinding:
			dirs = append(dirs, v)
		case Component:
			children = append(children, NewComponent(v, nil, nil))
		default:
			children = append(children, v)
		}
	}

	var ch any
	if len(children) == 1 {
		if s, ok := children[0].(string); ok {
			ch = s
		}
	}
	if ch == nil && len(children) > 0 {
		ch = children
	}

	v := newElement(tag, props, ch, hint.Flag, hint.DynamicProps)
	if len(dirs) > 0 {
		v.Dirs = dirs
	}
	return v
}

// Document structure elements

func Html(args ...any) *VNode  { return createElement("html", args) }
func Head(args ...any) *VNode  { return createElement("head", args) }
func Body(args ...any) *VNode  { return createElement("body", args) }
func Title(args ...any) *VNode { return createElement("title", args) }

// Content sectioning elements

func Header(args ...any) *VNode  { return createElement("header", args) }
func Footer(args ...any) *VNode  { return createElement("footer", args) }
func Main(args ...any) *VNode    { return createElement("main", args) }
func Nav(args ...any) *VNode     { return createElement("nav", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func Article(args ...any) *VNode { return createElement("article", args) }
func Aside(args ...any) *VNode   { return createElement("aside", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }
func H3(args ...any) *VNode      { return createElement("h3", args) }

// Text content elements

func Div(args ...any) *VNode  { return createElement("div", args) }
func P(args ...any) *VNode    { return createElement("p", args) }
func Span(args ...any) *VNode { return createElement("span", args) }
func Pre(args ...any) *VNode  { return createElement("pre", args) }
func Ul(args ...any) *VNode   { return createElement("ul", args) }
func Ol(args ...any) *VNode   { return createElement("ol", args) }
func Li(args ...any) *VNode   { return createElement("li", args) }
func Hr(args ...any) *VNode   { return createElement("hr", args) }

// Inline text semantics

func A(args ...any) *VNode      { return createElement("a", args) }
func Strong(args ...any) *VNode { return createElement("strong", args) }
func Em(args ...any) *VNode     { return createElement("em", args) }
func Code(args ...any) *VNode   { return createElement("code", args) }
func Small(args ...any) *VNode  { return createElement("small", args) }
func Br(args ...any) *VNode     { return createElement("br", args) }

// Form elements

func Form(args ...any) *VNode     { return createElement("form", args) }
func Input(args ...any) *VNode    { return createElement("input", args) }
func Textarea(args ...any) *VNode { return createElement("textarea", args) }
func Select(args ...any) *VNode   { return createElement("select", args) }
func Option(args ...any) *VNode   { return createElement("option", args) }
func Button(args ...any) *VNode   { return createElement("button", args) }
func Label(args ...any) *VNode    { return createElement("label", args) }

// Table elements

func Table(args ...any) *VNode { return createElement("table", args) }
func Thead(args ...any) *VNode { return createElement("thead", args) }
func Tbody(args ...any) *VNode { return createElement("tbody", args) }
func Tr(args ...any) *VNode    { return createElement("tr", args) }
func Th(args ...any) *VNode    { return createElement("th", args) }
func Td(args ...any) *VNode    { return createElement("td", args) }

// Media elements

func Img(args ...any) *VNode { return createElement("img", args) }
func Svg(args ...any) *VNode { return createElement("svg", args) }

// CustomElement creates an element with a custom tag name.
func CustomElement(tag string, args ...any) *VNode {
	return createElement(tag, args)
}
