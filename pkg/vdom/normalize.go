package vdom

import (
	"fmt"
	"sort"
	"strings"
)

// Normalize converts a render result into a vnode. nil becomes an empty
// comment, a slice becomes a fragment, and an already mounted vnode is
// cloned.
func Normalize(child any) *VNode {
	switch c := child.(type) {
	case nil:
		return Comment("")
	case bool:
		return Comment("")
	case *VNode:
		if c == nil {
			return Comment("")
		}
		return CloneIfMounted(c)
	case []*VNode:
		children := make([]*VNode, len(c))
		copy(children, c)
		return &VNode{Kind: KindFragment, Shape: ChildArray, Children: children}
	case []any:
		return &VNode{Kind: KindFragment, Shape: ChildArray, Children: flattenChildren(c, nil)}
	case string:
		return Text(c)
	default:
		return Text(fmt.Sprint(c))
	}
}

// chainHandlers merges two listener values into one list.
func chainHandlers(a, b any) any {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	var out []any
	if la, ok := a.([]any); ok {
		out = append(out, la...)
	} else {
		out = append(out, a)
	}
	if lb, ok := b.([]any); ok {
		out = append(out, lb...)
	} else {
		out = append(out, b)
	}
	return out
}

// MergeProps merges props left to right. Classes are joined, styles are
// merged, and listeners for the same event are chained.
func MergeProps(sources ...Props) Props {
	out := make(Props)
	for _, src := range sources {
		for k, v := range src {
			switch {
			case k == "class":
				if prev, ok := out["class"]; ok {
					out["class"] = NormalizeClass([]any{prev, v})
				} else {
					out["class"] = NormalizeClass(v)
				}
			case k == "style":
				if prev, ok := out["style"]; ok {
					merged := NormalizeStyle(prev)
					for sk, sv := range NormalizeStyle(v) {
						merged[sk] = sv
					}
					out["style"] = StringifyStyle(merged)
				} else {
					out["style"] = v
				}
			case isListenerKey(k):
				prev := out[k]
				if prev != nil && !sameHandler(prev, v) {
					out[k] = chainHandlers(prev, v)
				} else {
					out[k] = v
				}
			case k != "":
				out[k] = v
			}
		}
	}
	return out
}

func sameHandler(a, b any) bool {
	return fmt.Sprintf("%p", a) == fmt.Sprintf("%p", b)
}

// NormalizeClass flattens a class value: a string, []string, []any, or a
// map[string]bool whose true keys are used in sorted order.
func NormalizeClass(v any) string {
	var parts []string
	var walk func(any)
	walk = func(x any) {
		switch t := x.(type) {
		case nil:
		case string:
			for _, f := range strings.Fields(t) {
				parts = append(parts, f)
			}
		case []string:
			for _, s := range t {
				walk(s)
			}
		case []any:
			for _, s := range t {
				walk(s)
			}
		case map[string]bool:
			keys := make([]string, 0, len(t))
			for k, on := range t {
				if on {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			parts = append(parts, keys...)
		default:
			parts = append(parts, fmt.Sprint(t))
		}
	}
	walk(v)
	return strings.Join(parts, " ")
}

// NormalizeStyle parses a style value, either a "k: v; k2: v2" string or a
// map, into a property map.
func NormalizeStyle(v any) map[string]string {
	out := make(map[string]string)
	switch t := v.(type) {
	case nil:
	case string:
		for _, decl := range strings.Split(t, ";") {
			k, val, ok := strings.Cut(decl, ":")
			if !ok {
				continue
			}
			k = strings.TrimSpace(k)
			if k != "" {
				out[k] = strings.TrimSpace(val)
			}
		}
	case map[string]string:
		for k, val := range t {
			out[k] = val
		}
	case map[string]any:
		for k, val := range t {
			if val != nil {
				out[k] = fmt.Sprint(val)
			}
		}
	}
	return out
}

// StringifyStyle renders a style map with sorted property names.
func StringifyStyle(style map[string]string) string {
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(style[k])
		b.WriteString(";")
	}
	return b.String()
}
