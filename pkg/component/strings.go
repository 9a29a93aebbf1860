package component

import (
	"strings"
	"unicode"
)

// Camelize turns "foo-bar" into "fooBar".
func Camelize(s string) string {
	if !strings.Contains(s, "-") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	upper := false
	for _, r := range s {
		if r == '-' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Hyphenate turns "fooBar" into "foo-bar".
func Hyphenate(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func uncapitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// HandlerKey returns the listener prop name for event, "click" -> "onClick".
func HandlerKey(event string) string {
	if event == "" {
		return ""
	}
	return "on" + Capitalize(event)
}

func isOn(key string) bool {
	return len(key) > 2 && key[0] == 'o' && key[1] == 'n' && (key[2] < 'a' || key[2] > 'z')
}

func isModelListener(key string) bool {
	return strings.HasPrefix(key, "onUpdate:")
}

// IsReservedProp reports props consumed by the renderer itself.
func IsReservedProp(key string) bool {
	switch key {
	case "", "key", "ref", "ref_for", "ref_key",
		"onVnodeBeforeMount", "onVnodeMounted",
		"onVnodeBeforeUpdate", "onVnodeUpdated",
		"onVnodeBeforeUnmount", "onVnodeUnmounted":
		return true
	}
	return false
}
