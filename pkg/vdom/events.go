package vdom

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// On creates a listener prop for the named event: On("click", h) sets
// "onClick".
func On(name string, handler any) EventHandler {
	return EventHandler{Event: ListenerKey(name), Handler: handler}
}

// ListenerKey converts an event name into its listener prop key
// ("update:value" → "onUpdate:value").
func ListenerKey(event string) string {
	if event == "" {
		return "on"
	}
	r, size := utf8.DecodeRuneInString(event)
	return "on" + string(unicode.ToUpper(r)) + event[size:]
}

// EventName converts a listener prop key back into the event name
// ("onClick" → "click"). The second result is false for non-listener keys.
func EventName(key string) (string, bool) {
	if !isListenerKey(key) {
		return "", false
	}
	name := key[2:]
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:], true
}

// IsListenerKey reports whether key names an event listener prop: "on"
// followed by a character that is not a lowercase letter.
func IsListenerKey(key string) bool {
	return isListenerKey(key)
}

func isListenerKey(key string) bool {
	if len(key) < 3 || !strings.HasPrefix(key, "on") {
		return false
	}
	c := key[2]
	return c > 'z' || c < 'a'
}

// Mouse events

// OnClick handles click events.
func OnClick(handler any) EventHandler { return On("click", handler) }

// OnDblClick handles double-click events.
func OnDblClick(handler any) EventHandler { return On("dblclick", handler) }

// OnMouseEnter handles mouseenter events.
func OnMouseEnter(handler any) EventHandler { return On("mouseenter", handler) }

// OnMouseLeave handles mouseleave events.
func OnMouseLeave(handler any) EventHandler { return On("mouseleave", handler) }

// Keyboard events

// OnKeyDown handles keydown events.
func OnKeyDown(handler any) EventHandler { return On("keydown", handler) }

// OnKeyUp handles keyup events.
func OnKeyUp(handler any) EventHandler { return On("keyup", handler) }

// Form events

// OnInput handles input events (fired when value changes).
func OnInput(handler any) EventHandler { return On("input", handler) }

// OnChange handles change events (fired when value is committed).
func OnChange(handler any) EventHandler { return On("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler any) EventHandler { return On("submit", handler) }

// Focus events

// OnFocus handles focus events.
func OnFocus(handler any) EventHandler { return On("focus", handler) }

// OnBlur handles blur events.
func OnBlur(handler any) EventHandler { return On("blur", handler) }
