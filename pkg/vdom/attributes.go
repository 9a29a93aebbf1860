package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Prop sets an arbitrary attribute or DOM property.
func Prop(key string, value any) Attr { return attr(key, value) }

// Key sets the reconciliation key.
func Key(key any) Attr { return attr("key", key) }

// Ref registers a template ref: a string name, a func(any), or a RefSetter.
func Ref(ref any) Attr { return attr("ref", ref) }

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// ClassMap sets the class attribute from a name -> enabled map.
func ClassMap(classes map[string]bool) Attr { return attr("class", NormalizeClass(classes)) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Accessibility attributes

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attr { return attr("aria-hidden", hidden) }

// Visibility attributes

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", true) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attr { return attr("title", title) }

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attr { return attr("tabindex", index) }

// Link attributes

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Form input attributes

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Value sets the value DOM property.
func Value(value string) Attr { return attr("value", value) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// For sets the for attribute.
func For(id string) Attr { return attr("for", id) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }

// Checked sets the checked DOM property.
func Checked(checked bool) Attr { return attr("checked", checked) }

// Selected sets the selected DOM property.
func Selected(selected bool) Attr { return attr("selected", selected) }
