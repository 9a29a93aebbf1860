package component

import (
	"sort"
	"sync"

	"github.com/vango-dev/vrt/pkg/vdom"
)

// RenderFunc produces a component's subtree. Setup may return one.
type RenderFunc func() *vdom.VNode

// PropType is a bit set of accepted prop kinds.
type PropType uint8

const (
	PropAny    PropType = 0
	PropBool   PropType = 1 << iota
	PropString
	PropNumber
	PropObject
	PropArray
	PropFunc
)

// PropOptions declares one prop.
type PropOptions struct {
	Type PropType

	// Default is used when the prop is absent. DefaultFunc takes
	// precedence and is evaluated once per instance.
	Default     any
	DefaultFunc func(props map[string]any) any

	Required  bool
	Validator func(v any) bool

	// StringFirst makes an empty string stay a string when Type accepts
	// both PropBool and PropString. By default bool casting wins.
	StringFirst bool
}

func (o PropOptions) hasDefault() bool {
	return o.Default != nil || o.DefaultFunc != nil
}

// PropsOptions maps prop names to their options.
type PropsOptions map[string]PropOptions

// Definition describes a component.
type Definition struct {
	Name string

	Props PropsOptions
	Emits []string

	// NoInheritAttrs disables attrs fallthrough onto the root node.
	NoInheritAttrs bool

	// Setup runs once per instance. It may return a RenderFunc, a
	// map[string]any of state exposed to Render, a *Promise resolving to
	// either, or nil.
	Setup func(ctx *Ctx) any

	// Render is used when Setup does not return a RenderFunc.
	Render func(ctx *Ctx) *vdom.VNode

	Components map[string]*Definition
	Directives map[string]*vdom.Directive

	// KeepAlive marks the KeepAlive built-in.
	KeepAlive bool
}

// ComponentName implements vdom.Component.
func (d *Definition) ComponentName() string {
	if d == nil || d.Name == "" {
		return "Anonymous"
	}
	return d.Name
}

type normalizedProps struct {
	options  PropsOptions
	names    []string
	lower    map[string]string
	castKeys []string
	hasAny   bool
}

type normalizedEmits map[string]bool

var (
	propsCache sync.Map // *Definition -> *normalizedProps
	emitsCache sync.Map // *Definition -> normalizedEmits
)

func (d *Definition) normalizedProps() *normalizedProps {
	if v, ok := propsCache.Load(d); ok {
		return v.(*normalizedProps)
	}
	np := &normalizedProps{
		options: make(PropsOptions, len(d.Props)),
		lower:   make(map[string]string, len(d.Props)),
		hasAny:  len(d.Props) > 0,
	}
	for raw, opt := range d.Props {
		name := Camelize(raw)
		if name == "" || name[0] == '$' {
			continue
		}
		np.options[name] = opt
		np.names = append(np.names, name)
		np.lower[lowerASCII(name)] = name
		if opt.Type&PropBool != 0 || opt.hasDefault() {
			np.castKeys = append(np.castKeys, name)
		}
	}
	sort.Strings(np.names)
	sort.Strings(np.castKeys)
	v, _ := propsCache.LoadOrStore(d, np)
	return v.(*normalizedProps)
}

// NormalizePropsOptions returns d's prop options keyed by camelized name
// and the names that need default or boolean casting.
func NormalizePropsOptions(d *Definition) (PropsOptions, []string) {
	np := d.normalizedProps()
	return np.options, np.castKeys
}

// lookup resolves a raw prop key to a declared prop name. Kebab-case keys
// and keys differing only in case match.
func (np *normalizedProps) lookup(key string) (string, bool) {
	if !np.hasAny {
		return "", false
	}
	name := Camelize(key)
	if _, ok := np.options[name]; ok {
		return name, true
	}
	if n, ok := np.lower[lowerASCII(name)]; ok {
		return n, true
	}
	return "", false
}

func (np *normalizedProps) needsCast(name string) bool {
	i := sort.SearchStrings(np.castKeys, name)
	return i < len(np.castKeys) && np.castKeys[i] == name
}

func (d *Definition) normalizedEmits() normalizedEmits {
	if d == nil || len(d.Emits) == 0 {
		return nil
	}
	if v, ok := emitsCache.Load(d); ok {
		return v.(normalizedEmits)
	}
	ne := make(normalizedEmits, len(d.Emits))
	for _, e := range d.Emits {
		ne[e] = true
	}
	v, _ := emitsCache.LoadOrStore(d, ne)
	return v.(normalizedEmits)
}

// isEmitListener reports whether key is a listener for a declared event.
// Such listeners are neither props nor attrs.
func (ne normalizedEmits) isEmitListener(key string) bool {
	if ne == nil || !isOn(key) {
		return false
	}
	key = key[2:]
	if len(key) > 4 && key[len(key)-4:] == "Once" {
		key = key[:len(key)-4]
	}
	return ne[uncapitalize(key)] || ne[Hyphenate(key)] || ne[key]
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
