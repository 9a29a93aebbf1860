package component

import (
	"reflect"

	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// InitProps splits raw vnode props into declared props and fallthrough
// attrs. Declared props missing from raw are present with a nil value so
// the key set is fixed for the instance's lifetime.
func (i *Instance) InitProps(raw vdom.Props) {
	props := make(map[string]any)
	attrs := vdom.Props{}
	i.setFullProps(raw, props, attrs)

	np := i.Type.normalizedProps()
	for _, name := range np.names {
		if _, ok := props[name]; !ok {
			props[name] = nil
		}
	}
	if i.AppContext.Config.Dev {
		i.validateProps(raw, props)
	}
	i.props = reactive.NewMap(props)
	i.attrs = attrs
}

// setFullProps assigns every raw prop to props or attrs. It reports
// whether attrs changed.
func (i *Instance) setFullProps(raw vdom.Props, props map[string]any, attrs vdom.Props) bool {
	np := i.Type.normalizedProps()
	var castValues map[string]any
	changed := false

	for key, value := range raw {
		if IsReservedProp(key) {
			continue
		}
		if name, ok := np.lookup(key); ok {
			if !np.needsCast(name) {
				props[name] = value
			} else {
				if castValues == nil {
					castValues = make(map[string]any)
				}
				castValues[name] = value
			}
			continue
		}
		if i.emits.isEmitListener(key) {
			continue
		}
		if prev, ok := attrs[key]; !ok || reactive.HasChanged(prev, value) {
			attrs[key] = value
			changed = true
		}
	}

	for _, name := range np.castKeys {
		v, present := castValues[name]
		props[name] = i.resolvePropValue(np, props, name, v, !present)
	}
	return changed
}

// resolvePropValue applies defaults and boolean casting.
func (i *Instance) resolvePropValue(np *normalizedProps, props map[string]any, name string, value any, absent bool) any {
	opt, ok := np.options[name]
	if !ok {
		return value
	}
	if opt.hasDefault() && (absent || value == nil) {
		switch {
		case opt.DefaultFunc != nil:
			if i.propsDefaults == nil {
				i.propsDefaults = make(map[string]any)
			}
			if v, ok := i.propsDefaults[name]; ok {
				value = v
			} else {
				reset := SetCurrentInstance(i)
				value = opt.DefaultFunc(props)
				reset()
				i.propsDefaults[name] = value
			}
		default:
			value = opt.Default
		}
	}
	if opt.Type&PropBool != 0 {
		switch {
		case absent && !opt.hasDefault():
			value = false
		case value == "" || value == Hyphenate(name):
			if opt.Type&PropString == 0 || !opt.StringFirst {
				value = true
			}
		}
	}
	return value
}

// UpdateProps applies the props of a new vnode. With optimized set, or a
// positive patch flag without FULL_PROPS, only DynamicProps are examined.
// It reports whether attrs changed.
func (i *Instance) UpdateProps(raw, prevRaw vdom.Props, optimized bool) bool {
	np := i.Type.normalizedProps()
	flag := i.VNode.PatchFlag
	current := i.props.Raw()
	attrsChanged := false

	if (optimized || flag > 0) && !flag.Has(vdom.PatchFullProps) {
		if flag.Has(vdom.PatchProps) {
			for _, key := range i.VNode.DynamicProps {
				if i.emits.isEmitListener(key) {
					continue
				}
				value := raw[key]
				if prev, ok := i.attrs[key]; ok || !np.hasAny {
					if !ok || reactive.HasChanged(prev, value) {
						i.attrs[key] = value
						attrsChanged = true
					}
					continue
				}
				name, ok := np.lookup(key)
				if !ok {
					i.attrs[key] = value
					attrsChanged = true
					continue
				}
				i.props.Set(name, i.resolvePropValue(np, current, name, value, false))
			}
		}
	} else {
		next := make(map[string]any, len(current))
		for k, v := range current {
			next[k] = v
		}
		if i.setFullProps(raw, next, i.attrs) {
			attrsChanged = true
		}
		for key := range current {
			if raw != nil && hasRaw(raw, key) {
				continue
			}
			if np.hasAny {
				if prevRaw != nil && hasRaw(prevRaw, key) {
					next[key] = i.resolvePropValue(np, next, key, nil, true)
				}
			} else {
				delete(next, key)
			}
		}
		for k, v := range next {
			i.props.Set(k, v)
		}
		for k := range current {
			if _, ok := next[k]; !ok {
				i.props.Delete(k)
			}
		}
		for key := range i.attrs {
			if raw == nil || !hasRawExact(raw, key) {
				delete(i.attrs, key)
				attrsChanged = true
			}
		}
	}

	if attrsChanged {
		i.attrsVersion.Update(func(n int) int { return n + 1 })
	}
	if i.AppContext.Config.Dev {
		i.validateProps(raw, i.props.Raw())
	}
	return attrsChanged
}

// hasRaw reports whether raw carries the declared prop key in any accepted
// spelling.
func hasRaw(raw vdom.Props, key string) bool {
	if _, ok := raw[key]; ok {
		return true
	}
	if k := Hyphenate(key); k != key {
		if _, ok := raw[k]; ok {
			return true
		}
	}
	lk := lowerASCII(key)
	for k := range raw {
		if lowerASCII(Camelize(k)) == lk {
			return true
		}
	}
	return false
}

func hasRawExact(raw vdom.Props, key string) bool {
	_, ok := raw[key]
	return ok
}

func (i *Instance) validateProps(raw vdom.Props, props map[string]any) {
	np := i.Type.normalizedProps()
	for _, name := range np.names {
		opt := np.options[name]
		value := props[name]
		present := raw != nil && hasRaw(raw, name)
		if opt.Required && !present {
			Warn(i, "missing required prop: %q", name)
			continue
		}
		if value == nil && !opt.Required {
			continue
		}
		if opt.Type != PropAny && value != nil && !typeAccepts(opt.Type, value) {
			Warn(i, "invalid prop: type check failed for prop %q, got %T", name, value)
			continue
		}
		if opt.Validator != nil && !opt.Validator(value) {
			Warn(i, "invalid prop: custom validator check failed for prop %q", name)
		}
	}
}

func typeAccepts(t PropType, v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return t&PropBool != 0
	case reflect.String:
		return t&PropString != 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return t&PropNumber != 0
	case reflect.Slice, reflect.Array:
		return t&PropArray != 0
	case reflect.Func:
		return t&PropFunc != 0
	default:
		return t&PropObject != 0
	}
}
