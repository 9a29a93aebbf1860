package component

import "github.com/vango-dev/vrt/pkg/vdom"

// ResolveComponent finds a registered component by name. Local
// registrations win over application ones; "my-comp", "myComp" and
// "MyComp" all match.
func ResolveComponent(name string) (*Definition, bool) {
	inst := CurrentInstance()
	if inst == nil {
		Warn(nil, "resolveComponent can only be used in render() or setup()")
		return nil, false
	}
	if inst.Type != nil {
		if d, ok := lookupAsset(inst.Type.Components, name); ok {
			return d, true
		}
	}
	if d, ok := lookupAsset(inst.AppContext.Components, name); ok {
		return d, true
	}
	Warn(inst, "failed to resolve component: %s", name)
	return nil, false
}

// ResolveDirective finds a registered directive by name.
func ResolveDirective(name string) (*vdom.Directive, bool) {
	inst := CurrentInstance()
	if inst == nil {
		return nil, false
	}
	if inst.Type != nil {
		if d, ok := lookupAsset(inst.Type.Directives, name); ok {
			return d, true
		}
	}
	if d, ok := lookupAsset(inst.AppContext.Directives, name); ok {
		return d, true
	}
	Warn(inst, "failed to resolve directive: %s", name)
	return nil, false
}

func lookupAsset[T any](registry map[string]T, name string) (T, bool) {
	if v, ok := registry[name]; ok {
		return v, true
	}
	camel := Camelize(name)
	if v, ok := registry[camel]; ok {
		return v, true
	}
	v, ok := registry[Capitalize(camel)]
	return v, ok
}
