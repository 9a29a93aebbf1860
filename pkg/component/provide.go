package component

// Provide makes value available to descendants of the current instance
// under key.
func Provide(key, value any) {
	inst := CurrentInstance()
	if inst == nil {
		Warn(nil, "provide() can only be used inside setup()")
		return
	}
	var parent *Provides
	if inst.Parent != nil {
		parent = inst.Parent.Provides
	} else {
		parent = inst.AppContext.Provides
	}
	// The first Provide call forks the chain inherited from the parent.
	if inst.Provides == parent {
		inst.Provides = NewProvides(parent)
	}
	inst.Provides.Set(key, value)
}

// Inject looks key up in the ancestors of the current instance. A value
// provided by the instance itself is not visible to its own Inject.
func Inject(key any) (any, bool) {
	var provides *Provides
	switch inst := CurrentInstance(); {
	case currentApp() != nil:
		provides = currentApp().Provides
	case inst == nil:
		Warn(nil, "inject() can only be used inside setup() or functional components")
		return nil, false
	case inst.Parent == nil:
		provides = inst.AppContext.Provides
	default:
		provides = inst.Parent.Provides
	}
	return provides.Lookup(key)
}

// InjectOr is Inject with a default value.
func InjectOr(key, def any) any {
	if v, ok := Inject(key); ok {
		return v
	}
	return def
}

// HasInjectionContext reports whether Inject can be called.
func HasInjectionContext() bool {
	return CurrentInstance() != nil || currentApp() != nil
}
