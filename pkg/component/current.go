package component

import (
	"sync"

	"github.com/petermattis/goid"

	"github.com/vango-dev/vrt/pkg/vdom"
)

type currentState struct {
	instance *Instance
	app      *AppContext
}

var currents sync.Map // int64 -> *currentState

func getCurrentState() *currentState {
	id := goid.Get()
	if v, ok := currents.Load(id); ok {
		return v.(*currentState)
	}
	st := &currentState{}
	currents.Store(id, st)
	return st
}

// CurrentInstance returns the instance whose setup or hook is running, or
// the instance being rendered.
func CurrentInstance() *Instance {
	if inst := getCurrentState().instance; inst != nil {
		return inst
	}
	inst, _ := vdom.RenderingInstance().(*Instance)
	return inst
}

// SetCurrentInstance makes inst current and enters its scope. The returned
// func restores the previous instance and scope.
func SetCurrentInstance(inst *Instance) (reset func()) {
	st := getCurrentState()
	prev := st.instance
	st.instance = inst
	var leave func()
	if inst != nil {
		leave = inst.Scope.Enter()
	}
	return func() {
		if leave != nil {
			leave()
		}
		st.instance = prev
	}
}

// currentApp is set while App.RunWithContext runs.
func currentApp() *AppContext {
	return getCurrentState().app
}

// RunWithApp runs fn with app as the injection context.
func RunWithApp(app *AppContext, fn func()) {
	st := getCurrentState()
	prev := st.app
	st.app = app
	defer func() { st.app = prev }()
	fn()
}

// ReleaseGoroutine drops the goroutine-local state of the caller.
func ReleaseGoroutine() {
	currents.Delete(goid.Get())
}
