package reactive

import "sync"

type stopper interface {
	Stop()
}

// Scope groups effects, computed values and child scopes so they can be
// stopped together. Stopping a scope is the only teardown operation and
// leaves no partially stopped state behind.
type Scope struct {
	parent *Scope

	mu       sync.Mutex
	stoppers []stopper
	children []*Scope
	cleanups []func()
	active   bool
}

// NewScope creates a scope. Unless detached, it becomes a child of the
// current scope and stops with it.
func NewScope(detached bool) *Scope {
	s := &Scope{active: true}
	if !detached {
		if p := CurrentScope(); p != nil {
			s.parent = p
			p.mu.Lock()
			p.children = append(p.children, s)
			p.mu.Unlock()
		}
	}
	return s
}

// Run runs fn with s as the current scope. It does nothing once s stopped.
func (s *Scope) Run(fn func()) {
	if !s.Active() {
		return
	}
	prev := setActiveScope(s)
	defer setActiveScope(prev)
	fn()
}

// Enter makes s the current scope until the returned func is called.
func (s *Scope) Enter() (restore func()) {
	prev := setActiveScope(s)
	return func() { setActiveScope(prev) }
}

// Active reports whether the scope has not been stopped.
func (s *Scope) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Scope) addStopper(st stopper) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.stoppers = append(s.stoppers, st)
}

// OnCleanup registers fn to run when the scope stops. If the scope already
// stopped, fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
	s.mu.Unlock()
}

// Stop stops every effect, computed and child scope owned by s, then runs
// the cleanups in registration order.
func (s *Scope) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	stoppers := s.stoppers
	children := s.children
	cleanups := s.cleanups
	s.stoppers, s.children, s.cleanups = nil, nil, nil
	s.mu.Unlock()

	for _, st := range stoppers {
		st.Stop()
	}
	for _, c := range children {
		c.Stop()
	}
	for _, fn := range cleanups {
		fn()
	}

	if p := s.parent; p != nil {
		p.removeChild(s)
		s.parent = nil
	}
}

func (s *Scope) removeChild(child *Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// OnScopeDispose registers fn on the current scope, if any.
func OnScopeDispose(fn func()) {
	if s := CurrentScope(); s != nil {
		s.OnCleanup(fn)
	}
}
