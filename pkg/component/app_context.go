package component

import (
	"log/slog"
	"sync"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// AppErrorHandler receives errors no errorCaptured hook stopped.
type AppErrorHandler func(err error, inst *Instance, code errors.ErrorCode)

// AppWarnHandler receives runtime warnings together with the component
// trace, "<App> > <Child>".
type AppWarnHandler func(msg string, inst *Instance, trace string)

// AppConfig is the per-application configuration.
type AppConfig struct {
	ErrorHandler AppErrorHandler
	WarnHandler  AppWarnHandler

	// ThrowUnhandledErrors panics with errors that reach the end of the
	// funnel instead of logging them.
	ThrowUnhandledErrors bool

	// Dev enables prop validation and other development-only warnings.
	Dev bool

	GlobalProperties map[string]any
}

// AppContext is shared by every instance of one application.
type AppContext struct {
	// App is the owning application value.
	App any

	Config     AppConfig
	Components map[string]*Definition
	Directives map[string]*vdom.Directive
	Provides   *Provides

	Scheduler *scheduler.Scheduler
	Logger    *slog.Logger
}

// NewAppContext creates an empty context on s.
func NewAppContext(s *scheduler.Scheduler, logger *slog.Logger) *AppContext {
	if s == nil {
		s = scheduler.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AppContext{
		Components: make(map[string]*Definition),
		Directives: make(map[string]*vdom.Directive),
		Provides:   NewProvides(nil),
		Scheduler:  s,
		Logger:     logger,
	}
}

var (
	emptyOnce sync.Once
	emptyCtx  *AppContext
)

// emptyAppContext backs instances created outside an application.
func emptyAppContext() *AppContext {
	emptyOnce.Do(func() {
		emptyCtx = NewAppContext(nil, nil)
	})
	return emptyCtx
}

// Provides is one link of the provide/inject chain. Lookups fall through
// to the parent link.
type Provides struct {
	parent *Provides
	values map[any]any
}

// NewProvides creates a link on top of parent.
func NewProvides(parent *Provides) *Provides {
	return &Provides{parent: parent, values: make(map[any]any)}
}

// Set stores a value on this link.
func (p *Provides) Set(key, value any) {
	p.values[key] = value
}

// Lookup searches this link and its ancestors.
func (p *Provides) Lookup(key any) (any, bool) {
	for cur := p; cur != nil; cur = cur.parent {
		if v, ok := cur.values[key]; ok {
			return v, true
		}
	}
	return nil, false
}
