package component

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/reactive"
)

// ErrorCapturedHook observes errors raised in descendants. Returning true
// stops propagation.
type ErrorCapturedHook func(err error, source *Instance, code errors.ErrorCode) bool

// HandleError routes err through the errorCaptured hooks of inst's
// ancestors, then the application error handler. Errors nobody handles are
// logged, or re-panicked when ThrowUnhandledErrors is set.
func HandleError(err error, inst *Instance, code errors.ErrorCode) {
	if err == nil {
		return
	}
	var app *AppContext
	if inst != nil {
		for cur := inst.Parent; cur != nil; cur = cur.Parent {
			for _, hook := range cur.errorCaptured {
				if callCapturedHook(hook, err, inst, code, cur) {
					return
				}
			}
		}
		app = inst.AppContext
		if h := app.Config.ErrorHandler; h != nil {
			reactive.PauseTracking()
			CallWithErrorHandling(func() { h(err, inst, code) }, nil, errors.AppErrorHandler)
			reactive.ResetTracking()
			return
		}
	}
	logError(err, inst, code, app)
}

func callCapturedHook(hook ErrorCapturedHook, err error, source *Instance, code errors.ErrorCode, owner *Instance) (stop bool) {
	defer func() {
		if r := recover(); r != nil {
			stop = false
			logError(errors.FromPanic(r), owner, errors.ErrorCapturedHook, owner.AppContext)
		}
	}()
	return hook(err, source, code)
}

func logError(err error, inst *Instance, code errors.ErrorCode, app *AppContext) {
	re := errors.Wrap(err, code)
	if inst != nil {
		re = re.WithComponent(inst.Trace())
	}
	if app != nil && app.Config.ThrowUnhandledErrors {
		panic(re)
	}
	logger := slog.Default()
	if app != nil && app.Logger != nil {
		logger = app.Logger
	}
	attrs := []any{
		slog.String("code", code.String()),
		slog.String("error", err.Error()),
	}
	if re.Component != "" {
		attrs = append(attrs, slog.String("component", re.Component))
	}
	logger.Error("unhandled error", attrs...)
}

// CallWithErrorHandling runs fn, routing a panic to HandleError.
func CallWithErrorHandling(fn func(), inst *Instance, code errors.ErrorCode) {
	defer func() {
		if r := recover(); r != nil {
			HandleError(errors.FromPanic(r), inst, code)
		}
	}()
	fn()
}

// CallWithErrorHandlingErr runs fn, routing a returned error or a panic to
// HandleError.
func CallWithErrorHandlingErr(fn func() error, inst *Instance, code errors.ErrorCode) {
	var err error
	CallWithErrorHandling(func() { err = fn() }, inst, code)
	if err != nil {
		HandleError(err, inst, code)
	}
}

// InvokeHandler calls an event handler with args. Handlers may be any of
// func(), func(any), func(...any), func() error, func(any) error, or a
// []any of those, called in order.
func InvokeHandler(h any, args ...any) error {
	switch fn := h.(type) {
	case nil:
		return nil
	case func():
		fn()
	case func(any):
		var a any
		if len(args) > 0 {
			a = args[0]
		}
		fn(a)
	case func(...any):
		fn(args...)
	case func() error:
		return fn()
	case func(any) error:
		var a any
		if len(args) > 0 {
			a = args[0]
		}
		return fn(a)
	case func(...any) error:
		return fn(args...)
	case []any:
		var first error
		for _, each := range fn {
			if err := InvokeHandler(each, args...); err != nil && first == nil {
				first = err
			}
		}
		return first
	default:
		return errors.Errorf("unsupported handler type %T", h)
	}
	return nil
}

// Warn reports a runtime warning for inst.
func Warn(inst *Instance, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	trace := ""
	app := emptyAppContext()
	if inst != nil {
		trace = inst.Trace()
		app = inst.AppContext
	}
	if h := app.Config.WarnHandler; h != nil {
		reactive.PauseTracking()
		CallWithErrorHandling(func() { h(msg, inst, trace) }, inst, errors.AppWarnHandler)
		reactive.ResetTracking()
		return
	}
	attrs := []any{}
	if trace != "" {
		attrs = append(attrs, slog.String("component", trace))
	}
	app.Logger.Warn(msg, attrs...)
}

// CallWithAsyncErrorHandling invokes a handler value (see InvokeHandler),
// reporting both panics and returned errors.
func CallWithAsyncErrorHandling(h any, inst *Instance, code errors.ErrorCode, args ...any) {
	CallWithErrorHandlingErr(func() error {
		return InvokeHandler(h, args...)
	}, inst, code)
}
