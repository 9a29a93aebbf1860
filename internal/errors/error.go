package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// ErrorCode classifies where an error was caught.
type ErrorCode int

const (
	SetupFunction ErrorCode = iota
	RenderFunction
	WatchGetter
	WatchCallback
	WatchCleanup
	NativeEventHandler
	ComponentEventHandler
	VNodeHook
	DirectiveHook
	TransitionHook
	AppErrorHandler
	AppWarnHandler
	FunctionRef
	AsyncSetup
	Scheduler
	ComponentUpdate
	AppUnmountCleanup
	RecursiveUpdate

	// Lifecycle hooks.
	BeforeMountHook
	MountedHook
	BeforeUpdateHook
	UpdatedHook
	BeforeUnmountHook
	UnmountedHook
	ActivatedHook
	DeactivatedHook
	ErrorCapturedHook
)

// String returns the registered short name of the code.
func (c ErrorCode) String() string {
	if t, ok := registry[c]; ok {
		return t.Name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Category groups error codes by the kind of call site.
type Category string

const (
	CategoryUser      Category = "user"
	CategoryLifecycle Category = "lifecycle"
	CategoryScheduler Category = "scheduler"
	CategoryApp       Category = "app"
)

// RuntimeError is an error caught by the runtime at a known call site.
type RuntimeError struct {
	// Code identifies the call site.
	Code ErrorCode

	// Category is derived from Code.
	Category Category

	// Message is a short description of the call site.
	Message string

	// Hint suggests a fix, if one is known.
	Hint string

	// Component is a human readable component trace ("<App> > <Child>").
	Component string

	// Wrapped is the underlying error.
	Wrapped error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Wrapped == nil {
		return e.Message
	}
	return e.Message + ": " + e.Wrapped.Error()
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RuntimeError) Unwrap() error {
	return e.Wrapped
}

// WithComponent records the component trace.
func (e *RuntimeError) WithComponent(trace string) *RuntimeError {
	e.Component = trace
	return e
}

// WithHint adds a fix suggestion.
func (e *RuntimeError) WithHint(h string) *RuntimeError {
	e.Hint = h
	return e
}

// New creates a RuntimeError from a registered code.
func New(code ErrorCode) *RuntimeError {
	t, ok := registry[code]
	if !ok {
		return &RuntimeError{Code: code, Message: "unknown error"}
	}
	return &RuntimeError{
		Code:     code,
		Category: t.Category,
		Message:  t.Message,
		Hint:     t.Hint,
	}
}

// Wrap classifies err under code. An error that is already a RuntimeError
// keeps its original classification.
func Wrap(err error, code ErrorCode) *RuntimeError {
	if err == nil {
		return nil
	}
	var re *RuntimeError
	if crdb.As(err, &re) {
		return re
	}
	e := New(code)
	e.Wrapped = err
	return e
}

// FromPanic converts a recovered panic value into an error with a stack.
func FromPanic(r any) error {
	switch v := r.(type) {
	case nil:
		return nil
	case error:
		return crdb.WithStack(v)
	default:
		return crdb.Newf("panic: %v", v)
	}
}

// Errorf creates a plain error with a stack trace.
func Errorf(format string, args ...any) error {
	return crdb.Newf(format, args...)
}

// CodeOf returns the code of the first RuntimeError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var re *RuntimeError
	if crdb.As(err, &re) {
		return re.Code, true
	}
	return 0, false
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return crdb.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return crdb.As(err, target) }
