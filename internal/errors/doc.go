// Package errors defines the runtime error taxonomy used by vrt.
//
// Errors raised by user code (setup functions, render functions, lifecycle
// hooks, watchers, event handlers, directive hooks) are classified by the
// call site that caught them, not by their concrete type. Every caught error
// is funneled through a single handler together with its ErrorCode; the
// handler decides whether to propagate, log, or swallow it.
//
// # Error Codes
//
// Each ErrorCode maps to a registered template:
//   - a short message describing the call site
//   - a category (user code, lifecycle, scheduler, app)
//   - an optional hint
//
// # Usage
//
//	err := errors.Wrap(recovered, errors.RenderFunction).
//	    WithComponent("<TodoList>")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR render function: index out of range
//	//
//	//   in <TodoList>
package errors
