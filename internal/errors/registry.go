package errors

// Template defines a registered error code.
type Template struct {
	Name     string
	Category Category
	Message  string
	Hint     string
}

// registry maps error codes to their templates.
var registry = map[ErrorCode]Template{
	// ============================================
	// User code
	// ============================================

	SetupFunction: {
		Name:     "setup_function",
		Category: CategoryUser,
		Message:  "setup function",
	},
	RenderFunction: {
		Name:     "render_function",
		Category: CategoryUser,
		Message:  "render function",
		Hint:     "The component renders an empty comment until its next successful render.",
	},
	WatchGetter: {
		Name:     "watch_getter",
		Category: CategoryUser,
		Message:  "watcher getter",
	},
	WatchCallback: {
		Name:     "watch_callback",
		Category: CategoryUser,
		Message:  "watcher callback",
	},
	WatchCleanup: {
		Name:     "watch_cleanup",
		Category: CategoryUser,
		Message:  "watcher cleanup function",
	},
	NativeEventHandler: {
		Name:     "native_event_handler",
		Category: CategoryUser,
		Message:  "native event handler",
	},
	ComponentEventHandler: {
		Name:     "component_event_handler",
		Category: CategoryUser,
		Message:  "component event handler",
	},
	VNodeHook: {
		Name:     "vnode_hook",
		Category: CategoryUser,
		Message:  "vnode hook",
	},
	DirectiveHook: {
		Name:     "directive_hook",
		Category: CategoryUser,
		Message:  "directive hook",
	},
	TransitionHook: {
		Name:     "transition_hook",
		Category: CategoryUser,
		Message:  "transition hook",
	},
	FunctionRef: {
		Name:     "function_ref",
		Category: CategoryUser,
		Message:  "ref function",
	},
	AsyncSetup: {
		Name:     "async_setup",
		Category: CategoryUser,
		Message:  "async setup",
		Hint:     "Wrap components with async setup in a Suspense boundary.",
	},

	// ============================================
	// App
	// ============================================

	AppErrorHandler: {
		Name:     "app_error_handler",
		Category: CategoryApp,
		Message:  "app error handler",
	},
	AppWarnHandler: {
		Name:     "app_warn_handler",
		Category: CategoryApp,
		Message:  "app warn handler",
	},
	AppUnmountCleanup: {
		Name:     "app_unmount_cleanup",
		Category: CategoryApp,
		Message:  "app unmount cleanup function",
	},

	// ============================================
	// Scheduler
	// ============================================

	Scheduler: {
		Name:     "scheduler",
		Category: CategoryScheduler,
		Message:  "scheduler flush",
	},
	ComponentUpdate: {
		Name:     "component_update",
		Category: CategoryScheduler,
		Message:  "component update",
	},
	RecursiveUpdate: {
		Name:     "recursive_update",
		Category: CategoryScheduler,
		Message:  "maximum recursive updates exceeded",
		Hint:     "A reactive effect is mutating its own dependencies. Check watchers and render functions that write state they also read.",
	},

	// ============================================
	// Lifecycle hooks
	// ============================================

	BeforeMountHook: {
		Name:     "beforeMount",
		Category: CategoryLifecycle,
		Message:  "beforeMount hook",
	},
	MountedHook: {
		Name:     "mounted",
		Category: CategoryLifecycle,
		Message:  "mounted hook",
	},
	BeforeUpdateHook: {
		Name:     "beforeUpdate",
		Category: CategoryLifecycle,
		Message:  "beforeUpdate hook",
	},
	UpdatedHook: {
		Name:     "updated",
		Category: CategoryLifecycle,
		Message:  "updated hook",
	},
	BeforeUnmountHook: {
		Name:     "beforeUnmount",
		Category: CategoryLifecycle,
		Message:  "beforeUnmount hook",
	},
	UnmountedHook: {
		Name:     "unmounted",
		Category: CategoryLifecycle,
		Message:  "unmounted hook",
	},
	ActivatedHook: {
		Name:     "activated",
		Category: CategoryLifecycle,
		Message:  "activated hook",
	},
	DeactivatedHook: {
		Name:     "deactivated",
		Category: CategoryLifecycle,
		Message:  "deactivated hook",
	},
	ErrorCapturedHook: {
		Name:     "errorCaptured",
		Category: CategoryLifecycle,
		Message:  "errorCaptured hook",
	},
}

// Lookup returns the template registered for code.
func Lookup(code ErrorCode) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
