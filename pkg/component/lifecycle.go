package component

import (
	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/scheduler"
)

// Hook identifies a lifecycle hook list.
type Hook uint8

const (
	HookBeforeMount Hook = iota
	HookMounted
	HookBeforeUpdate
	HookUpdated
	HookBeforeUnmount
	HookUnmounted
	HookActivated
	HookDeactivated
	hookCount
)

var hookNames = [hookCount]string{
	"beforeMount", "mounted", "beforeUpdate", "updated",
	"beforeUnmount", "unmounted", "activated", "deactivated",
}

var hookCodes = [hookCount]errors.ErrorCode{
	errors.BeforeMountHook, errors.MountedHook, errors.BeforeUpdateHook, errors.UpdatedHook,
	errors.BeforeUnmountHook, errors.UnmountedHook, errors.ActivatedHook, errors.DeactivatedHook,
}

func (h Hook) String() string {
	if h < hookCount {
		return hookNames[h]
	}
	return "unknown"
}

// Hooks returns the registered jobs for h.
func (i *Instance) Hooks(h Hook) []*scheduler.Job {
	return i.hooks[h]
}

// InvokeHooks runs the h hooks of i synchronously, in order. The Disposed
// flag only affects jobs sitting in the post flush queue.
func (i *Instance) InvokeHooks(h Hook) {
	for _, j := range i.hooks[h] {
		if err := j.Fn(); err != nil {
			HandleError(err, i, hookCodes[h])
		}
	}
}

// InvalidateMount disposes queued mounted and activated jobs so an instance
// unmounted or deactivated before the post flush never sees them.
func (i *Instance) InvalidateMount() {
	for _, h := range []Hook{HookMounted, HookActivated} {
		for _, j := range i.hooks[h] {
			j.Dispose()
		}
	}
}

// InjectHook registers fn on target. The wrapped job runs fn with target
// as the current instance and tracking paused.
func InjectHook(h Hook, fn func(), target *Instance, prepend bool) *scheduler.Job {
	if target == nil {
		Warn(nil, "%s hook registered outside of setup; there is no active instance to attach it to", h)
		return nil
	}
	job := &scheduler.Job{
		ID:    scheduler.NoID,
		Owner: target,
		Name:  h.String(),
	}
	code := hookCodes[h]
	job.Fn = func() error {
		reactive.PauseTracking()
		reset := SetCurrentInstance(target)
		defer func() {
			reset()
			reactive.ResetTracking()
		}()
		CallWithErrorHandling(fn, target, code)
		return nil
	}
	if prepend {
		target.hooks[h] = append([]*scheduler.Job{job}, target.hooks[h]...)
	} else {
		target.hooks[h] = append(target.hooks[h], job)
	}
	return job
}

func (i *Instance) removeHook(h Hook, job *scheduler.Job) {
	list := i.hooks[h]
	for k, j := range list {
		if j == job {
			i.hooks[h] = append(list[:k:k], list[k+1:]...)
			return
		}
	}
}

// OnBeforeMount registers fn on the current instance.
func OnBeforeMount(fn func()) { InjectHook(HookBeforeMount, fn, CurrentInstance(), false) }

// OnMounted registers fn to run after the instance is in the host tree.
func OnMounted(fn func()) { InjectHook(HookMounted, fn, CurrentInstance(), false) }

// OnBeforeUpdate registers fn on the current instance.
func OnBeforeUpdate(fn func()) { InjectHook(HookBeforeUpdate, fn, CurrentInstance(), false) }

// OnUpdated registers fn to run after each re-render is patched.
func OnUpdated(fn func()) { InjectHook(HookUpdated, fn, CurrentInstance(), false) }

// OnBeforeUnmount registers fn on the current instance.
func OnBeforeUnmount(fn func()) { InjectHook(HookBeforeUnmount, fn, CurrentInstance(), false) }

// OnUnmounted registers fn to run after the instance is torn down.
func OnUnmounted(fn func()) { InjectHook(HookUnmounted, fn, CurrentInstance(), false) }

// OnActivated registers fn to run when a kept-alive subtree is re-inserted.
func OnActivated(fn func()) { registerKeepAliveHook(HookActivated, fn, CurrentInstance()) }

// OnDeactivated registers fn to run when a kept-alive subtree is cached.
func OnDeactivated(fn func()) { registerKeepAliveHook(HookDeactivated, fn, CurrentInstance()) }

// OnErrorCaptured registers a hook for errors raised by descendants.
func OnErrorCaptured(fn ErrorCapturedHook) {
	inst := CurrentInstance()
	if inst == nil {
		Warn(nil, "errorCaptured hook registered outside of setup")
		return
	}
	inst.errorCaptured = append(inst.errorCaptured, fn)
}

// registerKeepAliveHook also injects the hook into every kept-alive
// ancestor root, so a nested component hears about the activation of the
// cached subtree it lives in.
func registerKeepAliveHook(h Hook, fn func(), target *Instance) {
	if target == nil {
		Warn(nil, "%s hook registered outside of setup", h)
		return
	}
	wrapped := func() {
		for cur := target; cur != nil; cur = cur.Parent {
			if cur.IsDeactivated {
				return
			}
		}
		fn()
	}
	InjectHook(h, wrapped, target, false)

	for cur := target.Parent; cur != nil && cur.Parent != nil; cur = cur.Parent {
		if IsKeepAlive(cur.Parent.VNode) {
			root := cur
			job := InjectHook(h, wrapped, root, true)
			InjectHook(HookUnmounted, func() { root.removeHook(h, job) }, target, false)
		}
	}
}
