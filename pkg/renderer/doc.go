// Package renderer reconciles vnode trees against a host.
//
// The renderer is host-agnostic: every tree mutation goes through HostOps.
// Patching is driven by vnode kind. Elements patch props and children;
// keyed child lists use a five-phase diff with a longest increasing
// subsequence to keep moves minimal; components re-render through a
// scheduled render effect.
//
// Built-ins live here because they need renderer internals: Teleport and
// Suspense are vnode kinds, KeepAlive and Transition are components.
package renderer
