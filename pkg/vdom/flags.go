package vdom

import "strings"

// PatchFlags are compiler hints describing which parts of a node are
// dynamic. Positive values are bit flags; CACHED and BAIL are special
// negative values.
type PatchFlags int32

const (
	// PatchText marks dynamic text children.
	PatchText PatchFlags = 1 << iota
	// PatchClass marks a dynamic class binding.
	PatchClass
	// PatchStyle marks a dynamic style binding.
	PatchStyle
	// PatchProps marks dynamic props other than class and style. The names
	// are listed in DynamicProps.
	PatchProps
	// PatchFullProps marks props with dynamic keys; a full diff is needed.
	PatchFullProps
	// PatchNeedHydration marks elements with listeners that must be
	// attached during hydration.
	PatchNeedHydration
	// PatchStableFragment marks a fragment whose children never change order.
	PatchStableFragment
	// PatchKeyedFragment marks a fragment with keyed (or partially keyed) children.
	PatchKeyedFragment
	// PatchUnkeyedFragment marks a fragment with unkeyed children.
	PatchUnkeyedFragment
	// PatchNeedPatch marks nodes that only need non-props patching (refs, directives).
	PatchNeedPatch
	// PatchDynamicSlots marks components with dynamic slots.
	PatchDynamicSlots
	// PatchDevRootFragment marks a fragment created only because of
	// root-level comments.
	PatchDevRootFragment
)

const (
	// PatchCached marks hoisted static content that never needs patching.
	PatchCached PatchFlags = -1
	// PatchBail disables every fast path for the node.
	PatchBail PatchFlags = -2
)

var patchFlagNames = []string{
	"TEXT", "CLASS", "STYLE", "PROPS", "FULL_PROPS", "NEED_HYDRATION",
	"STABLE_FRAGMENT", "KEYED_FRAGMENT", "UNKEYED_FRAGMENT", "NEED_PATCH",
	"DYNAMIC_SLOTS", "DEV_ROOT_FRAGMENT",
}

// Has reports whether all bits of f are set. It is false for the negative
// special values.
func (p PatchFlags) Has(f PatchFlags) bool {
	return p > 0 && p&f == f
}

// String returns the flag names joined with "|".
func (p PatchFlags) String() string {
	switch {
	case p == PatchCached:
		return "CACHED"
	case p == PatchBail:
		return "BAIL"
	case p == 0:
		return "0"
	}
	var names []string
	for i, name := range patchFlagNames {
		if p&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// ChildShape describes what Children holds.
type ChildShape uint8

const (
	ChildNone ChildShape = iota
	// ChildText means the element's children are the string in Text.
	ChildText
	// ChildArray means the children are the nodes in Children.
	ChildArray
	// ChildSlots means the component's children are the functions in Slots.
	ChildSlots
)

// NodeFlags carry renderer state on a vnode.
type NodeFlags uint8

const (
	// ShouldKeepAlive asks the renderer to deactivate rather than unmount
	// the component.
	ShouldKeepAlive NodeFlags = 1 << iota
	// KeptAlive marks a component vnode whose instance is cached and must
	// be activated rather than mounted.
	KeptAlive
	// CompiledSlots marks component children produced by a compiler with
	// stable slot shapes.
	CompiledSlots
)
