package vdom

import (
	"sync"

	"github.com/petermattis/goid"
)

// renderState is the per-goroutine state used while render functions build
// vnodes.
type renderState struct {
	// blockStack holds the open blocks. A nil entry is a block opened with
	// tracking disabled.
	blockStack []*block
	current    *block

	// tracking > 0 enables block collection. SetBlockTracking adjusts it.
	tracking int

	// instance is the component whose render function is running.
	instance Instance
}

type block struct {
	nodes []*VNode
}

var renderStates sync.Map // int64 -> *renderState

func getRenderState() *renderState {
	gid := goid.Get()
	if st, ok := renderStates.Load(gid); ok {
		return st.(*renderState)
	}
	st := &renderState{tracking: 1}
	renderStates.Store(gid, st)
	return st
}

// OpenBlock starts collecting dynamic nodes. Pass true to open a block whose
// descendants are not collected (for example a v-for fragment whose
// children change shape).
func OpenBlock(disableTracking ...bool) {
	st := getRenderState()
	var b *block
	if len(disableTracking) == 0 || !disableTracking[0] {
		b = &block{nodes: []*VNode{}}
	}
	st.blockStack = append(st.blockStack, b)
	st.current = b
}

func closeBlock(st *renderState) {
	n := len(st.blockStack)
	if n == 0 {
		return
	}
	st.blockStack = st.blockStack[:n-1]
	st.current = nil
	if n > 1 {
		st.current = st.blockStack[n-2]
	}
}

// SetBlockTracking adjusts block tracking. Cached subtrees call it with -1
// before building and +1 after, so their nodes are not collected.
func SetBlockTracking(delta int) {
	getRenderState().tracking += delta
}

// CreateBlock closes the innermost open block and attaches the collected
// dynamic nodes to v, which becomes a block root. The block root itself is
// tracked by the enclosing block.
func CreateBlock(v *VNode) *VNode {
	st := getRenderState()
	cur := st.current
	// v was created inside its own block; it must not be its own child.
	if cur != nil && len(cur.nodes) > 0 && cur.nodes[len(cur.nodes)-1] == v {
		cur.nodes = cur.nodes[:len(cur.nodes)-1]
	}
	if st.tracking > 0 {
		if cur != nil {
			v.DynamicChildren = cur.nodes
		} else {
			v.DynamicChildren = []*VNode{}
		}
	}
	closeBlock(st)
	if st.tracking > 0 && st.current != nil {
		st.current.nodes = append(st.current.nodes, v)
	}
	return v
}

// CreateElementBlock builds an element and turns it into a block root.
// Call OpenBlock before evaluating the children.
func CreateElementBlock(tag string, props Props, children any, flag PatchFlags, dynamicProps []string) *VNode {
	v := newElement(tag, props, children, flag, dynamicProps)
	return CreateBlock(v)
}

// track registers v with the open block if it is dynamic.
func track(v *VNode) *VNode {
	st := getRenderState()
	if st.tracking <= 0 || st.current == nil {
		return v
	}
	if (v.PatchFlag > 0 || v.Kind == KindComponent) && v.PatchFlag != PatchNeedHydration {
		st.current.nodes = append(st.current.nodes, v)
	}
	return v
}

// RenderingInstance returns the component whose render function is running
// on this goroutine.
func RenderingInstance() Instance {
	return getRenderState().instance
}

// SetRenderingInstance makes inst the rendering instance and returns the
// previous one, which the caller must restore.
func SetRenderingInstance(inst Instance) Instance {
	st := getRenderState()
	prev := st.instance
	st.instance = inst
	return prev
}

// ResetBlocks discards any blocks left open by a render function that
// panicked.
func ResetBlocks(depth int) {
	st := getRenderState()
	for len(st.blockStack) > depth {
		closeBlock(st)
	}
}

// BlockDepth returns the number of open blocks.
func BlockDepth() int {
	return len(getRenderState().blockStack)
}
