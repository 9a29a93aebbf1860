package renderer

import (
	"github.com/cockroachdb/swiss"

	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// patchChildren reconciles the children of n1 into those of n2. Children
// are either text or an array; each combination has its own path.
func (r *Renderer) patchChildren(n1, n2 *vdom.VNode, container, anchor vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	var c1 []*vdom.VNode
	prevShape := vdom.ChildNone
	prevText := ""
	if n1 != nil {
		c1, prevShape, prevText = n1.Children, n1.Shape, n1.Text
	}
	c2 := n2.Children

	if n2.PatchFlag > 0 {
		switch {
		case n2.PatchFlag.Has(vdom.PatchKeyedFragment):
			r.patchKeyedChildren(c1, c2, container, anchor, parent, s, ns, optimized)
			return
		case n2.PatchFlag.Has(vdom.PatchUnkeyedFragment):
			r.patchUnkeyedChildren(c1, c2, container, anchor, parent, s, ns, optimized)
			return
		}
	}

	switch {
	case n2.Shape == vdom.ChildText:
		if prevShape == vdom.ChildArray {
			r.unmountChildren(c1, parent, s, false, false)
		}
		if prevShape != vdom.ChildText || prevText != n2.Text {
			r.ops.SetElementText(container, n2.Text)
		}
	case prevShape == vdom.ChildArray:
		if n2.Shape == vdom.ChildArray {
			r.patchKeyedChildren(c1, c2, container, anchor, parent, s, ns, optimized)
		} else {
			r.unmountChildren(c1, parent, s, true, false)
		}
	default:
		if prevShape == vdom.ChildText {
			r.ops.SetElementText(container, "")
		}
		if n2.Shape == vdom.ChildArray {
			r.mountChildren(c2, container, anchor, parent, s, ns, optimized)
		}
	}
}

// patchUnkeyedChildren patches children pairwise by index.
func (r *Renderer) patchUnkeyedChildren(c1, c2 []*vdom.VNode, container, anchor vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	common := min(len(c1), len(c2))
	for i := 0; i < common; i++ {
		next := vdom.Normalize(c2[i])
		c2[i] = next
		r.patch(c1[i], next, container, nil, parent, s, ns, optimized)
	}
	if len(c1) > len(c2) {
		r.unmountChildren(c1[common:], parent, s, true, false)
	} else {
		r.mountChildren(c2[common:], container, anchor, parent, s, ns, optimized)
	}
}

// patchKeyedChildren is the full keyed diff. It trims the common prefix
// and suffix, then matches the middle by key (or by type for unkeyed
// nodes) and moves only nodes outside a longest increasing subsequence of
// old positions.
func (r *Renderer) patchKeyedChildren(c1, c2 []*vdom.VNode, container, parentAnchor vdom.Node, parent *component.Instance, s *suspenseBoundary, ns string, optimized bool) {
	i := 0
	l2 := len(c2)
	e1 := len(c1) - 1
	e2 := l2 - 1

	norm := func(k int) *vdom.VNode {
		v := vdom.Normalize(c2[k])
		c2[k] = v
		return v
	}

	// 1. common prefix
	for i <= e1 && i <= e2 {
		n1, n2 := c1[i], norm(i)
		if !vdom.IsSameVNodeType(n1, n2) {
			break
		}
		r.patch(n1, n2, container, nil, parent, s, ns, optimized)
		i++
	}

	// 2. common suffix
	for i <= e1 && i <= e2 {
		n1, n2 := c1[e1], norm(e2)
		if !vdom.IsSameVNodeType(n1, n2) {
			break
		}
		r.patch(n1, n2, container, nil, parent, s, ns, optimized)
		e1--
		e2--
	}

	switch {
	// 3. only additions left
	case i > e1:
		if i > e2 {
			return
		}
		anchor := parentAnchor
		if e2+1 < l2 {
			anchor = c2[e2+1].El
		}
		for ; i <= e2; i++ {
			r.patch(nil, norm(i), container, anchor, parent, s, ns, optimized)
		}

	// 4. only removals left
	case i > e2:
		for ; i <= e1; i++ {
			r.unmount(c1[i], parent, s, true, false)
		}

	// 5. unknown sequence
	default:
		s1, s2 := i, i

		var keyToNewIndex swiss.Map[string, int]
		keyToNewIndex.Init(e2 - s2 + 1)
		for k := s2; k <= e2; k++ {
			next := norm(k)
			if next.Key == "" {
				continue
			}
			if _, dup := keyToNewIndex.Get(next.Key); dup && r.dev(parent) {
				component.Warn(parent, "duplicate keys found during update: %q; make sure keys are unique", next.Key)
			}
			keyToNewIndex.Put(next.Key, k)
		}

		patched := 0
		toBePatched := e2 - s2 + 1
		moved := false
		maxNewIndexSoFar := 0
		// newIndexToOldIndex[k] is 1 + the old index of c2[s2+k], or 0
		// if the node is new.
		newIndexToOldIndex := make([]int, toBePatched)

		for k := s1; k <= e1; k++ {
			prev := c1[k]
			if patched >= toBePatched {
				r.unmount(prev, parent, s, true, false)
				continue
			}
			newIndex := -1
			if prev.Key != "" {
				if idx, ok := keyToNewIndex.Get(prev.Key); ok {
					newIndex = idx
				}
			} else {
				for j := s2; j <= e2; j++ {
					if newIndexToOldIndex[j-s2] == 0 && vdom.IsSameVNodeType(prev, c2[j]) {
						newIndex = j
						break
					}
				}
			}
			if newIndex < 0 {
				r.unmount(prev, parent, s, true, false)
				continue
			}
			newIndexToOldIndex[newIndex-s2] = k + 1
			if newIndex >= maxNewIndexSoFar {
				maxNewIndexSoFar = newIndex
			} else {
				moved = true
			}
			r.patch(prev, c2[newIndex], container, nil, parent, s, ns, optimized)
			patched++
		}

		var seq []int
		if moved {
			seq = GetSequence(newIndexToOldIndex)
		}
		j := len(seq) - 1
		for k := toBePatched - 1; k >= 0; k-- {
			nextIndex := s2 + k
			next := c2[nextIndex]
			anchor := parentAnchor
			if nextIndex+1 < l2 {
				anchor = c2[nextIndex+1].El
			}
			switch {
			case newIndexToOldIndex[k] == 0:
				r.patch(nil, next, container, anchor, parent, s, ns, optimized)
			case moved:
				if j < 0 || k != seq[j] {
					r.move(next, container, anchor, moveReorder, s)
				} else {
					j--
				}
			}
		}
	}
}

func (r *Renderer) unmountChildren(children []*vdom.VNode, parent *component.Instance, s *suspenseBoundary, doRemove, optimized bool) {
	for _, c := range children {
		r.unmount(c, parent, s, doRemove, optimized)
	}
}
