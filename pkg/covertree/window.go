// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package covertree

import (
	"math"

	"github.com/fmstephe/spatial-system/pkg/geom"
)

// A WindowIter lazily yields the entries lying inside a closed axis
// aligned box. Entries are produced in an unspecified order.
//
// The cover tree has no axis aligned structure to walk, instead a subtree
// is skipped when its maxDist ball cannot reach the query box. The
// distance from a node to the box is measured with the tree's own
// distance function, which for the built-in metrics is minimised at the
// clamped point.
//
// The iterator owns a traversal stack which Reset reuses. The iterator is
// only valid while the tree is unmutated.
type WindowIter[V any] struct {
	tree  *Tree[V]
	min   []float64
	max   []float64
	buf   []float64
	stack []*node[V]
	cur   *node[V]
}

// Returns an iterator over all entries inside the closed box [min, max]
func (t *Tree[V]) Query(min, max []float64) *WindowIter[V] {
	t.checkDims(min)
	t.checkDims(max)
	it := &WindowIter[V]{
		tree: t,
		min:  make([]float64, t.dims),
		max:  make([]float64, t.dims),
		buf:  make([]float64, t.dims),
	}
	it.Reset(min, max)
	return it
}

// Returns an iterator over every entry in the tree
func (t *Tree[V]) Iterator() *WindowIter[V] {
	min := make([]float64, t.dims)
	max := make([]float64, t.dims)
	for i := range min {
		min[i] = math.Inf(-1)
		max[i] = math.Inf(1)
	}
	return t.Query(min, max)
}

// Restarts the iterator over a new window, reusing the traversal stack
func (it *WindowIter[V]) Reset(min, max []float64) {
	it.tree.checkDims(min)
	it.tree.checkDims(max)
	copy(it.min, min)
	copy(it.max, max)
	it.stack = it.stack[:0]
	it.cur = nil

	for i := range min {
		if min[i] > max[i] {
			return
		}
	}
	if it.tree.root != nil {
		it.stack = append(it.stack, it.tree.root)
	}
}

// Advances to the next entry inside the window, returning false when the
// query is exhausted
func (it *WindowIter[V]) Next() bool {
	for len(it.stack) > 0 {
		n := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		for _, q := range n.children {
			boxDist := geom.DistToEdgeOfBox(q.point, it.min, it.max, it.tree.distFn, it.buf)
			if boxDist <= it.tree.nodeMaxDist(q) {
				it.stack = append(it.stack, q)
			}
		}
		if geom.PointInBox(n.point, it.min, it.max) {
			it.cur = n
			return true
		}
	}
	it.cur = nil
	return false
}

// Returns the coordinates of the current entry. The slice is shared with
// the tree and must not be mutated.
func (it *WindowIter[V]) Point() []float64 {
	return it.cur.point
}

// Returns the value of the current entry
func (it *WindowIter[V]) Value() V {
	return it.cur.value
}
