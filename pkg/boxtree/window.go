// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package boxtree

import (
	"math"

	"github.com/fmstephe/spatial-system/pkg/geom"
)

// A traversal frame for one node on the iterator stack. Inner nodes are
// walked with the same hypercube slot masking as the point quadtree, plus
// a pass over the straddle list.
type frame[V any] struct {
	n           *node[V]
	maskLo      uint64
	maskHi      uint64
	pos         uint64
	started     bool
	entryIdx    int
	straddleIdx int
	slotsDone   bool
}

// A WindowIter lazily yields the entries whose boxes intersect a closed
// axis aligned query box. Entries are produced in an unspecified order.
//
// The iterator owns a traversal stack which Reset reuses, so repeated
// queries on one iterator allocate nothing in the steady state. The
// iterator is only valid while the tree is unmutated.
type WindowIter[V any] struct {
	tree  *Tree[V]
	min   []float64
	max   []float64
	stack []frame[V]
	cur   *entry[V]
}

// Returns an iterator over all entries intersecting the closed box
// [min, max]
func (t *Tree[V]) Query(min, max []float64) *WindowIter[V] {
	t.checkDims(min)
	t.checkDims(max)
	it := &WindowIter[V]{
		tree: t,
		min:  make([]float64, t.dims),
		max:  make([]float64, t.dims),
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

	// An inverted window is empty by definition
	for i := range min {
		if min[i] > max[i] {
			return
		}
	}
	if it.tree.root != nil {
		it.push(it.tree.root)
	}
}

func (it *WindowIter[V]) push(n *node[V]) {
	f := frame[V]{n: n}
	if !n.isLeaf() {
		for j := range n.centre {
			if it.min[j] >= n.centre[j] {
				f.maskLo |= uint64(1) << j
			}
			if it.max[j] >= n.centre[j] {
				f.maskHi |= uint64(1) << j
			}
		}
	}
	it.stack = append(it.stack, f)
}

// The saturating hypercube increment, see the point quadtree for the
// details
func incPos(pos, maskLo, maskHi uint64) uint64 {
	r := pos | ^maskHi
	r++
	return (r & maskHi) | maskLo
}

func (it *WindowIter[V]) overlapsQuery(e *entry[V]) bool {
	return geom.Overlaps(e.min, e.max, it.min, it.max)
}

// Advances to the next entry intersecting the window, returning false when
// the query is exhausted
func (it *WindowIter[V]) Next() bool {
	for len(it.stack) > 0 {
		f := &it.stack[len(it.stack)-1]

		if f.n.isLeaf() {
			for f.entryIdx < len(f.n.entries) {
				e := f.n.entries[f.entryIdx]
				f.entryIdx++
				if it.overlapsQuery(e) {
					it.cur = e
					return true
				}
			}
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}

		// The straddle list is checked unconditionally, straddling
		// boxes can reach into any quadrant
		for f.straddleIdx < len(f.n.straddle) {
			e := f.n.straddle[f.straddleIdx]
			f.straddleIdx++
			if it.overlapsQuery(e) {
				it.cur = e
				return true
			}
		}

		if f.slotsDone {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}

		descended := false
		for {
			if !f.started {
				f.pos = f.maskLo
				f.started = true
			} else {
				next := incPos(f.pos, f.maskLo, f.maskHi)
				if next <= f.pos {
					f.slotsDone = true
					it.stack = it.stack[:len(it.stack)-1]
					break
				}
				f.pos = next
			}

			switch s := f.n.subs[f.pos].(type) {
			case nil:
			case *entry[V]:
				if it.overlapsQuery(s) {
					it.cur = s
					return true
				}
			case *node[V]:
				it.push(s)
				descended = true
			}
			if descended {
				break
			}
		}
	}
	it.cur = nil
	return false
}

// Returns the corners of the current entry's box. The slices are shared
// with the tree and must not be mutated.
func (it *WindowIter[V]) Box() ([]float64, []float64) {
	return it.cur.min, it.cur.max
}

// Returns the value of the current entry
func (it *WindowIter[V]) Value() V {
	return it.cur.value
}
