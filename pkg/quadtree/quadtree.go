// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package quadtree

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/fmstephe/spatial-system/pkg/geom"
	"github.com/fmstephe/spatial-system/pkg/spatial"
)

// While every point seen coincides with the aligned root centre the root
// radius is this sentinel. It is a power of two, like every radius in the
// tree.
var initialRadius = math.Ldexp(1, 100)

// A Tree is a hypercube region quadtree over points with float64
// coordinates. Each inner node divides its box into 2^dims quadrants.
//
// The tree is a lenient map, inserting a key twice stores two entries
// rather than replacing, so it serves as both a map and a multimap. The
// map style operations act on an arbitrary one of the duplicates.
//
// The tree retains the caller's coordinate slices. Mutating a slice after
// insertion invalidates the tree. The tree is a single writer data
// structure, mutating it while an iterator over it is live leaves that
// iterator undefined.
type Tree[V any] struct {
	dims int
	size int
	root *node[V]
}

// Returns a new empty Tree indexing points with dims coordinates. An inner
// node allocates 2^dims slots, so dimensionality is capped at 16.
func New[V any](dims int) *Tree[V] {
	if dims < 1 || dims > 16 {
		panic(fmt.Sprintf("quadtree: cannot build a tree with dimensionality %d", dims))
	}
	return &Tree[V]{
		dims: dims,
	}
}

// Returns the number of coordinates indexed per point
func (t *Tree[V]) Dims() int {
	return t.dims
}

// Returns the number of entries in the tree
func (t *Tree[V]) Size() int {
	return t.size
}

// Removes all entries from the tree
func (t *Tree[V]) Clear() {
	t.root = nil
	t.size = 0
}

// Inserts v at p. Duplicate coordinates are permitted and create an
// additional entry. Fails if len(p) does not match the tree dimensionality.
func (t *Tree[V]) Insert(p []float64, v V) error {
	if len(p) != t.dims {
		return errors.Errorf("quadtree: cannot insert %d dimensional point into %d dimensional tree", len(p), t.dims)
	}
	e := &entry[V]{point: p, value: v}

	if t.root == nil {
		// The first insert aligns the root centre to powers of two,
		// so that halving the radius on the way down stays exact
		centre := make([]float64, t.dims)
		for j := range centre {
			centre[j] = geom.FloorPow2(p[j])
		}
		t.root = &node[V]{centre: centre, radius: initialRadius}
		t.root.entries = append(t.root.entries, e)
		t.size++
		return nil
	}

	if t.root.radius == initialRadius {
		t.fixRadius(p)
		if t.root.radius == initialRadius {
			// Every point so far coincides with the centre, keep them flat in the
			// root leaf rather than splitting under the sentinel
			t.root.entries = append(t.root.entries, e)
			t.size++
			return nil
		}
	}
	t.ensureCoverage(p)
	t.root.insert(e, 0, t.dims)
	t.size++
	return nil
}

// While the radius is the sentinel every entry sits in the root leaf. Once
// some coordinate seen differs from the root centre the real radius is
// computed from the extent of everything seen so far.
func (t *Tree[V]) fixRadius(p []float64) {
	maxDelta := 0.0
	for j := range p {
		maxDelta = math.Max(maxDelta, math.Abs(p[j]-t.root.centre[j]))
	}
	for _, e := range t.root.entries {
		for j := range e.point {
			maxDelta = math.Max(maxDelta, math.Abs(e.point[j]-t.root.centre[j]))
		}
	}
	if maxDelta == 0 {
		// Everything still coincides with the centre, keep waiting
		return
	}
	t.root.radius = geom.CeilPow2(maxDelta * 1.1)
}

// Lifts the root until its box contains p. Each lift doubles the radius
// and installs the old root as one quadrant of the new root, on the side
// facing away from p.
func (t *Tree[V]) ensureCoverage(p []float64) {
	for !geom.FitsIntoNode(p, t.root.centre, t.root.radius) {
		old := t.root
		centre := make([]float64, t.dims)
		for j := range centre {
			if p[j] >= old.centre[j] {
				centre[j] = old.centre[j] + old.radius
			} else {
				centre[j] = old.centre[j] - old.radius
			}
		}
		lifted := &node[V]{centre: centre, radius: old.radius * 2}
		lifted.subs = make([]any, 1<<t.dims)
		lifted.subs[slotOf(old.centre, centre)] = old
		t.root = lifted
	}
}

// Returns the value stored at exactly p. If several entries share p an
// arbitrary one is returned.
func (t *Tree[V]) QueryExact(p []float64) (V, bool) {
	t.checkDims(p)
	if t.root == nil {
		var zero V
		return zero, false
	}
	e, ok := t.root.find(p, nil)
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Indicates whether any entry at p has a value satisfying pred. A nil pred
// matches any value.
func (t *Tree[V]) Contains(p []float64, pred func(V) bool) bool {
	t.checkDims(p)
	if t.root == nil {
		return false
	}
	_, ok := t.root.find(p, pred)
	return ok
}

// Removes one entry at p, returning its value
func (t *Tree[V]) Remove(p []float64) (V, bool) {
	t.checkDims(p)
	return t.remove(p, nil)
}

// Removes one entry at p whose value satisfies pred
func (t *Tree[V]) RemoveIf(p []float64, pred func(V) bool) bool {
	t.checkDims(p)
	_, ok := t.remove(p, pred)
	return ok
}

func (t *Tree[V]) remove(p []float64, pred func(V) bool) (V, bool) {
	if t.root == nil {
		var zero V
		return zero, false
	}
	e, ok := t.root.remove(p, pred, t.dims)
	if !ok {
		var zero V
		return zero, false
	}
	t.size--
	return e.value, true
}

// Moves one entry from oldP to newP, returning the moved value. When newP
// still falls inside the box of the node holding the entry the move is
// local, otherwise the nearest covering ancestor reinserts it.
func (t *Tree[V]) Update(oldP, newP []float64) (V, bool) {
	t.checkDims(oldP)
	t.checkDims(newP)
	return t.update(oldP, newP, nil)
}

// Moves one entry from oldP to newP whose value satisfies pred
func (t *Tree[V]) UpdateIf(oldP, newP []float64, pred func(V) bool) bool {
	t.checkDims(oldP)
	t.checkDims(newP)
	_, ok := t.update(oldP, newP, pred)
	return ok
}

func (t *Tree[V]) update(oldP, newP []float64, pred func(V) bool) (V, bool) {
	if t.root == nil {
		var zero V
		return zero, false
	}
	e, found, done := t.root.update(oldP, newP, pred, 0, t.dims)
	if !found {
		var zero V
		return zero, false
	}
	if !done {
		// Not even the root box contains newP, lift and reinsert
		e.point = newP
		t.ensureCoverage(newP)
		t.root.insert(e, 0, t.dims)
	}
	return e.value, true
}

// Applies fun to every entry lying inside the closed box [min, max], until
// fun returns false
func (t *Tree[V]) Survey(min, max []float64, fun func(p []float64, v V) bool) {
	t.checkDims(min)
	t.checkDims(max)
	if t.root == nil {
		return
	}
	t.root.survey(min, max, fun)
}

func (t *Tree[V]) checkDims(p []float64) {
	if len(p) != t.dims {
		panic(fmt.Sprintf("quadtree: %d dimensional point passed to %d dimensional tree", len(p), t.dims))
	}
}

var _ spatial.PointMap[int] = &Tree[int]{}
var _ spatial.PointMultimap[int] = &Tree[int]{}
