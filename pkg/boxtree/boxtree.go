// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package boxtree

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/fmstephe/spatial-system/pkg/geom"
	"github.com/fmstephe/spatial-system/pkg/spatial"
)

// While every box corner seen coincides with the aligned root centre the
// root radius is this sentinel
var initialRadius = math.Ldexp(1, 100)

// A Tree is a hypercube region quadtree over axis aligned boxes with
// float64 coordinates. It shares its node schema with the point quadtree,
// with one addition, boxes which cross a node's centre plane cannot be
// pushed into a quadrant and are held in that node's straddle list.
//
// The tree is a lenient map, inserting a key twice stores two entries
// rather than replacing, so it serves as both a map and a multimap.
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

// Returns a new empty Tree indexing boxes with dims coordinates per
// corner. An inner node allocates 2^dims slots, so dimensionality is
// capped at 16.
func New[V any](dims int) *Tree[V] {
	if dims < 1 || dims > 16 {
		panic(fmt.Sprintf("boxtree: cannot build a tree with dimensionality %d", dims))
	}
	return &Tree[V]{
		dims: dims,
	}
}

// Returns the number of coordinates indexed per box corner
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

// Inserts v for the closed box [min, max]. Duplicate boxes are permitted
// and create an additional entry. Fails if the corner dimensionalities do
// not match the tree, or if min exceeds max on some axis.
func (t *Tree[V]) Insert(min, max []float64, v V) error {
	if len(min) != t.dims || len(max) != t.dims {
		return errors.Errorf("boxtree: cannot insert box with %d/%d dimensional corners into %d dimensional tree", len(min), len(max), t.dims)
	}
	for j := range min {
		if min[j] > max[j] {
			return errors.Errorf("boxtree: inverted box, min %v exceeds max %v on axis %d", min[j], max[j], j)
		}
	}
	e := &entry[V]{min: min, max: max, value: v}

	if t.root == nil {
		centre := make([]float64, t.dims)
		for j := range centre {
			centre[j] = geom.FloorPow2((min[j] + max[j]) / 2)
		}
		t.root = &node[V]{centre: centre, radius: initialRadius}
		t.root.entries = append(t.root.entries, e)
		t.size++
		return nil
	}

	if t.root.radius == initialRadius {
		t.fixRadius(min, max)
		if t.root.radius == initialRadius {
			t.root.entries = append(t.root.entries, e)
			t.size++
			return nil
		}
	}
	t.ensureCoverage(min, max)
	t.root.insert(e, 0, t.dims)
	t.size++
	return nil
}

// While the radius is the sentinel every entry sits in the root leaf. Once
// some corner seen differs from the root centre the real radius is
// computed from the extent of everything seen so far.
func (t *Tree[V]) fixRadius(min, max []float64) {
	maxDelta := 0.0
	observe := func(p []float64) {
		for j := range p {
			maxDelta = math.Max(maxDelta, math.Abs(p[j]-t.root.centre[j]))
		}
	}
	observe(min)
	observe(max)
	for _, e := range t.root.entries {
		observe(e.min)
		observe(e.max)
	}
	if maxDelta == 0 {
		return
	}
	t.root.radius = geom.CeilPow2(maxDelta * 1.1)
}

// Lifts the root until its box contains [min, max]. Each lift doubles the
// radius and installs the old root as one quadrant of the new root.
func (t *Tree[V]) ensureCoverage(min, max []float64) {
	for !geom.BoxFitsIntoNode(min, max, t.root.centre, t.root.radius) {
		old := t.root
		centre := make([]float64, t.dims)
		for j := range centre {
			// Expand toward the violated edge. A lift leaves the
			// opposite edge where it was, so a box outgrowing the
			// root on both sides is covered by successive lifts,
			// upward until its upper edge fits and then downward.
			switch {
			case max[j] >= old.centre[j]+old.radius:
				centre[j] = old.centre[j] + old.radius
			case min[j] < old.centre[j]-old.radius:
				centre[j] = old.centre[j] - old.radius
			case min[j] >= old.centre[j]:
				centre[j] = old.centre[j] + old.radius
			default:
				centre[j] = old.centre[j] - old.radius
			}
		}
		lifted := &node[V]{centre: centre, radius: old.radius * 2}
		lifted.subs = make([]any, 1<<t.dims)
		pos := uint64(0)
		for j := range centre {
			if old.centre[j] >= centre[j] {
				pos |= uint64(1) << j
			}
		}
		lifted.subs[pos] = old
		t.root = lifted
	}
}

// Returns the value stored for exactly the box [min, max]. If several
// entries share the corners an arbitrary one is returned.
func (t *Tree[V]) QueryExact(min, max []float64) (V, bool) {
	t.checkDims(min)
	t.checkDims(max)
	if t.root == nil {
		var zero V
		return zero, false
	}
	e, ok := t.root.find(min, max, nil)
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Indicates whether any entry with corners (min, max) has a value
// satisfying pred. A nil pred matches any value.
func (t *Tree[V]) Contains(min, max []float64, pred func(V) bool) bool {
	t.checkDims(min)
	t.checkDims(max)
	if t.root == nil {
		return false
	}
	_, ok := t.root.find(min, max, pred)
	return ok
}

// Removes one entry with corners (min, max), returning its value
func (t *Tree[V]) Remove(min, max []float64) (V, bool) {
	t.checkDims(min)
	t.checkDims(max)
	return t.remove(min, max, nil)
}

// Removes one entry with corners (min, max) whose value satisfies pred
func (t *Tree[V]) RemoveIf(min, max []float64, pred func(V) bool) bool {
	t.checkDims(min)
	t.checkDims(max)
	_, ok := t.remove(min, max, pred)
	return ok
}

func (t *Tree[V]) remove(min, max []float64, pred func(V) bool) (V, bool) {
	if t.root == nil {
		var zero V
		return zero, false
	}
	e, ok := t.root.remove(min, max, pred, t.dims)
	if !ok {
		var zero V
		return zero, false
	}
	t.size--
	return e.value, true
}

// Moves one entry from the old corners to the new, returning the moved
// value
func (t *Tree[V]) Update(oldMin, oldMax, newMin, newMax []float64) (V, bool) {
	t.checkDims(oldMin)
	t.checkDims(oldMax)
	t.checkDims(newMin)
	t.checkDims(newMax)
	return t.update(oldMin, oldMax, newMin, newMax, nil)
}

// Moves one entry from the old corners to the new whose value satisfies
// pred
func (t *Tree[V]) UpdateIf(oldMin, oldMax, newMin, newMax []float64, pred func(V) bool) bool {
	t.checkDims(oldMin)
	t.checkDims(oldMax)
	t.checkDims(newMin)
	t.checkDims(newMax)
	_, ok := t.update(oldMin, oldMax, newMin, newMax, pred)
	return ok
}

func (t *Tree[V]) update(oldMin, oldMax, newMin, newMax []float64, pred func(V) bool) (V, bool) {
	if t.root == nil {
		var zero V
		return zero, false
	}
	e, found, done := t.root.update(oldMin, oldMax, newMin, newMax, pred, 0, t.dims)
	if !found {
		var zero V
		return zero, false
	}
	if !done {
		e.min = newMin
		e.max = newMax
		t.ensureCoverage(newMin, newMax)
		t.root.insert(e, 0, t.dims)
	}
	return e.value, true
}

func (t *Tree[V]) checkDims(p []float64) {
	if len(p) != t.dims {
		panic(fmt.Sprintf("boxtree: %d dimensional corner passed to %d dimensional tree", len(p), t.dims))
	}
}

var _ spatial.BoxMap[int] = &Tree[int]{}
var _ spatial.BoxMultimap[int] = &Tree[int]{}
