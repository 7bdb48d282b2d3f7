// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package covertree

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/fmstephe/spatial-system/pkg/geom"
	"github.com/fmstephe/spatial-system/pkg/spatial"
)

// Marks a cached maxDist as unknown, forcing recomputation on next use
const maxDistInvalid = -1.0

// A node of the cover tree. Every node carries an entry, inner nodes
// additionally cover their children.
//
// Invariants, with covdist(n) = base^level:
//   - every child c satisfies dist(point, c.point) <= covdist(n)
//   - every child has level == this level - 1
//   - maxDist, when valid, is the distance to the farthest descendant
type node[V any] struct {
	point      []float64
	value      V
	level      int
	children   []*node[V]
	distParent float64
	maxDist    float64
}

// A Tree is a cover tree, a levelled metric tree supporting nearest
// neighbour search under a pluggable point distance function.
//
// The tree does not support removal or update of entries, callers needing
// those rebuild the tree. The tree retains the caller's coordinate
// slices. The tree is a single writer data structure, mutating it while an
// iterator over it is live leaves that iterator undefined.
type Tree[V any] struct {
	dims   int
	base   float64
	distFn spatial.DistFn
	root   *node[V]
	size   int
}

// Returns a new empty Tree over dims dimensional points, with base 2 and
// the L2 distance
func New[V any](dims int) *Tree[V] {
	return NewWithBase[V](dims, 2.0)
}

// Returns a new empty Tree with the given base. Bases between 1.3 and 2
// trade shallower trees against wider nodes, values at the low end are
// best combined with Load which seeds a workable root level up front.
func NewWithBase[V any](dims int, base float64) *Tree[V] {
	return NewWithDistance[V](dims, base, geom.L2)
}

// Returns a new empty Tree measuring point distance with distFn, which
// must be a metric
func NewWithDistance[V any](dims int, base float64, distFn spatial.DistFn) *Tree[V] {
	if dims < 1 {
		panic(fmt.Sprintf("covertree: cannot build a tree with dimensionality %d", dims))
	}
	if base <= 1 || base > 2 {
		panic(fmt.Sprintf("covertree: base %f outside (1, 2]", base))
	}
	return &Tree[V]{
		dims:   dims,
		base:   base,
		distFn: distFn,
	}
}

// Builds a tree from a whole data set at once. The first point seeds a
// root whose level is made high enough to cover the full extent of the
// data, so no insert ever has to re-root the tree.
func Load[V any](dims int, base float64, distFn spatial.DistFn, points [][]float64, values []V) (*Tree[V], error) {
	if len(points) != len(values) {
		return nil, errors.Errorf("covertree: %d points with %d values", len(points), len(values))
	}
	t := NewWithDistance[V](dims, base, distFn)
	if len(points) == 0 {
		return t, nil
	}
	for _, p := range points {
		if len(p) != dims {
			return nil, errors.Errorf("covertree: %d dimensional point in %d dimensional load", len(p), dims)
		}
	}

	first := points[0]
	maxDist := 0.0
	for _, p := range points[1:] {
		maxDist = math.Max(maxDist, distFn(first, p))
	}
	level := 0
	if maxDist > 0 {
		level = int(math.Ceil(math.Log(maxDist) / math.Log(base)))
	}
	t.root = &node[V]{point: first, value: values[0], level: level}
	t.size = 1
	for i, p := range points[1:] {
		t.insert2(t.root, p, values[i+1], distFn(t.root.point, p))
		t.size++
	}
	return t, nil
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

// The covering radius of a node at the given level
func (t *Tree[V]) covdist(level int) float64 {
	return math.Pow(t.base, float64(level))
}

// Inserts v at p. Fails if len(p) does not match the tree dimensionality.
func (t *Tree[V]) Insert(p []float64, v V) error {
	if len(p) != t.dims {
		return errors.Errorf("covertree: cannot insert %d dimensional point into %d dimensional tree", len(p), t.dims)
	}

	if t.root == nil {
		t.root = &node[V]{point: p, value: v, level: 0}
		t.size = 1
		return nil
	}

	d := t.distFn(t.root.point, p)
	if d > t.covdist(t.root.level) {
		t.insertAbove(p, v, d)
		return nil
	}
	t.insert2(t.root, p, v, d)
	t.size++
	return nil
}

// The new point falls outside the root's covering radius, so the tree
// grows upward until a new root holding p can cover the old one.
//
// The textbook bound for this loop is d > 2*covdist, which fails to
// terminate correctly for some configurations, the tighter
// (base-1)*covdist bound is used instead.
func (t *Tree[V]) insertAbove(p []float64, v V, d float64) {
	for d > (t.base-1)*t.covdist(t.root.level) {
		if len(t.root.children) == 0 {
			// A childless root can simply be promoted
			t.root.level++
			continue
		}
		// Detach some leaf and make it the new root, one level up,
		// with the old root as its only child
		q := detachAnyLeaf(t.root)
		old := t.root
		q.level = old.level + 1
		q.children = append(q.children, old)
		old.distParent = t.distFn(q.point, old.point)
		q.maxDist = maxDistInvalid
		t.root = q
		d = t.distFn(q.point, p)
	}

	old := t.root
	lifted := &node[V]{point: p, value: v, level: old.level + 1, maxDist: maxDistInvalid}
	old.distParent = t.distFn(p, old.point)
	lifted.children = append(lifted.children, old)
	t.root = lifted
	t.size++
}

// Walks down from the root's subtree to some leaf and unhooks it
func detachAnyLeaf[V any](n *node[V]) *node[V] {
	parent := n
	child := n.children[0]
	for len(child.children) > 0 {
		parent = child
		child = child.children[0]
	}
	parent.children = parent.children[1:]
	return child
}

// The descent half of the insertion. The first child able to cover p
// takes it, otherwise p becomes a new child of n one level down. distNP
// is the precomputed distance from n to p, used to keep cached maxDist
// values honest on the way down.
func (t *Tree[V]) insert2(n *node[V], p []float64, v V, distNP float64) {
	for _, q := range n.children {
		dq := t.distFn(q.point, p)
		if dq <= t.covdist(q.level) {
			t.insert2(q, p, v, dq)
			if n.maxDist >= 0 && distNP > n.maxDist {
				n.maxDist = distNP
			}
			return
		}
	}
	c := &node[V]{point: p, value: v, level: n.level - 1, distParent: distNP}
	n.children = append(n.children, c)
	if n.maxDist >= 0 && distNP > n.maxDist {
		n.maxDist = distNP
	}
}

// Returns the distance from n to its farthest descendant, recomputing and
// caching it when the stored value has been invalidated
func (t *Tree[V]) nodeMaxDist(n *node[V]) float64 {
	if n.maxDist >= 0 {
		return n.maxDist
	}
	m := 0.0
	for _, c := range n.children {
		t.maxDistWalk(n.point, c, &m)
	}
	n.maxDist = m
	return m
}

func (t *Tree[V]) maxDistWalk(p []float64, n *node[V], m *float64) {
	if d := t.distFn(p, n.point); d > *m {
		*m = d
	}
	for _, c := range n.children {
		t.maxDistWalk(p, c, m)
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
	n := t.findExact(t.root, p, nil)
	if n == nil {
		var zero V
		return zero, false
	}
	return n.value, true
}

// Indicates whether any entry at p has a value satisfying pred. A nil
// pred matches any value.
func (t *Tree[V]) Contains(p []float64, pred func(V) bool) bool {
	t.checkDims(p)
	if t.root == nil {
		return false
	}
	return t.findExact(t.root, p, pred) != nil
}

// A subtree can hold a point at distance zero from p only if p lies
// within the subtree's maxDist ball
func (t *Tree[V]) findExact(n *node[V], p []float64, pred func(V) bool) *node[V] {
	if geom.Equal(n.point, p) && (pred == nil || pred(n.value)) {
		return n
	}
	for _, q := range n.children {
		if t.distFn(q.point, p) <= t.nodeMaxDist(q) {
			if found := t.findExact(q, p, pred); found != nil {
				return found
			}
		}
	}
	return nil
}

func (t *Tree[V]) checkDims(p []float64) {
	if len(p) != t.dims {
		panic(fmt.Sprintf("covertree: %d dimensional point passed to %d dimensional tree", len(p), t.dims))
	}
}
