// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package covertree

import (
	"fmt"
	"math"
	"sort"

	"github.com/fmstephe/spatial-system/pkg/spatial"
)

var positiveInfinity = math.Inf(1)

// Returns the single entry nearest to centre, or false on an empty tree
func (t *Tree[V]) Query1nn(centre []float64) (spatial.KnnEntry[V], bool) {
	t.checkDims(centre)
	if t.root == nil {
		return spatial.KnnEntry[V]{}, false
	}

	best := spatial.KnnEntry[V]{
		Point: t.root.point,
		Value: t.root.value,
		Dist:  t.distFn(t.root.point, centre),
	}
	t.nn(t.root, best.Dist, centre, &best)
	return best, true
}

// Recursive branch-pruned descent. distNX is the precomputed distance
// from n to the query point. A child's subtree is worth visiting only if
// its maxDist ball can reach inside the current best radius.
func (t *Tree[V]) nn(n *node[V], distNX float64, x []float64, best *spatial.KnnEntry[V]) {
	if distNX < best.Dist {
		best.Point = n.point
		best.Value = n.value
		best.Dist = distNX
	}

	// Nearer children first, they tighten the radius fastest
	ordered := t.orderChildren(n, x)
	for _, oc := range ordered {
		if oc.dist-t.nodeMaxDist(oc.n) < best.Dist {
			t.nn(oc.n, oc.dist, x, best)
		}
	}
}

type orderedChild[V any] struct {
	n    *node[V]
	dist float64
}

func (t *Tree[V]) orderChildren(n *node[V], x []float64) []orderedChild[V] {
	ordered := make([]orderedChild[V], len(n.children))
	for i, q := range n.children {
		ordered[i] = orderedChild[V]{n: q, dist: t.distFn(q.point, x)}
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].dist < ordered[j].dist
	})
	return ordered
}

// A KnnIter yields the k entries nearest to a query centre, ordered by
// ascending distance. Ties are broken arbitrarily.
//
// The candidate list is kept sorted and capped at k, the pruning radius
// is the k-th smallest distance seen so far. Reset reuses the result
// buffer. The iterator is only valid while the tree is unmutated.
type KnnIter[V any] struct {
	tree    *Tree[V]
	centre  []float64
	results []spatial.KnnEntry[V]
	next    int
}

// Returns an iterator over the k entries nearest to centre
func (t *Tree[V]) QueryKnn(centre []float64, k int) *KnnIter[V] {
	it := &KnnIter[V]{
		tree:   t,
		centre: make([]float64, t.dims),
	}
	it.Reset(centre, k)
	return it
}

// Restarts the iterator around a new centre, reusing the result buffer. A
// zero k yields an empty iterator, a negative k panics.
func (it *KnnIter[V]) Reset(centre []float64, k int) {
	it.tree.checkDims(centre)
	if k < 0 {
		panic(fmt.Sprintf("covertree: cannot query for %d nearest neighbours", k))
	}
	copy(it.centre, centre)
	it.results = it.results[:0]
	it.next = 0
	if k == 0 || it.tree.root == nil {
		return
	}
	root := it.tree.root
	it.walk(root, it.tree.distFn(root.point, it.centre), k)
}

func (it *KnnIter[V]) walk(n *node[V], distNX float64, k int) {
	it.offer(n, distNX, k)

	ordered := it.tree.orderChildren(n, it.centre)
	for _, oc := range ordered {
		if oc.dist-it.tree.nodeMaxDist(oc.n) < it.pruneDist(k) {
			it.walk(oc.n, oc.dist, k)
		}
	}
}

// The distance a new entry must beat to enter the candidate list
func (it *KnnIter[V]) pruneDist(k int) float64 {
	if len(it.results) < k {
		return positiveInfinity
	}
	return it.results[k-1].Dist
}

// Slots the entry into the sorted candidate list, dropping the tail
// beyond k
func (it *KnnIter[V]) offer(n *node[V], dist float64, k int) {
	if dist >= it.pruneDist(k) {
		return
	}
	i := sort.Search(len(it.results), func(i int) bool {
		return it.results[i].Dist > dist
	})
	it.results = append(it.results, spatial.KnnEntry[V]{})
	copy(it.results[i+1:], it.results[i:])
	it.results[i] = spatial.KnnEntry[V]{Point: n.point, Value: n.value, Dist: dist}
	if len(it.results) > k {
		it.results = it.results[:k]
	}
}

// Advances to the next result, returning false when k entries have been
// yielded or the tree is exhausted
func (it *KnnIter[V]) Next() bool {
	if it.next >= len(it.results) {
		return false
	}
	it.next++
	return true
}

// Returns the current result
func (it *KnnIter[V]) Entry() spatial.KnnEntry[V] {
	return it.results[it.next-1]
}
