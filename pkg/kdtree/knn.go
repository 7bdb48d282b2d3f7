// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package kdtree

import (
	"fmt"

	"github.com/fmstephe/spatial-system/pkg/geom"
	"github.com/fmstephe/spatial-system/pkg/pqueue"
	"github.com/fmstephe/spatial-system/pkg/spatial"
)

// A frontier entry pairs a node with the point of that node's cell closest
// to the query centre, and the distance to it. That distance lower bounds
// the distance of every entry stored under the node.
type frontierEntry[V any] struct {
	n       *node[V]
	closest []float64
	dist    float64
}

// A KnnIter yields the k entries nearest to a query centre, ordered by
// ascending distance. Ties are broken arbitrarily.
//
// The iterator owns its frontier and candidate heaps, Reset reuses them
// across queries. The iterator is only valid while the tree is unmutated.
type KnnIter[V any] struct {
	tree       *Tree[V]
	distFn     spatial.DistFn
	centre     []float64
	frontier   *pqueue.MinHeap[frontierEntry[V]]
	candidates *pqueue.MinMaxHeap[spatial.KnnEntry[V]]
	results    []spatial.KnnEntry[V]
	next       int
}

// Returns an iterator over the k entries nearest to centre under the L2
// distance
func (t *Tree[V]) QueryKnn(centre []float64, k int) *KnnIter[V] {
	return t.QueryKnnFunc(centre, k, geom.L2)
}

// Returns an iterator over the k entries nearest to centre, measured with
// the supplied distance function
func (t *Tree[V]) QueryKnnFunc(centre []float64, k int, distFn spatial.DistFn) *KnnIter[V] {
	it := &KnnIter[V]{
		tree:   t,
		distFn: distFn,
		centre: make([]float64, t.dims),
		frontier: pqueue.NewMinHeap(func(a, b frontierEntry[V]) bool {
			return a.dist < b.dist
		}),
		candidates: pqueue.NewMinMaxHeap(func(a, b spatial.KnnEntry[V]) bool {
			return a.Dist < b.Dist
		}),
	}
	it.Reset(centre, k)
	return it
}

// Returns the single entry nearest to centre under the L2 distance
func (t *Tree[V]) Query1nn(centre []float64) (spatial.KnnEntry[V], bool) {
	it := t.QueryKnn(centre, 1)
	if !it.Next() {
		return spatial.KnnEntry[V]{}, false
	}
	return it.Entry(), true
}

// Restarts the iterator around a new centre, reusing the heap buffers. A
// zero k yields an empty iterator, a negative k panics.
func (it *KnnIter[V]) Reset(centre []float64, k int) {
	it.tree.checkDims(centre)
	if k < 0 {
		panic(fmt.Sprintf("kdtree: cannot query for %d nearest neighbours", k))
	}
	copy(it.centre, centre)
	it.frontier.Clear()
	it.candidates.Clear()
	it.results = it.results[:0]
	it.next = 0
	if k == 0 || it.tree.root == nil {
		return
	}
	it.search(k)
}

// Best-first search. The frontier holds unexplored nodes keyed by the
// distance from the query centre to their cells, the candidate buffer holds
// the best k entries found so far. A frontier entry whose lower bound
// exceeds the current pruning radius can never improve the candidates, and
// because the frontier is a min-heap the whole search stops there.
func (it *KnnIter[V]) search(k int) {
	centre := it.centre
	it.frontier.Push(frontierEntry[V]{
		n:       it.tree.root,
		closest: geom.CopyOf(centre),
		dist:    0,
	})

	for it.frontier.Len() > 0 {
		fe, _ := it.frontier.PopMin()
		if it.candidates.Len() >= k {
			if worst, _ := it.candidates.PeekMax(); fe.dist > worst.Dist {
				break
			}
		}
		n := fe.n

		d := it.distFn(centre, n.point)
		if it.candidates.Len() < k {
			it.candidates.Push(spatial.KnnEntry[V]{Point: n.point, Value: n.value, Dist: d})
		} else if worst, _ := it.candidates.PeekMax(); d < worst.Dist {
			it.candidates.Push(spatial.KnnEntry[V]{Point: n.point, Value: n.value, Dist: d})
			it.candidates.PopMax()
		}

		// Each child cell is the parent cell clipped at the split
		// plane. Its closest point to the centre is the parent's
		// closest point, with the split axis snapped to the split
		// value when the centre lies on the far side.
		dim := n.dim
		if n.lo != nil {
			it.pushChild(k, n.lo, fe, centre[dim] > n.point[dim], dim, n.point[dim])
		}
		if n.hi != nil {
			it.pushChild(k, n.hi, fe, centre[dim] < n.point[dim], dim, n.point[dim])
		}
	}

	for it.candidates.Len() > 0 {
		entry, _ := it.candidates.PopMin()
		it.results = append(it.results, entry)
	}
}

func (it *KnnIter[V]) pushChild(k int, child *node[V], fe frontierEntry[V], clip bool, dim int, split float64) {
	closest := fe.closest
	dist := fe.dist
	if clip {
		closest = geom.CopyOf(fe.closest)
		closest[dim] = split
		dist = it.distFn(it.centre, closest)
	}
	if it.candidates.Len() >= k {
		if worst, _ := it.candidates.PeekMax(); dist > worst.Dist {
			return
		}
	}
	it.frontier.Push(frontierEntry[V]{n: child, closest: closest, dist: dist})
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
