// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package boxtree

import (
	"fmt"

	"github.com/fmstephe/spatial-system/pkg/geom"
	"github.com/fmstephe/spatial-system/pkg/pqueue"
	"github.com/fmstephe/spatial-system/pkg/spatial"
)

// A frontier entry pairs a node with the distance from the query centre to
// the node's box edge. Every box stored under a node lies inside the
// node's box, so that edge distance lower bounds the distance of every
// entry below.
type frontierEntry[V any] struct {
	n    *node[V]
	dist float64
}

// A KnnIter yields the k entries whose boxes are nearest to a query
// centre, ordered by ascending distance. Ties are broken arbitrarily.
//
// The iterator owns its frontier and candidate heaps, Reset reuses them
// across queries. The iterator is only valid while the tree is unmutated.
type KnnIter[V any] struct {
	tree       *Tree[V]
	distFn     spatial.BoxDistFn
	centre     []float64
	buf        []float64
	frontier   *pqueue.MinHeap[frontierEntry[V]]
	candidates *pqueue.MinMaxHeap[spatial.BoxKnnEntry[V]]
	results    []spatial.BoxKnnEntry[V]
	next       int
}

// Returns an iterator over the k entries nearest to centre under the
// default edge distance, which is zero for boxes containing the centre
func (t *Tree[V]) QueryKnn(centre []float64, k int) *KnnIter[V] {
	return t.QueryKnnFunc(centre, k, geom.EdgeDist)
}

// Returns an iterator over the k entries nearest to centre, measured with
// the supplied point-to-box distance function. Node pruning uses the L2
// edge distance, so distFn must never report a distance below it.
func (t *Tree[V]) QueryKnnFunc(centre []float64, k int, distFn spatial.BoxDistFn) *KnnIter[V] {
	it := &KnnIter[V]{
		tree:   t,
		distFn: distFn,
		centre: make([]float64, t.dims),
		buf:    make([]float64, t.dims),
		frontier: pqueue.NewMinHeap(func(a, b frontierEntry[V]) bool {
			return a.dist < b.dist
		}),
		candidates: pqueue.NewMinMaxHeap(func(a, b spatial.BoxKnnEntry[V]) bool {
			return a.Dist < b.Dist
		}),
	}
	it.Reset(centre, k)
	return it
}

// Returns the single entry nearest to centre under the default edge
// distance
func (t *Tree[V]) Query1nn(centre []float64) (spatial.BoxKnnEntry[V], bool) {
	it := t.QueryKnn(centre, 1)
	if !it.Next() {
		return spatial.BoxKnnEntry[V]{}, false
	}
	return it.Entry(), true
}

// Restarts the iterator around a new centre, reusing the heap buffers. A
// zero k yields an empty iterator, a negative k panics.
func (it *KnnIter[V]) Reset(centre []float64, k int) {
	it.tree.checkDims(centre)
	if k < 0 {
		panic(fmt.Sprintf("boxtree: cannot query for %d nearest neighbours", k))
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

func (it *KnnIter[V]) search(k int) {
	root := it.tree.root
	it.frontier.Push(frontierEntry[V]{
		n:    root,
		dist: geom.DistToEdge(it.centre, root.centre, root.radius, geom.L2, it.buf),
	})

	for it.frontier.Len() > 0 {
		fe, _ := it.frontier.PopMin()
		if it.candidates.Len() >= k {
			if worst, _ := it.candidates.PeekMax(); fe.dist > worst.Dist {
				break
			}
		}

		n := fe.n
		if n.isLeaf() {
			for _, e := range n.entries {
				it.offer(k, e)
			}
			continue
		}
		for _, e := range n.straddle {
			it.offer(k, e)
		}
		for _, s := range n.subs {
			switch v := s.(type) {
			case *entry[V]:
				it.offer(k, v)
			case *node[V]:
				dist := geom.DistToEdge(it.centre, v.centre, v.radius, geom.L2, it.buf)
				if it.candidates.Len() >= k {
					if worst, _ := it.candidates.PeekMax(); dist > worst.Dist {
						continue
					}
				}
				it.frontier.Push(frontierEntry[V]{n: v, dist: dist})
			}
		}
	}

	for it.candidates.Len() > 0 {
		e, _ := it.candidates.PopMin()
		it.results = append(it.results, e)
	}
}

func (it *KnnIter[V]) offer(k int, e *entry[V]) {
	d := it.distFn(it.centre, e.min, e.max)
	if it.candidates.Len() >= k {
		if worst, _ := it.candidates.PeekMax(); d >= worst.Dist {
			return
		}
	}
	it.candidates.Push(spatial.BoxKnnEntry[V]{Min: e.min, Max: e.max, Value: e.value, Dist: d})
	if it.candidates.Len() > k {
		it.candidates.PopMax()
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
func (it *KnnIter[V]) Entry() spatial.BoxKnnEntry[V] {
	return it.results[it.next-1]
}
