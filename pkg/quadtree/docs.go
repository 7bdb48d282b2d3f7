// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

// # Usage
//
// The quadtree package indexes points in any (small) number of dimensions,
// mapping float64 coordinate vectors to arbitrary values. It supports exact
// lookup, rectangular window queries, and k-nearest-neighbour search.
//
//	tree := quadtree.New[string](2)
//	tree.Insert([]float64{1.5, 2.5}, "a")
//	tree.Insert([]float64{-3, 4}, "b")
//
//	it := tree.Query([]float64{0, 0}, []float64{10, 10})
//	for it.Next() {
//		fmt.Println(it.Point(), it.Value())
//	}
//
//	best, ok := tree.Query1nn([]float64{1, 2})
//
// Every node of the tree covers a box described by a centre and a radius.
// An inner node divides its box into 2^dims quadrants, one slot each, where
// a slot holds either a single entry or a subnode. Small numbers of entries
// sit together in leaves, so the structure only grows nodes where the data
// is dense.
//
// The tree starts with no fixed extent. The first inserts pick a centre and
// radius aligned to powers of two, and points landing outside the current
// root box lift the root, doubling the radius each time. Powers of two
// matter because the radius is halved at every level, and that halving must
// be exact for quadrant membership to be unambiguous all the way down.
//
// # Queries
//
// Window and kNN queries return lazy iterators. An iterator can be Reset to
// run a fresh query while reusing its internal stacks and heaps, so a query
// loop settles into steady state with no allocation. Iterators are
// invalidated by any mutation of the tree, using one afterwards has
// undefined behaviour.
//
// Window queries enumerate only the quadrants which overlap the query box,
// using bitmask arithmetic over slot indices rather than scanning every
// slot. kNN queries run best-first over the node boxes, bounding each
// subtree by the distance from the query point to the box edge.
//
// # Duplicates
//
// The tree never enforces key uniqueness. Inserting the same coordinates
// twice stores two entries, and the map flavoured operations act on an
// arbitrary one of them. The multimap flavoured operations take a value
// predicate to single an entry out.
package quadtree
