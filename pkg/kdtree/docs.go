// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

// # Usage
//
// The kdtree package indexes points in any number of dimensions with a
// binary space partitioning tree. Each node splits space at its own point,
// along an axis that cycles with depth.
//
//	tree := kdtree.New[string](2)
//	tree.Insert([]float64{2, 3}, "a")
//	tree.Insert([]float64{5, 4}, "b")
//
//	v, ok := tree.QueryExact([]float64{5, 4})
//
//	it := tree.QueryKnn([]float64{6, 3}, 3)
//	for it.Next() {
//		fmt.Println(it.Entry().Point, it.Entry().Dist)
//	}
//
// Because the indexed coordinates double as the tree's internal split
// positions, Insert stores a private copy of each coordinate slice by
// default. SetDefensiveCopy(false) disables this for callers who can
// guarantee their slices are never mutated after insertion.
//
// Removal replaces a node with the minimum entry, along the node's own
// split axis, of its high subtree, recursively down to a leaf. There is no
// rebalancing, a heavily mutated tree degrades gracefully rather than
// reorganising itself.
//
// Window and kNN queries return lazy iterators which can be Reset to run
// fresh queries without reallocating their traversal state. Iterators are
// invalidated by any mutation of the tree.
package kdtree
