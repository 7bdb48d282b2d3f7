// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package spatial

// A DistFn measures the distance between two coordinate vectors of equal
// length. It must return a nonnegative value and must be symmetric.
type DistFn func(a, b []float64) float64

// A BoxDistFn measures the distance between a point and an axis aligned box.
// It must return zero when the point lies inside the box.
type BoxDistFn func(p, min, max []float64) float64

// A KnnEntry is a single nearest neighbour result. Dist is produced by the
// distance function supplied to the query which returned this entry. Results
// are ordered by Dist ascending, ties broken arbitrarily.
type KnnEntry[V any] struct {
	Point []float64
	Value V
	Dist  float64
}

// A BoxKnnEntry is a single nearest neighbour result over a box index.
type BoxKnnEntry[V any] struct {
	Min, Max []float64
	Value    V
	Dist     float64
}

// PointMap is the map view of a point index. At most one value is addressed
// per coordinate vector, although some engines are deliberately lenient and
// will store duplicate keys when asked to (see the engine documentation).
type PointMap[V any] interface {
	Dims() int
	Size() int
	Clear()
	// Inserts v at p. Fails if len(p) does not match Dims()
	Insert(p []float64, v V) error
	// Removes the entry at p, returning its value
	Remove(p []float64) (V, bool)
	// Moves the entry at oldP to newP, returning the moved value
	Update(oldP, newP []float64) (V, bool)
	// Returns the value stored at exactly p
	QueryExact(p []float64) (V, bool)
}

// PointMultimap is the multimap view of a point index. Many values may share
// one coordinate vector, so removal and lookup take a value predicate.
type PointMultimap[V any] interface {
	Dims() int
	Size() int
	Clear()
	Insert(p []float64, v V) error
	// Removes one entry at p whose value satisfies pred
	RemoveIf(p []float64, pred func(V) bool) bool
	// Moves one entry at oldP whose value satisfies pred to newP
	UpdateIf(oldP, newP []float64, pred func(V) bool) bool
	// Indicates whether any entry at p satisfies pred
	Contains(p []float64, pred func(V) bool) bool
}

// BoxMap is the map view of a box index, keyed by (min, max) corner pairs.
type BoxMap[V any] interface {
	Dims() int
	Size() int
	Clear()
	Insert(min, max []float64, v V) error
	Remove(min, max []float64) (V, bool)
	Update(oldMin, oldMax, newMin, newMax []float64) (V, bool)
	QueryExact(min, max []float64) (V, bool)
}

// BoxMultimap is the multimap view of a box index.
type BoxMultimap[V any] interface {
	Dims() int
	Size() int
	Clear()
	Insert(min, max []float64, v V) error
	RemoveIf(min, max []float64, pred func(V) bool) bool
	UpdateIf(oldMin, oldMax, newMin, newMax []float64, pred func(V) bool) bool
	Contains(min, max []float64, pred func(V) bool) bool
}
