// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package testutil

import (
	"math/rand"
)

// A RandomPointMaker produces deterministic pseudo-random coordinate
// vectors for tests. Two makers built with NewRandomPointMaker always
// produce the same sequence of points.
type RandomPointMaker struct {
	r *rand.Rand
}

func NewRandomPointMaker() *RandomPointMaker {
	return &RandomPointMaker{
		r: rand.New(rand.NewSource(1)),
	}
}

// Returns a point with dims coordinates, each drawn uniformly from
// [lo, hi)
func (rpm *RandomPointMaker) MakePoint(dims int, lo, hi float64) []float64 {
	p := make([]float64, dims)
	for i := range p {
		p[i] = lo + rpm.r.Float64()*(hi-lo)
	}
	return p
}

// Returns a point whose coordinates are drawn from a small integer grid.
// Grid points collide often, which exercises the duplicate handling paths.
func (rpm *RandomPointMaker) MakeGridPoint(dims int, cells int) []float64 {
	p := make([]float64, dims)
	for i := range p {
		p[i] = float64(rpm.r.Intn(cells))
	}
	return p
}

// Returns the min and max corners of a box with dims coordinates lying
// inside [lo, hi)
func (rpm *RandomPointMaker) MakeBox(dims int, lo, hi float64) ([]float64, []float64) {
	min := make([]float64, dims)
	max := make([]float64, dims)
	for i := range min {
		a := lo + rpm.r.Float64()*(hi-lo)
		b := lo + rpm.r.Float64()*(hi-lo)
		if a > b {
			a, b = b, a
		}
		min[i] = a
		max[i] = b
	}
	return min, max
}
