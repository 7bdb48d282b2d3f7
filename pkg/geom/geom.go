// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package geom

import (
	"math"
)

// PointInBox indicates whether p lies inside the closed box [min, max].
// All three slices must have the same length.
func PointInBox(p, min, max []float64) bool {
	for i := range p {
		if p[i] < min[i] || p[i] > max[i] {
			return false
		}
	}
	return true
}

// FitsIntoNode indicates whether p lies inside the node box described by
// centre and radius. The upper bound is exclusive, so a point sitting
// exactly on a split plane always belongs to the upper neighbour. This is
// what makes quadrant membership unambiguous.
func FitsIntoNode(p, centre []float64, radius float64) bool {
	for i := range p {
		if p[i] < centre[i]-radius || p[i] >= centre[i]+radius {
			return false
		}
	}
	return true
}

// BoxFitsIntoNode indicates whether the closed box [min, max] lies inside
// the node box described by centre and radius, upper bound exclusive.
func BoxFitsIntoNode(min, max, centre []float64, radius float64) bool {
	for i := range min {
		if min[i] < centre[i]-radius || max[i] >= centre[i]+radius {
			return false
		}
	}
	return true
}

// Overlaps indicates whether the closed boxes [aMin, aMax] and [bMin, bMax]
// intersect. Two boxes overlap unless some axis fully separates them.
func Overlaps(aMin, aMax, bMin, bMax []float64) bool {
	for i := range aMin {
		if aMax[i] < bMin[i] || aMin[i] > bMax[i] {
			return false
		}
	}
	return true
}

// DistToEdge returns the distance from p to the nearest edge of the node box
// described by centre and radius, measured with fn. Returns zero when p lies
// inside the node. The clamped point is written into buf, which must have
// the same length as p.
func DistToEdge(p, centre []float64, radius float64, fn func(a, b []float64) float64, buf []float64) float64 {
	for i := range p {
		buf[i] = clamp(p[i], centre[i]-radius, centre[i]+radius)
	}
	return fn(buf, p)
}

// DistToEdgeOfBox returns the distance from p to the nearest edge of the
// closed box [min, max], measured with fn. Returns zero when p lies inside
// the box. The clamped point is written into buf.
func DistToEdgeOfBox(p, min, max []float64, fn func(a, b []float64) float64, buf []float64) float64 {
	for i := range p {
		buf[i] = clamp(p[i], min[i], max[i])
	}
	return fn(buf, p)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// The exponent occupies bits 52-62 of a float64, the fraction bits 0-51.
const fractionMask = (uint64(1) << 52) - 1

// FloorPow2 rounds the magnitude of x down to a power of two, preserving
// sign, by zeroing the IEEE-754 fraction bits. FloorPow2(0) == 0. The
// quadtrees align their root centres with this so that repeatedly halving a
// node radius stays exact.
func FloorPow2(x float64) float64 {
	bits := math.Float64bits(x)
	return math.Float64frombits(bits &^ fractionMask)
}

// CeilPow2 rounds the magnitude of x up to a power of two, preserving sign.
// Values which are already powers of two are returned unchanged.
func CeilPow2(x float64) float64 {
	bits := math.Float64bits(x)
	if bits&fractionMask == 0 {
		return x
	}
	// Clear the fraction and step the exponent up by one
	return math.Float64frombits((bits &^ fractionMask) + (uint64(1) << 52))
}

// L1 is the Manhattan distance between a and b.
func L1(a, b []float64) float64 {
	total := 0.0
	for i := range a {
		total += math.Abs(a[i] - b[i])
	}
	return total
}

// L2 is the Euclidean distance between a and b.
func L2(a, b []float64) float64 {
	total := 0.0
	for i := range a {
		d := a[i] - b[i]
		total += d * d
	}
	return math.Sqrt(total)
}

// EdgeDist is the default point-to-box distance. It is the L2 distance from
// p to the nearest point of the closed box [min, max], zero when p lies
// inside the box.
func EdgeDist(p, min, max []float64) float64 {
	total := 0.0
	for i := range p {
		d := clamp(p[i], min[i], max[i]) - p[i]
		total += d * d
	}
	return math.Sqrt(total)
}

// CopyOf returns a private copy of p. Engines use this to implement
// defensive copying of caller supplied coordinate vectors.
func CopyOf(p []float64) []float64 {
	c := make([]float64, len(p))
	copy(c, p)
	return c
}

// Equal indicates whether a and b hold exactly the same coordinates. The
// comparison is strict, no epsilon is applied.
func Equal(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
