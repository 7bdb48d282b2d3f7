// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointInBox(t *testing.T) {
	for _, testValue := range []struct {
		p, min, max []float64
		in          bool
	}{
		{[]float64{5, 5}, []float64{0, 0}, []float64{10, 10}, true},
		{[]float64{0, 0}, []float64{0, 0}, []float64{10, 10}, true},
		{[]float64{10, 10}, []float64{0, 0}, []float64{10, 10}, true},
		{[]float64{10.1, 10}, []float64{0, 0}, []float64{10, 10}, false},
		{[]float64{-0.1, 5}, []float64{0, 0}, []float64{10, 10}, false},
		{[]float64{5, -5}, []float64{0, -10}, []float64{10, 0}, true},
	} {
		if PointInBox(testValue.p, testValue.min, testValue.max) != testValue.in {
			t.Errorf("PointInBox(%v, %v, %v) expected %v", testValue.p, testValue.min, testValue.max, testValue.in)
		}
	}
}

func TestFitsIntoNodeUpperExclusive(t *testing.T) {
	centre := []float64{0, 0}

	// On the lower boundary, inclusive
	assert.True(t, FitsIntoNode([]float64{-4, -4}, centre, 4))
	// On the upper boundary, exclusive
	assert.False(t, FitsIntoNode([]float64{4, 0}, centre, 4))
	assert.False(t, FitsIntoNode([]float64{0, 4}, centre, 4))
	// Strictly inside
	assert.True(t, FitsIntoNode([]float64{3.999, -4}, centre, 4))
	// Strictly outside
	assert.False(t, FitsIntoNode([]float64{-4.001, 0}, centre, 4))
}

func TestOverlaps(t *testing.T) {
	for _, testValue := range []struct {
		aMin, aMax, bMin, bMax []float64
		overlaps               bool
	}{
		{[]float64{0, 0}, []float64{5, 5}, []float64{4, 4}, []float64{9, 9}, true},
		{[]float64{0, 0}, []float64{5, 5}, []float64{5, 5}, []float64{9, 9}, true},
		{[]float64{0, 0}, []float64{5, 5}, []float64{6, 0}, []float64{9, 5}, false},
		{[]float64{0, 0}, []float64{5, 5}, []float64{0, 6}, []float64{5, 9}, false},
		{[]float64{1, 1}, []float64{2, 2}, []float64{0, 0}, []float64{9, 9}, true},
	} {
		if Overlaps(testValue.aMin, testValue.aMax, testValue.bMin, testValue.bMax) != testValue.overlaps {
			t.Errorf("Overlaps(%v, %v, %v, %v) expected %v",
				testValue.aMin, testValue.aMax, testValue.bMin, testValue.bMax, testValue.overlaps)
		}
		// Overlap is symmetric
		if Overlaps(testValue.bMin, testValue.bMax, testValue.aMin, testValue.aMax) != testValue.overlaps {
			t.Errorf("Overlaps(%v, %v, %v, %v) expected %v",
				testValue.bMin, testValue.bMax, testValue.aMin, testValue.aMax, testValue.overlaps)
		}
	}
}

func TestDistToEdge(t *testing.T) {
	centre := []float64{0, 0}
	buf := make([]float64, 2)

	// Inside the node the distance is zero
	require.Equal(t, 0.0, DistToEdge([]float64{1, 1}, centre, 4, L2, buf))
	// Outside along one axis
	require.Equal(t, 2.0, DistToEdge([]float64{6, 0}, centre, 4, L2, buf))
	// Outside along both axes, diagonal distance
	require.InDelta(t, math.Sqrt(8), DistToEdge([]float64{6, 6}, centre, 4, L2, buf), 1e-12)
}

func TestEdgeDist(t *testing.T) {
	min := []float64{0, 0}
	max := []float64{4, 4}

	require.Equal(t, 0.0, EdgeDist([]float64{2, 2}, min, max))
	require.Equal(t, 0.0, EdgeDist([]float64{4, 4}, min, max))
	require.Equal(t, 3.0, EdgeDist([]float64{7, 2}, min, max))
	require.InDelta(t, math.Sqrt(2), EdgeDist([]float64{-1, -1}, min, max), 1e-12)
}

func TestFloorPow2(t *testing.T) {
	for _, testValue := range []struct {
		in, out float64
	}{
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 4},
		{5, 4},
		{1023, 512},
		{0.75, 0.5},
		{0.5, 0.5},
		{-3, -2},
		{-4, -4},
		{0, 0},
	} {
		if got := FloorPow2(testValue.in); got != testValue.out {
			t.Errorf("FloorPow2(%v) = %v, expecting %v", testValue.in, got, testValue.out)
		}
	}
}

func TestCeilPow2(t *testing.T) {
	for _, testValue := range []struct {
		in, out float64
	}{
		{1, 1},
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{1023, 1024},
		{0.75, 1},
		{0.5, 0.5},
		{-3, -4},
		{-4, -4},
		{0, 0},
	} {
		if got := CeilPow2(testValue.in); got != testValue.out {
			t.Errorf("CeilPow2(%v) = %v, expecting %v", testValue.in, got, testValue.out)
		}
	}
}

// Repeated halving of a power of two radius must stay exact. Sixty halvings
// of CeilPow2(1000) are checked. This property is what the quadtrees rely on.
func TestPow2HalvingIsExact(t *testing.T) {
	radius := CeilPow2(1000.0)
	for i := 0; i < 60; i++ {
		half := radius / 2
		require.Equal(t, radius, half*2)
		radius = half
	}
}

func TestL1L2(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}

	require.Equal(t, 7.0, L1(a, b))
	require.Equal(t, 5.0, L2(a, b))
	require.Equal(t, 0.0, L1(a, a))
	require.Equal(t, 0.0, L2(b, b))
}

func TestCopyOfAndEqual(t *testing.T) {
	p := []float64{1, 2}
	c := CopyOf(p)
	require.True(t, Equal(p, c))

	c[0] = 99
	require.False(t, Equal(p, c))
	require.Equal(t, 1.0, p[0])
}
