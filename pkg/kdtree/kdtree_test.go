// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package kdtree

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmstephe/spatial-system/pkg/geom"
	"github.com/fmstephe/spatial-system/testpkg/testutil"
)

// The six classic 2d example points used throughout these tests
var examplePoints = [][]float64{
	{2, 3}, {5, 4}, {9, 6}, {4, 7}, {8, 1}, {7, 2},
}

func exampleTree(t *testing.T) *Tree[int] {
	tree := New[int](2)
	for i, p := range examplePoints {
		require.NoError(t, tree.Insert(p, i))
	}
	return tree
}

func TestNewPanicsOnBadDims(t *testing.T) {
	require.Panics(t, func() { New[int](0) })
	require.Panics(t, func() { New[int](-1) })
}

func TestInsertDimensionMismatch(t *testing.T) {
	tree := New[int](2)
	require.Error(t, tree.Insert([]float64{1, 2, 3}, 0))
	require.Equal(t, 0, tree.Size())
}

func TestQueryExact(t *testing.T) {
	tree := exampleTree(t)

	require.Equal(t, 6, tree.Size())
	require.Equal(t, 2, tree.Dims())

	v, ok := tree.QueryExact([]float64{9, 6})
	require.True(t, ok)
	require.Equal(t, 2, v)

	_, ok = tree.QueryExact([]float64{0, 0})
	require.False(t, ok)

	for i, p := range examplePoints {
		v, ok := tree.QueryExact(p)
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestWindowQueryBasic(t *testing.T) {
	tree := exampleTree(t)

	it := tree.Query([]float64{3, 3}, []float64{8, 5})
	require.True(t, it.Next())
	assert.Equal(t, []float64{5, 4}, it.Point())
	assert.Equal(t, 1, it.Value())
	require.False(t, it.Next())
}

func TestKnnBasic(t *testing.T) {
	tree := exampleTree(t)

	it := tree.QueryKnn([]float64{6, 3}, 3)

	// (7,2) and (5,4) tie at sqrt(2), (8,1) follows at sqrt(8). The tie
	// order is unspecified.
	points := [][]float64{}
	dists := []float64{}
	for it.Next() {
		points = append(points, it.Entry().Point)
		dists = append(dists, it.Entry().Dist)
	}
	require.Len(t, points, 3)
	assert.InDelta(t, math.Sqrt(2), dists[0], 1e-9)
	assert.InDelta(t, math.Sqrt(2), dists[1], 1e-9)
	assert.InDelta(t, math.Sqrt(8), dists[2], 1e-9)
	assert.ElementsMatch(t, [][]float64{{7, 2}, {5, 4}}, points[:2])
	assert.Equal(t, []float64{8, 1}, points[2])
}

func TestKnnBoundaries(t *testing.T) {
	tree := exampleTree(t)

	// k = 0 yields an empty iterator
	it := tree.QueryKnn([]float64{6, 3}, 0)
	require.False(t, it.Next())

	// Negative k panics
	require.Panics(t, func() { tree.QueryKnn([]float64{6, 3}, -1) })

	// k larger than the tree yields everything
	it = tree.QueryKnn([]float64{6, 3}, 100)
	count := 0
	for it.Next() {
		count++
	}
	require.Equal(t, len(examplePoints), count)

	// Empty tree yields an empty iterator
	empty := New[int](2)
	it = empty.QueryKnn([]float64{0, 0}, 3)
	require.False(t, it.Next())
	_, ok := empty.Query1nn([]float64{0, 0})
	require.False(t, ok)
}

func TestEmptyWindow(t *testing.T) {
	tree := exampleTree(t)

	// Inverted windows are empty
	it := tree.Query([]float64{5, 5}, []float64{1, 8})
	require.False(t, it.Next())
}

func TestRemove(t *testing.T) {
	tree := exampleTree(t)

	v, ok := tree.Remove([]float64{5, 4})
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 5, tree.Size())

	_, ok = tree.QueryExact([]float64{5, 4})
	require.False(t, ok)

	// The other entries all survive
	for i, p := range examplePoints {
		if i == 1 {
			continue
		}
		v, ok := tree.QueryExact(p)
		require.True(t, ok)
		require.Equal(t, i, v)
	}

	// Removing an absent point is a no-op
	_, ok = tree.Remove([]float64{100, 100})
	require.False(t, ok)
	require.Equal(t, 5, tree.Size())
}

func TestRemoveRoot(t *testing.T) {
	tree := exampleTree(t)

	// (2,3) was inserted first, so it is the root
	v, ok := tree.Remove([]float64{2, 3})
	require.True(t, ok)
	require.Equal(t, 0, v)
	require.Equal(t, 5, tree.Size())

	for i, p := range examplePoints[1:] {
		v, ok := tree.QueryExact(p)
		require.True(t, ok)
		require.Equal(t, i+1, v)
	}
}

func TestRemoveAll(t *testing.T) {
	tree := exampleTree(t)

	for _, p := range examplePoints {
		_, ok := tree.Remove(p)
		require.True(t, ok)
	}
	require.Equal(t, 0, tree.Size())
	require.False(t, tree.Iterator().Next())
}

func TestInsertRemoveRoundTrip(t *testing.T) {
	tree := exampleTree(t)

	require.NoError(t, tree.Insert([]float64{1, 1}, 99))
	require.Equal(t, 7, tree.Size())
	v, ok := tree.Remove([]float64{1, 1})
	require.True(t, ok)
	require.Equal(t, 99, v)
	require.Equal(t, 6, tree.Size())
}

func TestUpdate(t *testing.T) {
	tree := exampleTree(t)

	v, ok := tree.Update([]float64{9, 6}, []float64{1, 1})
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.Equal(t, 6, tree.Size())

	_, ok = tree.QueryExact([]float64{9, 6})
	require.False(t, ok)
	v, ok = tree.QueryExact([]float64{1, 1})
	require.True(t, ok)
	require.Equal(t, 2, v)

	// Moving it back restores the original lookup behaviour
	v, ok = tree.Update([]float64{1, 1}, []float64{9, 6})
	require.True(t, ok)
	require.Equal(t, 2, v)
	v, ok = tree.QueryExact([]float64{9, 6})
	require.True(t, ok)
	require.Equal(t, 2, v)

	// Updating an absent point reports not found
	_, ok = tree.Update([]float64{50, 50}, []float64{0, 0})
	require.False(t, ok)
}

func TestMultimapDuplicates(t *testing.T) {
	tree := New[int](2)
	p := []float64{3, 3}
	require.NoError(t, tree.Insert(p, 1))
	require.NoError(t, tree.Insert(p, 2))
	require.NoError(t, tree.Insert(p, 3))
	require.Equal(t, 3, tree.Size())

	require.True(t, tree.Contains(p, func(v int) bool { return v == 2 }))
	require.False(t, tree.Contains(p, func(v int) bool { return v == 4 }))

	require.True(t, tree.RemoveIf(p, func(v int) bool { return v == 2 }))
	require.Equal(t, 2, tree.Size())
	require.False(t, tree.Contains(p, func(v int) bool { return v == 2 }))
	require.True(t, tree.Contains(p, func(v int) bool { return v == 1 }))
	require.True(t, tree.Contains(p, func(v int) bool { return v == 3 }))

	require.False(t, tree.RemoveIf(p, func(v int) bool { return v == 2 }))
}

func TestDefensiveCopy(t *testing.T) {
	tree := New[int](2)
	p := []float64{1, 2}
	require.NoError(t, tree.Insert(p, 1))

	// With defensive copying enabled, mutating the caller's slice does
	// not disturb the tree
	p[0] = 99
	_, ok := tree.QueryExact([]float64{1, 2})
	require.True(t, ok)
	_, ok = tree.QueryExact([]float64{99, 2})
	require.False(t, ok)
}

func TestClear(t *testing.T) {
	tree := exampleTree(t)
	tree.Clear()
	require.Equal(t, 0, tree.Size())
	require.False(t, tree.Iterator().Next())

	// Still usable
	require.NoError(t, tree.Insert([]float64{1, 1}, 7))
	require.Equal(t, 1, tree.Size())
}

func TestIteratorYieldsAllEntries(t *testing.T) {
	pm := testutil.NewRandomPointMaker()
	tree := New[int](3)
	for i := range 1000 {
		require.NoError(t, tree.Insert(pm.MakePoint(3, -100, 100), i))
	}

	seen := map[int]bool{}
	it := tree.Iterator()
	for it.Next() {
		seen[it.Value()] = true
	}
	require.Equal(t, tree.Size(), len(seen))
}

// Checks the split ordering invariant across the whole tree
func checkInvariant[V any](t *testing.T, n *node[V]) {
	if n == nil {
		return
	}
	var walk func(m *node[V], check func(m *node[V]))
	walk = func(m *node[V], check func(m *node[V])) {
		if m == nil {
			return
		}
		check(m)
		walk(m.lo, check)
		walk(m.hi, check)
	}
	walk(n.lo, func(m *node[V]) {
		require.LessOrEqual(t, m.point[n.dim], n.point[n.dim])
	})
	walk(n.hi, func(m *node[V]) {
		require.GreaterOrEqual(t, m.point[n.dim], n.point[n.dim])
	})
	checkInvariant(t, n.lo)
	checkInvariant(t, n.hi)
}

func TestSplitInvariantAfterChurn(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	tree := New[int](2)

	live := [][]float64{}
	for i := 0; i < 2000; i++ {
		if r.Intn(3) > 0 || len(live) == 0 {
			p := []float64{float64(r.Intn(50)), float64(r.Intn(50))}
			require.NoError(t, tree.Insert(p, i))
			live = append(live, p)
		} else {
			idx := r.Intn(len(live))
			_, ok := tree.Remove(live[idx])
			require.True(t, ok)
			live = append(live[:idx], live[idx+1:]...)
		}
	}
	require.Equal(t, len(live), tree.Size())
	checkInvariant(t, tree.root)

	// Every live point is still findable
	for _, p := range live {
		_, ok := tree.QueryExact(p)
		require.True(t, ok)
	}
}

func TestWindowAgainstBruteForce(t *testing.T) {
	pm := testutil.NewRandomPointMaker()
	tree := New[int](2)
	points := make([][]float64, 500)
	for i := range points {
		points[i] = pm.MakePoint(2, 0, 100)
		require.NoError(t, tree.Insert(points[i], i))
	}

	it := tree.Query([]float64{0, 0}, []float64{0, 0})
	for q := 0; q < 100; q++ {
		min, max := pm.MakeBox(2, 0, 100)

		expected := map[int]bool{}
		for i, p := range points {
			if geom.PointInBox(p, min, max) {
				expected[i] = true
			}
		}

		it.Reset(min, max)
		got := map[int]bool{}
		for it.Next() {
			got[it.Value()] = true
		}
		require.Equal(t, expected, got)
	}
}

func TestKnnAgainstBruteForce(t *testing.T) {
	pm := testutil.NewRandomPointMaker()
	tree := New[int](3)
	points := make([][]float64, 400)
	for i := range points {
		points[i] = pm.MakePoint(3, -50, 50)
		require.NoError(t, tree.Insert(points[i], i))
	}

	it := tree.QueryKnn(make([]float64, 3), 1)
	for q := 0; q < 50; q++ {
		centre := pm.MakePoint(3, -50, 50)
		k := 1 + q%20

		dists := make([]float64, len(points))
		for i, p := range points {
			dists[i] = geom.L2(centre, p)
		}
		sort.Float64s(dists)

		it.Reset(centre, k)
		prev := -1.0
		count := 0
		for it.Next() {
			e := it.Entry()
			// Ascending order
			require.GreaterOrEqual(t, e.Dist, prev)
			// Matches the brute force distance ranking
			require.InDelta(t, dists[count], e.Dist, 1e-9)
			prev = e.Dist
			count++
		}
		require.Equal(t, k, count)
	}
}

func TestResetYieldsIdenticalSequences(t *testing.T) {
	pm := testutil.NewRandomPointMaker()
	tree := New[int](2)
	for i := range 300 {
		require.NoError(t, tree.Insert(pm.MakePoint(2, 0, 10), i))
	}

	min := []float64{2, 2}
	max := []float64{8, 8}
	it := tree.Query(min, max)
	first := []int{}
	for it.Next() {
		first = append(first, it.Value())
	}
	it.Reset(min, max)
	second := []int{}
	for it.Next() {
		second = append(second, it.Value())
	}
	require.Equal(t, first, second)

	centre := []float64{5, 5}
	kit := tree.QueryKnn(centre, 10)
	firstKnn := []float64{}
	for kit.Next() {
		firstKnn = append(firstKnn, kit.Entry().Dist)
	}
	kit.Reset(centre, 10)
	secondKnn := []float64{}
	for kit.Next() {
		secondKnn = append(secondKnn, kit.Entry().Dist)
	}
	require.Equal(t, firstKnn, secondKnn)
}

func TestKnnL1Distance(t *testing.T) {
	tree := exampleTree(t)

	it := tree.QueryKnnFunc([]float64{6, 3}, 1, geom.L1)
	require.True(t, it.Next())
	// Under L1 both (7,2) and (5,4) sit at distance 2, either may win
	assert.Equal(t, 2.0, it.Entry().Dist)
	assert.Contains(t, [][]float64{{7, 2}, {5, 4}}, it.Entry().Point)
}

func BenchmarkInsert(b *testing.B) {
	pm := testutil.NewRandomPointMaker()
	points := make([][]float64, b.N)
	for i := range points {
		points[i] = pm.MakePoint(2, 0, 1000)
	}
	tree := New[int](2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(points[i], i)
	}
}

func BenchmarkKnn(b *testing.B) {
	pm := testutil.NewRandomPointMaker()
	tree := New[int](2)
	for i := range 100_000 {
		tree.Insert(pm.MakePoint(2, 0, 1000), i)
	}
	it := tree.QueryKnn([]float64{500, 500}, 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it.Reset(pm.MakePoint(2, 0, 1000), 10)
		for it.Next() {
		}
	}
}
