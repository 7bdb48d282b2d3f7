// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package pqueue

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func intLess(a, b int) bool {
	return a < b
}

func TestMinHeapEmpty(t *testing.T) {
	h := NewMinHeap(intLess)

	require.Equal(t, 0, h.Len())

	_, ok := h.PeekMin()
	require.False(t, ok)

	_, ok = h.PopMin()
	require.False(t, ok)
}

func TestMinHeapPushPop(t *testing.T) {
	h := NewMinHeap(intLess)

	for _, v := range []int{5, 3, 9, 1, 7, 4} {
		h.Push(v)
	}
	require.Equal(t, 6, h.Len())

	min, ok := h.PeekMin()
	require.True(t, ok)
	require.Equal(t, 1, min)

	// Pops come out in ascending order
	expected := []int{1, 3, 4, 5, 7, 9}
	for _, want := range expected {
		got, ok := h.PopMin()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	require.Equal(t, 0, h.Len())
}

func TestMinHeapRandomised(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	h := NewMinHeap(intLess)

	values := make([]int, 10_000)
	for i := range values {
		values[i] = r.Intn(1000)
		h.Push(values[i])
	}
	sort.Ints(values)

	for _, want := range values {
		got, ok := h.PopMin()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

func TestMinHeapClearShrinks(t *testing.T) {
	h := NewMinHeap(intLess)

	for i := range 10_000 {
		h.Push(i)
	}
	require.Equal(t, 10_000, h.Len())

	h.Clear()
	require.Equal(t, 0, h.Len())
	require.Equal(t, defaultCapacity, cap(h.items))

	// The heap is still usable after a Clear
	h.Push(2)
	h.Push(1)
	min, ok := h.PopMin()
	require.True(t, ok)
	require.Equal(t, 1, min)
}
