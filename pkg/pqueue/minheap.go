// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package pqueue

import (
	"github.com/fmstephe/flib/fmath"
)

// The capacity a heap starts with, and shrinks back to on Clear
const defaultCapacity = 16

// A MinHeap is a binary heap ordered by a caller supplied less function.
// The zero-value is not usable, heaps must be built with NewMinHeap.
//
// The kNN engines use these as best-first frontiers, so Clear releases the
// backing array back to its default capacity rather than keeping a
// potentially very large buffer alive between queries.
type MinHeap[T any] struct {
	less  func(a, b T) bool
	items []T
}

// Returns a new empty MinHeap ordered by less
func NewMinHeap[T any](less func(a, b T) bool) *MinHeap[T] {
	return &MinHeap[T]{
		less:  less,
		items: make([]T, 0, defaultCapacity),
	}
}

// Returns the number of items currently held in the heap
func (h *MinHeap[T]) Len() int {
	return len(h.items)
}

// Removes all items from the heap and shrinks the backing array
func (h *MinHeap[T]) Clear() {
	h.items = make([]T, 0, defaultCapacity)
}

// Adds item to the heap
func (h *MinHeap[T]) Push(item T) {
	if len(h.items) == cap(h.items) {
		h.grow()
	}
	h.items = append(h.items, item)
	h.bubbleUp(len(h.items) - 1)
}

// Returns, without removing, the smallest item in the heap
func (h *MinHeap[T]) PeekMin() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	return h.items[0], true
}

// Removes and returns the smallest item in the heap
func (h *MinHeap[T]) PopMin() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	min := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	var zero T
	h.items[last] = zero
	h.items = h.items[:last]
	h.trickleDown(0)
	return min, true
}

// Doubles the backing array, rounded to a power of two
func (h *MinHeap[T]) grow() {
	newCapacity := int(fmath.NxtPowerOfTwo(int64(cap(h.items) + 1)))
	newItems := make([]T, len(h.items), newCapacity)
	copy(newItems, h.items)
	h.items = newItems
}

func (h *MinHeap[T]) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(h.items[i], h.items[parent]) {
			return
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap[T]) trickleDown(i int) {
	for {
		left := 2*i + 1
		if left >= len(h.items) {
			return
		}
		smallest := left
		if right := left + 1; right < len(h.items) && h.less(h.items[right], h.items[left]) {
			smallest = right
		}
		if !h.less(h.items[smallest], h.items[i]) {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
