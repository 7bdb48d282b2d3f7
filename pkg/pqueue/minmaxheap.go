// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package pqueue

import (
	"math/bits"

	"github.com/fmstephe/flib/fmath"
)

// A MinMaxHeap is a double ended priority queue over T, following Atkinson
// et al. Levels of the tree alternate between min levels and max levels.
// Every element on a min level is <= all of its descendants, every element
// on a max level is >= all of its descendants. This gives us Push, PopMin
// and PopMax all in O(log n).
//
// The kNN engines use this as a bounded candidate buffer. After each Push
// the caller pops the max to cap the buffer at k elements, and reads the
// current pruning radius from PeekMax.
type MinMaxHeap[T any] struct {
	less  func(a, b T) bool
	items []T
}

// Returns a new empty MinMaxHeap ordered by less
func NewMinMaxHeap[T any](less func(a, b T) bool) *MinMaxHeap[T] {
	return &MinMaxHeap[T]{
		less:  less,
		items: make([]T, 0, defaultCapacity),
	}
}

// Returns the number of items currently held in the heap
func (h *MinMaxHeap[T]) Len() int {
	return len(h.items)
}

// Removes all items from the heap and shrinks the backing array
func (h *MinMaxHeap[T]) Clear() {
	h.items = make([]T, 0, defaultCapacity)
}

// Adds item to the heap
func (h *MinMaxHeap[T]) Push(item T) {
	if len(h.items) == cap(h.items) {
		newCapacity := int(fmath.NxtPowerOfTwo(int64(cap(h.items) + 1)))
		newItems := make([]T, len(h.items), newCapacity)
		copy(newItems, h.items)
		h.items = newItems
	}
	h.items = append(h.items, item)
	h.bubbleUp(len(h.items) - 1)
}

// Returns, without removing, the smallest item in the heap
func (h *MinMaxHeap[T]) PeekMin() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	return h.items[0], true
}

// Returns, without removing, the largest item in the heap
func (h *MinMaxHeap[T]) PeekMax() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	return h.items[h.maxIndex()], true
}

// Removes and returns the smallest item in the heap
func (h *MinMaxHeap[T]) PopMin() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	min := h.items[0]
	h.removeAt(0)
	return min, true
}

// Removes and returns the largest item in the heap
func (h *MinMaxHeap[T]) PopMax() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	mi := h.maxIndex()
	max := h.items[mi]
	h.removeAt(mi)
	return max, true
}

// The root sits on a min level, its children hold the two max candidates
func (h *MinMaxHeap[T]) maxIndex() int {
	switch len(h.items) {
	case 1:
		return 0
	case 2:
		return 1
	}
	if h.less(h.items[1], h.items[2]) {
		return 2
	}
	return 1
}

// Indicates whether index i sits on a min level. The root is on a min
// level, levels alternate from there.
func onMinLevel(i int) bool {
	depth := bits.Len(uint(i+1)) - 1
	return depth%2 == 0
}

func (h *MinMaxHeap[T]) removeAt(i int) {
	last := len(h.items) - 1
	h.items[i] = h.items[last]
	var zero T
	h.items[last] = zero
	h.items = h.items[:last]
	if i < len(h.items) {
		h.trickleDown(i)
	}
}

func (h *MinMaxHeap[T]) bubbleUp(i int) {
	if i == 0 {
		return
	}
	parent := (i - 1) / 2
	if onMinLevel(i) {
		if h.less(h.items[parent], h.items[i]) {
			h.items[i], h.items[parent] = h.items[parent], h.items[i]
			h.bubbleUpMax(parent)
		} else {
			h.bubbleUpMin(i)
		}
	} else {
		if h.less(h.items[i], h.items[parent]) {
			h.items[i], h.items[parent] = h.items[parent], h.items[i]
			h.bubbleUpMin(parent)
		} else {
			h.bubbleUpMax(i)
		}
	}
}

func (h *MinMaxHeap[T]) bubbleUpMin(i int) {
	// Move up through grandparents while we are smaller
	for i >= 3 {
		grandparent := ((i-1)/2 - 1) / 2
		if !h.less(h.items[i], h.items[grandparent]) {
			return
		}
		h.items[i], h.items[grandparent] = h.items[grandparent], h.items[i]
		i = grandparent
	}
}

func (h *MinMaxHeap[T]) bubbleUpMax(i int) {
	// Move up through grandparents while we are larger
	for i >= 3 {
		grandparent := ((i-1)/2 - 1) / 2
		if !h.less(h.items[grandparent], h.items[i]) {
			return
		}
		h.items[i], h.items[grandparent] = h.items[grandparent], h.items[i]
		i = grandparent
	}
}

func (h *MinMaxHeap[T]) trickleDown(i int) {
	if onMinLevel(i) {
		h.trickleDownMin(i)
	} else {
		h.trickleDownMax(i)
	}
}

func (h *MinMaxHeap[T]) trickleDownMin(i int) {
	for {
		m, isGrandchild := h.extremeDescendant(i, h.lessAt)
		if m < 0 {
			return
		}
		if !h.less(h.items[m], h.items[i]) {
			return
		}
		h.items[i], h.items[m] = h.items[m], h.items[i]
		if !isGrandchild {
			return
		}
		// A grandchild swap may break the max property of the level
		// in between
		parent := (m - 1) / 2
		if h.less(h.items[parent], h.items[m]) {
			h.items[m], h.items[parent] = h.items[parent], h.items[m]
		}
		i = m
	}
}

func (h *MinMaxHeap[T]) trickleDownMax(i int) {
	for {
		m, isGrandchild := h.extremeDescendant(i, h.greaterAt)
		if m < 0 {
			return
		}
		if !h.less(h.items[i], h.items[m]) {
			return
		}
		h.items[i], h.items[m] = h.items[m], h.items[i]
		if !isGrandchild {
			return
		}
		// A grandchild swap may break the min property of the level
		// in between
		parent := (m - 1) / 2
		if h.less(h.items[m], h.items[parent]) {
			h.items[m], h.items[parent] = h.items[parent], h.items[m]
		}
		i = m
	}
}

func (h *MinMaxHeap[T]) lessAt(a, b int) bool {
	return h.less(h.items[a], h.items[b])
}

func (h *MinMaxHeap[T]) greaterAt(a, b int) bool {
	return h.less(h.items[b], h.items[a])
}

// Returns the index of the most extreme element among the children and
// grandchildren of i, under the ordering given by before. Returns -1 when i
// has no children. The second return indicates a grandchild was selected.
func (h *MinMaxHeap[T]) extremeDescendant(i int, before func(a, b int) bool) (int, bool) {
	left := 2*i + 1
	if left >= len(h.items) {
		return -1, false
	}
	best := left
	isGrandchild := false
	consider := func(idx int, grandchild bool) {
		if idx < len(h.items) && before(idx, best) {
			best = idx
			isGrandchild = grandchild
		}
	}
	consider(left+1, false)
	consider(2*left+1, true)
	consider(2*left+2, true)
	consider(2*left+3, true)
	consider(2*left+4, true)
	return best, isGrandchild
}
