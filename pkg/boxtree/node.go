// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package boxtree

import (
	"fmt"

	"github.com/fmstephe/spatial-system/pkg/geom"
)

// The number of entries a leaf holds before it splits into an inner node
const MAX_NODE_SIZE = 10

// The maximum node depth, beyond it leaves simply accumulate entries
const MAX_DEPTH = 52

// A box entry. The tree retains the caller's coordinate slices, there is
// no defensive copying in this engine.
type entry[V any] struct {
	min   []float64
	max   []float64
	value V
}

func (e *entry[V]) String() string {
	return fmt.Sprintf("(%.3v-%.3v %v)", e.min, e.max, e.value)
}

func (e *entry[V]) sameCorners(min, max []float64) bool {
	return geom.Equal(e.min, min) && geom.Equal(e.max, max)
}

// node structs make up the body of the tree.
//
// A node is either a leaf, holding up to MAX_NODE_SIZE entries, or an
// inner node holding one slot per quadrant plus a straddle list. A box
// belongs to a quadrant slot only when it lies strictly on one side of the
// centre in every dimension. Boxes crossing the centre plane in at least
// one dimension live in the straddle list.
//
// Invariant: every entry in the straddle list actually straddles the
// centre plane of this node.
type node[V any] struct {
	centre []float64
	radius float64

	// Used if this node is a leaf
	entries []*entry[V]

	// Used if this node is inner, nil otherwise
	subs     []any
	straddle []*entry[V]
}

func (n *node[V]) isLeaf() bool {
	return n.subs == nil
}

// Returns the quadrant slot of the box [min, max] relative to centre. The
// second return is false when the box crosses the centre plane in some
// dimension and belongs to no slot. The lower half is max[j] < centre[j],
// the upper half min[j] >= centre[j], matching the upper exclusive
// boundary convention of the point trees.
func slotOfBox(min, max, centre []float64) (uint64, bool) {
	pos := uint64(0)
	for j := range centre {
		switch {
		case min[j] >= centre[j]:
			pos |= uint64(1) << j
		case max[j] >= centre[j]:
			return 0, false
		}
	}
	return pos, true
}

// Builds the empty subnode covering quadrant pos of this node
func (n *node[V]) newSubnode(pos uint64) *node[V] {
	half := n.radius / 2
	centre := make([]float64, len(n.centre))
	for j := range centre {
		if pos&(uint64(1)<<j) != 0 {
			centre[j] = n.centre[j] + half
		} else {
			centre[j] = n.centre[j] - half
		}
	}
	return &node[V]{centre: centre, radius: half}
}

func (n *node[V]) insert(e *entry[V], depth, dims int) {
	if n.isLeaf() {
		if len(n.entries) < MAX_NODE_SIZE || depth >= MAX_DEPTH {
			n.entries = append(n.entries, e)
			return
		}
		// The leaf is full, convert to an inner node and redistribute
		entries := n.entries
		n.entries = nil
		n.subs = make([]any, 1<<dims)
		for _, old := range entries {
			n.insertInner(old, depth, dims)
		}
	}
	n.insertInner(e, depth, dims)
}

func (n *node[V]) insertInner(e *entry[V], depth, dims int) {
	pos, fits := slotOfBox(e.min, e.max, n.centre)
	if !fits {
		n.straddle = append(n.straddle, e)
		return
	}
	switch s := n.subs[pos].(type) {
	case nil:
		n.subs[pos] = e
	case *entry[V]:
		sub := n.newSubnode(pos)
		n.subs[pos] = sub
		sub.insert(s, depth+1, dims)
		sub.insert(e, depth+1, dims)
	case *node[V]:
		s.insert(e, depth+1, dims)
	}
}

// Removes one entry with corners exactly (min, max) whose value satisfies
// pred. A nil pred matches any value.
func (n *node[V]) remove(min, max []float64, pred func(V) bool, dims int) (*entry[V], bool) {
	if n.isLeaf() {
		for i, e := range n.entries {
			if e.sameCorners(min, max) && (pred == nil || pred(e.value)) {
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				return e, true
			}
		}
		return nil, false
	}

	pos, fits := slotOfBox(min, max, n.centre)
	if !fits {
		for i, e := range n.straddle {
			if e.sameCorners(min, max) && (pred == nil || pred(e.value)) {
				n.straddle = append(n.straddle[:i], n.straddle[i+1:]...)
				n.maybeCollapse()
				return e, true
			}
		}
		return nil, false
	}

	switch s := n.subs[pos].(type) {
	case nil:
		return nil, false
	case *entry[V]:
		if s.sameCorners(min, max) && (pred == nil || pred(s.value)) {
			n.subs[pos] = nil
			n.maybeCollapse()
			return s, true
		}
		return nil, false
	case *node[V]:
		e, ok := s.remove(min, max, pred, dims)
		if ok {
			n.maybeCollapse()
		}
		return e, ok
	}
	panic("unreachable")
}

// Collapses this inner node back to a leaf when its whole content,
// straddlers included, fits in one leaf and no subnode is itself inner
func (n *node[V]) maybeCollapse() {
	if n.isLeaf() {
		return
	}
	total := len(n.straddle)
	for _, s := range n.subs {
		switch v := s.(type) {
		case *entry[V]:
			total++
		case *node[V]:
			if !v.isLeaf() {
				return
			}
			total += len(v.entries)
		}
	}
	if total > MAX_NODE_SIZE {
		return
	}

	entries := make([]*entry[V], 0, total)
	entries = append(entries, n.straddle...)
	for _, s := range n.subs {
		switch v := s.(type) {
		case *entry[V]:
			entries = append(entries, v)
		case *node[V]:
			entries = append(entries, v.entries...)
		}
	}
	n.subs = nil
	n.straddle = nil
	n.entries = entries
}

// Locates an entry with corners exactly (min, max) whose value satisfies
// pred
func (n *node[V]) find(min, max []float64, pred func(V) bool) (*entry[V], bool) {
	if n.isLeaf() {
		for _, e := range n.entries {
			if e.sameCorners(min, max) && (pred == nil || pred(e.value)) {
				return e, true
			}
		}
		return nil, false
	}

	pos, fits := slotOfBox(min, max, n.centre)
	if !fits {
		for _, e := range n.straddle {
			if e.sameCorners(min, max) && (pred == nil || pred(e.value)) {
				return e, true
			}
		}
		return nil, false
	}

	switch s := n.subs[pos].(type) {
	case *entry[V]:
		if s.sameCorners(min, max) && (pred == nil || pred(s.value)) {
			return s, true
		}
	case *node[V]:
		return s.find(min, max, pred)
	}
	return nil, false
}

// Moves one entry to new corners. The entry is removed where it is found,
// then reinserted at the nearest node on the unwind path whose box still
// contains it. Re-evaluating the slot function on the way decides whether
// the entry lands back in a slot, in a straddle list, or with an ancestor.
func (n *node[V]) update(oldMin, oldMax, newMin, newMax []float64, pred func(V) bool, depth, dims int) (e *entry[V], found, done bool) {
	if n.isLeaf() {
		for i, cand := range n.entries {
			if cand.sameCorners(oldMin, oldMax) && (pred == nil || pred(cand.value)) {
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				e, found = cand, true
				break
			}
		}
	} else {
		pos, fits := slotOfBox(oldMin, oldMax, n.centre)
		if !fits {
			for i, cand := range n.straddle {
				if cand.sameCorners(oldMin, oldMax) && (pred == nil || pred(cand.value)) {
					n.straddle = append(n.straddle[:i], n.straddle[i+1:]...)
					e, found = cand, true
					break
				}
			}
		} else {
			switch s := n.subs[pos].(type) {
			case *entry[V]:
				if s.sameCorners(oldMin, oldMax) && (pred == nil || pred(s.value)) {
					n.subs[pos] = nil
					e, found = s, true
				}
			case *node[V]:
				e, found, done = s.update(oldMin, oldMax, newMin, newMax, pred, depth+1, dims)
			}
		}
	}

	if found && !done && geom.BoxFitsIntoNode(newMin, newMax, n.centre, n.radius) {
		e.min = newMin
		e.max = newMax
		n.insert(e, depth, dims)
		done = true
	}
	if found {
		n.maybeCollapse()
	}
	return e, found, done
}
