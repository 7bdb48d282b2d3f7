// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package quadtree

import (
	"fmt"

	"github.com/fmstephe/spatial-system/pkg/geom"
)

// The number of entries a leaf holds before it splits into an inner node
const MAX_NODE_SIZE = 10

// The maximum node depth. Beyond this the node radius can no longer be
// halved meaningfully, so leaves simply accumulate entries. This is what
// permits storing arbitrarily many duplicate points.
const MAX_DEPTH = 52

// A point entry. The tree retains the caller's coordinate slice, there is
// no defensive copying in this engine.
type entry[V any] struct {
	point []float64
	value V
}

func (e *entry[V]) String() string {
	return fmt.Sprintf("(%.3v %v)", e.point, e.value)
}

// node structs make up the body of the tree.
//
// A node is either a leaf, holding up to MAX_NODE_SIZE entries, or an inner
// node holding one slot per quadrant of its box. There are 2^dims
// quadrants, the bits of a slot index select the high or low half of the
// node box along each axis. A slot holds either nothing, a single entry, or
// a subnode covering that quadrant.
//
// Invariant: every entry reachable through slot i lies inside quadrant i of
// this node's box, lower bounds inclusive, upper bounds exclusive.
type node[V any] struct {
	centre []float64
	radius float64

	// Used if this node is a leaf
	entries []*entry[V]

	// Used if this node is inner, nil otherwise
	subs []any
}

func (n *node[V]) isLeaf() bool {
	return n.subs == nil
}

// Returns the slot index of p relative to centre. Bit j is set when p sits
// in the upper half along axis j. Points exactly on the split plane take
// the upper half.
func slotOf(p, centre []float64) uint64 {
	pos := uint64(0)
	for j := range p {
		if p[j] >= centre[j] {
			pos |= uint64(1) << j
		}
	}
	return pos
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
	pos := slotOf(e.point, n.centre)
	switch s := n.subs[pos].(type) {
	case nil:
		n.subs[pos] = e
	case *entry[V]:
		// A second entry falls into this slot, grow a subnode for it
		sub := n.newSubnode(pos)
		n.subs[pos] = sub
		sub.insert(s, depth+1, dims)
		sub.insert(e, depth+1, dims)
	case *node[V]:
		s.insert(e, depth+1, dims)
	}
}

// Removes one entry with coordinates exactly p whose value satisfies pred.
// A nil pred matches any value.
func (n *node[V]) remove(p []float64, pred func(V) bool, dims int) (*entry[V], bool) {
	if n.isLeaf() {
		for i, e := range n.entries {
			if geom.Equal(e.point, p) && (pred == nil || pred(e.value)) {
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				return e, true
			}
		}
		return nil, false
	}

	pos := slotOf(p, n.centre)
	switch s := n.subs[pos].(type) {
	case nil:
		return nil, false
	case *entry[V]:
		if geom.Equal(s.point, p) && (pred == nil || pred(s.value)) {
			n.subs[pos] = nil
			n.maybeCollapse()
			return s, true
		}
		return nil, false
	case *node[V]:
		e, ok := s.remove(p, pred, dims)
		if ok {
			n.maybeCollapse()
		}
		return e, ok
	}
	panic("unreachable")
}

// Collapses this inner node back to a leaf when its whole content fits in
// one leaf and no subnode is itself inner. Keeps memory bounded as entries
// are removed.
func (n *node[V]) maybeCollapse() {
	if n.isLeaf() {
		return
	}
	total := 0
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
	for _, s := range n.subs {
		switch v := s.(type) {
		case *entry[V]:
			entries = append(entries, v)
		case *node[V]:
			entries = append(entries, v.entries...)
		}
	}
	n.subs = nil
	n.entries = entries
}

// Locates an entry with coordinates exactly p whose value satisfies pred
func (n *node[V]) find(p []float64, pred func(V) bool) (*entry[V], bool) {
	if n.isLeaf() {
		for _, e := range n.entries {
			if geom.Equal(e.point, p) && (pred == nil || pred(e.value)) {
				return e, true
			}
		}
		return nil, false
	}

	pos := slotOf(p, n.centre)
	switch s := n.subs[pos].(type) {
	case *entry[V]:
		if geom.Equal(s.point, p) && (pred == nil || pred(s.value)) {
			return s, true
		}
	case *node[V]:
		return s.find(p, pred)
	}
	return nil, false
}

// Moves one entry from oldP to newP. The entry is removed where it is
// found, then reinserted at the nearest node on the unwind path whose box
// still contains newP. When no node on the path contains newP the entry is
// handed back to the caller with done == false, and the tree root must
// reinsert it.
func (n *node[V]) update(oldP, newP []float64, pred func(V) bool, depth, dims int) (e *entry[V], found, done bool) {
	if n.isLeaf() {
		for i, cand := range n.entries {
			if geom.Equal(cand.point, oldP) && (pred == nil || pred(cand.value)) {
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				e, found = cand, true
				break
			}
		}
	} else {
		pos := slotOf(oldP, n.centre)
		switch s := n.subs[pos].(type) {
		case *entry[V]:
			if geom.Equal(s.point, oldP) && (pred == nil || pred(s.value)) {
				n.subs[pos] = nil
				e, found = s, true
			}
		case *node[V]:
			e, found, done = s.update(oldP, newP, pred, depth+1, dims)
		}
	}

	if found && !done && geom.FitsIntoNode(newP, n.centre, n.radius) {
		e.point = newP
		n.insert(e, depth, dims)
		done = true
	}
	if found {
		n.maybeCollapse()
	}
	return e, found, done
}

// Applies fun to every entry in the subtree lying inside the closed box
// [min, max], until fun returns false
func (n *node[V]) survey(min, max []float64, fun func(p []float64, v V) bool) bool {
	if n.isLeaf() {
		for _, e := range n.entries {
			if geom.PointInBox(e.point, min, max) {
				if !fun(e.point, e.value) {
					return false
				}
			}
		}
		return true
	}

	for _, s := range n.subs {
		switch v := s.(type) {
		case *entry[V]:
			if geom.PointInBox(v.point, min, max) {
				if !fun(v.point, v.value) {
					return false
				}
			}
		case *node[V]:
			lo, hi := v.bounds()
			if geom.Overlaps(lo, hi, min, max) {
				if !v.survey(min, max, fun) {
					return false
				}
			}
		}
	}
	return true
}

// Returns the corners of this node's box. Allocates, used only on the
// callback survey path.
func (n *node[V]) bounds() ([]float64, []float64) {
	lo := make([]float64, len(n.centre))
	hi := make([]float64, len(n.centre))
	for j := range n.centre {
		lo[j] = n.centre[j] - n.radius
		hi[j] = n.centre[j] + n.radius
	}
	return lo, hi
}
