// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakePointDeterministic(t *testing.T) {
	a := NewRandomPointMaker()
	b := NewRandomPointMaker()

	for range 100 {
		require.Equal(t, a.MakePoint(3, -10, 10), b.MakePoint(3, -10, 10))
	}
}

func TestMakePointBounds(t *testing.T) {
	rpm := NewRandomPointMaker()
	for range 1000 {
		p := rpm.MakePoint(4, -5, 5)
		require.Len(t, p, 4)
		for _, c := range p {
			require.GreaterOrEqual(t, c, -5.0)
			require.Less(t, c, 5.0)
		}
	}
}

func TestMakeBoxOrdered(t *testing.T) {
	rpm := NewRandomPointMaker()
	for range 1000 {
		min, max := rpm.MakeBox(3, 0, 100)
		for i := range min {
			require.LessOrEqual(t, min[i], max[i])
		}
	}
}
