// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package fuzzutil

import "math/rand"

// Deterministic seed corpora for fuzz tests. The sizes step up far enough
// that index fuzz harnesses see trees which split, lift their roots and
// collapse again.
func MakeRandomTestCases() [][]byte {
	r := rand.New(rand.NewSource(1))
	return [][]byte{
		{},
		randomBytes(r, 1),
		randomBytes(r, 16),
		randomBytes(r, 100),
		randomBytes(r, 1000),
		randomBytes(r, 10_000),
		randomBytes(r, 100_000),
	}
}

func randomBytes(r *rand.Rand, size int) []byte {
	bytes := make([]byte, size)
	r.Read(bytes)
	return bytes
}
