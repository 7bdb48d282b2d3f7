// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package fuzzutil

import (
	"encoding/binary"
)

// A ByteConsumer turns a fuzzer supplied byte slice into a stream of typed
// values. When the bytes run out the consumer keeps producing zero values,
// so a fuzz harness never has to bounds check its pulls.
type ByteConsumer struct {
	bytes []byte
}

func NewByteConsumer(bytes []byte) *ByteConsumer {
	return &ByteConsumer{
		bytes: bytes,
	}
}

func (c *ByteConsumer) Len() int {
	return len(c.bytes)
}

func (c *ByteConsumer) Bytes(size int) []byte {
	consumed := make([]byte, size)
	copy(consumed, c.bytes)

	if len(c.bytes) <= size {
		c.bytes = c.bytes[:0]
	} else {
		c.bytes = c.bytes[size:]
	}
	return consumed
}

func (c *ByteConsumer) Byte() byte {
	dest := c.Bytes(1)
	return dest[0]
}

func (c *ByteConsumer) Uint16() uint16 {
	dest := c.Bytes(2)
	return binary.LittleEndian.Uint16(dest)
}

// Returns a float64 in the range [lo, hi). NaN and infinities never escape,
// arbitrary fuzzer bytes always map onto well formed coordinates.
func (c *ByteConsumer) Float64(lo, hi float64) float64 {
	dest := c.Bytes(8)
	raw := binary.LittleEndian.Uint64(dest)
	frac := float64(raw>>11) / float64(uint64(1)<<53)
	return lo + frac*(hi-lo)
}

// Test only
func (c *ByteConsumer) pushBytes(bytes []byte) {
	c.bytes = append(c.bytes, bytes...)
}

// Test only
func (c *ByteConsumer) pushByte(b byte) {
	c.pushBytes([]byte{b})
}

// Test only
func (c *ByteConsumer) pushUint16(value uint16) {
	bytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(bytes, value)
	c.pushBytes(bytes)
}
