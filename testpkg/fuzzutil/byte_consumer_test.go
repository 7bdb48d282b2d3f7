// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package fuzzutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteConsumer_Bytes(t *testing.T) {
	consumer := NewByteConsumer([]byte{})
	consumer.pushBytes([]byte{1, 2, 3, 4, 5, 6})
	consumer.pushByte(7)
	assert.Equal(t, 7, consumer.Len())

	// Consume the available bytes
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, consumer.Bytes(6))
	assert.Equal(t, 1, consumer.Len())

	// Consume bytes, but not enough available - get remaining bytes and zeroes
	assert.Equal(t, []byte{7, 0, 0, 0, 0, 0}, consumer.Bytes(6))
	assert.Equal(t, 0, consumer.Len())

	// Consume bytes, but none available - get zeroes
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0}, consumer.Bytes(6))
	assert.Equal(t, 0, consumer.Len())
}

func TestByteConsumer_Byte(t *testing.T) {
	consumer := NewByteConsumer([]byte{})
	consumer.pushByte(12)
	assert.Equal(t, 1, consumer.Len())

	// Consume the available bytes
	assert.Equal(t, byte(12), consumer.Byte())
	assert.Equal(t, 0, consumer.Len())

	// Consume bytes, but none available - get zeroes
	assert.Equal(t, byte(0), consumer.Byte())
	assert.Equal(t, 0, consumer.Len())
}

func TestByteConsumer_Uint16(t *testing.T) {
	consumer := NewByteConsumer([]byte{})
	consumer.pushUint16(10_000)
	consumer.pushByte(7)
	assert.Equal(t, 3, consumer.Len())

	// Consume the available bytes
	assert.Equal(t, uint16(10_000), consumer.Uint16())
	assert.Equal(t, 1, consumer.Len())

	// Consume bytes, but not enough available - get remaining bytes and zeroes
	assert.Equal(t, uint16(7), consumer.Uint16())
	assert.Equal(t, 0, consumer.Len())

	// Consume bytes, but none available - get zeroes
	assert.Equal(t, uint16(0), consumer.Uint16())
	assert.Equal(t, 0, consumer.Len())
}

func TestByteConsumer_Float64(t *testing.T) {
	consumer := NewByteConsumer([]byte{})
	consumer.pushBytes([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})

	// Values always land inside the requested range
	v := consumer.Float64(-10, 10)
	assert.GreaterOrEqual(t, v, -10.0)
	assert.Less(t, v, 10.0)

	// Exhausted consumers produce the low bound
	assert.Equal(t, -10.0, consumer.Float64(-10, 10))
	assert.Equal(t, 0, consumer.Len())
}

func TestByteConsumer_Float64Range(t *testing.T) {
	for _, seed := range MakeRandomTestCases() {
		consumer := NewByteConsumer(seed)
		for consumer.Len() > 0 {
			v := consumer.Float64(0, 1)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 1.0)
		}
	}
}
