// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package fuzzutil

// A Step is one mutation or check decoded from the fuzzer's byte stream
type Step interface {
	DoStep()
}

// A TestRun decodes a whole byte stream into steps up front, runs them in
// order, then runs the cleanup. Harnesses put their final oracle
// comparison into cleanup so every run ends with a full consistency check.
type TestRun struct {
	steps   []Step
	cleanup func()
}

func NewTestRun(bytes []byte, stepMaker func(*ByteConsumer) Step, cleanup func()) *TestRun {
	tr := &TestRun{
		steps:   make([]Step, 0),
		cleanup: cleanup,
	}
	byteConsumer := NewByteConsumer(bytes)

	for byteConsumer.Len() > 0 {
		step := stepMaker(byteConsumer)
		tr.steps = append(tr.steps, step)
	}
	return tr
}

func (t *TestRun) Run() {
	defer t.cleanup()
	for _, step := range t.steps {
		step.DoStep()
	}
}
