// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block

import (
	"slices"
	"sync"
)

var intSlicePool = sync.Pool{
	New: func() interface{} {
		s := make([]int32, 0, 64)
		return &s
	},
}

// IntVector is a non-nullable vector of int32 values. Vectors built by an
// IntBuilder hold pooled memory and must be released.
type IntVector struct {
	values *[]int32
}

// NewConstantIntVector returns a vector with n positions holding v. The
// vector must be released.
func NewConstantIntVector(v int32, n int) *IntVector {
	b := NewIntBuilder(n)
	for i := 0; i < n; i++ {
		b.AppendInt(v)
	}
	return b.Build()
}

// Len returns the number of values in the vector.
func (v *IntVector) Len() int {
	return len(*v.values)
}

// At returns the value at position i.
func (v *IntVector) At(i int) int32 {
	return (*v.values)[i]
}

// AppendTo appends the vector's values to dst.
func (v *IntVector) AppendTo(dst []int32) []int32 {
	return append(dst, (*v.values)...)
}

// Release returns the vector's memory to the pool. The vector must not be used
// afterwards. Release is idempotent.
func (v *IntVector) Release() {
	if v.values == nil {
		return
	}
	*v.values = (*v.values)[:0]
	intSlicePool.Put(v.values)
	v.values = nil
}

// IntBuilder accumulates int32 values into an IntVector. A builder that is not
// built must be released.
type IntBuilder struct {
	values *[]int32
}

// NewIntBuilder returns a builder with room for at least capacity values.
func NewIntBuilder(capacity int) *IntBuilder {
	values := intSlicePool.Get().(*[]int32)
	*values = slices.Grow((*values)[:0], capacity)
	return &IntBuilder{values: values}
}

// AppendInt appends a value.
func (b *IntBuilder) AppendInt(v int32) {
	*b.values = append(*b.values, v)
}

// Len returns the number of values appended so far.
func (b *IntBuilder) Len() int {
	return len(*b.values)
}

// Build transfers the builder's memory to a new vector. The builder must not
// be used afterwards except to Release it, which is then a no-op.
func (b *IntBuilder) Build() *IntVector {
	v := &IntVector{values: b.values}
	b.values = nil
	return v
}

// Release returns the builder's memory to the pool unless it has been
// transferred by Build. Release is idempotent, so it may be deferred.
func (b *IntBuilder) Release() {
	if b.values == nil {
		return
	}
	*b.values = (*b.values)[:0]
	intSlicePool.Put(b.values)
	b.values = nil
}
