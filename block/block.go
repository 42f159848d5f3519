// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package block implements the minimal columnar abstractions exchanged between
// a grouping driver and the category merger: pages of nullable byte columns in
// and group-id vectors out.
package block

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cockroachdb/errors"
)

// Block is a column of values, one per position.
type Block interface {
	// PositionCount returns the number of positions in the block.
	PositionCount() int
	// IsNull returns true if the value at position i is null.
	IsNull(i int) bool
	// AreAllValuesNull returns true if every position is null.
	AreAllValuesNull() bool
}

// Bytes is a nullable column of byte slices.
type Bytes struct {
	values [][]byte
	// nulls holds the null positions; it is nil if there are none.
	nulls *roaring.Bitmap
}

var _ Block = (*Bytes)(nil)

// PositionCount implements Block.
func (b *Bytes) PositionCount() int {
	return len(b.values)
}

// IsNull implements Block.
func (b *Bytes) IsNull(i int) bool {
	return b.nulls != nil && b.nulls.Contains(uint32(i))
}

// AreAllValuesNull implements Block. An empty block has no non-null values.
func (b *Bytes) AreAllValuesNull() bool {
	return b.NullCount() == len(b.values)
}

// NullCount returns the number of null positions.
func (b *Bytes) NullCount() int {
	if b.nulls == nil {
		return 0
	}
	return int(b.nulls.GetCardinality())
}

// At returns the value at position i, or nil if it is null. The returned
// slice aliases the block.
func (b *Bytes) At(i int) []byte {
	if b.IsNull(i) {
		return nil
	}
	return b.values[i]
}

// String returns a description of the block.
func (b *Bytes) String() string {
	return fmt.Sprintf("bytes[positions=%d,nulls=%d]", len(b.values), b.NullCount())
}

// BytesBuilder constructs a Bytes block.
type BytesBuilder struct {
	values [][]byte
	nulls  *roaring.Bitmap
}

// AppendBytes appends a non-null value. The value is retained, not copied.
func (bb *BytesBuilder) AppendBytes(v []byte) *BytesBuilder {
	bb.values = append(bb.values, v)
	return bb
}

// AppendNull appends a null value.
func (bb *BytesBuilder) AppendNull() *BytesBuilder {
	if bb.nulls == nil {
		bb.nulls = roaring.New()
	}
	bb.nulls.Add(uint32(len(bb.values)))
	bb.values = append(bb.values, nil)
	return bb
}

// AppendNulls appends n null values.
func (bb *BytesBuilder) AppendNulls(n int) *BytesBuilder {
	for i := 0; i < n; i++ {
		bb.AppendNull()
	}
	return bb
}

// Build returns the constructed block and resets the builder.
func (bb *BytesBuilder) Build() *Bytes {
	b := &Bytes{values: bb.values, nulls: bb.nulls}
	*bb = BytesBuilder{}
	return b
}

// NewConstantBytes returns a block with n positions all holding v.
func NewConstantBytes(v []byte, n int) *Bytes {
	var bb BytesBuilder
	for i := 0; i < n; i++ {
		bb.AppendBytes(v)
	}
	return bb.Build()
}

// Page is a set of equally sized blocks, one per channel.
type Page struct {
	positionCount int
	blocks        []Block
}

// NewPage constructs a page. All blocks must have positionCount positions.
func NewPage(positionCount int, blocks ...Block) (*Page, error) {
	for i, b := range blocks {
		if n := b.PositionCount(); n != positionCount {
			return nil, errors.Newf("block: channel %d has %d positions, page has %d",
				errors.Safe(i), errors.Safe(n), errors.Safe(positionCount))
		}
	}
	return &Page{positionCount: positionCount, blocks: blocks}, nil
}

// PositionCount returns the number of rows in the page.
func (p *Page) PositionCount() int {
	return p.positionCount
}

// ChannelCount returns the number of blocks in the page.
func (p *Page) ChannelCount() int {
	return len(p.blocks)
}

// Block returns the block at the provided channel.
func (p *Page) Block(channel int) Block {
	return p.blocks[channel]
}

// BytesBlock returns the block at the provided channel, which must be a
// *Bytes.
func (p *Page) BytesBlock(channel int) (*Bytes, error) {
	if channel < 0 || channel >= len(p.blocks) {
		return nil, errors.Newf("block: channel %d out of range [0,%d)",
			errors.Safe(channel), errors.Safe(len(p.blocks)))
	}
	b, ok := p.blocks[channel].(*Bytes)
	if !ok {
		return nil, errors.Newf("block: channel %d holds %T, not bytes",
			errors.Safe(channel), p.blocks[channel])
	}
	return b, nil
}
