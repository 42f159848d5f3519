// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package catmerge

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cockroachdb/catmerge/block"
	"github.com/cockroachdb/catmerge/catrepr"
	"github.com/cockroachdb/catmerge/internal/base"
	"github.com/cockroachdb/errors"
)

// NullOrd is the group id of the null group: rows without a category. The
// canonical category with id c is assigned group id c+1.
const NullOrd = 0

// AddInput receives the group ids produced for a page. The vector is only
// valid for the duration of the call.
type AddInput interface {
	Add(positionOffset int, groupIDs *block.IntVector)
}

// AddInputFunc adapts a function to the AddInput interface.
type AddInputFunc func(positionOffset int, groupIDs *block.IntVector)

// Add implements AddInput.
func (f AddInputFunc) Add(positionOffset int, groupIDs *block.IntVector) {
	f(positionOffset, groupIDs)
}

// Merger reconciles the intermediate categorization states of independent
// partitions into one canonical set of categories, rewriting each partition's
// local category ids into global group ids.
//
// A Merger is not safe for concurrent use. Independent Mergers share no state.
type Merger struct {
	opts        *Options
	categorizer Categorizer
	reader      catrepr.Reader
	// remap maps a local id, shifted by one to make room for the null group,
	// to a group id. It is rebuilt for every page.
	remap    []int32
	seenNull bool
	closed   bool
	metrics  Metrics
}

// New constructs a Merger. The Merger must be closed when no longer needed.
func New(opts *Options) (*Merger, error) {
	opts = opts.Clone()
	opts.EnsureDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Merger{
		opts:        opts,
		categorizer: opts.NewCategorizer(opts.categorizerOptions()),
	}, nil
}

// Add merges the intermediate state held by the page's configured channel and
// passes the resulting group ids, in ascending local id order, to addInput.
//
// An empty page is ignored. A page whose intermediate state is entirely null
// produces the single group id NullOrd. Otherwise one group id is produced per
// local category, preceded by NullOrd if the state carries a null marker.
//
// A malformed intermediate state results in an error marked as
// base.ErrCorruption and wrapping a *catrepr.DecodeError; addInput is not
// called. Categories decoded before the malformed descriptor remain merged.
func (m *Merger) Add(page *block.Page, addInput AddInput) error {
	if m.closed {
		return errors.Wrap(base.ErrClosed, "catmerge: merger")
	}
	if page.PositionCount() == 0 {
		return nil
	}
	state, err := page.BytesBlock(m.opts.Channel)
	if err != nil {
		return err
	}
	m.metrics.Pages++
	if state.AreAllValuesNull() {
		m.seenNull = true
		m.metrics.NullPages++
		ids := block.NewConstantIntVector(NullOrd, 1)
		defer ids.Release()
		addInput.Add(0, ids)
		return nil
	}

	hasNull, err := m.readIntermediate(firstValue(state))
	if err != nil {
		m.metrics.DecodeErrors++
		m.opts.Logger.Errorf("catmerge: rejecting page: %v", err)
		return err
	}
	builder := block.NewIntBuilder(len(m.remap))
	defer builder.Release()
	from := 1
	if hasNull {
		from = 0
	}
	for _, id := range m.remap[from:] {
		builder.AppendInt(id)
	}
	ids := builder.Build()
	defer ids.Release()
	addInput.Add(0, ids)
	return nil
}

// Process is a convenience wrapper around Add that returns the group ids
// produced for the page.
func (m *Merger) Process(page *block.Page) ([]int32, error) {
	var out []int32
	err := m.Add(page, AddInputFunc(func(_ int, ids *block.IntVector) {
		out = ids.AppendTo(out)
	}))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// firstValue returns the first non-null value of the block. The intermediate
// state is attached once per page, so every non-null position holds the same
// state.
func firstValue(b *block.Bytes) []byte {
	for i := 0; i < b.PositionCount(); i++ {
		if !b.IsNull(i) {
			return b.At(i)
		}
	}
	return nil
}

// readIntermediate decodes payload, merging every local category into the
// canonical categorizer and filling m.remap.
func (m *Merger) readIntermediate(payload []byte) (hasNull bool, err error) {
	m.metrics.PayloadBytes += int64(len(payload))
	if m.opts.PayloadBytes != nil {
		m.opts.PayloadBytes.Observe(float64(len(payload)))
	}
	m.reader.Init(payload)
	h, err := m.reader.ReadHeader()
	if err != nil {
		return false, err
	}
	if h.HasNull {
		m.seenNull = true
	}
	m.remap = append(m.remap[:0], NullOrd)
	for {
		wc, ok, err := m.reader.Next()
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
		before := m.categorizer.Count()
		cat, err := m.categorizer.MergeWireCategory(wc)
		if err != nil {
			return false, errors.Wrapf(err, "catmerge: merging category %d", errors.Safe(len(m.remap)-1))
		}
		m.metrics.CategoriesDecoded++
		if m.categorizer.Count() > before {
			m.metrics.CategoriesAdded++
		}
		m.remap = append(m.remap, cat.ID+1)
	}
	if len(m.remap) != h.Count+1 {
		return false, errors.AssertionFailedf("catmerge: decoded %d categories, expected %d",
			errors.Safe(len(m.remap)-1), errors.Safe(h.Count))
	}
	return h.HasNull, nil
}

// SeenNull returns true if a null group has been observed by any page.
func (m *Merger) SeenNull() bool {
	return m.seenNull
}

// Size returns the number of canonical categories, excluding the null group.
func (m *Merger) Size() int {
	if m.closed {
		return 0
	}
	return m.categorizer.Count()
}

// GroupCount returns the number of group ids with data: the canonical
// categories plus the null group if it has been seen.
func (m *Merger) GroupCount() int {
	n := m.Size()
	if m.seenNull {
		n++
	}
	return n
}

// NonEmpty returns the group ids with data in ascending order. The vector must
// be released.
func (m *Merger) NonEmpty() *block.IntVector {
	b := block.NewIntBuilder(m.GroupCount())
	from := int32(1)
	if m.seenNull {
		from = NullOrd
	}
	for id := from; id <= int32(m.Size()); id++ {
		b.AppendInt(id)
	}
	return b.Build()
}

// SeenGroupIDs returns the group ids with data as a bitmap.
func (m *Merger) SeenGroupIDs() *roaring.Bitmap {
	seen := roaring.New()
	if m.seenNull {
		seen.Add(NullOrd)
	}
	seen.AddRange(1, uint64(m.Size())+1)
	return seen
}

// Intermediate encodes the canonical categories as an intermediate state that
// can be merged by another Merger. Canonical category c has local id c in the
// encoding, so group ids are preserved.
func (m *Merger) Intermediate() ([]byte, error) {
	if m.closed {
		return nil, errors.Wrap(base.ErrClosed, "catmerge: merger")
	}
	n := m.categorizer.Count()
	buf := catrepr.AppendHeader(nil, catrepr.Header{HasNull: m.seenNull, Count: n})
	for i := 0; i < n; i++ {
		buf = m.categorizer.Category(int32(i)).Wire().Append(buf)
	}
	return buf, nil
}

// BuildKeys returns one key per group id in NonEmpty order. If
// Options.OutputPartial is set, every key is the intermediate state (see
// Intermediate). Otherwise the null group's key is null and each category's
// key is its regular expression.
func (m *Merger) BuildKeys() (*block.Bytes, error) {
	if m.opts.OutputPartial {
		state, err := m.Intermediate()
		if err != nil {
			return nil, err
		}
		return block.NewConstantBytes(state, m.GroupCount()), nil
	}
	if m.closed {
		return nil, errors.Wrap(base.ErrClosed, "catmerge: merger")
	}
	var bb block.BytesBuilder
	if m.seenNull {
		bb.AppendNull()
	}
	for i := 0; i < m.categorizer.Count(); i++ {
		bb.AppendBytes([]byte(m.categorizer.Category(int32(i)).Regex()))
	}
	return bb.Build(), nil
}

// Metrics returns the merger's current metrics.
func (m *Merger) Metrics() Metrics {
	metrics := m.metrics
	metrics.Categories = m.Size()
	metrics.SeenNull = m.seenNull
	return metrics
}

// Close releases the canonical categorizer. No other method may be called
// after Close, except SeenNull, Size, GroupCount and Metrics.
func (m *Merger) Close() error {
	if m.closed {
		return errors.Wrap(base.ErrClosed, "catmerge: merger")
	}
	metrics := m.Metrics()
	m.closed = true
	m.opts.Logger.Infof("catmerge: closing merger: %s", &metrics)
	err := m.categorizer.Close()
	m.categorizer = nil
	return errors.Wrap(err, "catmerge: closing categorizer")
}

// With constructs a Merger, passes it to fn and closes it. An error from Close
// is reported only if fn succeeded; otherwise it is attached to fn's error as a
// secondary error.
func With(opts *Options, fn func(m *Merger) error) (err error) {
	m, err := New(opts)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, m.Close())
	}()
	return fn(m)
}
