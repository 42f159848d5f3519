// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package categorizer implements a canonical dictionary of log categories.
// Categories are identified by their token signature and assigned dense,
// zero-based ids in order of first appearance. Ids are never reused or
// renumbered.
//
// Matching is exact on the token signature. Fuzzy clustering of similar
// signatures is left to the producers of the partial categorizations.
package categorizer

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/catmerge/internal/base"
	"github.com/cockroachdb/catmerge/internal/invariants"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"
)

// ErrTooManyCategories is returned when merging a new category would exceed
// Options.MaxCategories.
var ErrTooManyCategories = errors.New("categorizer: too many categories")

// Options configure a Categorizer.
type Options struct {
	// InitialCapacity is the number of categories to size the signature index
	// for.
	InitialCapacity int
	// MaxCategories bounds the number of canonical categories. Zero means
	// unbounded.
	MaxCategories int
}

// Signature returns the hash of a token signature. Token weights are not part
// of the signature.
func Signature(tokens []Token) uint64 {
	var lenBuf [binary.MaxVarintLen64]byte
	h := xxhash.New()
	for _, tok := range tokens {
		n := binary.PutUvarint(lenBuf[:], uint64(len(tok.Text)))
		_, _ = h.Write(lenBuf[:n])
		_, _ = h.Write(tok.Text)
	}
	return h.Sum64()
}

// Categorizer holds the canonical categories. It is not safe for concurrent
// use.
type Categorizer struct {
	opts Options
	// index maps a signature hash to the id of the most recently added
	// category with that hash. Colliding categories are linked through
	// chain.
	index      swiss.Map[uint64, int32]
	chain      []int32
	categories []Category
	closed     bool
}

// New constructs an empty Categorizer. The Categorizer must be closed.
func New(opts Options) *Categorizer {
	c := &Categorizer{opts: opts}
	c.index.Init(max(opts.InitialCapacity, 0))
	if opts.InitialCapacity > 0 {
		c.chain = make([]int32, 0, opts.InitialCapacity)
		c.categories = make([]Category, 0, opts.InitialCapacity)
	}

	// Note: this is a no-op if invariants are disabled.
	invariants.SetFinalizer(c, func(obj interface{}) {
		c := obj.(*Categorizer)
		if !c.closed {
			fmt.Fprintf(os.Stderr, "%p: categorizer not closed\n", c)
			os.Exit(1)
		}
	})
	return c
}

// MergeWireCategory merges the provided category into the canonical set. If a
// category with the same signature exists, its statistics are updated and it
// is returned. Otherwise a copy of wc is added with an id equal to the current
// Count.
func (c *Categorizer) MergeWireCategory(wc WireCategory) (*Category, error) {
	if c.closed {
		return nil, errors.Wrap(base.ErrClosed, "categorizer")
	}
	sig := Signature(wc.Tokens)
	head, ok := c.index.Get(sig)
	if ok {
		for id := head; id >= 0; id = c.chain[id] {
			if cat := &c.categories[id]; cat.sameSignature(wc.Tokens) {
				cat.NumMatches += wc.NumMatches
				cat.MaxMatchedLength = max(cat.MaxMatchedLength, wc.MaxMatchedLength)
				return cat, nil
			}
		}
	} else {
		head = -1
	}

	n := len(c.categories)
	if (c.opts.MaxCategories > 0 && n >= c.opts.MaxCategories) || n >= math.MaxInt32 {
		return nil, errors.Wrapf(ErrTooManyCategories, "limit %d", errors.Safe(c.opts.MaxCategories))
	}
	c.categories = append(c.categories, Category{
		ID:               int32(n),
		Tokens:           cloneTokens(wc.Tokens),
		NumMatches:       wc.NumMatches,
		MaxMatchedLength: wc.MaxMatchedLength,
	})
	c.chain = append(c.chain, head)
	c.index.Put(sig, int32(n))
	return &c.categories[n], nil
}

// Count returns the number of canonical categories.
func (c *Categorizer) Count() int {
	return len(c.categories)
}

// Category returns the category with the provided id. The returned pointer is
// invalidated by the next call to MergeWireCategory.
func (c *Categorizer) Category(id int32) *Category {
	return &c.categories[id]
}

// Close releases the categorizer's memory. Close returns an error if the
// categorizer was already closed.
func (c *Categorizer) Close() error {
	if c.closed {
		return errors.Wrap(base.ErrClosed, "categorizer")
	}
	c.closed = true
	c.index.Close()
	c.chain = nil
	c.categories = nil
	return nil
}

// cloneTokens copies the token text into a single allocation so that the
// canonical category does not retain the payload it was decoded from.
func cloneTokens(tokens []Token) []Token {
	if len(tokens) == 0 {
		return nil
	}
	size := 0
	for _, tok := range tokens {
		size += len(tok.Text)
	}
	buf := make([]byte, 0, size)
	out := make([]Token, len(tokens))
	for i, tok := range tokens {
		start := len(buf)
		buf = append(buf, tok.Text...)
		out[i] = Token{Text: buf[start:len(buf):len(buf)], Weight: tok.Weight}
	}
	return out
}
