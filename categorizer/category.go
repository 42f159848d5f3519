// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package categorizer

import (
	"bytes"
	"encoding/binary"
	"math"
	"regexp"
	"strings"

	"github.com/cockroachdb/catmerge/internal/base"
	"github.com/cockroachdb/errors"
)

// ErrTruncated indicates that a category descriptor ended before all of its
// fields could be read.
var ErrTruncated = base.MarkCorruptionError(errors.New("categorizer: truncated category descriptor"))

// Token is a single token of a category signature along with its weight.
type Token struct {
	Text   []byte
	Weight uint32
}

// WireCategory is a category as it appears in an intermediate payload, before
// it has been merged into a Categorizer. Token text returned by
// DecodeWireCategory aliases the decoded buffer.
//
// The encoding is:
//
//	[uvarint tokenCount]
//	tokenCount × [uvarint len][len bytes][uvarint weight]
//	[uvarint numMatches]
//	[uvarint maxMatchedLength]
type WireCategory struct {
	Tokens []Token
	// NumMatches is the number of messages the category matched in the
	// partition that produced it.
	NumMatches uint64
	// MaxMatchedLength is the length of the longest message matched.
	MaxMatchedLength uint64
}

// MakeWireCategory constructs a WireCategory with unit weights from the
// provided token strings.
func MakeWireCategory(numMatches uint64, tokens ...string) WireCategory {
	wc := WireCategory{
		Tokens:     make([]Token, len(tokens)),
		NumMatches: numMatches,
	}
	for i, tok := range tokens {
		wc.Tokens[i] = Token{Text: []byte(tok), Weight: 1}
		wc.MaxMatchedLength += uint64(len(tok))
	}
	if len(tokens) > 1 {
		wc.MaxMatchedLength += uint64(len(tokens) - 1)
	}
	return wc
}

// Append appends the encoding of the category to buf.
func (wc WireCategory) Append(buf []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(wc.Tokens)))
	for _, tok := range wc.Tokens {
		buf = binary.AppendUvarint(buf, uint64(len(tok.Text)))
		buf = append(buf, tok.Text...)
		buf = binary.AppendUvarint(buf, uint64(tok.Weight))
	}
	buf = binary.AppendUvarint(buf, wc.NumMatches)
	buf = binary.AppendUvarint(buf, wc.MaxMatchedLength)
	return buf
}

// String returns the category's tokens separated by spaces.
func (wc WireCategory) String() string {
	return joinTokens(wc.Tokens)
}

// DecodeWireCategory decodes a single category descriptor from the front of
// buf, returning the number of bytes consumed. Descriptors are
// self-delimiting; bytes past the descriptor are not inspected.
func DecodeWireCategory(buf []byte) (wc WireCategory, n int, err error) {
	d := decoder{buf: buf}
	tokenCount := d.uvarint("token count")
	// Every token occupies at least two bytes.
	if d.err == nil && tokenCount > uint64(len(buf)-d.off)/2 {
		d.err = errors.Wrapf(ErrTruncated, "%d tokens declared with %d bytes remaining",
			errors.Safe(tokenCount), errors.Safe(len(buf)-d.off))
	}
	if d.err == nil && tokenCount > 0 {
		wc.Tokens = make([]Token, tokenCount)
	}
	for i := range wc.Tokens {
		if d.err != nil {
			break
		}
		textLen := d.uvarint("token length")
		if d.err == nil && textLen > uint64(len(buf)-d.off) {
			d.err = errors.Wrapf(ErrTruncated, "token %d: length %d exceeds %d remaining bytes",
				errors.Safe(i), errors.Safe(textLen), errors.Safe(len(buf)-d.off))
			break
		}
		if d.err != nil {
			break
		}
		text := buf[d.off : d.off+int(textLen) : d.off+int(textLen)]
		d.off += int(textLen)
		weight := d.uvarint("token weight")
		if d.err == nil && weight > math.MaxUint32 {
			d.err = base.CorruptionErrorf("categorizer: token %d: weight %d overflows uint32",
				errors.Safe(i), errors.Safe(weight))
		}
		wc.Tokens[i] = Token{Text: text, Weight: uint32(weight)}
	}
	wc.NumMatches = d.uvarint("match count")
	wc.MaxMatchedLength = d.uvarint("max matched length")
	if d.err != nil {
		return WireCategory{}, 0, d.err
	}
	return wc, d.off, nil
}

type decoder struct {
	buf []byte
	off int
	err error
}

// uvarint reads a uvarint at the current offset. Once an error has been
// recorded, uvarint is a no-op returning zero.
func (d *decoder) uvarint(field string) uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.buf[d.off:])
	switch {
	case n == 0:
		d.err = errors.Wrapf(ErrTruncated, "reading %s", errors.Safe(field))
		return 0
	case n < 0:
		d.err = base.CorruptionErrorf("categorizer: %s overflows uint64", errors.Safe(field))
		return 0
	}
	d.off += n
	return v
}

// Category is a canonical category owned by a Categorizer.
type Category struct {
	// ID is the dense, zero-based identifier assigned when the category was
	// first merged.
	ID     int32
	Tokens []Token
	// NumMatches is the total number of messages matched across all merged
	// partitions.
	NumMatches       uint64
	MaxMatchedLength uint64
}

// Wire returns the category in its wire form. The returned value aliases the
// category's tokens.
func (c *Category) Wire() WireCategory {
	return WireCategory{
		Tokens:           c.Tokens,
		NumMatches:       c.NumMatches,
		MaxMatchedLength: c.MaxMatchedLength,
	}
}

// Key returns the category's tokens separated by spaces.
func (c *Category) Key() string {
	return joinTokens(c.Tokens)
}

// Regex returns a regular expression matching the messages of the category:
// the tokens in order, separated by at least one arbitrary character, with
// anything allowed before and after.
func (c *Category) Regex() string {
	if len(c.Tokens) == 0 {
		return ".*"
	}
	var sb strings.Builder
	sb.WriteString(".*?")
	for i, tok := range c.Tokens {
		if i > 0 {
			sb.WriteString(".+?")
		}
		sb.WriteString(regexp.QuoteMeta(string(tok.Text)))
	}
	sb.WriteString(".*?")
	return sb.String()
}

func (c *Category) sameSignature(tokens []Token) bool {
	if len(c.Tokens) != len(tokens) {
		return false
	}
	for i := range tokens {
		if !bytes.Equal(c.Tokens[i].Text, tokens[i].Text) {
			return false
		}
	}
	return true
}

func joinTokens(tokens []Token) string {
	var sb strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.Write(tok.Text)
	}
	return sb.String()
}
