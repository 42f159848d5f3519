// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package catrepr provides interfaces for reading and writing the binary
// intermediate categorization state. The state is produced by a partial
// categorization of one partition and is consumed by the merger that
// reconciles partitions into a canonical enumeration.
//
// The representation is:
//
//	[1 byte: null marker, 0 or 1]
//	[uvarint: category count]
//	count × [category descriptor]
//
// Category descriptors are defined by the categorizer package and are
// self-delimiting. The k-th descriptor has local id k.
package catrepr

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cockroachdb/catmerge/categorizer"
	"github.com/cockroachdb/catmerge/internal/base"
	"github.com/cockroachdb/errors"
)

// Header describes the fixed prefix of an intermediate state.
type Header struct {
	// HasNull is set if the producing partition saw at least one null value.
	HasNull bool
	// Count is the number of category descriptors that follow the header.
	Count int
}

// String returns a string representation of the header's contents.
func (h Header) String() string {
	return fmt.Sprintf("[null=%t,count=%d]", h.HasNull, h.Count)
}

// Reader decodes an intermediate state in a single forward pass. The zero
// value must be initialized with Init before use.
type Reader struct {
	buf    []byte
	off    int
	header Header
	// next is the index of the next descriptor to decode, or -1 before the
	// header has been read.
	next int
}

// MakeReader constructs a Reader over buf.
func MakeReader(buf []byte) Reader {
	var r Reader
	r.Init(buf)
	return r
}

// Init resets the reader to decode buf from the beginning.
func (r *Reader) Init(buf []byte) {
	*r = Reader{buf: buf, next: -1}
}

// Offset returns the offset of the next byte to be decoded.
func (r *Reader) Offset() int {
	return r.off
}

// ReadHeader decodes the null marker and category count. It must be called
// exactly once, before Next.
func (r *Reader) ReadHeader() (Header, error) {
	if r.next >= 0 {
		return Header{}, errors.AssertionFailedf("catrepr: header already read")
	}
	if len(r.buf) == 0 {
		return Header{}, newDecodeError(KindTruncatedHeader, 0, -1, -1, nil)
	}
	switch r.buf[0] {
	case 0:
	case 1:
		r.header.HasNull = true
	default:
		return Header{}, newDecodeError(KindInvalidNullMarker, 0, -1, -1,
			errors.Newf("null marker 0x%02x", errors.Safe(r.buf[0])))
	}
	r.off = 1

	v, n := binary.Uvarint(r.buf[r.off:])
	switch {
	case n == 0:
		return Header{}, newDecodeError(KindTruncatedCount, r.off, -1, -1, nil)
	case n < 0:
		return Header{}, newDecodeError(KindInvalidCount, r.off, -1, -1,
			errors.New("count overflows uint64"))
	case v > math.MaxInt32:
		return Header{}, newDecodeError(KindInvalidCount, r.off, -1, -1,
			errors.Newf("count %d exceeds %d", errors.Safe(v), errors.Safe(math.MaxInt32)))
	}
	r.off += n
	r.header.Count = int(v)
	r.next = 0
	return r.header, nil
}

// Next decodes the next category descriptor. When all declared descriptors
// have been decoded, Next returns ok=false and a nil error, unless bytes
// remain after the last descriptor. The declared count is authoritative:
// running out of bytes before decoding Count descriptors is an error.
//
// The returned category aliases the reader's buffer.
func (r *Reader) Next() (wc categorizer.WireCategory, ok bool, err error) {
	if r.next < 0 {
		return wc, false, errors.AssertionFailedf("catrepr: Next called before ReadHeader")
	}
	if r.next == r.header.Count {
		if r.off != len(r.buf) {
			return wc, false, newDecodeError(KindTrailingBytes, r.off, -1, r.header.Count,
				errors.Newf("%d bytes", errors.Safe(len(r.buf)-r.off)))
		}
		return wc, false, nil
	}
	wc, n, err := categorizer.DecodeWireCategory(r.buf[r.off:])
	if err != nil {
		kind := KindMalformedDescriptor
		if errors.Is(err, categorizer.ErrTruncated) {
			kind = KindTruncatedDescriptor
		}
		return categorizer.WireCategory{}, false, newDecodeError(kind, r.off, r.next, r.header.Count, err)
	}
	r.off += n
	r.next++
	return wc, true, nil
}

// Decode decodes an entire intermediate state.
func Decode(buf []byte) (Header, []categorizer.WireCategory, error) {
	r := MakeReader(buf)
	h, err := r.ReadHeader()
	if err != nil {
		return Header{}, nil, err
	}
	// The count is not trusted for sizing: every descriptor occupies at least
	// three bytes.
	cats := make([]categorizer.WireCategory, 0, min(h.Count, (len(buf)-r.Offset())/3))
	for {
		wc, ok, err := r.Next()
		if err != nil {
			return Header{}, nil, err
		}
		if !ok {
			return h, cats, nil
		}
		cats = append(cats, wc)
	}
}

// ErrorKind classifies decode failures.
type ErrorKind int8

const (
	// KindTruncatedHeader indicates an empty payload.
	KindTruncatedHeader ErrorKind = iota + 1
	// KindInvalidNullMarker indicates a null marker other than 0 or 1.
	KindInvalidNullMarker
	// KindTruncatedCount indicates the payload ended inside the count.
	KindTruncatedCount
	// KindInvalidCount indicates a count that is not a valid int32.
	KindInvalidCount
	// KindTruncatedDescriptor indicates the payload ended before all declared
	// descriptors were decoded.
	KindTruncatedDescriptor
	// KindMalformedDescriptor indicates a descriptor that could not be
	// decoded for a reason other than truncation.
	KindMalformedDescriptor
	// KindTrailingBytes indicates bytes following the last declared
	// descriptor.
	KindTrailingBytes
)

var errorKindNames = [...]string{
	KindTruncatedHeader:     "truncated null marker",
	KindInvalidNullMarker:   "invalid null marker",
	KindTruncatedCount:      "truncated category count",
	KindInvalidCount:        "invalid category count",
	KindTruncatedDescriptor: "truncated category descriptor",
	KindMalformedDescriptor: "malformed category descriptor",
	KindTrailingBytes:       "trailing bytes",
}

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	if k <= 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int8(k))
	}
	return errorKindNames[k]
}

// SafeValue implements redact.SafeValue.
func (k ErrorKind) SafeValue() {}

// DecodeError describes a failure to decode an intermediate state. Decode
// errors are always marked as corruption errors (see base.ErrCorruption).
type DecodeError struct {
	Kind ErrorKind
	// Offset is the byte offset at which the failing element begins.
	Offset int
	// Index is the local id of the failing descriptor, or -1 if the failure
	// occurred in the header.
	Index int
	// Declared is the declared category count, or -1 if the failure occurred
	// before the count was decoded.
	Declared int
	cause    error
}

func newDecodeError(kind ErrorKind, offset, index, declared int, cause error) error {
	return base.MarkCorruptionError(&DecodeError{
		Kind:     kind,
		Offset:   offset,
		Index:    index,
		Declared: declared,
		cause:    cause,
	})
}

// Error implements error.
func (e *DecodeError) Error() string { return fmt.Sprint(e) }

// Unwrap returns the underlying cause, if any.
func (e *DecodeError) Unwrap() error { return e.cause }

// Format implements fmt.Formatter.
func (e *DecodeError) Format(s fmt.State, verb rune) { errors.FormatError(e, s, verb) }

// SafeFormatError implements errors.SafeFormatter.
func (e *DecodeError) SafeFormatError(p errors.Printer) (next error) {
	p.Printf("catrepr: %s at offset %d", e.Kind, errors.Safe(e.Offset))
	if e.Index >= 0 {
		p.Printf(" (category %d of %d)", errors.Safe(e.Index), errors.Safe(e.Declared))
	}
	return e.cause
}
