// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package catrepr

import (
	"encoding/binary"

	"github.com/cockroachdb/catmerge/categorizer"
)

// AppendHeader appends the encoding of h to dst.
func AppendHeader(dst []byte, h Header) []byte {
	if h.HasNull {
		dst = append(dst, 1)
	} else {
		dst = append(dst, 0)
	}
	return binary.AppendUvarint(dst, uint64(h.Count))
}

// Append appends an intermediate state holding the provided categories, in
// order, to dst.
func Append(dst []byte, hasNull bool, cats ...categorizer.WireCategory) []byte {
	dst = AppendHeader(dst, Header{HasNull: hasNull, Count: len(cats)})
	for _, wc := range cats {
		dst = wc.Append(dst)
	}
	return dst
}
