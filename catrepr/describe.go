// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package catrepr

import (
	"github.com/cockroachdb/catmerge/internal/binfmt"
)

// Describe returns an annotated hex dump of an intermediate state. Malformed
// payloads are described up to the point of failure; the remaining bytes are
// dumped without interpretation.
func Describe(buf []byte) string {
	f := binfmt.New(buf)
	describe(f)
	if f.More() {
		f.HexBytesln(f.Remaining(), "undecoded")
	}
	return f.String()
}

func describe(f *binfmt.Formatter) {
	if !f.More() {
		f.Commentf("empty payload")
		return
	}
	f.HexBytesln(1, "null marker")
	count, ok := f.Uvarint("category count")
	if !ok {
		return
	}
	for i := uint64(0); i < count; i++ {
		if !f.More() {
			f.Commentf("missing categories %d-%d", i, count-1)
			return
		}
		f.Commentf("category %d", i)
		tokens, ok := f.Uvarint("token count")
		if !ok {
			return
		}
		for j := uint64(0); j < tokens; j++ {
			n, ok := f.Uvarint("token %d length", j)
			if !ok {
				return
			}
			if n > uint64(f.Remaining()) {
				f.Commentf("token %d truncated", j)
				return
			}
			off := f.Offset()
			f.HexBytesln(int(n), "%q", f.Data()[off:off+int(n)])
			if _, ok := f.Uvarint("token %d weight", j); !ok {
				return
			}
		}
		if _, ok := f.Uvarint("match count"); !ok {
			return
		}
		if _, ok := f.Uvarint("max matched length"); !ok {
			return
		}
	}
}
