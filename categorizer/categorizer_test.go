// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package categorizer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/catmerge/internal/base"
	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestCategorizer(t *testing.T) {
	var c *Categorizer
	defer func() {
		if c != nil {
			require.NoError(t, c.Close())
		}
	}()
	datadriven.RunTest(t, "testdata/categorizer", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "new":
			if c != nil {
				require.NoError(t, c.Close())
			}
			var opts Options
			td.MaybeScanArgs(t, "max-categories", &opts.MaxCategories)
			c = New(opts)
			return ""

		case "merge":
			var buf strings.Builder
			for l := range crstrings.LinesSeq(td.Input) {
				wc := MakeWireCategory(1, strings.Fields(l)...)
				before := c.Count()
				cat, err := c.MergeWireCategory(wc)
				if err != nil {
					fmt.Fprintf(&buf, "%s -> error: %s\n", l, err)
					continue
				}
				fmt.Fprintf(&buf, "%s -> %d", l, cat.ID)
				if c.Count() > before {
					fmt.Fprint(&buf, " (new)")
				}
				fmt.Fprintln(&buf)
			}
			return buf.String()

		case "list":
			var buf strings.Builder
			for i := 0; i < c.Count(); i++ {
				cat := c.Category(int32(i))
				fmt.Fprintf(&buf, "%d: %q matches=%d max-len=%d regex=%s\n",
					cat.ID, cat.Key(), cat.NumMatches, cat.MaxMatchedLength, cat.Regex())
			}
			return buf.String()

		default:
			return fmt.Sprintf("unrecognized command %q", td.Cmd)
		}
	})
}

func TestWireCategoryRoundTrip(t *testing.T) {
	wc := MakeWireCategory(4, "connection", "refused", "to", "host")
	wc.Tokens[1].Weight = 300
	buf := wc.Append(nil)
	buf = append(buf, 0xde, 0xad)

	got, n, err := DecodeWireCategory(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf)-2, n)
	require.Equal(t, wc, got)
	require.Equal(t, "connection refused to host", got.String())
}

func TestDecodeWireCategoryTruncated(t *testing.T) {
	buf := MakeWireCategory(1, "disk", "full").Append(nil)
	for i := 0; i < len(buf); i++ {
		_, _, err := DecodeWireCategory(buf[:i])
		require.Error(t, err, "prefix of length %d", i)
		require.True(t, errors.Is(err, ErrTruncated), "prefix of length %d: %v", i, err)
		require.True(t, base.IsCorruptionError(err))
	}
}

func TestDecodeWireCategoryMalformed(t *testing.T) {
	// A varint that never terminates within ten bytes overflows.
	buf := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	_, _, err := DecodeWireCategory(buf)
	require.Error(t, err)
	require.True(t, base.IsCorruptionError(err))
	require.False(t, errors.Is(err, ErrTruncated))

	// A token weight that does not fit in 32 bits.
	buf = []byte{0x01, 0x01, 'a'}
	buf = append(buf, 0x80, 0x80, 0x80, 0x80, 0x10) // 1<<32
	buf = append(buf, 0x01, 0x01)
	_, _, err = DecodeWireCategory(buf)
	require.Error(t, err)
	require.Contains(t, err.Error(), "overflows uint32")
}

func TestCategorizerCloneTokens(t *testing.T) {
	c := New(Options{InitialCapacity: 4})
	defer func() { require.NoError(t, c.Close()) }()

	buf := MakeWireCategory(1, "timeout", "after", "30s").Append(nil)
	wc, _, err := DecodeWireCategory(buf)
	require.NoError(t, err)
	cat, err := c.MergeWireCategory(wc)
	require.NoError(t, err)
	// Scribbling over the payload must not affect the canonical category.
	for i := range buf {
		buf[i] = 'x'
	}
	require.Equal(t, "timeout after 30s", c.Category(cat.ID).Key())
}

func TestCategorizerClose(t *testing.T) {
	c := New(Options{})
	_, err := c.MergeWireCategory(MakeWireCategory(1, "a"))
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.True(t, errors.Is(c.Close(), base.ErrClosed))
	_, err = c.MergeWireCategory(MakeWireCategory(1, "a"))
	require.True(t, errors.Is(err, base.ErrClosed))
}

func TestSignature(t *testing.T) {
	a := MakeWireCategory(1, "ab", "c")
	b := MakeWireCategory(1, "a", "bc")
	require.NotEqual(t, Signature(a.Tokens), Signature(b.Tokens))

	c := MakeWireCategory(7, "ab", "c")
	c.Tokens[0].Weight = 9
	require.Equal(t, Signature(a.Tokens), Signature(c.Tokens))
}
