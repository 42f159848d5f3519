// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package catrepr

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/cockroachdb/catmerge/categorizer"
	"github.com/cockroachdb/catmerge/internal/base"
	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestReader(t *testing.T) {
	datadriven.RunTest(t, "testdata/reader", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "scan":
			return scan(buildRepr(t, td))

		case "scan-hex":
			return scan(readRepr(t, td.Input))

		case "describe":
			return Describe(buildRepr(t, td))

		default:
			return fmt.Sprintf("unrecognized command %q", td.Cmd)
		}
	})
}

func scan(repr []byte) string {
	var out strings.Builder
	r := MakeReader(repr)
	h, err := r.ReadHeader()
	if err != nil {
		fmt.Fprintf(&out, "err: %s\n", err)
		return out.String()
	}
	fmt.Fprintf(&out, "header: %s\n", h)
	for i := 0; ; i++ {
		wc, ok, err := r.Next()
		if err != nil {
			fmt.Fprintf(&out, "err: %s\n", err)
			break
		}
		if !ok {
			fmt.Fprint(&out, "eof\n")
			break
		}
		fmt.Fprintf(&out, "%d: %s (matches=%d)\n", i, wc, wc.NumMatches)
	}
	return out.String()
}

// buildRepr encodes one category per input line. The null argument sets the
// null marker, count overrides the declared count and trim drops bytes from
// the end of the encoding.
func buildRepr(t *testing.T, td *datadriven.TestData) []byte {
	var hasNull bool
	td.MaybeScanArgs(t, "null", &hasNull)
	var cats []categorizer.WireCategory
	for l := range crstrings.LinesSeq(td.Input) {
		cats = append(cats, categorizer.MakeWireCategory(1, strings.Fields(l)...))
	}
	count := len(cats)
	td.MaybeScanArgs(t, "count", &count)
	repr := AppendHeader(nil, Header{HasNull: hasNull, Count: count})
	for _, wc := range cats {
		repr = wc.Append(repr)
	}
	var trim int
	td.MaybeScanArgs(t, "trim", &trim)
	return repr[:len(repr)-trim]
}

func readRepr(t testing.TB, str string) []byte {
	var reprBuf bytes.Buffer
	for l := range crstrings.LinesSeq(str) {
		// Remove any trailing comments behind #.
		if i := strings.IndexRune(l, '#'); i >= 0 {
			l = l[:i]
		}
		l = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, l)
		b, err := hex.DecodeString(l)
		if err != nil {
			t.Fatal(err)
		}
		reprBuf.Write(b)
	}
	return reprBuf.Bytes()
}

func TestDecode(t *testing.T) {
	cats := []categorizer.WireCategory{
		categorizer.MakeWireCategory(3, "user", "logged", "in"),
		categorizer.MakeWireCategory(1, "disk", "full"),
		categorizer.MakeWireCategory(9),
	}
	repr := Append(nil, true, cats...)
	h, got, err := Decode(repr)
	require.NoError(t, err)
	require.Equal(t, Header{HasNull: true, Count: 3}, h)
	require.Len(t, got, 3)
	for i := range cats {
		require.Equal(t, cats[i].String(), got[i].String())
		require.Equal(t, cats[i].NumMatches, got[i].NumMatches)
		require.Equal(t, cats[i].MaxMatchedLength, got[i].MaxMatchedLength)
	}
}

func TestDecodeErrorEveryPrefix(t *testing.T) {
	repr := Append(nil, false,
		categorizer.MakeWireCategory(1, "a", "b"),
		categorizer.MakeWireCategory(2, "cd"))
	for i := 0; i < len(repr); i++ {
		_, cats, err := Decode(repr[:i])
		require.Error(t, err, "prefix %d", i)
		require.Nil(t, cats)
		require.True(t, base.IsCorruptionError(err), "prefix %d: %v", i, err)

		var de *DecodeError
		require.True(t, errors.As(err, &de), "prefix %d: %v", i, err)
		require.LessOrEqual(t, de.Offset, i)
		switch {
		case i == 0:
			require.Equal(t, KindTruncatedHeader, de.Kind)
		case i == 1:
			require.Equal(t, KindTruncatedCount, de.Kind)
		default:
			require.Equal(t, KindTruncatedDescriptor, de.Kind)
			require.Equal(t, 2, de.Declared)
		}
	}
}

func TestReaderMisuse(t *testing.T) {
	r := MakeReader(Append(nil, false))
	_, _, err := r.Next()
	require.Error(t, err)
	_, err = r.ReadHeader()
	require.NoError(t, err)
	_, err = r.ReadHeader()
	require.Error(t, err)
	_, ok, err := r.Next()
	require.False(t, ok)
	require.NoError(t, err)
}

func TestErrorKindString(t *testing.T) {
	require.Equal(t, "trailing bytes", KindTrailingBytes.String())
	require.Equal(t, "ErrorKind(0)", ErrorKind(0).String())
}
