// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package binfmt exposes utilities for formatting binary data with descriptive
// comments.
package binfmt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// New constructs a new binary formatter.
func New(data []byte) *Formatter {
	offsetWidth := 1
	if len(data) > 1 {
		offsetWidth = max(int(math.Log10(float64(len(data)-1)))+1, 1)
	}
	w := strconv.Itoa(offsetWidth)
	return &Formatter{
		data:            data,
		lineWidth:       40,
		offsetFormatStr: "%0" + w + "d-%0" + w + "d: ",
	}
}

// Formatter is a utility for formatting binary data with descriptive comments.
type Formatter struct {
	buf   bytes.Buffer
	lines [][2]string // (binary data, comment) tuples
	data  []byte
	off   int

	lineWidth       int
	offsetFormatStr string
}

// More returns true if there is more data in the byte slice that can be formatted.
func (f *Formatter) More() bool {
	return f.off < len(f.data)
}

// Remaining returns the number of unformatted bytes remaining in the byte slice.
func (f *Formatter) Remaining() int {
	return len(f.data) - f.off
}

// Offset returns the current offset within the original data slice.
func (f *Formatter) Offset() int {
	return f.off
}

// HexBytesln formats the next n bytes in hexadecimal format, appending the
// formatted comment string to each line and ending on a newline. n is clamped
// to the number of remaining bytes.
func (f *Formatter) HexBytesln(n int, format string, args ...interface{}) int {
	n = min(n, f.Remaining())
	consumed := n
	commentLine := strings.TrimSpace(fmt.Sprintf(format, args...))
	for first := true; first || n > 0; first = false {
		bytesInLine := min(f.lineWidth/2, n)
		f.printf(f.offsetFormatStr, f.off, f.off+bytesInLine)
		f.printf("x %0"+strconv.Itoa(bytesInLine*2)+"x", f.data[f.off:f.off+bytesInLine])
		f.newline(f.buf.String(), commentLine)
		f.off += bytesInLine
		n -= bytesInLine
		commentLine = "(continued...)"
	}
	return consumed
}

// Uvarint decodes the bytes at the current offset as a uvarint, formatting them
// in hexadecimal and prefixing the comment with the encoded decimal value. If
// the remaining bytes do not hold a valid uvarint, they are all formatted with
// an explanatory comment and ok is false.
func (f *Formatter) Uvarint(format string, args ...interface{}) (v uint64, ok bool) {
	comment := fmt.Sprintf(format, args...)
	v, n := binary.Uvarint(f.data[f.off:])
	if n <= 0 {
		f.HexBytesln(f.Remaining(), "invalid uvarint: %s", comment)
		return 0, false
	}
	f.HexBytesln(n, "uvarint(%d): %s", v, comment)
	return v, true
}

// Commentf adds a line holding only a comment.
func (f *Formatter) Commentf(format string, args ...interface{}) {
	f.newline("", fmt.Sprintf(format, args...))
}

// String returns the current formatted output.
func (f *Formatter) String() string {
	f.buf.Reset()
	// Align comments on the right of the widest binary data.
	binaryLineWidth := 0
	for _, lineData := range f.lines {
		binaryLineWidth = max(binaryLineWidth, len(lineData[0]))
	}
	for _, lineData := range f.lines {
		fmt.Fprint(&f.buf, lineData[0])
		if len(lineData[1]) > 0 {
			if len(lineData[0]) == 0 {
				fmt.Fprint(&f.buf, "# ")
			} else {
				fmt.Fprint(&f.buf, strings.Repeat(" ", binaryLineWidth-len(lineData[0])))
				fmt.Fprint(&f.buf, " # ")
			}
			fmt.Fprint(&f.buf, lineData[1])
		}
		fmt.Fprintln(&f.buf)
	}
	return f.buf.String()
}

func (f *Formatter) newline(binaryData, comment string) {
	f.lines = append(f.lines, [2]string{binaryData, comment})
	f.buf.Reset()
}

func (f *Formatter) printf(format string, args ...interface{}) {
	fmt.Fprintf(&f.buf, format, args...)
}

// Data returns the original data slice. Offset may be used to retrieve the
// current offset within the slice.
func (f *Formatter) Data() []byte {
	return f.data
}
