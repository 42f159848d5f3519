// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"bufio"
	"encoding/hex"
	"os"
	"strings"

	"github.com/cockroachdb/catmerge/block"
	"github.com/cockroachdb/errors"
)

// pageSpec is a single page read from an input file.
type pageSpec struct {
	file string
	line int
	// state is nil for an all-null page.
	state []byte
}

func (p pageSpec) page() (*block.Page, error) {
	var bb block.BytesBuilder
	if p.state == nil {
		bb.AppendNull()
	} else {
		bb.AppendBytes(p.state)
	}
	return block.NewPage(1, bb.Build())
}

func readPages(path string) ([]pageSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []pageSpec
	s := bufio.NewScanner(f)
	s.Buffer(nil, 64<<20)
	for lineNum := 1; s.Scan(); lineNum++ {
		line := strings.TrimSpace(s.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case line == "null":
			pages = append(pages, pageSpec{file: path, line: lineNum})
			continue
		}
		state, err := hex.DecodeString(strings.ReplaceAll(line, " ", ""))
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, lineNum)
		}
		pages = append(pages, pageSpec{file: path, line: lineNum, state: state})
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return pages, nil
}
