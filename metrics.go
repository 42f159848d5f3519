// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package catmerge

import "github.com/cockroachdb/redact"

// Metrics holds counters describing the work performed by a Merger.
type Metrics struct {
	// Pages is the number of non-empty pages added.
	Pages int64
	// NullPages is the number of pages whose intermediate state was entirely
	// null.
	NullPages int64
	// PayloadBytes is the total size of the intermediate payloads decoded.
	PayloadBytes int64
	// CategoriesDecoded is the number of local categories decoded and merged.
	CategoriesDecoded int64
	// CategoriesAdded is the number of local categories that introduced a new
	// canonical category.
	CategoriesAdded int64
	// DecodeErrors is the number of pages rejected because their intermediate
	// payload could not be decoded.
	DecodeErrors int64
	// Categories is the current number of canonical categories.
	Categories int
	// SeenNull is set once a null group has been observed.
	SeenNull bool
}

// String pretty-prints the metrics.
func (m *Metrics) String() string {
	return redact.StringWithoutMarkers(m)
}

var _ redact.SafeFormatter = &Metrics{}

// SafeFormat implements redact.SafeFormatter.
func (m *Metrics) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("pages: %d (null %d), payload: %dB, categories: %d decoded, %d added, %d canonical, null seen: %t, decode errors: %d",
		redact.Safe(m.Pages), redact.Safe(m.NullPages), redact.Safe(m.PayloadBytes),
		redact.Safe(m.CategoriesDecoded), redact.Safe(m.CategoriesAdded), redact.Safe(m.Categories),
		redact.Safe(m.SeenNull), redact.Safe(m.DecodeErrors))
}
