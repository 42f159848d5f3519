// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package catmerge implements the final phase of a two-phase categorization
// of log messages. Partial aggregations each categorize the messages of one
// partition and ship their categories, in a compact intermediate encoding
// (see package catrepr), to a Merger. The Merger folds every partition's
// categories into one canonical enumeration and rewrites each partition's
// local category ids into global group ids.
//
// Group id NullOrd (0) is reserved for rows that have no category. Canonical
// category c is reported as group id c+1.
//
//	m, err := catmerge.New(&catmerge.Options{Channel: 0})
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//	ids, err := m.Process(page)
package catmerge
