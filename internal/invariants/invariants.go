// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package invariants provides assertions that are only active in builds with
// the "invariants" or "race" build tags.
package invariants

import "runtime"

// SetFinalizer is a wrapper around runtime.SetFinalizer that is a no-op unless
// invariants are enabled.
func SetFinalizer(obj, finalizer interface{}) {
	if Enabled {
		runtime.SetFinalizer(obj, finalizer)
	}
}
