// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package catmerge

import (
	"testing"

	"github.com/cockroachdb/catmerge/internal/base"
	"github.com/stretchr/testify/require"
)

func TestOptionsString(t *testing.T) {
	opts := &Options{Channel: 2, MaxCategories: 1000, OutputPartial: true}
	const expected = `[Options]
  channel=2
  initial_capacity=0
  max_categories=1000
  output_partial=true
`
	require.Equal(t, expected, opts.String())
}

func TestOptionsParse(t *testing.T) {
	opts := &Options{Channel: 3, InitialCapacity: 64, MaxCategories: 10, OutputPartial: true}
	var parsed Options
	require.NoError(t, parsed.Parse(opts.String()))
	require.Equal(t, opts.String(), parsed.String())

	var o Options
	require.NoError(t, o.Parse(`
# comments and blank lines are ignored
[Options]
  ; as are semicolon comments
  channel = 1
`))
	require.Equal(t, 1, o.Channel)

	for _, tc := range []struct {
		input string
		err   string
	}{
		{"[Options]\n  bogus=1\n", "catmerge: unknown option: Options.bogus"},
		{"[Options]\n  channel=x\n", `catmerge: parsing channel: strconv.Atoi: parsing "x": invalid syntax`},
		{"[Other]\n", "catmerge: unknown section: Other"},
		{"channel=1\n", "catmerge: option channel outside of [Options] section"},
		{"[Options]\n  channel\n", `invalid key=value syntax: "channel"`},
	} {
		var o Options
		require.EqualError(t, o.Parse(tc.input), tc.err, "input %q", tc.input)
	}
}

func TestOptionsValidate(t *testing.T) {
	_, err := New(&Options{Channel: -1, MaxCategories: -2})
	require.EqualError(t, err, "channel (-1) must be >= 0\nmax_categories (-2) must be >= 0\n")
}

func TestOptionsDefaults(t *testing.T) {
	var nilOpts *Options
	o := nilOpts.Clone()
	o.EnsureDefaults()
	require.Equal(t, DefaultLogger, o.Logger)
	require.NotNil(t, o.NewCategorizer)

	// New does not mutate the caller's options.
	opts := &Options{Logger: base.NoopLogger{}}
	m, err := New(opts)
	require.NoError(t, err)
	require.Nil(t, opts.NewCategorizer)
	require.NoError(t, m.Close())
}
