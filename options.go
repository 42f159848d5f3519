// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package catmerge

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/catmerge/categorizer"
	"github.com/cockroachdb/catmerge/internal/base"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Logger defines an interface for writing log messages.
type Logger = base.Logger

// DefaultLogger logs to the Go stdlib logs.
var DefaultLogger = base.DefaultLogger

// Categorizer is the canonical category dictionary owned by a Merger. The
// default implementation is *categorizer.Categorizer.
type Categorizer interface {
	// MergeWireCategory returns the canonical category matching wc, adding a
	// new category with id Count() if none matches.
	MergeWireCategory(wc categorizer.WireCategory) (*categorizer.Category, error)
	// Count returns the number of canonical categories.
	Count() int
	// Category returns the canonical category with the provided id.
	Category(id int32) *categorizer.Category
	// Close releases the categorizer's resources.
	Close() error
}

// Options holds the optional parameters for configuring a Merger. These
// options apply to the Merger at the time it is created; changes made after
// New returns are not observed.
type Options struct {
	// Channel is the index of the page block holding the intermediate state.
	Channel int

	// InitialCapacity is the number of canonical categories to pre-size the
	// categorizer for.
	InitialCapacity int

	// MaxCategories bounds the number of canonical categories. Zero means
	// unbounded.
	MaxCategories int

	// OutputPartial selects the form of Merger.BuildKeys. When set, the keys
	// are the merged intermediate state so that the output can be merged
	// again by a later stage. Otherwise the keys are the final category
	// regular expressions.
	OutputPartial bool

	// Logger used to write log messages.
	//
	// The default logger uses the Go standard library log package.
	Logger Logger

	// NewCategorizer constructs the canonical categorizer. The default
	// constructs a *categorizer.Categorizer.
	NewCategorizer func(opts categorizer.Options) Categorizer

	// PayloadBytes, if set, observes the size of every intermediate payload
	// decoded.
	PayloadBytes prometheus.Histogram
}

// Clone creates a shallow-copy of the supplied options. A nil receiver yields
// zero options.
func (o *Options) Clone() *Options {
	if o == nil {
		return &Options{}
	}
	n := *o
	return &n
}

// EnsureDefaults ensures that the default values for all options are set if a
// valid value was not already specified.
func (o *Options) EnsureDefaults() {
	if o.Logger == nil {
		o.Logger = DefaultLogger
	}
	if o.NewCategorizer == nil {
		o.NewCategorizer = func(opts categorizer.Options) Categorizer {
			return categorizer.New(opts)
		}
	}
}

// Validate verifies that the options are mutually consistent.
func (o *Options) Validate() error {
	var buf strings.Builder
	if o.Channel < 0 {
		fmt.Fprintf(&buf, "channel (%d) must be >= 0\n", o.Channel)
	}
	if o.InitialCapacity < 0 {
		fmt.Fprintf(&buf, "initial_capacity (%d) must be >= 0\n", o.InitialCapacity)
	}
	if o.MaxCategories < 0 {
		fmt.Fprintf(&buf, "max_categories (%d) must be >= 0\n", o.MaxCategories)
	}
	if buf.Len() == 0 {
		return nil
	}
	return errors.New(buf.String())
}

func (o *Options) categorizerOptions() categorizer.Options {
	return categorizer.Options{
		InitialCapacity: o.InitialCapacity,
		MaxCategories:   o.MaxCategories,
	}
}

func (o *Options) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[Options]\n")
	fmt.Fprintf(&buf, "  channel=%d\n", o.Channel)
	fmt.Fprintf(&buf, "  initial_capacity=%d\n", o.InitialCapacity)
	fmt.Fprintf(&buf, "  max_categories=%d\n", o.MaxCategories)
	fmt.Fprintf(&buf, "  output_partial=%t\n", o.OutputPartial)
	return buf.String()
}

type parseOptionsFuncs struct {
	visitNewSection func(section string) error
	visitKeyValue   func(section, key, value string) error
}

// parseOptions takes options serialized by Options.String() and parses them
// into sections, keys and values. Blank lines and lines beginning with ';' or
// '#' are ignored.
func parseOptions(s string, fns parseOptionsFuncs) error {
	var section string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 || line[0] == ';' || line[0] == '#' {
			continue
		}
		n := len(line)
		if line[0] == '[' && line[n-1] == ']' {
			section = line[1 : n-1]
			if err := fns.visitNewSection(section); err != nil {
				return err
			}
			continue
		}

		pos := strings.Index(line, "=")
		if pos < 0 {
			const maxLen = 50
			if len(line) > maxLen {
				line = line[:maxLen-3] + "..."
			}
			return base.CorruptionErrorf("invalid key=value syntax: %q", errors.Safe(line))
		}
		key := strings.TrimSpace(line[:pos])
		value := strings.TrimSpace(line[pos+1:])
		if err := fns.visitKeyValue(section, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Parse parses the options from the specified string. Hooks such as Logger and
// NewCategorizer cannot be parsed and are left untouched.
func (o *Options) Parse(s string) error {
	return parseOptions(s, parseOptionsFuncs{
		visitNewSection: func(section string) error {
			if section != "Options" {
				return errors.Errorf("catmerge: unknown section: %s", errors.Safe(section))
			}
			return nil
		},
		visitKeyValue: func(section, key, value string) error {
			if section != "Options" {
				return errors.Errorf("catmerge: option %s outside of [Options] section", errors.Safe(key))
			}
			var err error
			switch key {
			case "channel":
				o.Channel, err = strconv.Atoi(value)
			case "initial_capacity":
				o.InitialCapacity, err = strconv.Atoi(value)
			case "max_categories":
				o.MaxCategories, err = strconv.Atoi(value)
			case "output_partial":
				o.OutputPartial, err = strconv.ParseBool(value)
			default:
				return errors.Errorf("catmerge: unknown option: %s.%s",
					errors.Safe(section), errors.Safe(key))
			}
			return errors.Wrapf(err, "catmerge: parsing %s", errors.Safe(key))
		},
	})
}
