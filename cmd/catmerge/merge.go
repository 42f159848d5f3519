// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/cockroachdb/catmerge"
	"github.com/cockroachdb/catmerge/internal/base"
	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// mergeT implements the merge command. Input files are distributed
// round-robin across independent shards, each with its own Merger, mirroring a
// reduce stage with one merger per partition.
type mergeT struct {
	shards      int
	optionsPath string
	keys        bool
	verbose     bool
}

type shardResult struct {
	files   []string
	out     bytes.Buffer
	metrics catmerge.Metrics
}

func newMergeCmd() *cobra.Command {
	m := &mergeT{}
	cmd := &cobra.Command{
		Use:   "merge <files>",
		Short: "merge intermediate states and print group ids",
		Long: `
Merge the intermediate states in the provided files, printing the group ids
produced for every page followed by a summary of every shard. Files are
assigned to shards round-robin; shards are merged concurrently.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: m.run,
	}
	cmd.Flags().IntVar(&m.shards, "shards", 1, "number of independent mergers")
	cmd.Flags().StringVar(&m.optionsPath, "options", "", "path to an options file")
	cmd.Flags().BoolVar(&m.keys, "keys", false, "print the keys of every shard")
	cmd.Flags().BoolVarP(&m.verbose, "verbose", "v", false, "log merger events")
	return cmd
}

func (m *mergeT) options() (*catmerge.Options, error) {
	opts := &catmerge.Options{Logger: base.NoopLogger{}}
	if m.verbose {
		opts.Logger = catmerge.DefaultLogger
	}
	if m.optionsPath == "" {
		return opts, nil
	}
	data, err := os.ReadFile(m.optionsPath)
	if err != nil {
		return nil, err
	}
	if err := opts.Parse(string(data)); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", m.optionsPath)
	}
	return opts, nil
}

func (m *mergeT) run(cmd *cobra.Command, args []string) error {
	if m.shards < 1 {
		return errors.Newf("--shards must be positive, got %d", m.shards)
	}
	opts, err := m.options()
	if err != nil {
		return err
	}
	results := make([]shardResult, min(m.shards, len(args)))
	for i, arg := range args {
		r := &results[i%len(results)]
		r.files = append(r.files, arg)
	}

	var g errgroup.Group
	for i := range results {
		r := &results[i]
		g.Go(func() error {
			return errors.Wrapf(m.mergeShard(opts, r), "shard %d", i)
		})
	}
	err = g.Wait()

	stdout := cmd.OutOrStdout()
	for i := range results {
		fmt.Fprintf(stdout, "shard %d:\n", i)
		_, _ = results[i].out.WriteTo(stdout)
	}
	if err != nil {
		return err
	}

	tbl := tablewriter.NewWriter(stdout)
	tbl.SetHeader([]string{"Shard", "Files", "Pages", "Null Pages", "Categories", "Null Seen"})
	for i := range results {
		r := &results[i]
		tbl.Append([]string{
			strconv.Itoa(i),
			strconv.Itoa(len(r.files)),
			strconv.FormatInt(r.metrics.Pages, 10),
			strconv.FormatInt(r.metrics.NullPages, 10),
			strconv.Itoa(r.metrics.Categories),
			strconv.FormatBool(r.metrics.SeenNull),
		})
	}
	tbl.Render()
	return nil
}

func (m *mergeT) mergeShard(opts *catmerge.Options, r *shardResult) error {
	return catmerge.With(opts, func(merger *catmerge.Merger) error {
		defer func() { r.metrics = merger.Metrics() }()
		for _, file := range r.files {
			pages, err := readPages(file)
			if err != nil {
				return err
			}
			for _, p := range pages {
				page, err := p.page()
				if err != nil {
					return err
				}
				ids, err := merger.Process(page)
				if err != nil {
					return errors.Wrapf(err, "%s:%d", p.file, p.line)
				}
				fmt.Fprintf(&r.out, "  %s:%d: %v\n", p.file, p.line, ids)
			}
		}
		if !m.keys {
			return nil
		}
		keys, err := merger.BuildKeys()
		if err != nil {
			return err
		}
		for i := 0; i < keys.PositionCount(); i++ {
			switch {
			case keys.IsNull(i):
				fmt.Fprintf(&r.out, "  key %d: null\n", i)
			case opts.OutputPartial:
				fmt.Fprintf(&r.out, "  key %d: %x\n", i, keys.At(i))
			default:
				fmt.Fprintf(&r.out, "  key %d: %s\n", i, keys.At(i))
			}
		}
		return nil
	})
}
