// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"

	"github.com/cockroachdb/catmerge/catrepr"
	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <files>",
		Short: "print an annotated dump of intermediate states",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			for _, arg := range args {
				pages, err := readPages(arg)
				if err != nil {
					return err
				}
				for _, p := range pages {
					fmt.Fprintf(stdout, "%s:%d:\n", p.file, p.line)
					if p.state == nil {
						fmt.Fprintln(stdout, "# null")
						continue
					}
					fmt.Fprint(stdout, catrepr.Describe(p.state))
				}
			}
			return nil
		},
	}
}
