// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/catmerge/categorizer"
	"github.com/cockroachdb/catmerge/catrepr"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var hasNull bool
	var matches uint64
	cmd := &cobra.Command{
		Use:   "encode <category>...",
		Short: "encode categories as a hex intermediate state",
		Long: `
Encode each argument as one category, splitting it into tokens on
whitespace, and print the resulting intermediate state in hex.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := make([]categorizer.WireCategory, len(args))
			for i, arg := range args {
				cats[i] = categorizer.MakeWireCategory(matches, strings.Fields(arg)...)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%x\n", catrepr.Append(nil, hasNull, cats...))
			return nil
		},
	}
	cmd.Flags().BoolVar(&hasNull, "null", false, "set the null marker")
	cmd.Flags().Uint64Var(&matches, "matches", 1, "match count of every category")
	return cmd
}
