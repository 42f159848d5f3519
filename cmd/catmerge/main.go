// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Command catmerge inspects and merges intermediate categorization states.
//
// Input files hold one page per line: either a hex-encoded intermediate state
// or the word "null" for a page whose state is entirely null. Blank lines and
// lines beginning with '#' are ignored.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "catmerge [command] (flags)",
		Short:         "intermediate categorization state introspection and merging tool",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(
		newEncodeCmd(),
		newDescribeCmd(),
		newMergeCmd(),
	)
	return rootCmd
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	if err := newRootCmd().Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
