// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/n7qst/arpahost/internal/topology"
)

var topologyCmd = &cobra.Command{
	Use:   "topology [path]",
	Short: "Validate a topology configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTopology,
}

func runTopology(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Topology.Path
	}

	table, resolved, err := topology.Load(path)
	if err != nil {
		return fmt.Errorf("arpahost: %w", err)
	}
	if resolved == "" {
		fmt.Printf("no topology file found at %s\n", path)
		return nil
	}

	imps := make([]int, 0, len(table))
	for imp := range table {
		imps = append(imps, imp)
	}
	sort.Ints(imps)

	fmt.Printf("%s: %d IMPs\n", resolved, len(imps))
	for _, imp := range imps {
		fmt.Printf("  IMP %d  #%s\n", imp, table[imp])
	}
	return nil
}
