// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emer/prism/graph"
	"github.com/emer/prism/runtimeopts"
	"github.com/emer/prism/sim"
)

var (
	runtimeConfigPath string
	activityDBPath    string
	manifestPath      string
	snapshotPath      string
	sendBufferSize    string
)

// rootCmd is prism's sole command: it launches one MPI rank's share
// of a simulation run. Every rank (master and worker alike) invokes
// the same binary, argv, and flags — the role is decided at runtime by
// MPI rank, not by a subcommand, following the launcher model the design
// describes.
var rootCmd = &cobra.Command{
	Use:   "prism [config-file]",
	Short: "Run a distributed discrete-time neuron simulation.",
	Long: `prism loads a neuron population and I/O device configuration,
partitions it across the MPI worker ranks, and drives the tick-by-tick
message-passing protocol described in the project design notes.

Launch with mpirun/mpiexec so every rank executes this same command.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := graph.DefaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}
		rt, err := runtimeopts.Load(runtimeConfigPath)
		if err != nil {
			return err
		}
		// CLI flags that were explicitly set override whatever
		// --runtime-config loaded, following the teacher's
		// cmd.Flags().Changed merge pattern (HD220-crownet/cmd/sim.go).
		if cmd.Flags().Changed("activity-db") {
			rt.ActivityDB = activityDBPath
		}
		if cmd.Flags().Changed("manifest") {
			rt.Manifest = manifestPath
		}
		if cmd.Flags().Changed("snapshot") {
			rt.Snapshot = snapshotPath
		}
		if cmd.Flags().Changed("send-buffer") {
			rt.SendBufferSize = sendBufferSize
		}
		return sim.Run(sim.Options{ConfigPath: path, Runtime: rt})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&runtimeConfigPath, "runtime-config", "", "path to an optional TOML file of engine-tuning options")
	rootCmd.PersistentFlags().StringVar(&activityDBPath, "activity-db", "", "path to a SQLite database mirroring every reader observation")
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "path to write the resolved partition manifest as YAML")
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", "", "path to write an end-of-run MessagePack activity snapshot")
	rootCmd.PersistentFlags().StringVar(&sendBufferSize, "send-buffer", "", "human-readable buffered-send allocation (e.g. 64KiB), used in place of the computed minimum when larger")
}

// Execute runs the root command, following the teacher's
// HD220-crownet/cmd/root.go Execute() convention: print the error and
// exit non-zero rather than letting cobra's default usage dump fire on
// a runtime failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
