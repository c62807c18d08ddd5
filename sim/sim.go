// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim wires graph, partition, transport, master, and worker
// together into the single entry point cmd/prism calls: load the
// model, bring up the MPI world, and dispatch to the master or worker
// role by rank. This mirrors the teacher's top-level Sim struct
// (leabra/networkbase.go's NetworkBase, examples/mpi/ra25.go's Sim)
// as the one place that owns the whole run's lifecycle.
package sim

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/emer/prism/graph"
	"github.com/emer/prism/master"
	"github.com/emer/prism/partition"
	"github.com/emer/prism/runtimeopts"
	"github.com/emer/prism/transport"
	"github.com/emer/prism/worker"
)

// Options collects the resolved CLI and runtime-config state a Run
// needs.
type Options struct {
	ConfigPath string
	Runtime    runtimeopts.Options
}

// Run brings up the MPI world, loads the model at opts.ConfigPath, and
// dispatches to the master or worker role by this process's rank. It
// returns after the full simulation horizon has elapsed and, on rank
// worker.ReaderRank, after any configured sinks are flushed.
func Run(opts Options) error {
	if err := transport.Init(); err != nil {
		return err
	}
	defer transport.Finalize()

	cfg, err := graph.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("sim: loading %s: %w", opts.ConfigPath, err)
	}

	bufSize := opts.Runtime.SendBufferBytes(transport.DefaultSendBufferOverhead)
	world, err := transport.NewWorld(cfg.Pop.Len(), bufSize)
	if err != nil {
		return err
	}

	// Every rank independently checks the worker/neuron precondition
	// before the message protocol starts, matching the launch-time
	// check the original engine performs on every process (not just
	// the master) ahead of any MPI_Send/MPI_Recv. Detecting this only
	// inside the master role would leave worker ranks blocked forever
	// on a TASK receive that the master never sends.
	if !sufficientNeurons(cfg.Pop.Len(), world.Workers()) {
		if world.Rank() == 0 {
			transport.Printf("prism: %d workers exceed %d neurons, exiting\n", world.Workers(), cfg.Pop.Len())
		}
		return nil
	}

	runID := uuid.NewString()

	if world.Rank() == 0 {
		return runMaster(world, cfg, opts, runID)
	}
	return runWorker(world, cfg, opts, runID)
}

func runMaster(world *transport.World, cfg *graph.Config, opts Options, runID string) error {
	m, err := master.New(world, cfg)
	if err != nil {
		return err
	}
	if opts.Runtime.Manifest != "" {
		manifest := partition.NewManifest(m.Owners, world.Workers())
		if err := partition.WriteManifest(opts.Runtime.Manifest, manifest); err != nil {
			return err
		}
	}
	transport.Printf("prism: run %s starting, %d neurons across %d workers\n", runID, cfg.Pop.Len(), world.Workers())
	return m.Run()
}

func runWorker(world *transport.World, cfg *graph.Config, opts Options, runID string) error {
	task, err := world.Recv(0, transport.TagTask, partition.MaxOwnershipSetLen(cfg.Pop.Len(), world.Workers()))
	if err != nil {
		return fmt.Errorf("sim: receiving TASK: %w", err)
	}
	_ = partition.UnpadTask(task)

	configPayload, err := world.Recv(0, transport.TagConfig, 2*cfg.Pop.Len())
	if err != nil {
		return fmt.Errorf("sim: receiving CONFIG: %w", err)
	}
	owners := transport.DecodeConfigPayload(configPayload)
	if err := cfg.Pop.ApplyOwnerTable(owners); err != nil {
		return err
	}
	cfg.Pop.Prime(world.Rank())

	sink, err := buildSink(world.Rank(), opts)
	if err != nil {
		return err
	}

	w := worker.New(world.Rank(), world, cfg.Pop, cfg.Devices, cfg.Horizon, sink)
	if err := w.Run(); err != nil {
		return err
	}

	if sink != nil {
		if err := sink.Close(); err != nil {
			return err
		}
	}
	if world.Rank() == worker.ReaderRank && opts.Runtime.Snapshot != "" {
		if err := worker.WriteSnapshot(opts.Runtime.Snapshot, runID, cfg.Horizon, cfg.Pop); err != nil {
			return err
		}
	}
	return nil
}

// buildSink assembles the reader-output fan-out for rank
// worker.ReaderRank: stdout unconditionally, plus an optional SQLite
// mirror when --activity-db is set. Every other rank gets no sink, so
// Worker.tryAdvanceTick skips emission entirely.
func buildSink(rank int, opts Options) (worker.Sink, error) {
	if rank != worker.ReaderRank {
		return nil, nil
	}
	sinks := worker.MultiSink{worker.StdoutSink{}}
	if opts.Runtime.ActivityDB != "" {
		db, err := worker.NewSQLiteSink(opts.Runtime.ActivityDB)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, db)
	}
	return sinks, nil
}

// sufficientNeurons reports whether the population is large enough to
// spread across workerCount workers, mirroring the original engine's
// `neuronLength < world_size - 1` launch-time guard.
func sufficientNeurons(neuronCount, workerCount int) bool {
	return neuronCount >= workerCount
}
