// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package master implements rank 0's side of the protocol:
// partitioning the population, disseminating the task and owner
// table, and driving the per-tick barrier by waiting for every
// worker's TASK_DONE before broadcasting the next TIME_UPDATE.
package master

import (
	"github.com/emer/prism/graph"
	"github.com/emer/prism/partition"
	"github.com/emer/prism/transport"
)

// Master drives rank 0's dissemination and tick-barrier loop.
type Master struct {
	World   *transport.World
	Cfg     *graph.Config
	Owners  []int
}

// New partitions cfg's population across the world's worker ranks and
// returns a Master ready to Run.
func New(world *transport.World, cfg *graph.Config) (*Master, error) {
	owners, err := partition.Assign(cfg.Pop.Len(), world.Workers())
	if err != nil {
		return nil, err
	}
	if err := cfg.Pop.ApplyOwnerTable(owners); err != nil {
		return nil, err
	}
	return &Master{World: world, Cfg: cfg, Owners: owners}, nil
}

// Run disseminates the task and owner table to every worker, then
// drives the tick barrier for Cfg.Horizon ticks.
func (m *Master) Run() error {
	m.World.AttachSendBuffer()
	defer m.World.DetachSendBuffer()

	if err := m.disseminate(); err != nil {
		return err
	}
	for tick := 0; tick < m.Cfg.Horizon; tick++ {
		if err := m.awaitAllDone(); err != nil {
			return err
		}
		if err := m.World.BroadcastToWorkers(transport.TagTimeUpdate, []int32{int32(tick)}); err != nil {
			return err
		}
	}
	return nil
}

// disseminate sends the padded per-worker ownership set (TASK) and the
// flat owner table (CONFIG) to every worker rank, per the protocol.
func (m *Master) disseminate() error {
	maxLen := partition.MaxOwnershipSetLen(m.Cfg.Pop.Len(), m.World.Workers())
	configPayload := transport.ConfigPayload(m.Owners)
	for rank := 1; rank <= m.World.Workers(); rank++ {
		task := partition.PadTask(partition.OwnershipSet(m.Owners, rank), maxLen)
		if err := m.World.Send(rank, transport.TagTask, task); err != nil {
			return err
		}
		if err := m.World.Send(rank, transport.TagConfig, configPayload); err != nil {
			return err
		}
	}
	return nil
}

// awaitAllDone blocks until every worker rank has reported TASK_DONE
// for the current tick, the barrier the design requires before the next
// TIME_UPDATE may be sent.
func (m *Master) awaitAllDone() error {
	remaining := make(map[int]bool, m.World.Workers())
	for rank := 1; rank <= m.World.Workers(); rank++ {
		remaining[rank] = true
	}
	for len(remaining) > 0 {
		source, _, ok, err := m.World.TryRecv(transport.TagTaskDone, transport.TaskDoneLen)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		delete(remaining, source)
	}
	return nil
}
