// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package worker implements the per-worker simulation loop: stimulus
// application, DATA_REQUEST/DATA_RESPONSE servicing, the integration
// rule, completion announcement, and tick advance. It also carries the
// reader output emitted by the rank designated ReaderRank.
package worker

import (
	"fmt"
	"os"

	"github.com/emer/prism/graph"
	"github.com/emer/prism/transport"
)

// ReaderRank is the worker designated to emit reader output, per
// the design ("rank 1 by policy").
const ReaderRank = 1

// Worker drives one process's per-tick state machine .
// The four booleans mirror the flag bundle the tick loop turns on and
// off each tick; this matches the teacher's habit of a handful of
// plain bool fields on a long-lived Sim/Network struct rather than an
// explicit state type (examples/mpi/ra25.go's IsRunning/StopNow/
// NeedsNewRun).
type Worker struct {
	Rank    int
	World   *transport.World
	Pop     *graph.Population
	Devices []graph.Device
	Horizon int
	Sink    Sink

	tick int

	loadedAllData  bool
	needToSendDone bool
	gettingData    bool
	needToHandleIO bool
}

// New constructs a Worker ready to Run. pop must already have had its
// owner table applied and Prime(rank) called.
func New(rank int, world *transport.World, pop *graph.Population, devices []graph.Device, horizon int, sink Sink) *Worker {
	return &Worker{
		Rank:           rank,
		World:          world,
		Pop:            pop,
		Devices:        devices,
		Horizon:        horizon,
		Sink:           sink,
		needToSendDone: true,
		needToHandleIO: true,
	}
}

// Tick returns the local tick counter (for tests/diagnostics).
func (w *Worker) Tick() int { return w.tick }

// Run drives the worker through every tick until the local tick
// counter reaches Horizon, per the protocol's termination condition.
func (w *Worker) Run() error {
	w.World.AttachSendBuffer()
	defer w.World.DetachSendBuffer()
	for w.tick < w.Horizon {
		if err := w.step(); err != nil {
			return err
		}
	}
	return nil
}

// step runs one pass of the poll rotation (a)-(f). Kept as a
// separate method so tests can drive it without a real transport.
func (w *Worker) step() error {
	w.applyStimulus()
	if err := w.serviceDataRequest(); err != nil {
		return err
	}
	if err := w.applyDataResponse(); err != nil {
		return err
	}
	if err := w.attemptIntegration(); err != nil {
		return err
	}
	if err := w.announceCompletion(); err != nil {
		return err
	}
	if err := w.tryAdvanceTick(); err != nil {
		return err
	}
	return nil
}

// applyStimulus is step (a): forces bound, locally-owned neurons to
// the saturated level during their stimulus window. Runs once per
// tick, gated by needToHandleIO.
func (w *Worker) applyStimulus() {
	if !w.needToHandleIO {
		return
	}
	for i := range w.Devices {
		d := &w.Devices[i]
		if d.Kind != graph.Stimulus || !d.Active(w.tick) {
			continue
		}
		for _, id := range d.Neurons {
			n := &w.Pop.Neurons[id]
			if n.Owner == w.Rank {
				n.ActivityLevel = graph.StimulusForcedLevel
			}
		}
	}
	w.needToHandleIO = false
}

// serviceDataRequest is step (b).
func (w *Worker) serviceDataRequest() error {
	_, payload, ok, err := w.World.TryRecv(transport.TagDataRequest, transport.DataRequestLen)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	req := transport.DecodeDataRequest(payload)
	if int(req.NeuronID) < 0 || int(req.NeuronID) >= w.Pop.Len() {
		fmt.Fprintf(os.Stderr, "worker %d: DATA_REQUEST for unknown neuron %d: not found\n", w.Rank, req.NeuronID)
		return nil
	}
	n := &w.Pop.Neurons[req.NeuronID]
	if n.Owner != w.Rank {
		fmt.Fprintf(os.Stderr, "worker %d: DATA_REQUEST for neuron %d not locally owned: not found\n", w.Rank, req.NeuronID)
		return nil
	}
	resp := transport.DataResponse{Activity: n.ActivityLevel, ResponderRank: int32(w.Rank), NeuronID: n.ID}
	return w.World.Send(int(req.RequesterRank), transport.TagDataResponse, transport.EncodeDataResponse(resp))
}

// applyDataResponse is step (c).
func (w *Worker) applyDataResponse() error {
	_, payload, ok, err := w.World.TryRecv(transport.TagDataResponse, transport.DataResponseLen)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	resp := transport.DecodeDataResponse(payload)
	n := &w.Pop.Neurons[resp.NeuronID]
	v := resp.Activity
	if v == graph.Unknown {
		v = 0
	}
	n.ActivityLevel = v
	w.gettingData = false
	return nil
}

// attemptIntegration is step (d). It never returns a transport error
// to the caller except through the one DATA_REQUEST send it may
// issue.
func (w *Worker) attemptIntegration() error {
	if w.loadedAllData {
		return nil
	}
	allSet := true
	for i := range w.Pop.Neurons {
		n := &w.Pop.Neurons[i]
		if n.Owner != w.Rank || n.NextValue != graph.Unknown {
			continue
		}
		ready, err := w.resolveConnections(n)
		if err != nil {
			return err
		}
		if !ready {
			allSet = false
			continue
		}
		n.NextValue = w.integrate(n)
	}
	if allSet {
		w.loadedAllData = true
	}
	return nil
}

// resolveConnections applies the "unknown source" rule to every
// connection of n: a locally-owned unknown source is quiesced to 0, a
// remote unknown source triggers at most one outstanding DATA_REQUEST
// across all owned neurons (the getting_data latch, the design). It
// returns true once every connection's source is known, or the error
// of a failed DATA_REQUEST send.
func (w *Worker) resolveConnections(n *graph.Neuron) (bool, error) {
	ready := true
	for _, c := range n.Connections {
		src := &w.Pop.Neurons[c.Source]
		if src.ActivityLevel != graph.Unknown {
			continue
		}
		if src.Owner == w.Rank {
			src.ActivityLevel = 0
			continue
		}
		ready = false
		if !w.gettingData {
			req := transport.DataRequest{NeuronID: src.ID, RequesterRank: int32(w.Rank)}
			if err := w.World.Send(src.Owner, transport.TagDataRequest, transport.EncodeDataRequest(req)); err != nil {
				return false, err
			}
			w.gettingData = true
		}
	}
	return ready, nil
}

// integrate computes next_value = min(trunc(sum(sensitivity*activity)), 10).
// Negative totals truncate toward zero (Go's float64->int32 conversion),
// since the design leaves the truncation direction for negative sums as an
// implementation choice to document.
func (w *Worker) integrate(n *graph.Neuron) int32 {
	total := 0.0
	for _, c := range n.Connections {
		src := &w.Pop.Neurons[c.Source]
		total += c.Sensitivity * float64(src.ActivityLevel)
	}
	next := int32(total)
	if next > graph.MaxActivity {
		next = graph.MaxActivity
	}
	return next
}

// announceCompletion is step (e).
func (w *Worker) announceCompletion() error {
	if w.loadedAllData && w.needToSendDone {
		if err := w.World.Send(0, transport.TagTaskDone, []int32{0}); err != nil {
			return err
		}
		w.needToSendDone = false
	}
	return nil
}

// tryAdvanceTick is step (f).
func (w *Worker) tryAdvanceTick() error {
	_, _, ok, err := w.World.TryRecv(transport.TagTimeUpdate, transport.TimeUpdateLen)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if w.Rank == ReaderRank && w.Sink != nil {
		w.emitReaderOutput()
	}
	w.Pop.ResetMirrors(w.Rank)
	for i := range w.Pop.Neurons {
		n := &w.Pop.Neurons[i]
		if n.Owner == w.Rank {
			n.ActivityLevel = n.NextValue
			n.NextValue = graph.Unknown
		}
	}
	w.needToSendDone = true
	w.needToHandleIO = true
	w.loadedAllData = false
	w.gettingData = false
	w.tick++
	return nil
}

// emitReaderOutput prints the observed activity level of every neuron
// in this worker's local table , using the value as it
// stands at TIME_UPDATE receipt -- after this tick's stimulus
// application but before this tick's commit, which is what the S1-S3
// traces in the design assume.
func (w *Worker) emitReaderOutput() {
	for i := range w.Pop.Neurons {
		n := &w.Pop.Neurons[i]
		w.Sink.Emit(w.tick, int(n.ID), n.ActivityLevel)
	}
}
