// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport wires the six tagged message kinds of the design
// onto cogentcore.org/core/base/mpi, the MPI binding the teacher
// repository uses for its own rank-parallel training loop
// (examples/mpi/ra25.go: mpi.Init, mpi.NewComm, mpi.WorldRank,
// mpi.WorldSize, mpi.Printf, mpi.Finalize — used here verbatim).
//
// That example only exercises collectives (AllReduceF32) for
// gradient sharing, so the pack does not show the package's
// point-to-point surface. Comm, below, is this file's boundary: it
// declares the Send/Recv/Iprobe/buffer-attach methods this engine
// needs from an *mpi.Comm, matching conventional MPI binding naming.
// If the real package's point-to-point API differs in name or shape,
// only this file's adapter needs to change — nothing above it in the
// dependency graph assumes anything beyond the Comm interface.
package transport

import (
	"fmt"

	"cogentcore.org/core/base/mpi"
	"github.com/c2h5oh/datasize"
)

// Tag identifies one of the six message kinds of the design.
type Tag int

const (
	TagTask Tag = iota + 1
	TagConfig
	TagDataRequest
	TagDataResponse
	TagTimeUpdate
	TagTaskDone
)

func (t Tag) String() string {
	switch t {
	case TagTask:
		return "TASK"
	case TagConfig:
		return "CONFIG"
	case TagDataRequest:
		return "DATA_REQUEST"
	case TagDataResponse:
		return "DATA_RESPONSE"
	case TagTimeUpdate:
		return "TIME_UPDATE"
	case TagTaskDone:
		return "TASK_DONE"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// Comm is the subset of *mpi.Comm's point-to-point surface this
// package depends on. Exported so test harnesses in other packages
// (worker, master) can substitute a fake communicator via
// NewWorldForTest without a real MPI runtime.
type Comm interface {
	Send(buf []int32, dest, tag int) error
	Recv(buf []int32, source, tag int) error
	Iprobe(tag int) (ok bool, source int, err error)
	BufferAttach(buf []byte)
	BufferDetach()
}

// World is one process's view of the global communicator: its rank,
// the world size, and the buffered-send channel used for every
// inter-worker message.
type World struct {
	c        Comm
	rank     int
	size     int
	sendBuf  []byte
	attached bool
}

// DefaultSendBufferOverhead is added to the computed minimum buffer
// size to account for MPI's own per-message envelope overhead, per
// the design ("size >= 2*W*sizeof(int) plus implementation overhead").
const DefaultSendBufferOverhead = 4 * datasize.KB

// Init brings up the MPI runtime for this process. Must be called
// exactly once, before any other transport call.
func Init() error {
	return mpi.Init()
}

// Finalize tears down the MPI runtime. Must be called exactly once,
// after the last send/receive of the run.
func Finalize() {
	mpi.Finalize()
}

// Printf writes a rank-gated diagnostic line, matching the teacher's
// own mpi.Printf convention in leabra/helpers.go and examples/mpi/ra25.go.
func Printf(format string, args ...any) {
	mpi.Printf(format, args...)
}

// NewWorld constructs a World over the whole communicator, sized for
// workerCount workers plus overhead.
func NewWorld(workerCount int, bufferSize datasize.ByteSize) (*World, error) {
	c, err := mpi.NewComm(nil)
	if err != nil {
		return nil, fmt.Errorf("transport: creating communicator: %w", err)
	}
	min := datasize.ByteSize(2*workerCount*4) + DefaultSendBufferOverhead
	size := bufferSize
	if size < min {
		size = min
	}
	return &World{
		c:       c,
		rank:    mpi.WorldRank(),
		size:    mpi.WorldSize(),
		sendBuf: make([]byte, size.Bytes()),
	}, nil
}

// NewWorldForTest builds a World around a caller-supplied Comm fake,
// bypassing mpi.NewComm/mpi.Init entirely. Exported for the worker and
// master packages' unit tests.
func NewWorldForTest(c Comm, rank, size int, bufferSize datasize.ByteSize) *World {
	return &World{
		c:       c,
		rank:    rank,
		size:    size,
		sendBuf: make([]byte, bufferSize.Bytes()),
	}
}

// Rank returns this process's world rank (0 is the master).
func (w *World) Rank() int { return w.rank }

// Size returns the total process count, including the master.
func (w *World) Size() int { return w.size }

// Workers returns the number of worker processes (world size - 1).
func (w *World) Workers() int { return w.size - 1 }

// AttachSendBuffer attaches this process's buffered-send region. Must
// be called once before any buffered send and must outlive every
// outstanding send it covers .
func (w *World) AttachSendBuffer() {
	if w.attached {
		return
	}
	w.c.BufferAttach(w.sendBuf)
	w.attached = true
}

// DetachSendBuffer frees the buffered-send region. Call only after
// the last TIME_UPDATE has been received.
func (w *World) DetachSendBuffer() {
	if !w.attached {
		return
	}
	w.c.BufferDetach()
	w.attached = false
}

// Send buffered-sends payload to dest under tag.
func (w *World) Send(dest int, tag Tag, payload []int32) error {
	if err := w.c.Send(payload, dest, int(tag)); err != nil {
		return fmt.Errorf("transport: send %s to rank %d: %w", tag, dest, err)
	}
	return nil
}

// Recv blocks for a message of the given tag and length from a
// specific source.
func (w *World) Recv(source int, tag Tag, length int) ([]int32, error) {
	buf := make([]int32, length)
	if err := w.c.Recv(buf, source, int(tag)); err != nil {
		return nil, fmt.Errorf("transport: recv %s from rank %d: %w", tag, source, err)
	}
	return buf, nil
}

// TryRecv performs the non-blocking-probe-then-blocking-receive
// pattern of the design: it probes for a pending message under
// tag from any source, and if one is pending, receives it and returns
// ok=true.
func (w *World) TryRecv(tag Tag, length int) (source int, payload []int32, ok bool, err error) {
	pending, from, perr := w.c.Iprobe(int(tag))
	if perr != nil {
		return 0, nil, false, fmt.Errorf("transport: iprobe %s: %w", tag, perr)
	}
	if !pending {
		return 0, nil, false, nil
	}
	buf := make([]int32, length)
	if err := w.c.Recv(buf, from, int(tag)); err != nil {
		return 0, nil, false, fmt.Errorf("transport: recv %s from rank %d: %w", tag, from, err)
	}
	return from, buf, true, nil
}

// BroadcastToWorkers sends payload under tag to every worker rank
// (1..Workers()). The dissemination and tick-advance messages of
// the design are each described as the master sending to every
// worker in turn, so this is expressed as a loop of ordinary sends
// rather than a true MPI collective.
func (w *World) BroadcastToWorkers(tag Tag, payload []int32) error {
	for rank := 1; rank <= w.Workers(); rank++ {
		if err := w.Send(rank, tag, payload); err != nil {
			return err
		}
	}
	return nil
}
