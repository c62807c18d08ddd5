// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package partition implements the deterministic round-robin mapping
// of neuron ids to worker ranks . The assignment code has no
// third-party dependency (only the YAML manifest in manifest.go
// uses gopkg.in/yaml.v3): the algorithm is a handful of lines of modular
// arithmetic, and nothing in the retrieval pack models static graph
// partitioning that this could be grounded on beyond the the design itself.
package partition

import "fmt"

// ConfigError reports that the population is too small to spread
// across the configured worker count. Fatal at startup, before any
// message is sent.
type ConfigError struct {
	NeuronCount int
	WorkerCount int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("partition: %d workers exceed %d neurons", e.WorkerCount, e.NeuronCount)
}

// Assign returns the owner table: a slice indexed by neuron id whose
// value is the 1-based worker rank that owns it. Workers are ranks
// 1..workerCount; neuron i is owned by 1+(i mod workerCount).
func Assign(neuronCount, workerCount int) ([]int, error) {
	if workerCount <= 0 {
		return nil, fmt.Errorf("partition: workerCount must be positive, got %d", workerCount)
	}
	if neuronCount < workerCount {
		return nil, &ConfigError{NeuronCount: neuronCount, WorkerCount: workerCount}
	}
	owners := make([]int, neuronCount)
	for i := range owners {
		owners[i] = 1 + i%workerCount
	}
	return owners, nil
}

// MaxOwnershipSetLen returns ⌈neuronCount/workerCount⌉, the padded
// length of the TASK message's ownership-set payload .
func MaxOwnershipSetLen(neuronCount, workerCount int) int {
	return (neuronCount + workerCount - 1) / workerCount
}

// OwnershipSet returns the neuron ids owned by rank, in ascending
// order, unpadded.
func OwnershipSet(owners []int, rank int) []int32 {
	var ids []int32
	for id, owner := range owners {
		if owner == rank {
			ids = append(ids, int32(id))
		}
	}
	return ids
}

// PadTask pads ids to length with the sentinel -1, as required for
// the wire-format TASK payload.
func PadTask(ids []int32, length int) []int32 {
	out := make([]int32, length)
	for i := range out {
		out[i] = -1
	}
	copy(out, ids)
	return out
}

// UnpadTask strips the -1 sentinel padding from a received TASK
// payload.
func UnpadTask(padded []int32) []int32 {
	out := make([]int32, 0, len(padded))
	for _, v := range padded {
		if v == -1 {
			continue
		}
		out = append(out, v)
	}
	return out
}
