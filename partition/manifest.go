// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package partition

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the human-readable record of a resolved partition,
// written for operator inspection when --manifest is set. It carries
// no information the wire protocol doesn't already have; it exists
// purely as a diagnostic artifact.
type Manifest struct {
	NeuronCount int         `yaml:"neuron_count"`
	WorkerCount int         `yaml:"worker_count"`
	Owners      []OwnerEntry `yaml:"owners"`
}

// OwnerEntry names one neuron's assigned worker rank.
type OwnerEntry struct {
	NeuronID int `yaml:"neuron_id"`
	Rank     int `yaml:"rank"`
}

// NewManifest builds a Manifest from a resolved owner table.
func NewManifest(owners []int, workerCount int) Manifest {
	m := Manifest{NeuronCount: len(owners), WorkerCount: workerCount, Owners: make([]OwnerEntry, len(owners))}
	for id, rank := range owners {
		m.Owners[id] = OwnerEntry{NeuronID: id, Rank: rank}
	}
	return m
}

// WriteManifest encodes m as YAML to path.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("partition: encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("partition: writing manifest %s: %w", path, err)
	}
	return nil
}
