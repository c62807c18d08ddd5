// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package graph holds the immutable-after-load description of the
// neuron population, its connections, and its I/O devices. Neurons
// are stored in a dense, id-indexed slice rather than the pointer-
// linked lists of the original implementation: lookup by id is a
// slice index, and lookup by name is a map built once at load time.
package graph

import "fmt"

// Unknown is the sentinel value for an activity level or next value
// that has not yet been determined for the current tick.
const Unknown int32 = -1

// MaxActivity is the saturating ceiling for activity_level and
// next_value.
const MaxActivity int32 = 10

// MaxNameBytes is the maximum byte length of a neuron or device name.
const MaxNameBytes = 20

// Connection is a weighted directed edge from Source into the neuron
// that holds it.
type Connection struct {
	Source      int32
	Sensitivity float64
}

// Neuron is one node of the population, addressed by its stable,
// insertion-order ID.
type Neuron struct {
	ID            int32
	Name          string
	Owner         int
	Connections   []Connection
	ActivityLevel int32
	NextValue     int32
}

// Population is the fixed set of neurons loaded from configuration,
// indexed by ID.
type Population struct {
	Neurons []Neuron
	byName  map[string]int32
}

// NewPopulation builds a Population from an ordered list of names and
// their connections (each Source an index into names). Names must be
// unique and 1-MaxNameBytes bytes long.
func NewPopulation(names []string, conns [][]Connection) (*Population, error) {
	if len(names) != len(conns) {
		return nil, fmt.Errorf("graph: names and connections length mismatch (%d != %d)", len(names), len(conns))
	}
	p := &Population{
		Neurons: make([]Neuron, len(names)),
		byName:  make(map[string]int32, len(names)),
	}
	for i, name := range names {
		if len(name) == 0 || len(name) > MaxNameBytes {
			return nil, fmt.Errorf("graph: neuron name %q must be 1-%d bytes", name, MaxNameBytes)
		}
		if _, dup := p.byName[name]; dup {
			return nil, fmt.Errorf("graph: duplicate neuron name %q", name)
		}
		p.byName[name] = int32(i)
		p.Neurons[i] = Neuron{
			ID:            int32(i),
			Name:          name,
			ActivityLevel: Unknown,
			NextValue:     Unknown,
		}
	}
	for i, cs := range conns {
		for _, c := range cs {
			if c.Source < 0 || int(c.Source) >= len(p.Neurons) {
				return nil, fmt.Errorf("graph: connection into %q references unknown neuron id %d", names[i], c.Source)
			}
		}
		p.Neurons[i].Connections = cs
	}
	return p, nil
}

// IndexByName returns the id of the neuron with the given name.
func (p *Population) IndexByName(name string) (int32, bool) {
	id, ok := p.byName[name]
	return id, ok
}

// Len returns the number of neurons in the population.
func (p *Population) Len() int { return len(p.Neurons) }

// ApplyOwnerTable sets Owner on every neuron from a flat owner table
// indexed by neuron id, as received via the CONFIG message.
func (p *Population) ApplyOwnerTable(owners []int) error {
	if len(owners) != len(p.Neurons) {
		return fmt.Errorf("graph: owner table length %d does not match population size %d", len(owners), len(p.Neurons))
	}
	for i := range p.Neurons {
		p.Neurons[i].Owner = owners[i]
	}
	return nil
}

// Prime sets the start-of-run state for rank: owned neurons begin at
// the quiescent activity level 0 (the invariant in the design holds for
// owned neurons outside the reset window, so they never start at the
// unknown sentinel), while every other neuron's mirror begins unknown,
// to be populated on demand by the data-exchange protocol. Call once,
// after ApplyOwnerTable and before the first tick.
func (p *Population) Prime(rank int) {
	for i := range p.Neurons {
		if p.Neurons[i].Owner == rank {
			p.Neurons[i].ActivityLevel = 0
		} else {
			p.Neurons[i].ActivityLevel = Unknown
		}
		p.Neurons[i].NextValue = Unknown
	}
}

// ResetMirrors invalidates every non-owned neuron's mirrored activity
// level, per the tick-boundary mirror invalidation rule in the design.
// Owned neurons are committed separately by the caller.
func (p *Population) ResetMirrors(rank int) {
	for i := range p.Neurons {
		if p.Neurons[i].Owner != rank {
			p.Neurons[i].ActivityLevel = Unknown
		}
	}
}
