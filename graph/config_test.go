// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadS1SelfLoop(t *testing.T) {
	path := writeTemp(t, `{
		"simulationLength": 4,
		"neurons": [
			{"name": "A", "connections": [{"neuron": "A", "sensitivity": 0.5}]}
		],
		"io": [
			{"name": "stim", "type": 0, "connections": [{"neuron": "A"}], "offset": 0, "duration": 2, "amplitude": 1}
		]
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Horizon != 4 {
		t.Fatalf("Horizon = %d, want 4", cfg.Horizon)
	}
	if cfg.Pop.Len() != 1 {
		t.Fatalf("population size = %d, want 1", cfg.Pop.Len())
	}
	a := cfg.Pop.Neurons[0]
	if len(a.Connections) != 1 || a.Connections[0].Source != 0 || a.Connections[0].Sensitivity != 0.5 {
		t.Fatalf("unexpected connections: %+v", a.Connections)
	}
	if len(cfg.Devices) != 1 || cfg.Devices[0].Kind != Stimulus {
		t.Fatalf("unexpected devices: %+v", cfg.Devices)
	}
	dev := cfg.Devices[0]
	if !dev.Active(0) || !dev.Active(1) || dev.Active(2) {
		t.Fatalf("stimulus window wrong: Active(0)=%v Active(1)=%v Active(2)=%v", dev.Active(0), dev.Active(1), dev.Active(2))
	}
}

func TestLoadDanglingConnectionReference(t *testing.T) {
	path := writeTemp(t, `{
		"simulationLength": 1,
		"neurons": [{"name": "A", "connections": [{"neuron": "ghost", "sensitivity": 1}]}],
		"io": [{"name": "r", "type": 1, "connections": [{"neuron": "A"}], "outputPrefix": "out"}]
	}`)
	_, err := Load(path)
	if _, ok := err.(*SemanticError); !ok {
		t.Fatalf("want *SemanticError, got %T (%v)", err, err)
	}
}

func TestLoadBadType(t *testing.T) {
	path := writeTemp(t, `{
		"simulationLength": 1,
		"neurons": [{"name": "A", "connections": []}],
		"io": [{"name": "x", "type": 7, "connections": [{"neuron": "A"}]}]
	}`)
	_, err := Load(path)
	if _, ok := err.(*SemanticError); !ok {
		t.Fatalf("want *SemanticError, got %T (%v)", err, err)
	}
}

func TestLoadZeroHorizon(t *testing.T) {
	path := writeTemp(t, `{
		"simulationLength": 0,
		"neurons": [{"name": "A", "connections": []}],
		"io": [{"name": "r", "type": 1, "connections": [{"neuron": "A"}]}]
	}`)
	_, err := Load(path)
	if _, ok := err.(*SemanticError); !ok {
		t.Fatalf("want *SemanticError, got %T (%v)", err, err)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeTemp(t, `{not json`)
	_, err := Load(path)
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("want *ParseError, got %T (%v)", err, err)
	}
}

func TestPopulationPrimeAndResetMirrors(t *testing.T) {
	pop, err := NewPopulation([]string{"A", "B"}, [][]Connection{
		{{Source: 1, Sensitivity: 1}},
		{},
	})
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}
	if err := pop.ApplyOwnerTable([]int{1, 2}); err != nil {
		t.Fatalf("ApplyOwnerTable: %v", err)
	}
	pop.Prime(1)
	if pop.Neurons[0].ActivityLevel != 0 {
		t.Fatalf("owned neuron should prime to 0, got %d", pop.Neurons[0].ActivityLevel)
	}
	if pop.Neurons[1].ActivityLevel != Unknown {
		t.Fatalf("non-owned neuron should prime to Unknown, got %d", pop.Neurons[1].ActivityLevel)
	}
	pop.Neurons[1].ActivityLevel = 7
	pop.ResetMirrors(1)
	if pop.Neurons[1].ActivityLevel != Unknown {
		t.Fatalf("ResetMirrors should invalidate non-owned mirror, got %d", pop.Neurons[1].ActivityLevel)
	}
	if pop.Neurons[0].ActivityLevel != 0 {
		t.Fatalf("ResetMirrors must not touch owned neuron, got %d", pop.Neurons[0].ActivityLevel)
	}
}
