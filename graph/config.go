// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultConfigFile is the configuration file name used when the
// launcher's positional argument is absent.
const DefaultConfigFile = "model.json"

// Config is the fully validated, in-memory model: the simulation
// horizon, the neuron population, and the I/O device list. Created
// once at startup and never mutated afterward.
type Config struct {
	Horizon int
	Pop     *Population
	Devices []Device
}

// rawConfig mirrors the on-disk JSON document described in the design.
type rawConfig struct {
	SimulationLength int          `json:"simulationLength"`
	Neurons          []rawNeuron  `json:"neurons"`
	IO               []rawIODevice `json:"io"`
}

type rawNeuron struct {
	Name        string          `json:"name"`
	Connections []rawConnection `json:"connections"`
}

type rawConnection struct {
	Neuron      string  `json:"neuron"`
	Sensitivity float64 `json:"sensitivity"`
}

type rawIODevice struct {
	Name         string            `json:"name"`
	Type         int               `json:"type"`
	Connections  []rawIOConnection `json:"connections"`
	Offset       int               `json:"offset"`
	Duration     int               `json:"duration"`
	Amplitude    int               `json:"amplitude"`
	OutputPrefix string            `json:"outputPrefix"`
}

type rawIOConnection struct {
	Neuron string `json:"neuron"`
}

// Load reads and validates the configuration document at path,
// returning either a fully-formed Config or a *ParseError /
// *SemanticError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return buildConfig(&raw)
}

func buildConfig(raw *rawConfig) (*Config, error) {
	if raw.SimulationLength <= 0 {
		return nil, &SemanticError{Field: "simulationLength", Msg: "must be a positive integer"}
	}
	if len(raw.Neurons) == 0 {
		return nil, &SemanticError{Field: "neurons", Msg: "must be non-empty"}
	}
	if len(raw.IO) == 0 {
		return nil, &SemanticError{Field: "io", Msg: "must be non-empty"}
	}

	names := make([]string, len(raw.Neurons))
	byName := make(map[string]int32, len(raw.Neurons))
	for i, n := range raw.Neurons {
		if len(n.Name) == 0 || len(n.Name) > MaxNameBytes {
			return nil, &SemanticError{Field: "neurons[].name", Msg: fmt.Sprintf("%q must be 1-%d bytes", n.Name, MaxNameBytes)}
		}
		if _, dup := byName[n.Name]; dup {
			return nil, &SemanticError{Field: "neurons[].name", Msg: fmt.Sprintf("duplicate name %q", n.Name)}
		}
		names[i] = n.Name
		byName[n.Name] = int32(i)
	}

	conns := make([][]Connection, len(raw.Neurons))
	for i, n := range raw.Neurons {
		cs := make([]Connection, len(n.Connections))
		for j, c := range n.Connections {
			srcID, ok := byName[c.Neuron]
			if !ok {
				return nil, &SemanticError{Field: "neurons[].connections[].neuron", Msg: fmt.Sprintf("%q references unknown neuron %q", n.Name, c.Neuron)}
			}
			cs[j] = Connection{Source: srcID, Sensitivity: c.Sensitivity}
		}
		conns[i] = cs
	}

	pop, err := NewPopulation(names, conns)
	if err != nil {
		return nil, &SemanticError{Field: "neurons", Msg: err.Error()}
	}

	devices := make([]Device, len(raw.IO))
	for i, d := range raw.IO {
		if len(d.Name) > MaxNameBytes {
			return nil, &SemanticError{Field: "io[].name", Msg: fmt.Sprintf("%q exceeds %d bytes", d.Name, MaxNameBytes)}
		}
		if d.Type != int(Stimulus) && d.Type != int(Reader) {
			return nil, &SemanticError{Field: "io[].type", Msg: fmt.Sprintf("%d is not 0 or 1", d.Type)}
		}
		if len(d.Connections) == 0 {
			return nil, &SemanticError{Field: "io[].connections", Msg: fmt.Sprintf("device %q must bind at least one neuron", d.Name)}
		}
		ids := make([]int32, len(d.Connections))
		for j, c := range d.Connections {
			id, ok := byName[c.Neuron]
			if !ok {
				return nil, &SemanticError{Field: "io[].connections[].neuron", Msg: fmt.Sprintf("device %q references unknown neuron %q", d.Name, c.Neuron)}
			}
			ids[j] = id
		}
		dev := Device{Name: d.Name, Kind: DeviceKind(d.Type), Neurons: ids}
		switch dev.Kind {
		case Stimulus:
			if d.Duration <= 0 {
				return nil, &SemanticError{Field: "io[].duration", Msg: fmt.Sprintf("device %q must have a positive duration", d.Name)}
			}
			dev.Offset = d.Offset
			dev.Duration = d.Duration
			dev.Amplitude = d.Amplitude
		case Reader:
			if len(d.OutputPrefix) > MaxNameBytes {
				return nil, &SemanticError{Field: "io[].outputPrefix", Msg: fmt.Sprintf("%q exceeds %d bytes", d.OutputPrefix, MaxNameBytes)}
			}
			dev.OutputPrefix = d.OutputPrefix
		}
		devices[i] = dev
	}

	return &Config{Horizon: raw.SimulationLength, Pop: pop, Devices: devices}, nil
}
