// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runtimeopts loads the optional TOML engine-tuning file
// (--runtime-config): knobs that affect performance and auxiliary
// output, never the model's observable per-tick trace.
// Grounded on HD220-crownet/cmd/root.go's --configFile flag, which the
// teacher repo reserves for a TOML file it never got around to wiring
// in; this package is that wiring, using the library the teacher
// already names for the purpose.
package runtimeopts

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/c2h5oh/datasize"
)

// Options are the tunable engine parameters that sit outside the
// model file: transport buffer sizing and the optional auxiliary
// output sinks. Every field has a zero-value-safe default so an
// absent --runtime-config file is equivalent to Options{}.
type Options struct {
	// SendBufferSize replaces the transport's computed minimum send
	// buffer when it is larger, expressed as a human-readable size
	// ("64KiB"). A smaller value leaves the minimum in force.
	SendBufferSize string `toml:"send_buffer_size"`

	// ActivityDB, if set, is the path to a SQLite database that mirrors
	// every reader observation (SPEC_FULL.md §6).
	ActivityDB string `toml:"activity_db"`

	// Manifest, if set, is the path to write the resolved partition
	// manifest (owner table) as YAML, for operator inspection.
	Manifest string `toml:"manifest"`

	// Snapshot, if set, is the path to write the end-of-run MessagePack
	// activity snapshot.
	Snapshot string `toml:"snapshot"`
}

// Load reads and parses a TOML runtime-options file at path. A path of
// "" returns the zero-value Options, matching "no ambient behavior".
func Load(path string) (Options, error) {
	var opts Options
	if path == "" {
		return opts, nil
	}
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return opts, fmt.Errorf("runtimeopts: decoding %s: %w", path, err)
	}
	return opts, nil
}

// SendBufferBytes parses SendBufferSize, falling back to fallback when
// the field is unset or unparsable.
func (o Options) SendBufferBytes(fallback datasize.ByteSize) datasize.ByteSize {
	if o.SendBufferSize == "" {
		return fallback
	}
	var size datasize.ByteSize
	if err := size.UnmarshalText([]byte(o.SendBufferSize)); err != nil {
		return fallback
	}
	return size
}
