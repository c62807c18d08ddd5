// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtimeopts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c2h5oh/datasize"
)

func TestLoadEmptyPath(t *testing.T) {
	opts, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if opts != (Options{}) {
		t.Fatalf("Load(\"\") = %+v, want zero value", opts)
	}
}

func TestLoadParsesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.toml")
	doc := `
send_buffer_size = "64KiB"
activity_db = "run.db"
manifest = "manifest.yaml"
snapshot = "snapshot.msgpack"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.ActivityDB != "run.db" || opts.Manifest != "manifest.yaml" || opts.Snapshot != "snapshot.msgpack" {
		t.Fatalf("opts = %+v, want run.db/manifest.yaml/snapshot.msgpack", opts)
	}
	got := opts.SendBufferBytes(1 * datasize.KB)
	if got != 64*datasize.KB {
		t.Fatalf("SendBufferBytes = %v, want 64KiB", got)
	}
}

func TestSendBufferBytesFallback(t *testing.T) {
	opts := Options{}
	got := opts.SendBufferBytes(2 * datasize.KB)
	if got != 2*datasize.KB {
		t.Fatalf("SendBufferBytes fallback = %v, want 2KiB", got)
	}
}
