// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package worker

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/emer/prism/graph"
)

// Sink receives one reader observation per (tick, neuron) pair, on
// rank 1, at every tick advance .
type Sink interface {
	Emit(tick, neuronID int, activity int32)
	Close() error
}

// StdoutSink prints the exact line format required by the protocol:
// "Time:<t> Neuron:<id> Activity Level:<v>". This is the only sink
// that exists unconditionally; the others are additive and never
// change this line's content.
type StdoutSink struct{}

func (StdoutSink) Emit(tick, neuronID int, activity int32) {
	fmt.Printf("Time:%d Neuron:%d Activity Level:%d\n", tick, neuronID, activity)
}

func (StdoutSink) Close() error { return nil }

// MultiSink fans one observation out to every sink it wraps, in
// order. A nil entry is skipped.
type MultiSink []Sink

func (m MultiSink) Emit(tick, neuronID int, activity int32) {
	for _, s := range m {
		if s != nil {
			s.Emit(tick, neuronID, activity)
		}
	}
}

func (m MultiSink) Close() error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// SQLiteSink mirrors every reader observation into a SQLite database,
// following HD220-crownet/storage/sqlite_logger.go's shape: open,
// ping, create-tables-if-not-exists, prepared insert per row. This is
// the additive --activity-db sink.
type SQLiteSink struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// NewSQLiteSink opens (or creates) a SQLite database at path and
// prepares the activity_log table.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("worker: opening activity db %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("worker: pinging activity db %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS activity_log (
		tick INTEGER NOT NULL,
		neuron_id INTEGER NOT NULL,
		activity INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("worker: creating activity_log table: %w", err)
	}
	stmt, err := db.Prepare(`INSERT INTO activity_log (tick, neuron_id, activity) VALUES (?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("worker: preparing activity_log insert: %w", err)
	}
	return &SQLiteSink{db: db, stmt: stmt}, nil
}

func (s *SQLiteSink) Emit(tick, neuronID int, activity int32) {
	if _, err := s.stmt.Exec(tick, neuronID, activity); err != nil {
		fmt.Fprintf(os.Stderr, "worker: activity_log insert failed: %v\n", err)
	}
}

func (s *SQLiteSink) Close() error {
	if s.stmt != nil {
		s.stmt.Close()
	}
	return s.db.Close()
}

// Snapshot is the end-of-run MessagePack artifact written by rank 1
// when --snapshot is set: the final activity_level per neuron, the
// tick count reached, and a run id for correlating
// the artifact with its log lines.
type Snapshot struct {
	RunID     string  `msgpack:"run_id"`
	Ticks     int     `msgpack:"ticks"`
	Activity  []int32 `msgpack:"activity"`
	NeuronIDs []int32 `msgpack:"neuron_ids"`
}

// WriteSnapshot encodes pop's current activity levels as a Snapshot
// and writes it to path.
func WriteSnapshot(path, runID string, ticks int, pop *graph.Population) error {
	snap := Snapshot{
		RunID:     runID,
		Ticks:     ticks,
		Activity:  make([]int32, pop.Len()),
		NeuronIDs: make([]int32, pop.Len()),
	}
	for i, n := range pop.Neurons {
		snap.NeuronIDs[i] = n.ID
		snap.Activity[i] = n.ActivityLevel
	}
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("worker: encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("worker: writing snapshot %s: %w", path, err)
	}
	return nil
}
