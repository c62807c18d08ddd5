// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package partition

import (
	"reflect"
	"testing"
)

func TestAssignRoundRobin(t *testing.T) {
	owners, err := Assign(7, 3)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	want := []int{1, 2, 3, 1, 2, 3, 1}
	if !reflect.DeepEqual(owners, want) {
		t.Fatalf("owners = %v, want %v", owners, want)
	}
}

func TestAssignWorkersEqualsNeurons(t *testing.T) {
	owners, err := Assign(3, 3)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	seen := map[int]bool{}
	for _, o := range owners {
		seen[o] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected every neuron on a distinct worker, got owners %v", owners)
	}
}

func TestAssignWorkersExceedNeurons(t *testing.T) {
	_, err := Assign(2, 5)
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("want *ConfigError, got %T (%v)", err, err)
	}
}

func TestOwnershipSetAndPadding(t *testing.T) {
	owners := []int{1, 2, 3, 1, 2, 3, 1}
	set := OwnershipSet(owners, 1)
	if !reflect.DeepEqual(set, []int32{0, 3, 6}) {
		t.Fatalf("OwnershipSet(1) = %v", set)
	}
	maxLen := MaxOwnershipSetLen(7, 3)
	if maxLen != 3 {
		t.Fatalf("MaxOwnershipSetLen = %d, want 3", maxLen)
	}
	padded := PadTask(set, maxLen)
	if !reflect.DeepEqual(padded, []int32{0, 3, 6}) {
		t.Fatalf("PadTask = %v", padded)
	}
	set2 := OwnershipSet(owners, 2)
	padded2 := PadTask(set2, maxLen)
	if !reflect.DeepEqual(padded2, []int32{1, 4, -1}) {
		t.Fatalf("PadTask(rank2) = %v", padded2)
	}
	if !reflect.DeepEqual(UnpadTask(padded2), []int32{1, 4}) {
		t.Fatalf("UnpadTask = %v", UnpadTask(padded2))
	}
}
