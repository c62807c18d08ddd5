// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command prism runs one MPI rank of a distributed discrete-time
// neuron simulation.
package main

func main() {
	Execute()
}
