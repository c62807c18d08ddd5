// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import "fmt"

// ParseError reports a structural defect in the configuration
// document (bad JSON, wrong field types). Fatal at startup.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SemanticError reports a dangling neuron reference, an invalid
// device type, a non-positive horizon, or any other condition that is
// structurally well-formed JSON but an invalid model. Fatal at
// startup.
type SemanticError struct {
	Field string
	Msg   string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Msg)
}
