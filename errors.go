// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package openmethods

import "github.com/go-openmethods/openmethods/internal/core"

// Reason classifies why a call could not be resolved to exactly one
// specialization.
type Reason = core.Reason

const (
	NotImplemented = core.NotImplemented
	AmbiguousCall  = core.AmbiguousCall
)

// MethodError is delivered to the error handler for every unresolved call.
type MethodError = core.MethodError

// ErrorHandler is invoked for every NotImplemented or AmbiguousCall. The
// default handler panics.
type ErrorHandler = core.ErrorHandler

// SetErrorHandler atomically replaces the process-wide error handler and
// returns the previous one.
func SetErrorHandler(h ErrorHandler) ErrorHandler {
	return core.SetErrorHandler(h)
}

// LatticeCycle is returned by Update when the declared class hierarchy
// contains a cycle.
type LatticeCycle = core.LatticeCycle

// DeallocatorInUse reports that the stolen-field resolver strategy found a
// participating class's Mtbl field already occupied by something other
// than a previous table build. Update never returns it: Mtbl is written
// only by Update itself.
type DeallocatorInUse = core.DeallocatorInUse

// HashSearchFailed is returned by Update when the perfect-hash resolver
// strategy exhausts its search budget for a method opted into it.
type HashSearchFailed = core.HashSearchFailed
