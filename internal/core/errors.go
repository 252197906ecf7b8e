// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"sync/atomic"
)

// Reason classifies a per-call dispatch failure.
type Reason int

const (
	// NotImplemented means no specialization applies to the given
	// dynamic argument tuple.
	NotImplemented Reason = iota
	// AmbiguousCall means multiple incomparable specializations apply
	// and the user has not provided a tiebreaker.
	AmbiguousCall
)

func (r Reason) String() string {
	switch r {
	case NotImplemented:
		return "not implemented"
	case AmbiguousCall:
		return "ambiguous call"
	default:
		return "unknown reason"
	}
}

// MethodError is delivered to the process-wide error handler whenever a
// call cannot be resolved to exactly one specialization.
type MethodError struct {
	Reason     Reason
	MethodName string

	// ArgumentClasses carries the dynamic classes of the call's virtual
	// arguments when the caller supplied them.
	ArgumentClasses []*ClassDescriptor
}

func (e *MethodError) Error() string {
	names := make([]string, len(e.ArgumentClasses))
	for i, c := range e.ArgumentClasses {
		if c == nil {
			names[i] = "<nil>"
			continue
		}
		names[i] = c.Name()
	}
	return fmt.Sprintf("openmethods: %s: %s%v", e.MethodName, e.Reason, names)
}

// ErrorHandler is invoked for every NotImplemented or AmbiguousCall. The
// default handler panics; a replacement that returns normally causes the
// dispatcher to return a zero-initialized value for return-typed methods,
// or simply return for void methods.
type ErrorHandler func(*MethodError)

func defaultErrorHandler(e *MethodError) {
	panic(e)
}

var handler atomic.Pointer[ErrorHandler]

func init() {
	var h ErrorHandler = defaultErrorHandler
	handler.Store(&h)
}

// SetErrorHandler atomically replaces the process-wide error handler and
// returns the previous one.
func SetErrorHandler(h ErrorHandler) ErrorHandler {
	if h == nil {
		h = defaultErrorHandler
	}
	old := handler.Swap(&h)
	return *old
}

// Handle invokes the current error handler.
func Handle(e *MethodError) {
	h := *handler.Load()
	h(e)
}

// Update-time error kinds. These halt Update and are returned as a plain
// error; they never panic.

// LatticeCycle reports that class layering failed because the declared
// base/derived edges contain a cycle. Each inner slice is one cyclic
// component, mirroring the shape graph/topo.Unorderable uses to report
// strongly-connected components that defeat a topological sort.
type LatticeCycle [][]*ClassDescriptor

func (e LatticeCycle) Error() string {
	const maxNames = 10
	var n int
	for _, c := range e {
		n += len(c)
	}
	if n > maxNames {
		return fmt.Sprintf("openmethods: lattice cycle: %d classes in %d cyclic components", n, len(e))
	}
	names := make([][]string, len(e))
	for i, c := range e {
		row := make([]string, len(c))
		for j, cd := range c {
			row[j] = cd.Name()
		}
		names[i] = row
	}
	return fmt.Sprintf("openmethods: lattice cycle: cyclic components: %v", names)
}

// DeallocatorInUse reports that the stolen-field mtbl resolution strategy
// could not be used because a participating class's Mtbl field was already
// occupied by something other than a previous table build.
type DeallocatorInUse struct {
	Class *ClassDescriptor
}

func (e *DeallocatorInUse) Error() string {
	return fmt.Sprintf("openmethods: class %q: mtbl field already in use", e.Class.Name())
}

// HashSearchFailed reports that the perfect-hash strategy exhausted its
// search budget.
type HashSearchFailed struct {
	MethodName string
	NumClasses int
}

func (e *HashSearchFailed) Error() string {
	return fmt.Sprintf("openmethods: %s: perfect hash search failed for %d classes", e.MethodName, e.NumClasses)
}
