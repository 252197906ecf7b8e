// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package core holds the data types shared by every stage of the dispatch
// engine (class.go, method.go) so that internal/classgraph, internal/slot,
// internal/group, internal/selector, internal/dispatch and
// internal/classhash can all depend on a single, cycle-free base package
// instead of on each other or on the public facade.
package core

import (
	"sync"
)

// ClassDescriptor is the identity token for a class that may participate in
// open-method dispatch. A *ClassDescriptor is comparable by pointer and is
// declared once, at program start, for every concrete or interface class
// the host program wants the engine to know about.
//
// Go has no reflective notion of "direct base class" equivalent to a C++ or
// Java class descriptor, so hosts build this metadata explicitly: one
// DeclareClass or DeclareInterface call per participating class, supplying
// its direct bases. This mirrors the design note that implementations
// without reflective class descriptors should populate a type registry by
// static initialization rather than relying on language-provided RTTI.
type ClassDescriptor struct {
	Name_ string
	Bases []*ClassDescriptor

	// Interface marks a conformance-only class: it may appear as a
	// virtual parameter or as a base of other classes but never becomes
	// the dynamic class of a dispatched argument.
	Interface bool

	// Mtbl is the "stolen field" resolver strategy: Update writes the
	// class's *ClassTable directly here (boxed in an any, since Go gives
	// us no unused pointer-typed field to repurpose safely) so mtbl
	// lookup from a live Virtual value is a single type assertion. Update
	// writes it for every class that owns a table, whether or not the
	// perfect-hash strategy is also in use, and resets it to nil for every
	// other declared class when it publishes, so a class dropped from the
	// rebuild never keeps a stale table.
	Mtbl any
}

// Name reports the diagnostic name the class was declared with.
func (c *ClassDescriptor) Name() string { return c.Name_ }

var (
	universeMu sync.Mutex
	universe   []*ClassDescriptor
)

// DeclareClass declares a concrete, dispatchable class with the given
// direct bases (classes or interfaces). Every declared class is recorded
// in the process-wide universe so that class-registry scooping can find
// classes that sit between two method-touched classes without needing
// reflective RTTI: in Go, "every class visible in the program" is exactly
// "every class ever declared".
func DeclareClass(name string, bases ...*ClassDescriptor) *ClassDescriptor {
	c := &ClassDescriptor{Name_: name, Bases: append([]*ClassDescriptor(nil), bases...)}
	register(c)
	return c
}

// DeclareInterface declares a class that participates only as a
// conformance source: it contributes to conforming sets but never owns
// an mtbl of its own.
func DeclareInterface(name string, bases ...*ClassDescriptor) *ClassDescriptor {
	c := &ClassDescriptor{Name_: name, Bases: append([]*ClassDescriptor(nil), bases...), Interface: true}
	register(c)
	return c
}

func register(c *ClassDescriptor) {
	universeMu.Lock()
	defer universeMu.Unlock()
	universe = append(universe, c)
}

// Universe returns a snapshot of every class declared so far via
// DeclareClass or DeclareInterface.
func Universe() []*ClassDescriptor {
	universeMu.Lock()
	defer universeMu.Unlock()
	return append([]*ClassDescriptor(nil), universe...)
}

// Virtual is implemented by every concrete Go type that can appear as a
// virtual argument to an open method. OpenClass returns the class's
// identity token.
//
// Because Go already performs ordinary interface method dispatch to locate
// OpenClass's implementation regardless of how deeply the concrete type
// embeds its bases, no pointer offset fixup is needed to recover the class
// descriptor from an interface-typed argument: the language's own
// interface dispatch already does that job.
type Virtual interface {
	OpenClass() *ClassDescriptor
}
