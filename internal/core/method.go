// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "reflect"

// MethodInfo is the process-wide descriptor for one open method. It is
// created once by RegisterMethod; its Slots, Strides and DispatchTable are
// populated only by Update.
type MethodInfo struct {
	Name string
	Vp   []*ClassDescriptor // ordered virtual-parameter class descriptors
	Sig  reflect.Type       // the method's function signature, F

	Specs []*SpecInfo

	// UseHash opts the method into the perfect-hash mtbl resolution
	// strategy instead of the stolen-field strategy.
	UseHash bool

	// Slots holds, per virtual-parameter index, the slot assigned by
	// the slot allocator. Populated by Update.
	Slots []int

	// Strides holds, for multi-virtual methods, the stride of each
	// dimension beyond the first. Populated by Update.
	Strides []int

	// DispatchTable is the linearized dispatch tensor for multi-virtual
	// methods: DispatchTable[i].Fn holds the resolved specialization (or
	// error thunk) for cell i. Populated by Update.
	DispatchTable []Word

	// NotImplementedThunk / AmbiguousCallThunk are function values with
	// type Sig that route to the process-wide handler. They are
	// synthesized once, at RegisterMethod time, via reflect.MakeFunc:
	// Go's reflect package gives RegisterMethod the method's exact
	// signature for free, so each thunk can be built on the spot instead
	// of needing a hand-authored implementation per method.
	NotImplementedThunk any
	AmbiguousCallThunk  any

	removed bool
}

// Remove marks the method unregistered; Update drops it and its
// specializations from the next build.
func (m *MethodInfo) Remove() { m.removed = true }

// Removed reports whether Remove has been called.
func (m *MethodInfo) Removed() bool { return m.removed }

// SpecInfo is one specialization attached to a MethodInfo.
type SpecInfo struct {
	Method *MethodInfo
	Vp     []*ClassDescriptor // parallel to Method.Vp
	Pf     any                // the specialization function, type Method.Sig

	// next holds the function value of the unique next-most-specific
	// applicable specialization, or nil. Exposed to callers through the
	// generic Next[F] accessor, which asserts the stored value back to F
	// without requiring the caller to pre-allocate storage for it.
	next any

	removed bool
}

// Next returns the specialization's next-most-specific applicable pf, or
// nil if none exists uniquely.
func (s *SpecInfo) Next() any { return s.next }

// SetNext is called by Update's next-pointer-linking pass.
func (s *SpecInfo) SetNext(pf any) { s.next = pf }

// Remove marks the specialization detached; Update drops it from the next
// build.
func (s *SpecInfo) Remove() { s.removed = true }

// Removed reports whether Remove has been called.
func (s *SpecInfo) Removed() bool { return s.removed }

// MakeThunk builds a function value with signature sig that invokes the
// process-wide error handler with a MethodError built from
// name/reason/args, then — if the handler returns instead of panicking —
// returns a zero value for every declared output.
func MakeThunk(sig reflect.Type, name string, reason Reason) any {
	out := func(in []reflect.Value) []reflect.Value {
		args := make([]*ClassDescriptor, 0, len(in))
		for _, v := range in {
			if vv, ok := v.Interface().(Virtual); ok {
				args = append(args, vv.OpenClass())
			}
		}
		Handle(&MethodError{Reason: reason, MethodName: name, ArgumentClasses: args})
		results := make([]reflect.Value, sig.NumOut())
		for i := range results {
			results[i] = reflect.Zero(sig.Out(i))
		}
		return results
	}
	return reflect.MakeFunc(sig, out).Interface()
}
