// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package openmethods implements open multi-methods: free-standing
// polymorphic functions whose dispatch is selected, at call time, by the
// dynamic classes of one or more designated arguments.
//
// Unlike a Go interface method, an open method is not tied to the type
// that implements it: it may be declared in one package, specialized from
// any number of others, and may depend on the dynamic class of more than
// one argument at once (multiple dispatch).
//
// A typical user declares the classes that participate in dispatch with
// DeclareClass or DeclareInterface, registers a method with RegisterMethod,
// attaches one or more specializations with AddSpecialization, calls
// Update to compile the dispatch tables, and then calls Dispatch1/Dispatch2/
// Dispatch3 from a small hand-written entry point that has the method's
// public signature.
package openmethods
