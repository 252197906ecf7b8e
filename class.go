// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package openmethods

import "github.com/go-openmethods/openmethods/internal/core"

// ClassDescriptor is a participating class's identity token. See
// DeclareClass and DeclareInterface.
type ClassDescriptor = core.ClassDescriptor

// Virtual is implemented by every concrete type dispatched on by an open
// method.
type Virtual = core.Virtual

// DeclareClass declares a concrete, dispatchable class with the given
// direct bases.
func DeclareClass(name string, bases ...*ClassDescriptor) *ClassDescriptor {
	return core.DeclareClass(name, bases...)
}

// DeclareInterface declares a conformance-only class: it may be named as a
// virtual parameter or as a base of other classes, but it is never itself
// the dynamic class of a dispatched argument.
func DeclareInterface(name string, bases ...*ClassDescriptor) *ClassDescriptor {
	return core.DeclareInterface(name, bases...)
}
