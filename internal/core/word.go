// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// Word is the storage element of every mtbl and of a method's dispatch
// tensor. A dispatch-tensor cell, or a single-virtual method's mtbl cell,
// holds a resolved specialization or error thunk in Fn; a multi-virtual
// method's mtbl cell holds the class's group index in I (the strides live
// in MethodInfo.Strides). Keeping both payloads in one small struct lets
// a bounds-checked slice index serve the role a raw pointer into the table
// would otherwise have to play.
type Word struct {
	Fn any
	I  int
}

// ClassTable is one class's mtbl: a contiguous, slot-indexed run of Words
// covering [FirstUsedSlot, FirstUsedSlot+len(Slots)). Indexing by a slot
// outside that range is a caller bug.
type ClassTable struct {
	Slots         []Word
	FirstUsedSlot int
}

// At returns the Word for the given slot, which must lie within
// [FirstUsedSlot, FirstUsedSlot+len(Slots)).
func (t *ClassTable) At(slot int) Word {
	return t.Slots[slot-t.FirstUsedSlot]
}
