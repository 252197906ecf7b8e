// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package openmethods

import (
	"github.com/go-openmethods/openmethods/internal/classhash"
	"github.com/go-openmethods/openmethods/internal/core"
)

// cellFor resolves d's mtbl, through the hash strategy if ht is non-nil and
// otherwise through the stolen Mtbl field, and returns the Word at slot.
// ok is false when d never participated in this dimension at all
// (d's table doesn't exist, or doesn't reach far enough to cover slot) —
// distinct from a legitimately zero-valued Word, which is why this isn't
// folded into a single Word return.
func cellFor(d *core.ClassDescriptor, slot int, ht *classhash.Table) (core.Word, bool) {
	var ct *core.ClassTable
	if ht != nil {
		if v := ht.Lookup(d); v != nil {
			ct, _ = v.(*core.ClassTable)
		}
	} else if v, ok := d.Mtbl.(*core.ClassTable); ok {
		ct = v
	}
	if ct == nil || slot < ct.FirstUsedSlot || slot >= ct.FirstUsedSlot+len(ct.Slots) {
		return core.Word{}, false
	}
	return ct.At(slot), true
}

func thunkOrZero[F any](v any) F {
	if v != nil {
		if pf, ok := v.(F); ok {
			return pf
		}
	}
	var zero F
	return zero
}

// Dispatch1 resolves the single-virtual-parameter method h for a1 and
// returns the pf a caller should invoke. Callers are small, hand-written
// entry points with the method's public signature (see the package doc):
//
//	func Kick(a Animal) string {
//		return openmethods.Dispatch1(kickMethod, a)(a)
//	}
func Dispatch1[F any](h *MethodHandle[F], a1 Virtual) F {
	m := h.info
	ht := published.Load().hashTable
	w, ok := cellFor(a1.OpenClass(), m.Slots[0], ht)
	if !ok {
		return thunkOrZero[F](m.NotImplementedThunk)
	}
	if pf, ok := w.Fn.(F); ok {
		return pf
	}
	return thunkOrZero[F](m.NotImplementedThunk)
}

// Dispatch2 resolves the two-virtual-parameter method h for (a1, a2): the
// dim-0 mtbl cell holds a1's group index directly, and the dim-1 mtbl
// cell's group index is added after multiplying by the method's stride,
// yielding a single index into the method's dispatch tensor.
func Dispatch2[F any](h *MethodHandle[F], a1, a2 Virtual) F {
	m := h.info
	ht := published.Load().hashTable
	w0, ok0 := cellFor(a1.OpenClass(), m.Slots[0], ht)
	w1, ok1 := cellFor(a2.OpenClass(), m.Slots[1], ht)
	if !ok0 || !ok1 {
		return thunkOrZero[F](m.NotImplementedThunk)
	}
	idx := w0.I
	if len(m.Strides) > 0 {
		idx += w1.I * m.Strides[0]
	}
	if idx < 0 || idx >= len(m.DispatchTable) {
		return thunkOrZero[F](m.NotImplementedThunk)
	}
	if pf, ok := m.DispatchTable[idx].Fn.(F); ok {
		return pf
	}
	return thunkOrZero[F](m.NotImplementedThunk)
}

// Dispatch3 resolves the three-virtual-parameter method h for (a1, a2, a3),
// extending Dispatch2's index accumulation by one more dimension and
// stride.
func Dispatch3[F any](h *MethodHandle[F], a1, a2, a3 Virtual) F {
	m := h.info
	ht := published.Load().hashTable
	w0, ok0 := cellFor(a1.OpenClass(), m.Slots[0], ht)
	w1, ok1 := cellFor(a2.OpenClass(), m.Slots[1], ht)
	w2, ok2 := cellFor(a3.OpenClass(), m.Slots[2], ht)
	if !ok0 || !ok1 || !ok2 {
		return thunkOrZero[F](m.NotImplementedThunk)
	}
	idx := w0.I
	if len(m.Strides) > 0 {
		idx += w1.I * m.Strides[0]
	}
	if len(m.Strides) > 1 {
		idx += w2.I * m.Strides[1]
	}
	if idx < 0 || idx >= len(m.DispatchTable) {
		return thunkOrZero[F](m.NotImplementedThunk)
	}
	if pf, ok := m.DispatchTable[idx].Fn.(F); ok {
		return pf
	}
	return thunkOrZero[F](m.NotImplementedThunk)
}
