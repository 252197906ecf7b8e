// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dispatch is the table assembler: given the group partition of
// every virtual parameter of a method (internal/group) and the
// most-specific-specialization selector (internal/selector), it builds
// each class's mtbl (internal/core.ClassTable) and, for multi-virtual
// methods, the method's linearized dispatch tensor.
package dispatch

import (
	"math/rand/v2"

	"golang.org/x/tools/container/intsets"

	"github.com/go-openmethods/openmethods/internal/classgraph"
	"github.com/go-openmethods/openmethods/internal/classhash"
	"github.com/go-openmethods/openmethods/internal/core"
	"github.com/go-openmethods/openmethods/internal/group"
	"github.com/go-openmethods/openmethods/internal/selector"
)

// BuildClassTables allocates an empty ClassTable for every concrete class
// that owns at least one slot, sized to exactly the range of slots it uses:
// classes in unrelated hierarchies reuse slot numbers, so each class's
// table stays proportional to its own method count, not the program's.
func BuildClassTables(layered []*classgraph.Class) map[*classgraph.Class]*core.ClassTable {
	tables := make(map[*classgraph.Class]*core.ClassTable)
	for _, c := range layered {
		if !c.IsConcrete() || c.FirstUsedSlot == -1 {
			continue
		}
		size := c.NextSlot - c.FirstUsedSlot
		tables[c] = &core.ClassTable{
			Slots:         make([]core.Word, size),
			FirstUsedSlot: c.FirstUsedSlot,
		}
	}
	return tables
}

// resolve picks the Word a dispatch-tensor cell or single-virtual mtbl cell
// should hold for the given applicable-specialization mask: the sole
// most-specific specialization's function value, or one of the method's two
// error thunks when no specialization applies or more than one applies
// without a unique most-specific winner.
func resolve(m *core.MethodInfo, mask *intsets.Sparse, lookup selector.Lookup) core.Word {
	var candidates []*core.SpecInfo
	for i, s := range m.Specs {
		if mask.Has(i) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return core.Word{Fn: m.NotImplementedThunk}
	}
	best := selector.Best(candidates, lookup)
	if len(best) == 1 {
		return core.Word{Fn: best[0].Pf}
	}
	return core.Word{Fn: m.AmbiguousCallThunk}
}

// ResolveSingleVirtual computes, for a single-virtual method, the resolved
// Word for every group of dim: the mtbl cell holds the resolved
// specialization directly, with no dispatch-table indirection.
func ResolveSingleVirtual(m *core.MethodInfo, dim *group.Dimension, lookup selector.Lookup) []core.Word {
	resolved := make([]core.Word, len(dim.Groups))
	for i, mask := range dim.Masks {
		resolved[i] = resolve(m, mask, lookup)
	}
	return resolved
}

// AssembleMultiVirtual builds m.Strides and m.DispatchTable for a
// multi-virtual method from the per-dimension group partitions. Each tensor
// cell's applicable-specialization mask is the intersection of the masks of
// the groups that meet at that cell; a class's mtbl cell for dimension k
// holds only its group index in that dimension (the dispatcher does the
// stride multiplication at call time).
func AssembleMultiVirtual(m *core.MethodInfo, dims []*group.Dimension, lookup selector.Lookup) {
	v := len(dims)
	sizes := make([]int, v)
	total := 1
	for i, d := range dims {
		sizes[i] = len(d.Groups)
		total *= sizes[i]
	}

	strides := make([]int, 0, v-1)
	if v >= 2 {
		strides = append(strides, sizes[0])
		for k := 1; k < v-1; k++ {
			strides = append(strides, strides[k-1]*sizes[k])
		}
	}

	table := make([]core.Word, total)
	idxs := make([]int, v)
	var walk func(dim int)
	walk = func(dim int) {
		if dim == v {
			flat := idxs[0]
			for k := 1; k < v; k++ {
				flat += idxs[k] * strides[k-1]
			}
			var mask intsets.Sparse
			mask.Copy(dims[0].Masks[idxs[0]])
			for k := 1; k < v; k++ {
				mask.IntersectionWith(dims[k].Masks[idxs[k]])
			}
			table[flat] = resolve(m, &mask, lookup)
			return
		}
		for g := 0; g < sizes[dim]; g++ {
			idxs[dim] = g
			walk(dim + 1)
		}
	}
	if total > 0 {
		walk(0)
	}

	m.Strides = strides
	m.DispatchTable = table
}

// PopulateClassTables writes, for every class participating in dimension
// dimIdx of m, the Word its mtbl cell at m.Slots[dimIdx] should hold: the
// resolved single-virtual Word when resolved is non-nil, or the class's
// group index otherwise.
func PopulateClassTables(m *core.MethodInfo, dimIdx int, dim *group.Dimension, resolved []core.Word, tables map[*classgraph.Class]*core.ClassTable) {
	slot := m.Slots[dimIdx]
	for c, groupIdx := range dim.ClassGroup {
		ct, ok := tables[c]
		if !ok {
			continue
		}
		var w core.Word
		if resolved != nil {
			w = resolved[groupIdx]
		} else {
			w = core.Word{I: groupIdx}
		}
		ct.Slots[slot-ct.FirstUsedSlot] = w
	}
}

// PublishStolenField writes each class's assembled table into its
// descriptor's Mtbl field, the stolen-field resolver strategy.
func PublishStolenField(tables map[*classgraph.Class]*core.ClassTable) {
	for c, t := range tables {
		c.Descriptor.Mtbl = t
	}
}

// BuildHashTable builds the perfect-hash resolver strategy: a perfect hash
// from class identity token to *core.ClassTable, for the given classes
// (Update passes every class that owns a table). lookup resolves a
// descriptor to its registry Class for this Update pass.
func BuildHashTable(classes []*core.ClassDescriptor, lookup func(*core.ClassDescriptor) *classgraph.Class, tables map[*classgraph.Class]*core.ClassTable, methodName string, rng *rand.Rand) (*classhash.Table, error) {
	mtbl := func(d *core.ClassDescriptor) any {
		c := lookup(d)
		if c == nil {
			return nil
		}
		if t, ok := tables[c]; ok {
			return t
		}
		return nil
	}
	return classhash.Build(classes, mtbl, methodName, rng)
}
