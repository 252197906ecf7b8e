// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package openmethods

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/go-openmethods/openmethods/internal/classgraph"
	"github.com/go-openmethods/openmethods/internal/classhash"
	"github.com/go-openmethods/openmethods/internal/core"
	"github.com/go-openmethods/openmethods/internal/dispatch"
	"github.com/go-openmethods/openmethods/internal/group"
	"github.com/go-openmethods/openmethods/internal/selector"
	"github.com/go-openmethods/openmethods/internal/slot"
)

// dispatchState is the per-call-visible result of the last successful
// Update, swapped in atomically so Dispatch never blocks on updateMu.
type dispatchState struct {
	hashTable *classhash.Table
}

var published atomic.Pointer[dispatchState]

func init() {
	published.Store(&dispatchState{})
}

// updateMu serializes concurrent Update calls: a second caller blocks
// rather than racing the table assembler.
var updateMu sync.Mutex

// Update runs the class registry, lattice builder, slot allocator, group
// finder, specialization selector and table assembler (components 1-7 of
// the system overview) over every currently registered method and
// publishes the result for Dispatch1/Dispatch2/Dispatch3 to use.
//
// If the declared class hierarchy contains a cycle, Update returns a
// LatticeCycle and leaves the previously published tables untouched — it
// fails before any slot or table mutation begins. If a method opted into
// the perfect-hash resolver strategy and the search exhausts its budget,
// Update returns a HashSearchFailed; by that point the in-place
// recomputation of Slots/Strides/DispatchTable on the live MethodInfo
// objects has already happened, though the per-class Mtbl fields and the
// hash table itself are not published until the very end.
func Update() error {
	updateMu.Lock()
	defer updateMu.Unlock()

	methods := compactRegistry()

	g := classgraph.NewGraph()
	g.Seed(methods)
	g.Scoop(core.Universe())
	g.BuildEdges()

	layered, err := classgraph.Layer(g)
	if err != nil {
		reg.markDirty()
		return err
	}
	classgraph.ComputeConforming(layered)
	slot.Allocate(layered)

	lookup := func(d *core.ClassDescriptor) *classgraph.Class { return g.Lookup(d) }

	tables := dispatch.BuildClassTables(layered)

	for _, m := range methods {
		v := len(m.Vp)
		dims := make([]*group.Dimension, v)
		for i := range dims {
			dims[i] = group.Find(m, i, lookup)
		}
		if v == 1 {
			resolved := dispatch.ResolveSingleVirtual(m, dims[0], lookup)
			dispatch.PopulateClassTables(m, 0, dims[0], resolved, tables)
			m.Strides = nil
			m.DispatchTable = nil
		} else {
			dispatch.AssembleMultiVirtual(m, dims, lookup)
			for i, d := range dims {
				dispatch.PopulateClassTables(m, i, d, nil, tables)
			}
		}
		selector.LinkNext(m, lookup)
	}

	var hashTable *classhash.Table
	if needsHash(methods) {
		classes := make([]*core.ClassDescriptor, 0, len(tables))
		for c := range tables {
			classes = append(classes, c.Descriptor)
		}
		sort.Slice(classes, func(i, j int) bool { return classes[i].Name() < classes[j].Name() })
		ht, err := dispatch.BuildHashTable(classes, lookup, tables, "openmethods", nil)
		if err != nil {
			reg.markDirty()
			return err
		}
		hashTable = ht
	}

	// Every class's stolen Mtbl field is reset before the new tables are
	// published (core.ClassDescriptor.Mtbl's doc comment) so that a class
	// dropped from this pass — because its last participating method or
	// specialization was unregistered — never keeps pointing at a stale
	// *core.ClassTable from a previous Update.
	for _, d := range core.Universe() {
		d.Mtbl = nil
	}
	dispatch.PublishStolenField(tables)
	published.Store(&dispatchState{hashTable: hashTable})
	return nil
}

func needsHash(methods []*core.MethodInfo) bool {
	for _, m := range methods {
		if m.UseHash {
			return true
		}
	}
	return false
}

// compactRegistry drops every unregistered method and detached
// specialization, returning a stable snapshot of what remains.
func compactRegistry() []*core.MethodInfo {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	kept := reg.methods[:0:0]
	for _, m := range reg.methods {
		if m.Removed() {
			continue
		}
		specs := m.Specs[:0:0]
		for _, s := range m.Specs {
			if !s.Removed() {
				specs = append(specs, s)
			}
		}
		m.Specs = specs
		kept = append(kept, m)
	}
	reg.methods = kept
	reg.dirty = false
	return append([]*core.MethodInfo(nil), reg.methods...)
}
