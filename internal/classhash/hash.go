// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package classhash implements the optional perfect-hash mtbl resolution
// strategy: mapping a class's identity token (here, its
// *core.ClassDescriptor address) to its mtbl in O(1) without needing a
// stolen field on the descriptor.
package classhash

import (
	"math/bits"
	"math/rand/v2"
	"unsafe"

	"github.com/go-openmethods/openmethods/internal/core"
)

// maxAttempts bounds the number of candidate multipliers tried per table
// size before moving to a larger table.
const maxAttempts = 100000

// roomSchedule is the sequence of over-provisioning factors tried in
// order: the table holds room·N/2 entries for increasing room.
var roomSchedule = [...]int{2, 3, 4, 5, 6}

// Table is a searched perfect hash from class identity to mtbl.
type Table struct {
	Mult  uint64
	Shift uint
	Size  int
	cells []any // each a *core.ClassTable, or nil for an unused cell
	keys  []*core.ClassDescriptor
}

func identity(d *core.ClassDescriptor) uint64 {
	return uint64(uintptr(unsafe.Pointer(d)))
}

func (t *Table) index(d *core.ClassDescriptor) int {
	return int((t.Mult * identity(d)) >> t.Shift)
}

// Lookup returns the *core.ClassTable stored for d, or nil if d was not part
// of the set the table was built from.
func (t *Table) Lookup(d *core.ClassDescriptor) any {
	i := t.index(d)
	if i >= len(t.keys) || t.keys[i] != d {
		return nil
	}
	return t.cells[i]
}

// Build searches for an injective multiplier over classes and, on success,
// populates the table with mtbl(d) for each class. rng supplies candidate
// multipliers; pass a seeded *rand.Rand (as gonum's graph/set/uid package
// does with rand.NewPCG in its own churn tests) for reproducible builds, or
// nil to draw from the default top-level source.
func Build(classes []*core.ClassDescriptor, mtbl func(*core.ClassDescriptor) any, methodName string, rng *rand.Rand) (*Table, error) {
	n := len(classes)
	if n == 0 {
		return &Table{Mult: 1, Shift: 64, Size: 0, cells: nil}, nil
	}

	nextUint64 := rand.Uint64
	if rng != nil {
		nextUint64 = rng.Uint64
	}

	for _, room := range roomSchedule {
		target := room * n / 2
		if target < 1 {
			target = 1
		}
		m := bits.Len(uint(target - 1))
		if 1<<uint(m) < target {
			m++
		}
		if m == 0 {
			m = 1
		}
		size := 1 << uint(m)
		shift := uint(64 - m)

		for attempt := 0; attempt < maxAttempts; attempt++ {
			mult := nextUint64() | 1
			if injective(mult, shift, size, classes) {
				t := &Table{Mult: mult, Shift: shift, Size: size, cells: make([]any, size), keys: make([]*core.ClassDescriptor, size)}
				for _, d := range classes {
					t.cells[t.index(d)] = mtbl(d)
					t.keys[t.index(d)] = d
				}
				return t, nil
			}
		}
	}
	return nil, &core.HashSearchFailed{MethodName: methodName, NumClasses: n}
}

func injective(mult uint64, shift uint, size int, classes []*core.ClassDescriptor) bool {
	seen := make([]bool, size)
	for _, d := range classes {
		idx := int((mult * identity(d)) >> shift)
		if seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}
