// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package group partitions, for each virtual parameter of each method, the
// conforming classes into groups that share the same
// applicable-specialization bitmask. Groups are the dispatch tensor's
// compression unit — classes in one group share a column.
//
// The applicable-specialization bitmask is an intsets.Sparse, the same
// sparse integer set gonum's Tarjan implementation (graph/topo/tarjan.go)
// uses for its on-stack bookkeeping, reused here because the domain of
// specialization indices is small and the set operations needed
// (membership test, equality) are exactly Sparse's strengths.
package group

import (
	"golang.org/x/tools/container/intsets"

	"github.com/go-openmethods/openmethods/internal/classgraph"
	"github.com/go-openmethods/openmethods/internal/core"
)

// Lookup resolves a class descriptor to its registry Class for the current
// Update pass.
type Lookup func(*core.ClassDescriptor) *classgraph.Class

// Dimension holds the group partition of one virtual-parameter dimension
// of one method.
type Dimension struct {
	// Groups is ordered by first appearance; the index of a group in
	// this slice is the column/group index the table assembler writes
	// into mtbl cells and uses to compute strides.
	Groups [][]*classgraph.Class

	// Masks[i] is the applicable-specialization bitmask shared by every
	// class in Groups[i].
	Masks []*intsets.Sparse

	// ClassGroup maps a concrete, conforming class to its group index
	// in this dimension.
	ClassGroup map[*classgraph.Class]int
}

// Find computes the Dimension for virtual parameter dim of method m.
func Find(m *core.MethodInfo, dim int, lookup Lookup) *Dimension {
	vpClass := lookup(m.Vp[dim])

	specSets := make([]map[*classgraph.Class]bool, len(m.Specs))
	for i, s := range m.Specs {
		sc := lookup(s.Vp[dim])
		set := make(map[*classgraph.Class]bool, len(sc.Conforming))
		for _, x := range sc.Conforming {
			set[x] = true
		}
		specSets[i] = set
	}

	d := &Dimension{ClassGroup: make(map[*classgraph.Class]int)}
	var masks []*intsets.Sparse

	for _, c := range vpClass.Conforming {
		if !c.IsConcrete() {
			continue
		}
		mask := &intsets.Sparse{}
		for i, set := range specSets {
			if set[c] {
				mask.Insert(i)
			}
		}
		idx := -1
		for i, existing := range masks {
			if existing.Equals(mask) {
				idx = i
				break
			}
		}
		if idx == -1 {
			idx = len(masks)
			masks = append(masks, mask)
			d.Groups = append(d.Groups, nil)
		}
		d.Groups[idx] = append(d.Groups[idx], c)
		d.ClassGroup[c] = idx
	}
	d.Masks = masks
	return d
}
