// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package slot assigns each (method, virtual-parameter) pair a slot within
// the per-class method table such that no two methods that ever appear
// together in any class's mtbl collide, while reusing slot numbers across
// unrelated hierarchies to keep each class's mtbl small.
package slot

import "github.com/go-openmethods/openmethods/internal/classgraph"

// Allocate assigns slots for every method-parameter appearance recorded on
// the classes in layered order (bases before derived, as produced by
// classgraph.Layer). It mutates each class's NextSlot/FirstUsedSlot and
// each method's Slots entries in place.
func Allocate(layered []*classgraph.Class) {
	for _, c := range layered {
		for _, ref := range c.MethodParams {
			slot := c.NextSlot
			if len(ref.Method.Slots) == 0 {
				ref.Method.Slots = make([]int, len(ref.Method.Vp))
				for i := range ref.Method.Slots {
					ref.Method.Slots[i] = -1
				}
			}
			ref.Method.Slots[ref.Index] = slot
			propagate(c, slot)
		}
	}
}

// propagate visits c and every class reachable by repeatedly going down
// through direct-derived and, from each visited node, up through
// direct-bases, reserving slot at every node it reaches so that classes
// sharing a descendant never receive overlapping slot rows.
func propagate(c *classgraph.Class, slot int) {
	visited := make(map[*classgraph.Class]bool)
	var visit func(d *classgraph.Class)
	visit = func(d *classgraph.Class) {
		if visited[d] {
			return
		}
		visited[d] = true
		if slot < d.NextSlot {
			panic("openmethods/internal/slot: slot invariant violated: " + d.String())
		}
		d.NextSlot = slot + 1
		if d.FirstUsedSlot == -1 {
			d.FirstUsedSlot = slot
		}
		for _, x := range d.Derived {
			visit(x)
		}
		for _, x := range d.Bases {
			visit(x)
		}
	}
	visit(c)
}
