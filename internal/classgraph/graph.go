// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package classgraph collects every class that participates in dispatch,
// records its direct base/derived edges, and computes its conforming set.
// Classes are keyed by descriptor, with adjacency kept as per-class Bases
// and Derived slices; the separation between "seed the registry" and
// "derive edges from it" follows the same shape as gonum's
// graph/simple.DirectedGraph and graph/topo.
package classgraph

import (
	"sort"

	"github.com/go-openmethods/openmethods/internal/core"
)

// ParamRef records that virtual parameter Index of Method has Class as one
// of its conforming classes.
type ParamRef struct {
	Method *core.MethodInfo
	Index  int
}

// Class is the internal registry node for one ClassDescriptor, live for
// the duration of a single Update pass; a fresh set of Class values is
// built on every update.
type Class struct {
	id         int
	Descriptor *core.ClassDescriptor

	Bases   []*Class
	Derived []*Class

	// Conforming is the reflexive transitive closure through Derived
	// edges, computed in reverse topological order. It includes
	// interface classes as conformance sources; callers that need only
	// dispatchable classes filter with IsConcrete.
	Conforming []*Class
	// conformSet mirrors Conforming as a set for O(1) membership tests
	// used by the specialization-ordering partial order.
	conformSet map[*Class]bool

	NextSlot      int
	FirstUsedSlot int // -1 until first assigned

	MethodParams []ParamRef
}

// IsConcrete reports whether c can itself be the dynamic class of a
// dispatched argument; interfaces are conformance sources only.
func (c *Class) IsConcrete() bool { return !c.Descriptor.Interface }

// Conforms reports whether target is in c's conforming set, i.e. target is
// c itself or a transitive subclass of c.
func (c *Class) Conforms(target *Class) bool { return c.conformSet[target] }

func (c *Class) String() string { return c.Descriptor.Name() }

// Graph is the process-wide class registry.
type Graph struct {
	byDescriptor map[*core.ClassDescriptor]*Class
	nextID       int
}

// NewGraph returns an empty class registry.
func NewGraph() *Graph {
	return &Graph{byDescriptor: make(map[*core.ClassDescriptor]*Class)}
}

// Classes returns every registered Class, in no particular order.
func (g *Graph) Classes() []*Class {
	out := make([]*Class, 0, len(g.byDescriptor))
	for _, c := range g.byDescriptor {
		out = append(out, c)
	}
	return out
}

// Lookup returns the Class for d, registering it (with no edges yet) if it
// is not already present.
func (g *Graph) Lookup(d *core.ClassDescriptor) *Class {
	if c, ok := g.byDescriptor[d]; ok {
		return c
	}
	c := &Class{id: g.nextID, Descriptor: d, NextSlot: 0, FirstUsedSlot: -1}
	g.nextID++
	g.byDescriptor[d] = c
	return c
}

func (g *Graph) has(d *core.ClassDescriptor) bool {
	_, ok := g.byDescriptor[d]
	return ok
}

// Seed upgrades every class descriptor that appears as a virtual parameter
// of a method, or as a parameter of one of its specializations, to a
// registered Class, and records each method-parameter appearance.
func (g *Graph) Seed(methods []*core.MethodInfo) {
	for _, m := range methods {
		for i, d := range m.Vp {
			c := g.Lookup(d)
			c.MethodParams = append(c.MethodParams, ParamRef{Method: m, Index: i})
		}
		for _, s := range m.Specs {
			for _, d := range s.Vp {
				g.Lookup(d)
			}
		}
	}
}

// Scoop walks universe — every class declared anywhere in the program — and
// adds any class that transitively bases into an already-registered class,
// bounding the engine's working set to the participating sublattice.
func (g *Graph) Scoop(universe []*core.ClassDescriptor) {
	memo := make(map[*core.ClassDescriptor]bool, len(universe))
	var participates func(d *core.ClassDescriptor) bool
	participates = func(d *core.ClassDescriptor) bool {
		if v, ok := memo[d]; ok {
			return v
		}
		memo[d] = false // break cycles conservatively; Layer will reject real cycles later
		if g.has(d) {
			memo[d] = true
			return true
		}
		for _, b := range d.Bases {
			if participates(b) {
				memo[d] = true
				return true
			}
		}
		return false
	}
	for _, d := range universe {
		if participates(d) {
			g.Lookup(d)
		}
	}
}

// BuildEdges derives direct-base/direct-derived edges between registered
// classes: any base of a registered class that is itself registered
// becomes a direct-base edge, and the reverse is recorded as direct-derived.
func (g *Graph) BuildEdges() {
	for _, c := range g.byDescriptor {
		c.Bases = c.Bases[:0]
		c.Derived = c.Derived[:0]
	}
	for _, c := range g.byDescriptor {
		for _, bd := range c.Descriptor.Bases {
			b, ok := g.byDescriptor[bd]
			if !ok {
				continue
			}
			c.Bases = append(c.Bases, b)
			b.Derived = append(b.Derived, c)
		}
	}
	for _, c := range g.byDescriptor {
		sort.Slice(c.Bases, func(i, j int) bool { return c.Bases[i].Descriptor.Name() < c.Bases[j].Descriptor.Name() })
		sort.Slice(c.Derived, func(i, j int) bool { return c.Derived[i].Descriptor.Name() < c.Derived[j].Descriptor.Name() })
	}
}

// ComputeConforming fills Conforming for every class in layered order
// (bases before derived), so that it can be computed in a single reverse
// pass: conforming(C) = {C} ∪ ⋃ conforming(D) for every direct-derived D.
func ComputeConforming(layered []*Class) {
	for i := len(layered) - 1; i >= 0; i-- {
		c := layered[i]
		seen := make(map[*Class]bool)
		var out []*Class
		add := func(x *Class) {
			if !seen[x] {
				seen[x] = true
				out = append(out, x)
			}
		}
		add(c)
		for _, d := range c.Derived {
			for _, x := range d.Conforming {
				add(x)
			}
		}
		c.Conforming = out
		c.conformSet = seen
	}
}
