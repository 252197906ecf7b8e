// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classgraph

import (
	"sort"

	"github.com/go-openmethods/openmethods/internal/core"
)

// Layer produces an ordering of g's classes in which every class appears
// after all of its direct bases. Ties are broken by name for a
// deterministic, reproducible order. If the declared base/derived edges
// contain a cycle, Layer reports it as a LatticeCycle, decomposing the
// stuck remainder with a Tarjan strongly-connected-component pass the same
// way gonum's graph/topo.Sort decomposes an Unorderable graph.
func Layer(g *Graph) ([]*Class, error) {
	pending := g.Classes()
	emitted := make(map[*Class]bool, len(pending))
	order := make([]*Class, 0, len(pending))

	for len(pending) > 0 {
		var ready, rest []*Class
		for _, c := range pending {
			ok := true
			for _, b := range c.Bases {
				if !emitted[b] {
					ok = false
					break
				}
			}
			if ok {
				ready = append(ready, c)
			} else {
				rest = append(rest, c)
			}
		}
		if len(ready) == 0 {
			return nil, cyclicError(pending)
		}
		sort.Slice(ready, func(i, j int) bool {
			return ready[i].Descriptor.Name() < ready[j].Descriptor.Name()
		})
		for _, c := range ready {
			emitted[c] = true
		}
		order = append(order, ready...)
		pending = rest
	}
	return order, nil
}

func cyclicError(pending []*Class) error {
	sccs := tarjanSCC(pending)
	var cyclic core.LatticeCycle
	for _, scc := range sccs {
		isCycle := len(scc) > 1
		if len(scc) == 1 {
			for _, b := range scc[0].Bases {
				if b == scc[0] {
					isCycle = true
				}
			}
		}
		if !isCycle {
			continue
		}
		sort.Slice(scc, func(i, j int) bool { return scc[i].Descriptor.Name() < scc[j].Descriptor.Name() })
		descs := make([]*core.ClassDescriptor, len(scc))
		for i, c := range scc {
			descs[i] = c.Descriptor
		}
		cyclic = append(cyclic, descs)
	}
	return cyclic
}
