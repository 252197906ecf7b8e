// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classgraph

import "golang.org/x/tools/container/intsets"

// tarjanSCC returns the strongly connected components of the class graph,
// following direct-derived edges. It is adapted from gonum's
// graph/topo.TarjanSCC, substituting classgraph.Class for graph.Node and an
// intsets.Sparse (the same sparse integer set gonum's implementation uses
// for its on-stack set) for the on-stack bookkeeping; visited classes are
// tracked by their entry in indexTable.
func tarjanSCC(classes []*Class) [][]*Class {
	t := &tarjan{
		indexTable: make(map[int]int, len(classes)),
		lowLink:    make(map[int]int, len(classes)),
		onStack:    &intsets.Sparse{},
	}
	for _, c := range classes {
		if t.indexTable[c.id] == 0 {
			t.strongconnect(c)
		}
	}
	return t.sccs
}

type tarjan struct {
	index      int
	indexTable map[int]int
	lowLink    map[int]int
	onStack    *intsets.Sparse

	stack []*Class
	sccs  [][]*Class
}

func (t *tarjan) strongconnect(v *Class) {
	t.index++
	t.indexTable[v.id] = t.index
	t.lowLink[v.id] = t.index
	t.stack = append(t.stack, v)
	t.onStack.Insert(v.id)

	for _, w := range v.Derived {
		if t.indexTable[w.id] == 0 {
			t.strongconnect(w)
			t.lowLink[v.id] = min(t.lowLink[v.id], t.lowLink[w.id])
		} else if t.onStack.Has(w.id) {
			t.lowLink[v.id] = min(t.lowLink[v.id], t.indexTable[w.id])
		}
	}

	if t.lowLink[v.id] == t.indexTable[v.id] {
		var scc []*Class
		for {
			var w *Class
			w, t.stack = t.stack[len(t.stack)-1], t.stack[:len(t.stack)-1]
			t.onStack.Remove(w.id)
			scc = append(scc, w)
			if w.id == v.id {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
