// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package selector implements most-specific specialization selection, with
// ambiguity detection, and next-pointer linking.
package selector

import (
	"github.com/go-openmethods/openmethods/internal/classgraph"
	"github.com/go-openmethods/openmethods/internal/core"
)

// Lookup resolves a class descriptor to its registry Class.
type Lookup func(*core.ClassDescriptor) *classgraph.Class

// MoreSpecific reports whether a is strictly more specific than b: for
// every parameter index i, either a.Vp[i] equals b.Vp[i], or a.Vp[i]
// conforms to b.Vp[i]; and at least one parameter is strictly narrower.
func MoreSpecific(a, b *core.SpecInfo, lookup Lookup) bool {
	result := false
	for i := range a.Vp {
		if a.Vp[i] == b.Vp[i] {
			continue
		}
		ac, bc := lookup(a.Vp[i]), lookup(b.Vp[i])
		if bc.Conforms(ac) {
			result = true
		} else if ac.Conforms(bc) {
			return false
		}
	}
	return result
}

// Best folds candidates down to the most-specific subset: for each new
// candidate, any incumbent it dominates is dropped; if the candidate is
// itself dominated by an incumbent, it is discarded; otherwise it is kept
// alongside whatever incumbents remain incomparable to it.
func Best(candidates []*core.SpecInfo, lookup Lookup) []*core.SpecInfo {
	var best []*core.SpecInfo
	for _, cand := range candidates {
		dominated := false
		kept := best[:0:0]
		for _, incumbent := range best {
			switch {
			case MoreSpecific(cand, incumbent, lookup):
				// incumbent is dropped.
			case MoreSpecific(incumbent, cand, lookup):
				dominated = true
				kept = append(kept, incumbent)
			default:
				kept = append(kept, incumbent)
			}
		}
		if !dominated {
			kept = append(kept, cand)
		}
		best = kept
	}
	return best
}

// LinkNext fills, for every specialization of m, the function value of its
// unique next-most-specific applicable specialization. A spec invoking
// "next" inside an override reads this value and calls it directly, with
// no re-dispatch.
func LinkNext(m *core.MethodInfo, lookup Lookup) {
	for _, s := range m.Specs {
		var lessSpecific []*core.SpecInfo
		for _, t := range m.Specs {
			if t == s {
				continue
			}
			if MoreSpecific(s, t, lookup) {
				lessSpecific = append(lessSpecific, t)
			}
		}
		best := Best(lessSpecific, lookup)
		if len(best) == 1 {
			s.SetNext(best[0].Pf)
		} else {
			s.SetNext(nil)
		}
	}
}
