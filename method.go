// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package openmethods

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-openmethods/openmethods/internal/core"
)

// registry is the process-wide set of registered methods, guarded
// independently of the published dispatch state so that RegisterMethod and
// AddSpecialization never block a concurrent Dispatch call.
type registry struct {
	mu      sync.Mutex
	methods []*core.MethodInfo
	dirty   bool
}

var reg registry

func (r *registry) add(m *core.MethodInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods = append(r.methods, m)
	r.dirty = true
}

func (r *registry) markDirty() {
	r.mu.Lock()
	r.dirty = true
	r.mu.Unlock()
}

func (r *registry) snapshot() []*core.MethodInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*core.MethodInfo(nil), r.methods...)
}

// NeedUpdate reports whether a method or specialization has been
// registered, added, or removed since the last successful Update.
func NeedUpdate() bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.dirty
}

// MethodHandle is the handle RegisterMethod returns for an open method with
// Go function signature F.
type MethodHandle[F any] struct {
	info *core.MethodInfo
}

// UseHash opts the method into the perfect-hash mtbl resolution strategy
// instead of the stolen-field strategy, and returns the receiver for
// chaining onto RegisterMethod's result.
func (h *MethodHandle[F]) UseHash(use bool) *MethodHandle[F] {
	h.info.UseHash = use
	return h
}

// RegisterMethod declares an open method named name, dispatching on the
// virtual parameters vp, with Go function signature F. F must be a func
// type; RegisterMethod panics otherwise, the same way a programming error
// in a generic instantiation would surface immediately rather than at the
// first call.
func RegisterMethod[F any](name string, vp ...*ClassDescriptor) *MethodHandle[F] {
	sig := reflect.TypeOf((*F)(nil)).Elem()
	if sig.Kind() != reflect.Func {
		panic(fmt.Sprintf("openmethods: RegisterMethod[%s](%q): type parameter is not a function type", sig, name))
	}
	if sig.NumIn() < len(vp) {
		panic(fmt.Sprintf("openmethods: RegisterMethod[%s](%q): fewer parameters than virtual parameters", sig, name))
	}
	info := &core.MethodInfo{
		Name: name,
		Vp:   append([]*ClassDescriptor(nil), vp...),
		Sig:  sig,
	}
	info.NotImplementedThunk = core.MakeThunk(sig, name, core.NotImplemented)
	info.AmbiguousCallThunk = core.MakeThunk(sig, name, core.AmbiguousCall)
	reg.add(info)
	return &MethodHandle[F]{info: info}
}

// Unregister detaches the method; it and its specializations are dropped
// from the next Update.
func (h *MethodHandle[F]) Unregister() {
	h.info.Remove()
	reg.markDirty()
}

// SpecHandle is the handle AddSpecialization returns for one specialization
// of a method with signature F.
type SpecHandle[F any] struct {
	info *core.SpecInfo
}

// AddSpecialization attaches an override pf, applicable when the dynamic
// classes of the call's virtual arguments conform to vp, to the method.
func (h *MethodHandle[F]) AddSpecialization(pf F, vp ...*ClassDescriptor) *SpecHandle[F] {
	s := &core.SpecInfo{
		Method: h.info,
		Vp:     append([]*ClassDescriptor(nil), vp...),
		Pf:     pf,
	}
	reg.mu.Lock()
	h.info.Specs = append(h.info.Specs, s)
	reg.dirty = true
	reg.mu.Unlock()
	return &SpecHandle[F]{info: s}
}

// Remove detaches the specialization; it is dropped from the next Update.
func (h *SpecHandle[F]) Remove() {
	h.info.Remove()
	reg.markDirty()
}

// Next returns the function value of s's unique next-most-specific
// applicable specialization, and true if one exists. A specialization body
// calls this (after Update) to invoke the override it shadows.
func Next[F any](s *SpecHandle[F]) (F, bool) {
	var zero F
	v := s.info.Next()
	if v == nil {
		return zero, false
	}
	f, ok := v.(F)
	return f, ok
}
