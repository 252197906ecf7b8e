// Copyright ©2024 The Open Methods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package openmethods_test

import (
	"fmt"
	"testing"

	"github.com/go-openmethods/openmethods"
)

// obj is the Virtual implementation shared by every scenario in this file:
// a value whose dynamic class is whatever ClassDescriptor it was built
// with, independent of its (identical) Go static type.
type obj struct {
	class *openmethods.ClassDescriptor
}

func (o obj) OpenClass() *openmethods.ClassDescriptor { return o.class }

func newObj(c *openmethods.ClassDescriptor) obj { return obj{class: c} }

func TestSingleDispatch(t *testing.T) {
	animal := openmethods.DeclareClass("SDAnimal")
	dog := openmethods.DeclareClass("SDDog", animal)
	pitbull := openmethods.DeclareClass("SDPitbull", dog)
	cat := openmethods.DeclareClass("SDCat", animal)
	dolphin := openmethods.DeclareClass("SDDolphin", animal)

	kick := openmethods.RegisterMethod[func(obj) string]("sd-kick", animal)
	kick.AddSpecialization(func(obj) string { return "generic kick" }, animal)
	kick.AddSpecialization(func(obj) string { return "dog kick" }, dog)
	kick.AddSpecialization(func(obj) string { return "pitbull kick" }, pitbull)

	if err := openmethods.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}

	Kick := func(a obj) string { return openmethods.Dispatch1(kick, a)(a) }

	cases := []struct {
		class *openmethods.ClassDescriptor
		want  string
	}{
		{animal, "generic kick"},
		{dog, "dog kick"},
		{pitbull, "pitbull kick"},
		{cat, "generic kick"},
		{dolphin, "generic kick"},
	}
	for _, c := range cases {
		if got := Kick(newObj(c.class)); got != c.want {
			t.Errorf("Kick(%s) = %q, want %q", c.class.Name(), got, c.want)
		}
	}
}

func TestDoubleDispatch(t *testing.T) {
	animal := openmethods.DeclareClass("DDAnimal")
	dog := openmethods.DeclareClass("DDDog", animal)
	cat := openmethods.DeclareClass("DDCat", animal)

	meet := openmethods.RegisterMethod[func(obj, obj) string]("dd-meet", animal, animal)
	meet.AddSpecialization(func(obj, obj) string { return "dogs meet" }, dog, dog)
	meet.AddSpecialization(func(obj, obj) string { return "dog meets cat" }, dog, cat)
	meet.AddSpecialization(func(obj, obj) string { return "generic meet" }, animal, animal)

	if err := openmethods.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}

	Meet := func(a, b obj) string { return openmethods.Dispatch2(meet, a, b)(a, b) }

	if got := Meet(newObj(dog), newObj(dog)); got != "dogs meet" {
		t.Errorf("Meet(Dog, Dog) = %q, want \"dogs meet\"", got)
	}
	if got := Meet(newObj(dog), newObj(cat)); got != "dog meets cat" {
		t.Errorf("Meet(Dog, Cat) = %q, want \"dog meets cat\"", got)
	}
	if got := Meet(newObj(cat), newObj(dog)); got != "generic meet" {
		t.Errorf("Meet(Cat, Dog) = %q, want \"generic meet\"", got)
	}
	if got := Meet(newObj(animal), newObj(animal)); got != "generic meet" {
		t.Errorf("Meet(Animal, Animal) = %q, want \"generic meet\"", got)
	}
}

func TestAmbiguousCallIsReported(t *testing.T) {
	a := openmethods.DeclareClass("AmbA")
	b := openmethods.DeclareClass("AmbB", a)
	c := openmethods.DeclareClass("AmbC", a)
	d := openmethods.DeclareClass("AmbD", b, c)

	amb := openmethods.RegisterMethod[func(obj) string]("amb", a)
	amb.AddSpecialization(func(obj) string { return "b" }, b)
	amb.AddSpecialization(func(obj) string { return "c" }, c)

	if err := openmethods.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}

	var lastErr *openmethods.MethodError
	prev := openmethods.SetErrorHandler(func(e *openmethods.MethodError) { lastErr = e })
	defer openmethods.SetErrorHandler(prev)

	got := openmethods.Dispatch1(amb, newObj(d))(newObj(d))
	if lastErr == nil {
		t.Fatal("expected the error handler to be invoked for an ambiguous call")
	}
	if lastErr.Reason != openmethods.AmbiguousCall {
		t.Errorf("Reason = %v, want AmbiguousCall", lastErr.Reason)
	}
	if got != "" {
		t.Errorf("result = %q, want the zero value", got)
	}

	// Adding a specialization on D itself resolves the ambiguity: D is now
	// strictly more specific than both B and C.
	amb.AddSpecialization(func(obj) string { return "d" }, d)
	if err := openmethods.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	lastErr = nil
	if got := openmethods.Dispatch1(amb, newObj(d))(newObj(d)); got != "d" {
		t.Errorf("amb(D) after adding D specialization = %q, want \"d\"", got)
	}
	if lastErr != nil {
		t.Errorf("error handler invoked after ambiguity was resolved: %+v", lastErr)
	}
}

// TestRoundTripUnregisterEmptiesTables covers the round-trip property:
// registering methods and specializations, updating, then unregistering
// everything and updating again must leave no dangling per-class table
// pointer behind.
func TestRoundTripUnregisterEmptiesTables(t *testing.T) {
	base := openmethods.DeclareClass("RTBase")
	derived := openmethods.DeclareClass("RTDerived", base)

	rt := openmethods.RegisterMethod[func(obj) string]("rt-method", base)
	spec := rt.AddSpecialization(func(obj) string { return "derived" }, derived)

	if err := openmethods.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := openmethods.Dispatch1(rt, newObj(derived))(newObj(derived)); got != "derived" {
		t.Fatalf("rt-method(Derived) = %q, want \"derived\" before unregistering", got)
	}
	if base.Mtbl == nil || derived.Mtbl == nil {
		t.Fatal("expected both classes to have a published mtbl after the first Update")
	}

	spec.Remove()
	rt.Unregister()
	if err := openmethods.Update(); err != nil {
		t.Fatalf("Update after unregister: %v", err)
	}

	if base.Mtbl != nil || derived.Mtbl != nil {
		t.Error("expected mtbl to be cleared once no method or specialization touches the class anymore")
	}
}

func TestNextChainsAcrossMultipleOverrides(t *testing.T) {
	vehicle := openmethods.DeclareClass("NCVehicle")
	car := openmethods.DeclareClass("NCCar", vehicle)
	sportsCar := openmethods.DeclareClass("NCSportsCar", car)

	inspect := openmethods.RegisterMethod[func(obj) string]("inspect", vehicle)
	inspect.AddSpecialization(func(obj) string { return "vehicle" }, vehicle)

	var specCar *openmethods.SpecHandle[func(obj) string]
	specCar = inspect.AddSpecialization(func(o obj) string {
		if next, ok := openmethods.Next(specCar); ok {
			return "car->" + next(o)
		}
		return "car"
	}, car)

	var specSportsCar *openmethods.SpecHandle[func(obj) string]
	specSportsCar = inspect.AddSpecialization(func(o obj) string {
		if next, ok := openmethods.Next(specSportsCar); ok {
			return "sportscar->" + next(o)
		}
		return "sportscar"
	}, sportsCar)

	if err := openmethods.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got := openmethods.Dispatch1(inspect, newObj(sportsCar))(newObj(sportsCar))
	want := "sportscar->car->vehicle"
	if got != want {
		t.Errorf("Inspect(SportsCar) = %q, want %q", got, want)
	}
}

// TestDiamondInheritanceViaInterfaces covers the boundary case of a class
// reaching a common ancestor through two distinct interface paths: Swimmer
// and Flyer both conform to Mover, and Duck implements both, so Duck's
// conforming walk must not double-count or miss Mover's specialization.
func TestDiamondInheritanceViaInterfaces(t *testing.T) {
	mover := openmethods.DeclareInterface("DIMover")
	swimmer := openmethods.DeclareInterface("DISwimmer", mover)
	flyer := openmethods.DeclareInterface("DIFlyer", mover)
	duck := openmethods.DeclareClass("DIDuck", swimmer, flyer)
	rock := openmethods.DeclareClass("DIRock")

	move := openmethods.RegisterMethod[func(obj) string]("di-move", mover)
	move.AddSpecialization(func(obj) string { return "generic move" }, mover)
	move.AddSpecialization(func(obj) string { return "swim or fly" }, swimmer)

	if err := openmethods.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}

	Move := func(a obj) string { return openmethods.Dispatch1(move, a)(a) }

	if got := Move(newObj(duck)); got != "swim or fly" {
		t.Errorf("Move(Duck) = %q, want %q", got, "swim or fly")
	}

	var lastErr *openmethods.MethodError
	prev := openmethods.SetErrorHandler(func(e *openmethods.MethodError) { lastErr = e })
	defer openmethods.SetErrorHandler(prev)
	if got := Move(newObj(rock)); got != "" || lastErr == nil || lastErr.Reason != openmethods.NotImplemented {
		t.Errorf("Move(Rock) = %q, lastErr = %v, want NotImplemented (Rock conforms to nothing move-related)", got, lastErr)
	}
}

// TestVirtualParameterWithSeveralNonVirtuals covers the boundary case of a
// method whose only virtual parameter is not its sole parameter: dispatch
// must key off the virtual argument alone and pass the non-virtual
// parameters through unchanged.
func TestVirtualParameterWithSeveralNonVirtuals(t *testing.T) {
	shape := openmethods.DeclareClass("NVShape")
	circle := openmethods.DeclareClass("NVCircle", shape)

	describe := openmethods.RegisterMethod[func(obj, int, string) string]("describe", shape)
	describe.AddSpecialization(func(_ obj, n int, label string) string {
		return fmt.Sprintf("shape x%d %s", n, label)
	}, shape)
	describe.AddSpecialization(func(_ obj, n int, label string) string {
		return fmt.Sprintf("circle x%d %s", n, label)
	}, circle)

	if err := openmethods.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}

	Describe := func(a obj, n int, label string) string {
		return openmethods.Dispatch1(describe, a)(a, n, label)
	}

	if got := Describe(newObj(shape), 3, "red"); got != "shape x3 red" {
		t.Errorf("Describe(Shape, 3, red) = %q, want %q", got, "shape x3 red")
	}
	if got := Describe(newObj(circle), 2, "blue"); got != "circle x2 blue" {
		t.Errorf("Describe(Circle, 2, blue) = %q, want %q", got, "circle x2 blue")
	}
}

func TestMultiVirtualOrderingAcrossThreeDimensions(t *testing.T) {
	x := openmethods.DeclareClass("MVX")
	x1 := openmethods.DeclareClass("MVX1", x)
	x2 := openmethods.DeclareClass("MVX2", x)

	y := openmethods.DeclareClass("MVY")
	y1 := openmethods.DeclareClass("MVY1", y)
	y3 := openmethods.DeclareClass("MVY3", y)

	z := openmethods.DeclareClass("MVZ")
	z1 := openmethods.DeclareClass("MVZ1", z)
	z4 := openmethods.DeclareClass("MVZ4", z)

	triple := openmethods.RegisterMethod[func(obj, obj, obj) string]("triple", x, y, z)
	triple.AddSpecialization(func(obj, obj, obj) string { return "generic" }, x, y, z)
	triple.AddSpecialization(func(obj, obj, obj) string { return "special" }, x2, y3, z4)

	if err := openmethods.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}

	Triple := func(a, b, c obj) string { return openmethods.Dispatch3(triple, a, b, c)(a, b, c) }

	if got := Triple(newObj(x1), newObj(y1), newObj(z1)); got != "generic" {
		t.Errorf("Triple(X1,Y1,Z1) = %q, want \"generic\"", got)
	}
	if got := Triple(newObj(x2), newObj(y3), newObj(z4)); got != "special" {
		t.Errorf("Triple(X2,Y3,Z4) = %q, want \"special\"", got)
	}
	if got := Triple(newObj(x2), newObj(y3), newObj(z1)); got != "generic" {
		t.Errorf("Triple(X2,Y3,Z1) = %q, want \"generic\" (differs from the special cell only in z)", got)
	}
	if got := Triple(newObj(x2), newObj(y1), newObj(z4)); got != "generic" {
		t.Errorf("Triple(X2,Y1,Z4) = %q, want \"generic\" (differs from the special cell only in y)", got)
	}
}
