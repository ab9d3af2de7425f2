package types

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestEmptyAABB(t *testing.T) {
	b := EmptyAABB()
	if !b.IsEmpty() {
		t.Fatal("expected EmptyAABB to be empty")
	}
	if area := b.SurfaceArea(); area != 0 {
		t.Fatalf("expected empty box to have zero area; got %f", area)
	}

	unit := NewAABB(XYZ(1, 1, 1), XYZ(0, 0, 0))
	if got := b.Union(unit); got != unit {
		t.Fatalf("expected union with empty box to return %v; got %v", unit, got)
	}
	if got := unit.Union(b); got != unit {
		t.Fatalf("expected union with empty box to return %v; got %v", unit, got)
	}

	p := XYZ(2, 3, 4)
	if got := b.UnionPoint(p); got.Min != p || got.Max != p {
		t.Fatalf("expected empty box grown by a point to collapse to it; got %v", got)
	}
}

func TestAABBMetrics(t *testing.T) {
	b := AABBFromPoints(XYZ(-1, 0, 2), XYZ(1, 4, 3))

	if exp := XYZ(2, 4, 1); b.Extent() != exp {
		t.Fatalf("expected extent %v; got %v", exp, b.Extent())
	}
	if exp := XYZ(0, 2, 2.5); b.Center() != exp {
		t.Fatalf("expected center %v; got %v", exp, b.Center())
	}
	if exp := float32(2 * (8 + 2 + 4)); b.SurfaceArea() != exp {
		t.Fatalf("expected surface area %f; got %f", exp, b.SurfaceArea())
	}
	if axis := b.MaxExtentAxis(); axis != 1 {
		t.Fatalf("expected max extent axis 1; got %d", axis)
	}
	if exp := XYZ(0.5, 0.5, 0.5); b.Offset(b.Center()) != exp {
		t.Fatalf("expected center offset %v; got %v", exp, b.Offset(b.Center()))
	}
	if !b.Contains(XYZ(0, 1, 2)) || b.Contains(XYZ(0, 5, 2)) {
		t.Fatal("unexpected Contains result")
	}

	flat := AABBFromPoints(XYZ(0, 0, 0), XYZ(2, 0, 0))
	if exp := XYZ(0.5, 0, 0); flat.Offset(XYZ(1, 0, 0)) != exp {
		t.Fatalf("expected zero extent axes to map to 0; got %v", flat.Offset(XYZ(1, 0, 0)))
	}
}

func TestAABBIntersectP(t *testing.T) {
	b := NewAABB(XYZ(-1, -1, -1), XYZ(1, 1, 1))

	type spec struct {
		ray Ray
		exp bool
	}
	specs := []spec{
		{NewRay(XYZ(-5, 0, 0), XYZ(1, 0, 0)), true},
		{NewRay(XYZ(-5, 0, 0), XYZ(-1, 0, 0)), false},
		{NewRay(XYZ(-5, 2, 0), XYZ(1, 0, 0)), false},
		// Origin inside the box
		{NewRay(XYZ(0, 0, 0), XYZ(0, 1, 0)), true},
		// Ray grazing the box face with a zero direction component
		{NewRay(XYZ(-5, 1, 1), XYZ(1, 0, 0)), true},
		{NewRay(XYZ(-5, -5, -5), XYZ(1, 1, 1)), true},
		// Box beyond the ray extent
		{Ray{Origin: XYZ(-5, 0, 0), Dir: XYZ(1, 0, 0), TMin: 0, TMax: 3}, false},
		// Box behind the ray start
		{Ray{Origin: XYZ(-5, 0, 0), Dir: XYZ(1, 0, 0), TMin: 7, TMax: 10}, false},
	}

	for index, s := range specs {
		got := b.IntersectP(s.ray.Origin, s.ray.InvDir(), s.ray.DirIsNeg(), s.ray.TMin, s.ray.TMax)
		if got != s.exp {
			t.Fatalf("[spec %d] expected IntersectP to return %t; got %t", index, s.exp, got)
		}

		_, _, ok := b.Intersect(s.ray)
		if ok != s.exp {
			t.Fatalf("[spec %d] expected Intersect to return %t; got %t", index, s.exp, ok)
		}
	}

	if EmptyAABB().IntersectP(XYZ(0, 0, 0), XYZ(1, 1, 1), [3]int{}, 0, math32.Inf(1)) {
		t.Fatal("expected rays to never hit an empty box")
	}
}

func TestAABBIntersect(t *testing.T) {
	b := NewAABB(XYZ(-1, -1, -1), XYZ(1, 1, 1))
	tNear, tFar, ok := b.Intersect(NewRay(XYZ(-5, 0, 0), XYZ(2, 0, 0)))
	if !ok {
		t.Fatal("expected ray to hit the box")
	}
	if tNear != 2 || tFar != 3 {
		t.Fatalf("expected hit range [2, 3]; got [%f, %f]", tNear, tFar)
	}
}

func TestRay(t *testing.T) {
	r := NewRay(XYZ(1, 2, 3), XYZ(0, -2, 0))
	if !r.IsValid() {
		t.Fatal("expected ray to be valid")
	}
	if exp := XYZ(1, -2, 3); r.At(2) != exp {
		t.Fatalf("expected At(2) to return %v; got %v", exp, r.At(2))
	}
	if exp := [3]int{0, 1, 0}; r.DirIsNeg() != exp {
		t.Fatalf("expected DirIsNeg to return %v; got %v", exp, r.DirIsNeg())
	}
	if inv := r.InvDir(); !math32.IsInf(inv[0], 1) || inv[1] != -0.5 {
		t.Fatalf("unexpected InvDir %v", inv)
	}

	invalid := []Ray{
		NewRay(XYZ(0, 0, 0), XYZ(0, 0, 0)),
		NewRay(XYZ(math32.NaN(), 0, 0), XYZ(1, 0, 0)),
		NewRay(XYZ(0, 0, 0), XYZ(math32.Inf(1), 0, 0)),
		{Origin: XYZ(0, 0, 0), Dir: XYZ(1, 0, 0), TMin: 1, TMax: 1},
		{Origin: XYZ(0, 0, 0), Dir: XYZ(1, 0, 0), TMin: 0, TMax: math32.NaN()},
	}
	for index, ray := range invalid {
		if ray.IsValid() {
			t.Fatalf("[ray %d] expected ray to be invalid", index)
		}
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(XYZ(0, 0, 2), math32.Pi/2)
	got := q.Rotate(XYZ(1, 0, 0))
	exp := XYZ(0, 1, 0)
	if got.Sub(exp).Len() > 1e-5 {
		t.Fatalf("expected rotated vector %v; got %v", exp, got)
	}

	if got := QuatIdent().Rotate(XYZ(1, 2, 3)); got.Sub(XYZ(1, 2, 3)).Len() > 1e-6 {
		t.Fatalf("expected identity rotation to leave vector unchanged; got %v", got)
	}
}
