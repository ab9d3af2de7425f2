package accel

import (
	"testing"

	"github.com/achilleasa/polaris-bvh/types"
)

// A unit box primitive used for testing the accelerators.
type mockBox struct {
	bbox types.AABB
}

func newMockBox(center types.Vec3) *mockBox {
	half := types.XYZ(0.5, 0.5, 0.5)
	return &mockBox{bbox: types.NewAABB(center.Sub(half), center.Add(half))}
}

func (m *mockBox) BBox() types.AABB   { return m.bbox }
func (m *mockBox) Center() types.Vec3 { return m.bbox.Center() }

func (m *mockBox) Intersect(ray types.Ray) (Hit, bool) {
	tNear, _, ok := m.bbox.Intersect(ray)
	if !ok || tNear >= ray.TMax {
		return Hit{}, false
	}
	return Hit{T: tNear, Point: ray.At(tNear), Primitive: m}, true
}

func (m *mockBox) IntersectP(ray types.Ray, maxDistance float32) bool {
	ray.TMax = maxDistance
	_, ok := m.Intersect(ray)
	return ok
}

func TestList(t *testing.T) {
	l := NewList()
	if l.Len() != 0 || !l.BBox().IsEmpty() {
		t.Fatal("expected new list to be empty")
	}

	l.Add(newMockBox(types.XYZ(0, 0, 0)), newMockBox(types.XYZ(4, 0, 0)))
	if l.Len() != 2 {
		t.Fatalf("expected list to contain 2 primitives; got %d", l.Len())
	}

	exp := types.NewAABB(types.XYZ(-0.5, -0.5, -0.5), types.XYZ(4.5, 0.5, 0.5))
	if l.BBox() != exp {
		t.Fatalf("expected list bbox %v; got %v", exp, l.BBox())
	}
}

func TestLinear(t *testing.T) {
	near := newMockBox(types.XYZ(0, 0, 0))
	far := newMockBox(types.XYZ(4, 0, 0))
	l := NewList(far, near)
	lin := NewLinear(l)

	// The accelerator keeps its own copy of the primitive references
	l.Add(newMockBox(types.XYZ(-4, 0, 0)))

	ray := types.NewRay(types.XYZ(-10, 0, 0), types.XYZ(1, 0, 0))
	hit, found := lin.Intersect(ray)
	if !found || hit.Primitive != near {
		t.Fatal("expected ray to hit the nearest box")
	}
	if hit.T != 9.5 {
		t.Fatalf("expected hit distance 9.5; got %f", hit.T)
	}
	if hit.NodeInfo != 1 {
		t.Fatalf("expected NodeInfo to be the primitive index 1; got %d", hit.NodeInfo)
	}

	if hit2, found := lin.IntersectFrom(ray, 42); !found || hit2.T != hit.T {
		t.Fatal("expected IntersectFrom to match Intersect")
	}

	if lin.IntersectP(ray, 9) {
		t.Fatal("expected no occluder within distance 9")
	}
	if !lin.IntersectP(ray, 10) {
		t.Fatal("expected an occluder within distance 10")
	}
	if lin.IntersectP(ray, 0) {
		t.Fatal("expected zero max distance to never report occluders")
	}

	invalid := types.NewRay(types.XYZ(-10, 0, 0), types.XYZ(0, 0, 0))
	if _, found := lin.Intersect(invalid); found {
		t.Fatal("expected invalid rays to never hit")
	}

	res := lin.IntersectPacket([]types.Ray{ray, invalid})
	if !res[0].Found || res[0].T != 9.5 || res[1].Found {
		t.Fatalf("unexpected packet results %v", res)
	}
}
