package shape

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/achilleasa/polaris-bvh/types"
)

func TestBoxIntersect(t *testing.T) {
	mat := &Material{Albedo: types.XYZ(1, 0, 0)}
	box := NewCube(types.XYZ(0, 0, 0), 2, mat)

	hit, found := box.Intersect(types.NewRay(types.XYZ(0, 0, -5), types.XYZ(0, 0, 1)))
	if !found {
		t.Fatal("expected ray to hit the box")
	}
	if hit.T != 4 {
		t.Fatalf("expected hit distance 4; got %f", hit.T)
	}
	if exp := types.XYZ(0, 0, -1); hit.Normal != exp {
		t.Fatalf("expected normal %v; got %v", exp, hit.Normal)
	}
	if hit.Primitive != box {
		t.Fatal("expected hit to reference the box")
	}
	if MaterialOf(hit.Primitive) != mat {
		t.Fatal("expected hit primitive to carry the box material")
	}

	// Rays starting inside the box hit the far side
	hit, found = box.Intersect(types.NewRay(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0)))
	if !found || hit.T != 1 {
		t.Fatalf("expected ray from inside the box to hit at distance 1; got %f (found: %t)", hit.T, found)
	}
	if exp := types.XYZ(1, 0, 0); hit.Normal != exp {
		t.Fatalf("expected normal %v; got %v", exp, hit.Normal)
	}

	ray := types.NewRay(types.XYZ(0, 0, -5), types.XYZ(0, 0, 1))
	if box.IntersectP(ray, 4) {
		t.Fatal("expected no hit closer than distance 4")
	}
	if !box.IntersectP(ray, 4.5) {
		t.Fatal("expected hit closer than distance 4.5")
	}
	ray.TMax = 3
	if _, found := box.Intersect(ray); found {
		t.Fatal("expected hits beyond TMax to be ignored")
	}
}

func TestTriangleIntersect(t *testing.T) {
	tri := NewTriangle(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0), nil)

	hit, found := tri.Intersect(types.NewRay(types.XYZ(0.25, 0.25, 2), types.XYZ(0, 0, -1)))
	if !found {
		t.Fatal("expected ray to hit the triangle")
	}
	if hit.T != 2 {
		t.Fatalf("expected hit distance 2; got %f", hit.T)
	}
	if exp := types.XYZ(0, 0, 1); hit.Normal != exp {
		t.Fatalf("expected normal facing the ray %v; got %v", exp, hit.Normal)
	}
	if math32.Abs(hit.UV[0]-0.25) > 1e-6 || math32.Abs(hit.UV[1]-0.25) > 1e-6 {
		t.Fatalf("expected barycentric uv (0.25, 0.25); got %v", hit.UV)
	}

	// Back side
	hit, found = tri.Intersect(types.NewRay(types.XYZ(0.25, 0.25, -2), types.XYZ(0, 0, 1)))
	if !found {
		t.Fatal("expected ray to hit the back of the triangle")
	}
	if exp := types.XYZ(0, 0, -1); hit.Normal != exp {
		t.Fatalf("expected normal facing the ray %v; got %v", exp, hit.Normal)
	}

	if _, found := tri.Intersect(types.NewRay(types.XYZ(0.75, 0.75, 2), types.XYZ(0, 0, -1))); found {
		t.Fatal("expected ray outside the triangle to miss")
	}
	if tri.IntersectP(types.NewRay(types.XYZ(0.25, 0.25, 2), types.XYZ(0, 0, -1)), 1.5) {
		t.Fatal("expected no hit closer than distance 1.5")
	}
	if MaterialOf(tri) != nil {
		t.Fatal("expected triangle without a material to report a nil material")
	}

	degenerate := NewTriangle(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(2, 0, 0), nil)
	if _, found := degenerate.Intersect(types.NewRay(types.XYZ(1, 0, 1), types.XYZ(0, 0, -1))); found {
		t.Fatal("expected degenerate triangle to never be hit")
	}
	if exp := types.XYZ(1, 0, 0); degenerate.Center() != exp {
		t.Fatalf("expected centroid %v; got %v", exp, degenerate.Center())
	}
}

func TestSphereIntersect(t *testing.T) {
	sphere := NewSphere(types.XYZ(0, 0, 0), -2, nil)
	if sphere.Radius != 2 {
		t.Fatalf("expected negative radius to be flipped; got %f", sphere.Radius)
	}
	if exp := types.NewAABB(types.XYZ(-2, -2, -2), types.XYZ(2, 2, 2)); sphere.BBox() != exp {
		t.Fatalf("expected bbox %v; got %v", exp, sphere.BBox())
	}

	hit, found := sphere.Intersect(types.NewRay(types.XYZ(0, 0, -10), types.XYZ(0, 0, 1)))
	if !found || hit.T != 8 {
		t.Fatalf("expected ray to hit sphere at distance 8; got %f (found: %t)", hit.T, found)
	}
	if exp := types.XYZ(0, 0, -1); hit.Normal != exp {
		t.Fatalf("expected normal %v; got %v", exp, hit.Normal)
	}

	hit, found = sphere.Intersect(types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 1, 0)))
	if !found || hit.T != 2 {
		t.Fatalf("expected ray from the center to hit at distance 2; got %f (found: %t)", hit.T, found)
	}

	if _, found := sphere.Intersect(types.NewRay(types.XYZ(0, 3, -10), types.XYZ(0, 0, 1))); found {
		t.Fatal("expected ray to miss the sphere")
	}
	if sphere.IntersectP(types.NewRay(types.XYZ(0, 0, -10), types.XYZ(0, 0, 1)), 8) {
		t.Fatal("expected no hit closer than distance 8")
	}
}

func TestInstance(t *testing.T) {
	cube := NewCube(types.XYZ(0, 0, 0), 2, nil)

	// Scale the cube along X, rotate it 90 degrees around Y and move it
	rot := types.QuatFromAxisAngle(types.XYZ(0, 1, 0), math32.Pi/2)
	inst := NewInstance(cube, types.XYZ(0, 0, -10), rot, types.XYZ(3, 1, 1))

	// After the rotation the scaled X axis is aligned with Z
	exp := types.NewAABB(types.XYZ(-1, -1, -13), types.XYZ(1, 1, -7))
	if inst.BBox().Min.Sub(exp.Min).Len() > 1e-4 || inst.BBox().Max.Sub(exp.Max).Len() > 1e-4 {
		t.Fatalf("expected instance bbox %v; got %v", exp, inst.BBox())
	}

	ray := types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1))
	hit, found := inst.Intersect(ray)
	if !found {
		t.Fatal("expected ray to hit the instance")
	}
	if math32.Abs(hit.T-7) > 1e-4 {
		t.Fatalf("expected hit distance 7; got %f", hit.T)
	}
	if hit.Point.Sub(types.XYZ(0, 0, -7)).Len() > 1e-4 {
		t.Fatalf("expected world space hit point (0, 0, -7); got %v", hit.Point)
	}
	if hit.Normal.Sub(types.XYZ(0, 0, 1)).Len() > 1e-4 {
		t.Fatalf("expected world space normal (0, 0, 1); got %v", hit.Normal)
	}
	if hit.Primitive != cube {
		t.Fatal("expected hit to reference the wrapped primitive")
	}

	if inst.IntersectP(ray, 6.5) {
		t.Fatal("expected no hit closer than distance 6.5")
	}
	if !inst.IntersectP(ray, 7.5) {
		t.Fatal("expected hit closer than distance 7.5")
	}
}
