package shape

import (
	"github.com/chewxy/math32"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/types"
)

// Box is a solid axis-aligned box.
type Box struct {
	bbox types.AABB
	mat  *Material
}

// Create a box spanning two corners.
func NewBox(p0, p1 types.Vec3, mat *Material) *Box {
	return &Box{bbox: types.NewAABB(p0, p1), mat: mat}
}

// Create a cube with the given center and side length.
func NewCube(center types.Vec3, side float32, mat *Material) *Box {
	half := types.Vec3{side * 0.5, side * 0.5, side * 0.5}
	return NewBox(center.Sub(half), center.Add(half), mat)
}

func (b *Box) BBox() types.AABB    { return b.bbox }
func (b *Box) Center() types.Vec3  { return b.bbox.Center() }
func (b *Box) Material() *Material { return b.mat }

// Intersect ray with the box. Rays starting inside the box hit its far side.
func (b *Box) Intersect(ray types.Ray) (accel.Hit, bool) {
	t, ok := b.firstHit(ray, ray.TMax)
	if !ok {
		return accel.Hit{}, false
	}

	point := ray.At(t)
	normal, uv := b.surfaceAt(point)
	return accel.Hit{
		T:         t,
		Point:     point,
		Normal:    normal,
		UV:        uv,
		Primitive: b,
	}, true
}

// Returns true if the ray hits the box closer than maxDistance.
func (b *Box) IntersectP(ray types.Ray, maxDistance float32) bool {
	_, ok := b.firstHit(ray, maxDistance)
	return ok
}

func (b *Box) firstHit(ray types.Ray, tMax float32) (float32, bool) {
	unbounded := ray
	unbounded.TMin = math32.Inf(-1)
	unbounded.TMax = math32.Inf(1)
	t0, t1, ok := b.bbox.Intersect(unbounded)
	if !ok {
		return 0, false
	}

	t := t0
	if t < ray.TMin {
		t = t1
	}
	if t < ray.TMin || t >= tMax {
		return 0, false
	}
	return t, true
}

// Select the face normal by finding the axis where the point lies closest to
// a box face and compute the face UV coordinates from the remaining axes.
func (b *Box) surfaceAt(point types.Vec3) (types.Vec3, types.Vec2) {
	center := b.bbox.Center()
	half := b.bbox.Extent().Mul(0.5)

	var normal types.Vec3
	bestAxis, bestDist := 0, math32.Inf(1)
	for axis := 0; axis < 3; axis++ {
		d := half[axis] - math32.Abs(point[axis]-center[axis])
		if d < bestDist {
			bestAxis, bestDist = axis, d
		}
	}
	normal[bestAxis] = 1
	if point[bestAxis] < center[bestAxis] {
		normal[bestAxis] = -1
	}

	offset := b.bbox.Offset(point)
	uAxis, vAxis := (bestAxis+1)%3, (bestAxis+2)%3
	return normal, types.Vec2{offset[uAxis], offset[vAxis]}
}
