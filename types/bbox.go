package types

import "github.com/chewxy/math32"

// Bounds the rounding error of the slab test far distance, see
// "Physically Based Rendering" 3.9.2.
const gamma3 float32 = 3 * (0.5 * 1.1920929e-07) / (1 - 3*(0.5*1.1920929e-07))

// AABB is an axis-aligned bounding box. A box that has not yet been grown by
// any point or box is "empty": its Min corner is larger than its Max corner.
type AABB struct {
	Min Vec3
	Max Vec3
}

// Create an empty bounding box.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		Max: Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}
}

// Create a bounding box from two corners. The corners are sorted so the
// returned box is always valid.
func NewAABB(p0, p1 Vec3) AABB {
	return AABB{Min: MinVec3(p0, p1), Max: MaxVec3(p0, p1)}
}

// Create the smallest bounding box enclosing all points.
func AABBFromPoints(points ...Vec3) AABB {
	b := EmptyAABB()
	for _, p := range points {
		b = b.UnionPoint(p)
	}
	return b
}

// Returns true if no point or box has been added to this box.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Get the box enclosing both boxes.
func (b AABB) Union(b2 AABB) AABB {
	if b2.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return b2
	}
	return AABB{Min: MinVec3(b.Min, b2.Min), Max: MaxVec3(b.Max, b2.Max)}
}

// Get the box enclosing this box and p.
func (b AABB) UnionPoint(p Vec3) AABB {
	if b.IsEmpty() {
		return AABB{Min: p, Max: p}
	}
	return AABB{Min: MinVec3(b.Min, p), Max: MaxVec3(b.Max, p)}
}

// Get the box side lengths. Empty boxes have zero extent.
func (b AABB) Extent() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Get the box midpoint. Empty boxes are centered at the origin.
func (b AABB) Center() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get the box surface area.
func (b AABB) SurfaceArea() float32 {
	d := b.Extent()
	return 2 * (d[0]*d[1] + d[0]*d[2] + d[1]*d[2])
}

// Get the index of the axis with the largest extent.
func (b AABB) MaxExtentAxis() int {
	d := b.Extent()
	switch {
	case d[0] > d[1] && d[0] > d[2]:
		return 0
	case d[1] > d[2]:
		return 1
	}
	return 2
}

// Get the position of p relative to the box corners; a point at Min maps
// to (0,0,0) and a point at Max to (1,1,1). Axes with zero extent map to 0.
func (b AABB) Offset(p Vec3) Vec3 {
	o := p.Sub(b.Min)
	for axis := 0; axis < 3; axis++ {
		if b.Max[axis] > b.Min[axis] {
			o[axis] /= b.Max[axis] - b.Min[axis]
		} else {
			o[axis] = 0
		}
	}
	return o
}

// Returns true if p lies inside or on the box.
func (b AABB) Contains(p Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Slab test with precomputed ray data. The box is hit if the ray enters it
// before tMax and leaves it after tMin. Axes where the ray direction is zero
// (infinite inverse) only check that the origin lies within the slab.
func (b AABB) IntersectP(origin, invDir Vec3, dirIsNeg [3]int, tMin, tMax float32) bool {
	if b.IsEmpty() {
		return false
	}

	bounds := [2]Vec3{b.Min, b.Max}
	for axis := 0; axis < 3; axis++ {
		if math32.IsInf(invDir[axis], 0) {
			if origin[axis] < b.Min[axis] || origin[axis] > b.Max[axis] {
				return false
			}
			continue
		}

		tNear := (bounds[dirIsNeg[axis]][axis] - origin[axis]) * invDir[axis]
		tFar := (bounds[1-dirIsNeg[axis]][axis] - origin[axis]) * invDir[axis]
		tFar *= 1 + 2*gamma3

		if tNear > tMin {
			tMin = tNear
		}
		if tFar < tMax {
			tMax = tFar
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}

// Intersect a ray with the box and return the parametric distances where
// the ray enters and exits it, clipped to the ray extents.
func (b AABB) Intersect(ray Ray) (tNear, tFar float32, ok bool) {
	if b.IsEmpty() {
		return 0, 0, false
	}

	tNear, tFar = ray.TMin, ray.TMax
	for axis := 0; axis < 3; axis++ {
		if ray.Dir[axis] == 0 {
			if ray.Origin[axis] < b.Min[axis] || ray.Origin[axis] > b.Max[axis] {
				return 0, 0, false
			}
			continue
		}

		invDir := 1 / ray.Dir[axis]
		t0 := (b.Min[axis] - ray.Origin[axis]) * invDir
		t1 := (b.Max[axis] - ray.Origin[axis]) * invDir
		if t0 > t1 {
			t0, t1 = t1, t0
		}

		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
		if tNear > tFar {
			return 0, 0, false
		}
	}
	return tNear, tFar, true
}
