package shape

import (
	"github.com/chewxy/math32"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/types"
)

// Determinants smaller than this value are treated as parallel rays.
const triangleEpsilon float32 = 1e-9

// Triangle is a two-sided triangle. The reported normal always faces the
// incoming ray.
type Triangle struct {
	Vertices [3]types.Vec3

	edge1, edge2 types.Vec3
	normal       types.Vec3
	bbox         types.AABB
	mat          *Material
}

// Create a new triangle.
func NewTriangle(v0, v1, v2 types.Vec3, mat *Material) *Triangle {
	tri := &Triangle{
		Vertices: [3]types.Vec3{v0, v1, v2},
		edge1:    v1.Sub(v0),
		edge2:    v2.Sub(v0),
		bbox:     types.AABBFromPoints(v0, v1, v2),
		mat:      mat,
	}
	tri.normal = tri.edge1.Cross(tri.edge2).Normalize()
	return tri
}

func (t *Triangle) BBox() types.AABB    { return t.bbox }
func (t *Triangle) Material() *Material { return t.mat }

// Get the triangle centroid (the center of its bounding box).
func (t *Triangle) Center() types.Vec3 {
	return t.bbox.Center()
}

// Intersect ray with the triangle using the Möller-Trumbore algorithm.
// Degenerate triangles are never hit.
func (t *Triangle) Intersect(ray types.Ray) (accel.Hit, bool) {
	dist, u, v, ok := t.intersect(ray, ray.TMax)
	if !ok {
		return accel.Hit{}, false
	}

	normal := t.normal
	if normal.Dot(ray.Dir) > 0 {
		normal = normal.Mul(-1)
	}
	return accel.Hit{
		T:         dist,
		Point:     ray.At(dist),
		Normal:    normal,
		UV:        types.Vec2{u, v},
		Primitive: t,
	}, true
}

// Returns true if the ray hits the triangle closer than maxDistance.
func (t *Triangle) IntersectP(ray types.Ray, maxDistance float32) bool {
	_, _, _, ok := t.intersect(ray, maxDistance)
	return ok
}

func (t *Triangle) intersect(ray types.Ray, tMax float32) (dist, u, v float32, ok bool) {
	pvec := ray.Dir.Cross(t.edge2)
	det := t.edge1.Dot(pvec)
	if math32.Abs(det) < triangleEpsilon {
		return 0, 0, 0, false
	}
	invDet := 1 / det

	tvec := ray.Origin.Sub(t.Vertices[0])
	u = tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	qvec := tvec.Cross(t.edge1)
	v = ray.Dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	dist = t.edge2.Dot(qvec) * invDet
	if dist < ray.TMin || dist >= tMax {
		return 0, 0, 0, false
	}
	return dist, u, v, true
}
