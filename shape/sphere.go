package shape

import (
	"github.com/chewxy/math32"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/types"
)

// Sphere is a solid sphere.
type Sphere struct {
	Origin types.Vec3
	Radius float32
	mat    *Material
}

// Create a new sphere.
func NewSphere(origin types.Vec3, radius float32, mat *Material) *Sphere {
	return &Sphere{Origin: origin, Radius: math32.Abs(radius), mat: mat}
}

func (s *Sphere) Center() types.Vec3  { return s.Origin }
func (s *Sphere) Material() *Material { return s.mat }

func (s *Sphere) BBox() types.AABB {
	r := types.Vec3{s.Radius, s.Radius, s.Radius}
	return types.AABB{Min: s.Origin.Sub(r), Max: s.Origin.Add(r)}
}

// Intersect ray with the sphere. Rays starting inside the sphere hit its far side.
func (s *Sphere) Intersect(ray types.Ray) (accel.Hit, bool) {
	t, ok := s.intersect(ray, ray.TMax)
	if !ok {
		return accel.Hit{}, false
	}

	point := ray.At(t)
	normal := point.Sub(s.Origin).Normalize()
	phi := math32.Atan2(normal[2], normal[0])
	if phi < 0 {
		phi += 2 * math32.Pi
	}
	theta := math32.Acos(math32.Max(-1, math32.Min(1, normal[1])))
	return accel.Hit{
		T:         t,
		Point:     point,
		Normal:    normal,
		UV:        types.Vec2{phi / (2 * math32.Pi), theta / math32.Pi},
		Primitive: s,
	}, true
}

// Returns true if the ray hits the sphere closer than maxDistance.
func (s *Sphere) IntersectP(ray types.Ray, maxDistance float32) bool {
	_, ok := s.intersect(ray, maxDistance)
	return ok
}

func (s *Sphere) intersect(ray types.Ray, tMax float32) (float32, bool) {
	oc := ray.Origin.Sub(s.Origin)
	a := ray.Dir.Dot(ray.Dir)
	halfB := oc.Dot(ray.Dir)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := halfB*halfB - a*c
	if a == 0 || disc < 0 {
		return 0, false
	}
	sqrtDisc := math32.Sqrt(disc)

	t := (-halfB - sqrtDisc) / a
	if t < ray.TMin {
		t = (-halfB + sqrtDisc) / a
	}
	if t < ray.TMin || t >= tMax {
		return 0, false
	}
	return t, true
}
