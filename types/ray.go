package types

import "github.com/chewxy/math32"

// A ray with origin, direction and a valid [TMin, TMax] parametric range.
// The direction does not need to be normalized; all distances are expressed
// in multiples of the direction length.
type Ray struct {
	Origin Vec3
	Dir    Vec3
	TMin   float32
	TMax   float32
}

// Create a ray that extends from origin to infinity.
func NewRay(origin, dir Vec3) Ray {
	return Ray{
		Origin: origin,
		Dir:    dir,
		TMin:   0,
		TMax:   math32.Inf(1),
	}
}

// Get the point at distance t along the ray.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Get the component-wise inverse of the ray direction. Zero components
// map to a signed infinity.
func (r Ray) InvDir() Vec3 {
	return Vec3{1 / r.Dir[0], 1 / r.Dir[1], 1 / r.Dir[2]}
}

// Get a 0/1 flag per axis that is 1 when the direction component is negative.
func (r Ray) DirIsNeg() [3]int {
	var neg [3]int
	for axis := 0; axis < 3; axis++ {
		if math32.Signbit(r.Dir[axis]) {
			neg[axis] = 1
		}
	}
	return neg
}

// Returns true if the ray has a finite non-zero direction, a finite origin
// and a non-empty parametric range.
func (r Ray) IsValid() bool {
	if !r.Origin.IsFinite() || !r.Dir.IsFinite() {
		return false
	}
	if r.Dir[0] == 0 && r.Dir[1] == 0 && r.Dir[2] == 0 {
		return false
	}
	return !math32.IsNaN(r.TMin) && !math32.IsNaN(r.TMax) && r.TMax > r.TMin
}
