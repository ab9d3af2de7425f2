package accel

import "github.com/achilleasa/polaris-bvh/types"

// Linear is a brute-force accelerator that tests every ray against every
// primitive. It serves as a reference when validating other accelerators.
type Linear struct {
	prims []Primitive
}

// Create a linear accelerator over the contents of a container.
func NewLinear(c Container) *Linear {
	src := c.Primitives()
	prims := make([]Primitive, len(src))
	copy(prims, src)
	return &Linear{prims: prims}
}

// Find the closest intersection along the ray. The returned NodeInfo is the
// index of the hit primitive.
func (l *Linear) Intersect(ray types.Ray) (Hit, bool) {
	var closest Hit
	found := false
	if !ray.IsValid() {
		return closest, false
	}

	for index, prim := range l.prims {
		if hit, ok := prim.Intersect(ray); ok {
			closest = hit
			closest.NodeInfo = uint32(index)
			ray.TMax = hit.T
			found = true
		}
	}
	return closest, found
}

// Find the closest intersection along the ray. The hint is ignored.
func (l *Linear) IntersectFrom(ray types.Ray, _ uint32) (Hit, bool) {
	return l.Intersect(ray)
}

// Returns true if any primitive is hit closer than maxDistance.
func (l *Linear) IntersectP(ray types.Ray, maxDistance float32) bool {
	if !ray.IsValid() || !(maxDistance > 0) {
		return false
	}

	for _, prim := range l.prims {
		if prim.IntersectP(ray, maxDistance) {
			return true
		}
	}
	return false
}

// Intersect each ray independently.
func (l *Linear) IntersectPacket(rays []types.Ray) []PacketHit {
	out := make([]PacketHit, len(rays))
	for index, ray := range rays {
		out[index].Hit, out[index].Found = l.Intersect(ray)
	}
	return out
}
