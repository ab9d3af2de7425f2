// Package accel defines the contract between ray intersection accelerators
// and the primitives they index.
package accel

import "github.com/achilleasa/polaris-bvh/types"

// Hit describes a ray-primitive intersection.
type Hit struct {
	// Parametric distance along the ray.
	T float32

	// World-space intersection point and surface normal.
	Point  types.Vec3
	Normal types.Vec3

	// Surface parametric coordinates.
	UV types.Vec2

	// The primitive that was hit.
	Primitive Primitive

	// An opaque accelerator-specific id of the structure element that
	// yielded this hit. It can be passed back to Accelerator.IntersectFrom.
	NodeInfo uint32
}

// The Primitive interface is implemented by all objects that can be indexed
// by an accelerator.
type Primitive interface {
	// Get the primitive bounding box.
	BBox() types.AABB

	// Get the primitive centroid.
	Center() types.Vec3

	// Intersect ray with the primitive. Implementations must only report
	// hits with ray.TMin <= t < ray.TMax.
	Intersect(ray types.Ray) (Hit, bool)

	// Returns true if the ray hits the primitive at a distance
	// ray.TMin <= t < maxDistance.
	IntersectP(ray types.Ray, maxDistance float32) bool
}

// PacketHit is the per-ray result of a packet query.
type PacketHit struct {
	Hit
	Found bool
}

// The Accelerator interface is implemented by all structures that answer
// ray queries over a set of primitives. All methods are safe for concurrent
// use once the accelerator has been built.
type Accelerator interface {
	// Find the closest intersection along the ray.
	Intersect(ray types.Ray) (Hit, bool)

	// Find the closest intersection along the ray using the NodeInfo of a
	// previous hit as a traversal hint. The result is always identical to
	// calling Intersect.
	IntersectFrom(ray types.Ray, nodeInfo uint32) (Hit, bool)

	// Returns true if anything is hit closer than maxDistance.
	IntersectP(ray types.Ray, maxDistance float32) bool

	// Find the closest intersection for a batch of coherent rays.
	IntersectPacket(rays []types.Ray) []PacketHit
}
