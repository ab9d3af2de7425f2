package shape

import (
	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/types"
)

// Instance places a shared primitive (typically a BVH over a mesh) in the
// world using a scale, rotation and translation. Rays are transformed into
// the primitive's object space so the wrapped primitive is never copied.
type Instance struct {
	prim accel.Primitive

	translation types.Vec3
	rotation    types.Quat
	invRotation types.Quat
	scale       types.Vec3
	invScale    types.Vec3

	bbox types.AABB
}

// Create a new instance. The transformation is applied in scale, rotate,
// translate order. All scale components must be non-zero.
func NewInstance(prim accel.Primitive, translation types.Vec3, rotation types.Quat, scale types.Vec3) *Instance {
	rotation = rotation.Normalize()
	inst := &Instance{
		prim:        prim,
		translation: translation,
		rotation:    rotation,
		invRotation: rotation.Conjugate(),
		scale:       scale,
		invScale:    types.Vec3{1 / scale[0], 1 / scale[1], 1 / scale[2]},
		bbox:        types.EmptyAABB(),
	}

	objBBox := prim.BBox()
	if !objBBox.IsEmpty() {
		corners := [2]types.Vec3{objBBox.Min, objBBox.Max}
		for corner := 0; corner < 8; corner++ {
			p := types.Vec3{corners[corner&1][0], corners[(corner>>1)&1][1], corners[(corner>>2)&1][2]}
			inst.bbox = inst.bbox.UnionPoint(inst.toWorld(p))
		}
	}
	return inst
}

func (inst *Instance) BBox() types.AABB   { return inst.bbox }
func (inst *Instance) Center() types.Vec3 { return inst.bbox.Center() }

// Get the wrapped primitive.
func (inst *Instance) Primitive() accel.Primitive {
	return inst.prim
}

// Intersect ray with the wrapped primitive. The returned hit references the
// primitive that was hit inside the instance; its point and normal are
// expressed in world space.
func (inst *Instance) Intersect(ray types.Ray) (accel.Hit, bool) {
	hit, found := inst.prim.Intersect(inst.toObject(ray))
	if !found {
		return accel.Hit{}, false
	}

	hit.Point = ray.At(hit.T)
	hit.Normal = inst.rotation.Rotate(hit.Normal.MulVec(inst.invScale)).Normalize()
	return hit, true
}

// Returns true if the ray hits the wrapped primitive closer than maxDistance.
func (inst *Instance) IntersectP(ray types.Ray, maxDistance float32) bool {
	return inst.prim.IntersectP(inst.toObject(ray), maxDistance)
}

// Transform a world space ray to object space. The direction is not
// normalized so hit distances are the same in both spaces.
func (inst *Instance) toObject(ray types.Ray) types.Ray {
	ray.Origin = inst.invRotation.Rotate(ray.Origin.Sub(inst.translation)).MulVec(inst.invScale)
	ray.Dir = inst.invRotation.Rotate(ray.Dir).MulVec(inst.invScale)
	return ray
}

func (inst *Instance) toWorld(p types.Vec3) types.Vec3 {
	return inst.rotation.Rotate(p.MulVec(inst.scale)).Add(inst.translation)
}
