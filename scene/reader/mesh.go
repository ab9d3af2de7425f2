package reader

import (
	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/types"
)

// A named group of triangles. Meshes are either added to the scene as-is or,
// when referenced by an instance directive, indexed by their own BVH and
// shared between instances.
type mesh struct {
	name       string
	primitives *accel.List

	// Lazily built accelerator shared by all instances of this mesh.
	bvh accel.Primitive
}

// An instance places a mesh in the world.
type meshInstance struct {
	mesh *mesh

	translation types.Vec3
	rotation    types.Quat
	scale       types.Vec3
}

// Camera settings parsed from the scene file.
type camera struct {
	defined bool

	fov  float32
	eye  types.Vec3
	look types.Vec3
	up   types.Vec3
}

func newMesh(name string) *mesh {
	return &mesh{
		name:       name,
		primitives: accel.NewList(),
	}
}
