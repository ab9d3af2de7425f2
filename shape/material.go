// Package shape provides the primitives indexed by the accelerators: boxes,
// triangles and spheres.
package shape

import (
	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/types"
)

// Material holds the surface properties used when shading a primitive.
type Material struct {
	Albedo types.Vec3
}

// The Surface interface is implemented by primitives that carry a material.
type Surface interface {
	Material() *Material
}

// Get the material of a primitive. It returns nil if the primitive does not
// carry one; callers decide how to shade such surfaces.
func MaterialOf(prim accel.Primitive) *Material {
	if s, ok := prim.(Surface); ok {
		return s.Material()
	}
	return nil
}
