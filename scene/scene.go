// Package scene contains the scene description that is handed to the
// renderer together with a set of procedural scene generators.
package scene

import (
	"github.com/chewxy/math32"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/shape"
	"github.com/achilleasa/polaris-bvh/types"
)

// The default camera vertical field of view in degrees.
const DefaultFOV float32 = 45

type Scene struct {
	Camera *Camera

	// Scene geometry.
	Primitives *accel.List

	// Materials referenced by the scene primitives.
	Materials []*shape.Material

	// Position of a point light used for shading.
	LightPos types.Vec3

	BgColor types.Vec3
}

func NewScene() *Scene {
	return &Scene{
		Camera:     NewCamera(DefaultFOV),
		Primitives: accel.NewList(),
		Materials:  make([]*shape.Material, 0),
		BgColor:    types.Vec3{0.1, 0.1, 0.1},
	}
}

// Add a material to the scene unless it is already registered.
func (s *Scene) AddMaterial(material *shape.Material) {
	if material == nil {
		return
	}
	for _, mat := range s.Materials {
		if mat == material {
			return
		}
	}
	s.Materials = append(s.Materials, material)
}

// Add primitives to the scene and register their materials.
func (s *Scene) AddPrimitives(prims ...accel.Primitive) {
	for _, prim := range prims {
		s.AddMaterial(shape.MaterialOf(prim))
	}
	s.Primitives.Add(prims...)
}

// Point the camera at the scene from a position in front of the scene bbox
// along the +Z axis and place the light above the camera.
func (s *Scene) FrameCamera() {
	bbox := s.Primitives.BBox()
	if bbox.IsEmpty() {
		return
	}

	center := bbox.Center()
	radius := bbox.Extent().Len() * 0.5
	distance := radius / math32.Sin(s.Camera.FOV*math32.Pi/360)

	s.Camera.LookAt = center
	s.Camera.Position = center.Add(types.Vec3{0, 0, distance})
	s.Camera.Up = types.Vec3{0, 1, 0}
	s.Camera.Update()
	s.LightPos = s.Camera.Position.Add(types.Vec3{0, radius, 0})
}
