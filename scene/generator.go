package scene

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/chewxy/math32"

	"github.com/achilleasa/polaris-bvh/shape"
	"github.com/achilleasa/polaris-bvh/types"
)

// A generator populates a scene with count primitives using rng as its
// source of randomness.
type Generator func(rng *rand.Rand, count int) *Scene

var generators = map[string]Generator{
	"cubes": func(_ *rand.Rand, count int) *Scene {
		return CubeRow(count, 10, 1, &shape.Material{Albedo: types.Vec3{0.8, 0.3, 0.3}})
	},
	"triangles": func(rng *rand.Rand, count int) *Scene {
		return RandomTriangles(rng, count, 20, 1)
	},
	"grid": func(_ *rand.Rand, count int) *Scene {
		side := int(math32.Ceil(math32.Sqrt(float32(count))))
		return Grid(side, side, 2.5, 1)
	},
}

// Get the names of the available scene generators.
func GeneratorNames() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate a scene using the named generator and frame the camera so the
// entire scene is visible.
func Generate(name string, count int, seed int64) (*Scene, error) {
	gen, exists := generators[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, name)
	}

	sc := gen(rand.New(rand.NewSource(seed)), count)
	sc.FrameCamera()
	return sc, nil
}

// Generate a row of count cubes with side length side. The cubes are
// centered on the X axis, spacing units apart, and the row is centered at
// the origin.
func CubeRow(count int, spacing, side float32, mat *shape.Material) *Scene {
	sc := NewScene()
	offset := -0.5 * spacing * float32(count-1)
	for index := 0; index < count; index++ {
		center := types.Vec3{offset + float32(index)*spacing, 0, 0}
		sc.AddPrimitives(shape.NewCube(center, side, mat))
	}
	return sc
}

// Generate count equilateral triangles with edge length size. Each triangle
// is rotated by a random quaternion and translated to a random point inside
// the [-extent, extent] cube.
func RandomTriangles(rng *rand.Rand, count int, extent, size float32) *Scene {
	palette := []*shape.Material{
		{Albedo: types.Vec3{0.9, 0.4, 0.3}},
		{Albedo: types.Vec3{0.3, 0.8, 0.4}},
		{Albedo: types.Vec3{0.3, 0.4, 0.9}},
		{Albedo: types.Vec3{0.9, 0.9, 0.8}},
	}

	// Unit triangle in the XY plane centered at the origin.
	h := size * math32.Sqrt(3) / 2
	template := [3]types.Vec3{
		{-size / 2, -h / 3, 0},
		{size / 2, -h / 3, 0},
		{0, 2 * h / 3, 0},
	}

	sc := NewScene()
	for index := 0; index < count; index++ {
		axis := types.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
		if axis.Len() < 1e-3 {
			axis = types.Vec3{0, 1, 0}
		}
		rot := types.QuatFromAxisAngle(axis, rng.Float32()*2*math32.Pi)
		pos := types.Vec3{
			(rng.Float32()*2 - 1) * extent,
			(rng.Float32()*2 - 1) * extent,
			(rng.Float32()*2 - 1) * extent,
		}

		sc.AddPrimitives(shape.NewTriangle(
			rot.Rotate(template[0]).Add(pos),
			rot.Rotate(template[1]).Add(pos),
			rot.Rotate(template[2]).Add(pos),
			palette[index%len(palette)],
		))
	}
	return sc
}

// Generate a rows x cols grid of spheres resting on a ground slab.
func Grid(rows, cols int, spacing, radius float32) *Scene {
	sc := NewScene()
	ground := &shape.Material{Albedo: types.Vec3{0.6, 0.6, 0.6}}
	sphereMat := &shape.Material{Albedo: types.Vec3{0.2, 0.5, 0.8}}

	halfW := 0.5 * spacing * float32(cols)
	halfD := 0.5 * spacing * float32(rows)
	sc.AddPrimitives(shape.NewBox(
		types.Vec3{-halfW, -radius - 0.5, -halfD},
		types.Vec3{halfW, -radius, halfD},
		ground,
	))

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			center := types.Vec3{
				-halfW + spacing*(float32(col)+0.5),
				0,
				-halfD + spacing*(float32(row)+0.5),
			}
			sc.AddPrimitives(shape.NewSphere(center, radius, sphereMat))
		}
	}
	return sc
}
