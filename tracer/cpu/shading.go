package cpu

import (
	"github.com/chewxy/math32"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/shape"
	"github.com/achilleasa/polaris-bvh/tracer"
	"github.com/achilleasa/polaris-bvh/types"
)

const (
	// Fraction of the albedo that is visible without direct light.
	ambient float32 = 0.1

	// Shadow ray origins are offset along the surface normal by this
	// amount (scaled by the hit point magnitude) to avoid self hits.
	shadowBias float32 = 1e-4
)

// The albedo used for primitives without a material.
var defaultAlbedo = types.Vec3{0.7, 0.7, 0.7}

// Calculate the color for a primary ray using Lambertian shading from the
// scene point light. Surfaces that cannot see the light only receive the
// ambient term.
func (tr *cpuTracer) shade(ray types.Ray, ph accel.PacketHit, stats *tracer.Stats) types.Vec3 {
	if !ph.Found {
		return tr.sceneData.BgColor
	}

	albedo := defaultAlbedo
	if mat := shape.MaterialOf(ph.Primitive); mat != nil {
		albedo = mat.Albedo
	}

	// Use the normal facing the ray origin
	normal := ph.Normal
	if normal.Dot(ray.Dir) > 0 {
		normal = normal.Mul(-1)
	}

	toLight := tr.sceneData.LightPos.Sub(ph.Point)
	lightDist := toLight.Len()
	if lightDist == 0 {
		return albedo.Mul(ambient)
	}
	lightDir := toLight.Mul(1 / lightDist)

	cosTheta := normal.Dot(lightDir)
	if cosTheta <= 0 {
		return albedo.Mul(ambient)
	}

	bias := shadowBias * math32.Max(1, ph.Point.Abs().MaxComponent())
	shadowRay := types.NewRay(ph.Point.Add(normal.Mul(bias)), lightDir)
	stats.ShadowRays++
	if maxDist := lightDist - bias; maxDist > 0 && tr.accel.IntersectP(shadowRay, maxDist) {
		return albedo.Mul(ambient)
	}

	return albedo.Mul(ambient + (1-ambient)*cosTheta)
}

// Write a color as an RGBA8 pixel. Colors are clamped to the [0, 1] range.
func writePixel(pixel []uint8, color types.Vec3) {
	for channel := 0; channel < 3; channel++ {
		pixel[channel] = uint8(255*math32.Max(0, math32.Min(1, color[channel])) + 0.5)
	}
	pixel[3] = 255
}
