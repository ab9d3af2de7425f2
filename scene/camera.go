package scene

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/achilleasa/polaris-bvh/types"
)

// Stores the ray directions at the four corners of the camera frustrum in
// top-left, top-right, bottom-left, bottom-right order. Per pixel rays are
// generated by interpolating the corner rays.
type Frustrum [4]types.Vec3

func (fr Frustrum) String() string {
	return fmt.Sprintf(
		"Frustrum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr[0][0], fr[0][1], fr[0][2],
		fr[1][0], fr[1][1], fr[1][2],
		fr[2][0], fr[2][1], fr[2][2],
		fr[3][0], fr[3][1], fr[3][2],
	)
}

// The camera type controls the scene camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Rotation angles (in radians) applied to the view direction by Update.
	Pitch float32
	Yaw   float32

	// Vertical field of view in degrees.
	FOV float32

	Frustrum Frustrum

	aspect float32
}

// Create a camera at the origin looking down the -Z axis.
func NewCamera(fov float32) *Camera {
	return &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
		aspect:   1,
	}
}

// Setup the camera aspect ratio and update the frustrum.
func (c *Camera) SetupProjection(aspect float32) {
	c.aspect = aspect
	c.Update()
}

// Apply pending pitch/yaw rotations and update the frustrum corner rays.
func (c *Camera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()
	if c.Pitch != 0 || c.Yaw != 0 {
		pitchAxis := dir.Cross(c.Up)
		pitchQuat := types.QuatFromAxisAngle(pitchAxis, c.Pitch)
		yawQuat := types.QuatFromAxisAngle(c.Up, c.Yaw)

		orientQuat := pitchQuat.Mul(yawQuat).Normalize()
		dir = orientQuat.Rotate(dir)
		c.LookAt = c.Position.Add(dir)
		c.Pitch, c.Yaw = 0, 0
	}

	c.updateFrustrum(dir)
}

// Generate the primary ray for a point on the image plane. Both sx and sy
// are in the [0, 1] range with (0, 0) mapping to the top-left corner.
func (c *Camera) Ray(sx, sy float32) types.Ray {
	top := c.Frustrum[0].Add(c.Frustrum[1].Sub(c.Frustrum[0]).Mul(sx))
	bottom := c.Frustrum[2].Add(c.Frustrum[3].Sub(c.Frustrum[2]).Mul(sx))
	dir := top.Add(bottom.Sub(top).Mul(sy))
	return types.NewRay(c.Position, dir.Normalize())
}

// Build an orthonormal basis from the view direction and calculate the ray
// direction for each frustrum corner at unit distance from the eye.
func (c *Camera) updateFrustrum(dir types.Vec3) {
	right := dir.Cross(c.Up).Normalize()
	up := right.Cross(dir)

	halfHeight := math32.Tan(c.FOV * math32.Pi / 360)
	halfWidth := c.aspect * halfHeight

	r := right.Mul(halfWidth)
	u := up.Mul(halfHeight)
	c.Frustrum[0] = dir.Sub(r).Add(u)
	c.Frustrum[1] = dir.Add(r).Add(u)
	c.Frustrum[2] = dir.Sub(r).Sub(u)
	c.Frustrum[3] = dir.Add(r).Sub(u)
}
