package reader

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chewxy/math32"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/accel/bvh"
	"github.com/achilleasa/polaris-bvh/log"
	"github.com/achilleasa/polaris-bvh/scene"
	"github.com/achilleasa/polaris-bvh/shape"
	"github.com/achilleasa/polaris-bvh/types"
)

// The albedo assigned to faces that do not select a material.
var defaultAlbedo = types.Vec3{0.7, 0.7, 0.7}

type wavefrontSceneReader struct {
	logger log.Logger

	// Options for building the BVH of instanced meshes.
	meshOpts bvh.Options

	meshes    []*mesh
	instances []*meshInstance
	camera    camera

	// Materials in definition order and an index by name.
	materials      []*shape.Material
	matNameToIndex map[string]int

	// Currently selected material; nil until a usemtl or the first face.
	curMaterial *shape.Material

	// List of vertices, normals and uv coords.
	vertexList []types.Vec3
	normalList []types.Vec3
	uvList     []types.Vec2

	// An error stack that provides additional error information when
	// scene files include other files (models, mat libs e.t.c)
	errStack []string
}

// Create a new wavefront scene reader.
func newWavefrontReader(meshOpts bvh.Options) *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:         log.New("wavefront reader"),
		meshOpts:       meshOpts,
		matNameToIndex: make(map[string]int),
		camera: camera{
			fov:  scene.DefaultFOV,
			look: types.Vec3{0, 0, -1},
			up:   types.Vec3{0, 1, 0},
		},
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *resource) (*scene.Scene, error) {
	r.logger.Noticef("parsing scene from %s", sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	sc := scene.NewScene()
	for _, mat := range r.materials {
		sc.AddMaterial(mat)
	}

	// If no mesh instances are defined, add the geometry of all meshes to
	// the scene as-is.
	if len(r.instances) == 0 {
		for _, m := range r.meshes {
			sc.AddPrimitives(m.primitives.Primitives()...)
		}
	} else {
		for _, inst := range r.instances {
			meshBVH, err := r.meshBVH(inst.mesh)
			if err != nil {
				return nil, r.emitError(sceneRes.Path(), 0, "could not build BVH for mesh '%s': %s", inst.mesh.name, err)
			}
			sc.AddPrimitives(shape.NewInstance(meshBVH, inst.translation, inst.rotation, inst.scale))
		}
	}

	if r.camera.defined {
		sc.Camera.FOV = r.camera.fov
		sc.Camera.Position = r.camera.eye
		sc.Camera.LookAt = r.camera.look
		sc.Camera.Up = r.camera.up
		sc.Camera.Update()
		sc.LightPos = r.camera.eye
	} else {
		sc.FrameCamera()
	}

	r.logger.Infof(
		"parsed scene in %d ms (meshes: %d, instances: %d, primitives: %d, materials: %d)",
		time.Since(start).Nanoseconds()/1e6, len(r.meshes), len(r.instances), sc.Primitives.Len(), len(sc.Materials),
	)
	return sc, nil
}

// Get the BVH for a mesh, building it on first use.
func (r *wavefrontSceneReader) meshBVH(m *mesh) (accel.Primitive, error) {
	if m.bvh == nil {
		tree, err := bvh.Build(m.primitives, r.meshOpts)
		if err != nil {
			return nil, err
		}
		m.bvh = tree
	}
	return m.bvh, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	}

	return errors.New(errMsg)
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Create and select a default material for surfaces not using one.
func (r *wavefrontSceneReader) defaultMaterial() *shape.Material {
	matIndex, exists := r.matNameToIndex[""]
	if !exists {
		r.materials = append(r.materials, &shape.Material{Albedo: defaultAlbedo})
		matIndex = len(r.materials) - 1
		r.matNameToIndex[""] = matIndex
	}
	return r.materials[matIndex]
}

// Get the mesh that receives new faces. If no object has been defined a
// default one is created.
func (r *wavefrontSceneReader) currentMesh() *mesh {
	if len(r.meshes) == 0 {
		r.meshes = append(r.meshes, newMesh("default"))
	}
	return r.meshes[len(r.meshes)-1]
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *resource) error {
	var lineNum int
	var err error

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call", "mtllib":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for '%s'; expected 1 argument; got %d", lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := newResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}

			switch lineTokens[0] {
			case "call":
				err = r.parse(incRes)
			case "mtllib":
				err = r.parseMaterials(incRes)
			}
			incRes.Close()

			if err != nil {
				return err
			}
			r.popFrame()
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'usemtl'; expected 1 argument; got %d", len(lineTokens)-1)
			}

			matIndex, exists := r.matNameToIndex[lineTokens[1]]
			if !exists {
				return r.emitError(res.Path(), lineNum, "undefined material with name '%s'", lineTokens[1])
			}
			r.curMaterial = r.materials[matIndex]
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.normalList = append(r.normalList, v)
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.uvList = append(r.uvList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for '%s'; expected 1 argument for object name; got %d", lineTokens[0], len(lineTokens)-1)
			}

			r.meshes = append(r.meshes, newMesh(lineTokens[1]))
		case "f":
			prims, err := r.parseFace(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.currentMesh().primitives.Add(prims...)
		case "camera_fov":
			r.camera.fov, err = parseFloat32(lineTokens)
			if err == nil && (r.camera.fov <= 0 || r.camera.fov >= 180) {
				err = fmt.Errorf("camera fov must be in the (0, 180) range; got %f", r.camera.fov)
			}
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.camera.defined = true
		case "camera_eye", "camera_look", "camera_up":
			var target *types.Vec3
			switch lineTokens[0] {
			case "camera_eye":
				target = &r.camera.eye
			case "camera_look":
				target = &r.camera.look
			case "camera_up":
				target = &r.camera.up
			}

			*target, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.camera.defined = true
		case "instance":
			instance, err := r.parseMeshInstance(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.instances = append(r.instances, instance)
		case "s", "l", "p":
			// Smoothing groups, lines and points do not produce geometry
		default:
			r.logger.Debugf("[%s: %d] ignoring unsupported directive '%s'", res.Path(), lineNum, lineTokens[0])
		}
	}

	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err)
	}
	return nil
}

// Parse mesh instance definition. Definitions use the following format:
// instance mesh_name tX tY tZ yaw pitch roll sX sY sZ
// where:
// - tX, tY, tZ       : translation vector
// - yaw, pitch, roll : rotation angles in degrees around the Y, X and Z axis
// - sX, sY, sZ       : scale
func (r *wavefrontSceneReader) parseMeshInstance(lineTokens []string) (*meshInstance, error) {
	if len(lineTokens) != 11 {
		return nil, fmt.Errorf("unsupported syntax for 'instance'; expected 10 arguments: mesh_name tX tY tZ yaw pitch roll sX sY sZ; got %d", len(lineTokens)-1)
	}

	meshName := lineTokens[1]
	var target *mesh
	for _, m := range r.meshes {
		if m.name == meshName {
			target = m
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("unknown mesh with name '%s'", meshName)
	}

	var args [9]float32
	for index := range args {
		v, err := strconv.ParseFloat(lineTokens[index+2], 32)
		if err != nil {
			return nil, err
		}
		args[index] = float32(v)
	}

	scale := types.Vec3{args[6], args[7], args[8]}
	if scale[0] == 0 || scale[1] == 0 || scale[2] == 0 {
		return nil, fmt.Errorf("instance scale components must be non-zero; got %v", scale)
	}

	toRad := math32.Pi / 180
	yawQuat := types.QuatFromAxisAngle(types.Vec3{0, 1, 0}, args[3]*toRad)
	pitchQuat := types.QuatFromAxisAngle(types.Vec3{1, 0, 0}, args[4]*toRad)
	rollQuat := types.QuatFromAxisAngle(types.Vec3{0, 0, 1}, args[5]*toRad)

	return &meshInstance{
		mesh:        target,
		translation: types.Vec3{args[0], args[1], args[2]},
		rotation:    rollQuat.Mul(pitchQuat.Mul(yawQuat)).Normalize(),
		scale:       scale,
	}, nil
}

// Parse face definition. Each face definition consists of at least 3
// arguments, one for each vertex. Each one of the vertex arguments is
// comprised of 1, 2 or 3 args separated by a slash character. The following
// formats are supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate an offset off the end
// of the vertex list. Faces with more than 3 vertices are split into a
// triangle fan. Only vertex coordinates are used by the generated triangles;
// uv and normal indices are validated and otherwise ignored.
func (r *wavefrontSceneReader) parseFace(lineTokens []string) ([]accel.Primitive, error) {
	if len(lineTokens) < 4 {
		return nil, fmt.Errorf("unsupported syntax for 'f'; expected at least 3 arguments; got %d", len(lineTokens)-1)
	}

	numVertices := len(lineTokens) - 1
	vertices := make([]types.Vec3, numVertices)
	expIndices := 0
	for arg := 0; arg < numVertices; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return nil, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}
		if len(vTokens) > 3 {
			return nil, fmt.Errorf("face argument %d contains %d indices; expected at most 3", arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return nil, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList))
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]

		if len(vTokens) > 1 && vTokens[1] != "" {
			if _, err = selectFaceCoordIndex(vTokens[1], len(r.uvList)); err != nil {
				return nil, fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}
		if len(vTokens) > 2 && vTokens[2] != "" {
			if _, err = selectFaceCoordIndex(vTokens[2], len(r.normalList)); err != nil {
				return nil, fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
		}
	}

	// If no material defined select the default
	if r.curMaterial == nil {
		r.curMaterial = r.defaultMaterial()
	}

	prims := make([]accel.Primitive, 0, numVertices-2)
	for index := 1; index < numVertices-1; index++ {
		prims = append(prims, shape.NewTriangle(vertices[0], vertices[index], vertices[index+1], r.curMaterial))
	}
	return prims, nil
}

// Parse a wavefront material library. Only the diffuse color is used; other
// material parameters are skipped.
func (r *wavefrontSceneReader) parseMaterials(res *resource) error {
	var lineNum int
	var curMaterial *shape.Material

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "newmtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'newmtl'; expected 1 argument; got %d", len(lineTokens)-1)
			}

			matName := lineTokens[1]
			if _, exists := r.matNameToIndex[matName]; exists {
				return r.emitError(res.Path(), lineNum, "material '%s' already defined", matName)
			}

			curMaterial = &shape.Material{Albedo: defaultAlbedo}
			r.materials = append(r.materials, curMaterial)
			r.matNameToIndex[matName] = len(r.materials) - 1
		default:
			if curMaterial == nil {
				return r.emitError(res.Path(), lineNum, "got '%s' without a 'newmtl'", lineTokens[0])
			}

			if lineTokens[0] == "Kd" {
				kd, err := parseVec3(lineTokens)
				if err != nil {
					return r.emitError(res.Path(), lineNum, "%s", err)
				}
				curMaterial.Albedo = kd
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err)
	}
	return nil
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = int(index - 1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, errors.New("index out of bounds")
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf("unsupported syntax for '%s'; expected 1 argument; got %d", lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf("unsupported syntax for '%s'; expected 2 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
