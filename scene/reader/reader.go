// Package reader loads scenes from Wavefront OBJ files. Files may be read
// from disk or streamed over http/https; included files and material
// libraries are resolved relative to the file that references them.
package reader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/achilleasa/polaris-bvh/accel/bvh"
	"github.com/achilleasa/polaris-bvh/scene"
)

var ErrUnsupportedFormat = errors.New("reader: unsupported scene format")

// Read a scene from a local file or URL. The reader is selected based on the
// file extension. Meshes referenced by instance directives are indexed by a
// per-mesh BVH built with meshOpts.
func ReadScene(path string, meshOpts bvh.Options) (*scene.Scene, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	res, err := newResource(path, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return newWavefrontReader(meshOpts).Read(res)
}
