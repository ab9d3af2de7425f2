// Package renderer splits frames into blocks, renders them using a pool of
// tracers and collects frame statistics.
package renderer

import (
	"context"
	"image"
)

type Renderer interface {
	// Render frame. The returned image is owned by the renderer and is
	// overwritten by the next call to Render.
	Render(ctx context.Context) (*image.RGBA, error)

	// Apply pending camera changes and notify the tracers.
	UpdateCamera()

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
