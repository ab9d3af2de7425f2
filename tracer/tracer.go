// Package tracer defines the interface between the renderer and the tracers
// that render blocks of frame rows, plus the schedulers that split a frame
// between tracers.
package tracer

import (
	"context"
	"time"
)

type ChangeType uint8

const (
	// Payload: accel.Accelerator
	SetAccelerator ChangeType = iota
	// Payload: *scene.Scene
	SetScene
	// Payload: *scene.Camera
	UpdateCamera
)

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Tracers check the context for cancellation between tiles.
	Ctx context.Context

	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics for the last rendered block.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for applying pending changes and rendering the block.
	UpdateTime time.Duration
	RenderTime time.Duration

	// Number of traced camera and shadow rays.
	PrimaryRays uint64
	ShadowRays  uint64
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Get the tracers computation speed estimate compared to a
	// baseline (single core) implementation.
	SpeedEstimate() float32

	// Setup the tracer. The tracer writes RGBA pixels for its assigned
	// blocks to the supplied frame buffer.
	Setup(frameW, frameH uint32, frameBuffer []uint8) error

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Append a change to the tracer's update buffer. Pending changes are
	// applied before the next block is rendered.
	AppendChange(ChangeType, interface{})

	// Retrieve last block statistics.
	Stats() *Stats
}
