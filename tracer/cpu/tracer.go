// Package cpu provides a tracer that renders frame blocks on the CPU by
// querying an accelerator with primary and shadow rays.
package cpu

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/log"
	"github.com/achilleasa/polaris-bvh/scene"
	"github.com/achilleasa/polaris-bvh/tracer"
	"github.com/achilleasa/polaris-bvh/types"
)

// Mode selects how primary rays are traced.
type Mode uint8

const (
	// Trace each tile as a ray packet.
	PacketMode Mode = iota

	// Trace rays one at a time, using the previous hit as a traversal hint.
	SingleRayMode
)

func (m Mode) String() string {
	if m == SingleRayMode {
		return "single"
	}
	return "packet"
}

// Frame blocks are rendered in square tiles of this size. A full tile
// yields tileSize*tileSize primary rays which fits in a single packet.
const tileSize = 8

type cpuTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The tracer id.
	id string

	mode Mode

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateMu     sync.Mutex
	updateBuffer map[tracer.ChangeType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered block.
	stats tracer.Stats

	frameW, frameH uint32
	frameBuffer    []uint8

	// State owned by the worker goroutine.
	accel     accel.Accelerator
	sceneData *scene.Scene
	camera    *scene.Camera
}

// Create a new cpu tracer.
func NewTracer(id string, mode Mode) tracer.Tracer {
	return &cpuTracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		mode:         mode,
		updateBuffer: make(map[tracer.ChangeType]interface{}),
		blockReqChan: make(chan tracer.BlockRequest, 1),
	}
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// All cpu tracers use a single core.
func (tr *cpuTracer) SpeedEstimate() float32 {
	return 1.0
}

// Setup the tracer and start its worker.
func (tr *cpuTracer) Setup(frameW, frameH uint32, frameBuffer []uint8) error {
	tr.Lock()
	defer tr.Unlock()

	if uint64(len(frameBuffer)) != 4*uint64(frameW)*uint64(frameH) {
		return fmt.Errorf("%w: expected %d bytes for a %dx%d frame; got %d", ErrFrameBufferSize, 4*frameW*frameH, frameW, frameH, len(frameBuffer))
	}

	// Stop the worker so it does not race with the frame buffer swap
	tr.cleanup()

	tr.frameW, tr.frameH = frameW, frameH
	tr.frameBuffer = frameBuffer
	tr.startWorker()

	tr.logger.Debugf("setup %dx%d frame; tracing mode: %s", frameW, frameH, tr.mode)
	return nil
}

// Shutdown and cleanup tracer.
func (tr *cpuTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	tr.cleanup()
}

// Stop the worker. This method is meant to be called while holding tr.Lock()
func (tr *cpuTracer) cleanup() {
	if tr.closeChan != nil {
		close(tr.closeChan)
		tr.wg.Wait()
		tr.closeChan = nil
	}
}

// Enqueue block request. Requests are rejected with an error if the tracer
// is not set up or is still busy with a previous request.
func (tr *cpuTracer) Enqueue(blockReq tracer.BlockRequest) {
	tr.Lock()
	running := tr.closeChan != nil
	tr.Unlock()

	if !running {
		blockReq.ErrChan <- ErrNotSetup
		return
	}

	select {
	case tr.blockReqChan <- blockReq:
	default:
		tr.logger.Error("request processor did not receive block request")
		blockReq.ErrChan <- ErrBusy
	}
}

// Append a change to the tracer's update buffer.
func (tr *cpuTracer) AppendChange(changeType tracer.ChangeType, data interface{}) {
	tr.updateMu.Lock()
	tr.updateBuffer[changeType] = data
	tr.updateMu.Unlock()
}

// Retrieve last block statistics.
func (tr *cpuTracer) Stats() *tracer.Stats {
	return &tr.stats
}

// Commit queued changes. Changes with an invalid payload are dropped and
// the first such error is returned; all other changes are still applied.
func (tr *cpuTracer) commitUpdates() error {
	tr.updateMu.Lock()
	defer tr.updateMu.Unlock()

	var err error
	for changeType, data := range tr.updateBuffer {
		if changeErr := tr.applyChange(changeType, data); changeErr != nil && err == nil {
			err = changeErr
		}
	}

	tr.updateBuffer = make(map[tracer.ChangeType]interface{})
	return err
}

func (tr *cpuTracer) applyChange(changeType tracer.ChangeType, data interface{}) error {
	switch changeType {
	case tracer.SetAccelerator:
		ac, ok := data.(accel.Accelerator)
		if !ok {
			return fmt.Errorf("cpu tracer: unsupported payload %T for accelerator change", data)
		}
		tr.accel = ac
	case tracer.SetScene:
		sc, ok := data.(*scene.Scene)
		if !ok {
			return fmt.Errorf("cpu tracer: unsupported payload %T for scene change", data)
		}
		tr.sceneData = sc
		if tr.camera == nil {
			tr.camera = sc.Camera
		}
	case tracer.UpdateCamera:
		camera, ok := data.(*scene.Camera)
		if !ok {
			return fmt.Errorf("cpu tracer: unsupported payload %T for camera change", data)
		}
		tr.camera = camera
	default:
		return fmt.Errorf("cpu tracer: unsupported change type %d", changeType)
	}
	return nil
}

// Spawn a go-routine to process block render requests.
func (tr *cpuTracer) startWorker() {
	closeChan := make(chan struct{})
	tr.closeChan = closeChan

	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		for {
			select {
			case blockReq := <-tr.blockReqChan:
				tr.processBlock(&blockReq)
			case <-closeChan:
				return
			}
		}
	}()
}

// Apply pending changes, render block and reply with our completion status.
func (tr *cpuTracer) processBlock(blockReq *tracer.BlockRequest) {
	stats := tracer.Stats{BlockH: blockReq.BlockH}

	startTime := time.Now()
	if err := tr.commitUpdates(); err != nil {
		blockReq.ErrChan <- err
		return
	}
	stats.UpdateTime = time.Since(startTime)

	startTime = time.Now()
	if err := tr.renderBlock(blockReq, &stats); err != nil {
		blockReq.ErrChan <- err
		return
	}
	stats.RenderTime = time.Since(startTime)

	tr.stats = stats
	blockReq.DoneChan <- blockReq.BlockH
}

// Render block one tile at a time.
func (tr *cpuTracer) renderBlock(blockReq *tracer.BlockRequest, stats *tracer.Stats) error {
	if tr.accel == nil {
		return ErrNoAccelerator
	}
	if tr.sceneData == nil || tr.camera == nil {
		return ErrNoSceneData
	}

	blockEnd := blockReq.BlockY + blockReq.BlockH
	if blockEnd > tr.frameH || blockEnd < blockReq.BlockY {
		return fmt.Errorf("%w: rows [%d, %d) for frame height %d", ErrInvalidBlock, blockReq.BlockY, blockEnd, tr.frameH)
	}

	ctx := blockReq.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	invW, invH := 1.0/float32(tr.frameW), 1.0/float32(tr.frameH)
	rays := make([]types.Ray, 0, tileSize*tileSize)
	for tileY := blockReq.BlockY; tileY < blockEnd; tileY += tileSize {
		tileEndY := min(tileY+tileSize, blockEnd)
		for tileX := uint32(0); tileX < tr.frameW; tileX += tileSize {
			if err := ctx.Err(); err != nil {
				return err
			}

			tileEndX := min(tileX+tileSize, tr.frameW)

			rays = rays[:0]
			for y := tileY; y < tileEndY; y++ {
				for x := tileX; x < tileEndX; x++ {
					rays = append(rays, tr.camera.Ray((float32(x)+0.5)*invW, (float32(y)+0.5)*invH))
				}
			}

			hits := tr.traceTile(rays)
			stats.PrimaryRays += uint64(len(rays))

			rayIndex := 0
			for y := tileY; y < tileEndY; y++ {
				for x := tileX; x < tileEndX; x++ {
					color := tr.shade(rays[rayIndex], hits[rayIndex], stats)
					writePixel(tr.frameBuffer[4*(y*tr.frameW+x):], color)
					rayIndex++
				}
			}
		}
	}

	return nil
}

// Find the closest hit for each tile ray.
func (tr *cpuTracer) traceTile(rays []types.Ray) []accel.PacketHit {
	if tr.mode == PacketMode {
		return tr.accel.IntersectPacket(rays)
	}

	hits := make([]accel.PacketHit, len(rays))
	var hint uint32
	var hasHint bool
	for index, ray := range rays {
		if hasHint {
			hits[index].Hit, hits[index].Found = tr.accel.IntersectFrom(ray, hint)
		} else {
			hits[index].Hit, hits[index].Found = tr.accel.Intersect(ray)
		}

		if hits[index].Found {
			hint, hasHint = hits[index].NodeInfo, true
		}
	}
	return hits
}
