package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/log"
	"github.com/achilleasa/polaris-bvh/scene"
	"github.com/achilleasa/polaris-bvh/tracer"
)

// The default renderer splits each frame into horizontal blocks, one per
// tracer, and waits for all tracers to finish.
type defaultRenderer struct {
	logger log.Logger

	scene     *scene.Scene
	tracers   []tracer.Tracer
	scheduler tracer.BlockScheduler
	options   Options

	// The tracers write directly to the frame pixels.
	frame *image.RGBA

	// Block assignments for the last rendered frame.
	blockAssignments []uint32

	stats FrameStats
}

// Create a new default renderer for a scene using the specified block
// scheduler and tracers. The renderer takes ownership of the tracers and
// closes them when it is closed.
func NewDefault(sc *scene.Scene, ac accel.Accelerator, scheduler tracer.BlockScheduler, tracers []tracer.Tracer, opts Options) (Renderer, error) {
	switch {
	case sc == nil:
		return nil, ErrSceneNotDefined
	case sc.Camera == nil:
		return nil, ErrCameraNotDefined
	case ac == nil:
		return nil, ErrAcceleratorNotDefined
	case len(tracers) == 0:
		return nil, ErrNoTracers
	case opts.FrameW == 0 || opts.FrameH == 0:
		return nil, ErrInvalidFrameDimensions
	}

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		scene:     sc,
		tracers:   tracers,
		scheduler: scheduler,
		options:   opts,
		frame:     image.NewRGBA(image.Rect(0, 0, int(opts.FrameW), int(opts.FrameH))),
	}

	sc.Camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))

	for _, tr := range tracers {
		if err := tr.Setup(opts.FrameW, opts.FrameH, r.frame.Pix); err != nil {
			r.Close()
			return nil, fmt.Errorf("renderer: could not setup tracer %s: %w", tr.Id(), err)
		}
		tr.AppendChange(tracer.SetAccelerator, ac)
		tr.AppendChange(tracer.SetScene, sc)
		tr.AppendChange(tracer.UpdateCamera, sc.Camera)
		r.logger.Infof("attached tracer %s", tr.Id())
	}

	return r, nil
}

// Render frame. If ctx is cancelled the tracers abandon their blocks at the
// next tile boundary and ErrInterrupted is returned.
func (r *defaultRenderer) Render(ctx context.Context) (*image.RGBA, error) {
	start := time.Now()
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	doneChan := make(chan uint32, len(r.tracers))
	errChan := make(chan error, len(r.tracers))

	pending := 0
	var blockY uint32
	for idx, tr := range r.tracers {
		blockH := r.blockAssignments[idx]
		if blockH == 0 {
			continue
		}

		tr.Enqueue(tracer.BlockRequest{
			Ctx:      ctx,
			BlockY:   blockY,
			BlockH:   blockH,
			DoneChan: doneChan,
			ErrChan:  errChan,
		})
		blockY += blockH
		pending++
	}

	// Wait for all tracers so no block is still being written when we return
	var renderErr error
	for ; pending > 0; pending-- {
		select {
		case <-doneChan:
		case err := <-errChan:
			if renderErr == nil {
				renderErr = err
			}
		}
	}

	if renderErr != nil {
		if errors.Is(renderErr, context.Canceled) || errors.Is(renderErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrInterrupted, renderErr)
		}
		return nil, renderErr
	}

	r.updateStats(time.Since(start))
	r.logger.Debugf("rendered frame in %d ms", r.stats.RenderTime.Nanoseconds()/1e6)
	return r.frame, nil
}

// Apply pending camera changes and notify the tracers.
func (r *defaultRenderer) UpdateCamera() {
	r.scene.Camera.Update()
	for _, tr := range r.tracers {
		tr.AppendChange(tracer.UpdateCamera, r.scene.Camera)
	}
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

func (r *defaultRenderer) updateStats(renderTime time.Duration) {
	r.stats = FrameStats{
		Tracers:    make([]TracerStat, len(r.tracers)),
		RenderTime: renderTime,
	}

	for idx, tr := range r.tracers {
		blockH := r.blockAssignments[idx]
		stat := TracerStat{
			Id:           tr.Id(),
			BlockH:       blockH,
			FramePercent: 100 * float32(blockH) / float32(r.options.FrameH),
		}
		if blockH != 0 {
			trStats := tr.Stats()
			stat.RenderTime = trStats.RenderTime
			stat.PrimaryRays = trStats.PrimaryRays
			stat.ShadowRays = trStats.ShadowRays
		}
		r.stats.Tracers[idx] = stat
	}
}
