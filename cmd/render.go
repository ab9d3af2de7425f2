package cmd

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"time"

	"github.com/achilleasa/polaris-bvh/accel/bvh"
	"github.com/achilleasa/polaris-bvh/renderer"
	"github.com/achilleasa/polaris-bvh/tracer"
	"github.com/achilleasa/polaris-bvh/tracer/cpu"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	bvhOpts, err := bvhOptions(ctx)
	if err != nil {
		return err
	}

	opts := renderer.Options{
		FrameW: uint32(ctx.Int("width")),
		FrameH: uint32(ctx.Int("height")),
	}

	sc, err := loadScene(ctx, bvhOpts)
	if err != nil {
		return err
	}

	tree, err := bvh.Build(sc.Primitives, bvhOpts)
	if err != nil {
		return err
	}
	stats := tree.Stats()
	logger.Infof("BVH information\n%s", stats.Table())

	mode := cpu.PacketMode
	if ctx.Bool("single-ray") {
		mode = cpu.SingleRayMode
	}
	numTracers := ctx.Int("tracers")
	if numTracers < 1 {
		return fmt.Errorf("expected at least one tracer; got %d", numTracers)
	}
	tracers := make([]tracer.Tracer, numTracers)
	for index := range tracers {
		tracers[index] = cpu.NewTracer(fmt.Sprintf("cpu-%d", index), mode)
	}

	r, err := renderer.NewDefault(sc, tree, tracer.PerfectScheduler(), tracers, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Noticef("rendering %dx%d frame using %d tracers (mode: %s)", opts.FrameW, opts.FrameH, numTracers, mode)
	frame, err := r.Render(renderCtx)
	if err != nil {
		return err
	}

	// Display stats
	logger.Noticef("frame statistics\n%s", r.Stats().Table())

	// Export PNG
	imgFile := ctx.String("out")
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err = png.Encode(f, frame); err != nil {
		return fmt.Errorf("error encoding png file: %w", err)
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1e6)
	return nil
}
