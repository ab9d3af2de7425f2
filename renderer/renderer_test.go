package renderer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/accel/bvh"
	"github.com/achilleasa/polaris-bvh/scene"
	"github.com/achilleasa/polaris-bvh/tracer"
	"github.com/achilleasa/polaris-bvh/tracer/cpu"
)

func TestNewDefaultErrors(t *testing.T) {
	sc := scene.CubeRow(3, 2, 1, nil)
	ac := accel.NewLinear(sc.Primitives)
	tracers := []tracer.Tracer{cpu.NewTracer("cpu-0", cpu.PacketMode)}
	opts := Options{FrameW: 8, FrameH: 8}

	noCamera := scene.NewScene()
	noCamera.Camera = nil

	specs := []struct {
		sc      *scene.Scene
		ac      accel.Accelerator
		tracers []tracer.Tracer
		opts    Options
		expErr  error
	}{
		{nil, ac, tracers, opts, ErrSceneNotDefined},
		{noCamera, ac, tracers, opts, ErrCameraNotDefined},
		{sc, nil, tracers, opts, ErrAcceleratorNotDefined},
		{sc, ac, nil, opts, ErrNoTracers},
		{sc, ac, tracers, Options{FrameW: 8}, ErrInvalidFrameDimensions},
	}

	for index, s := range specs {
		_, err := NewDefault(s.sc, s.ac, tracer.NaiveScheduler(), s.tracers, s.opts)
		if !errors.Is(err, s.expErr) {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
	}
}

func TestRenderFrame(t *testing.T) {
	sc, err := scene.Generate("grid", 9, 1)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := bvh.Build(sc.Primitives, bvh.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	tracers := []tracer.Tracer{
		cpu.NewTracer("cpu-0", cpu.PacketMode),
		cpu.NewTracer("cpu-1", cpu.SingleRayMode),
		cpu.NewTracer("cpu-2", cpu.PacketMode),
	}
	opts := Options{FrameW: 32, FrameH: 20}
	r, err := NewDefault(sc, tree, tracer.PerfectScheduler(), tracers, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	// Render a few frames so the perfect scheduler uses timing feedback
	for frame := 0; frame < 3; frame++ {
		img, err := r.Render(context.Background())
		if err != nil {
			t.Fatalf("[frame %d] %v", frame, err)
		}

		if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 20 {
			t.Fatalf("[frame %d] expected a 32x20 frame; got %v", frame, img.Bounds())
		}

		stats := r.Stats()
		if len(stats.Tracers) != len(tracers) {
			t.Fatalf("[frame %d] expected stats for %d tracers; got %d", frame, len(tracers), len(stats.Tracers))
		}

		var rows uint32
		var primaryRays uint64
		for _, stat := range stats.Tracers {
			rows += stat.BlockH
			primaryRays += stat.PrimaryRays
		}
		if rows != opts.FrameH {
			t.Fatalf("[frame %d] expected block heights to add up to %d; got %d", frame, opts.FrameH, rows)
		}
		if primaryRays != uint64(opts.FrameW*opts.FrameH) {
			t.Fatalf("[frame %d] expected %d primary rays; got %d", frame, opts.FrameW*opts.FrameH, primaryRays)
		}
	}

	// Every pixel must have been written
	for index := 3; index < len(r.(*defaultRenderer).frame.Pix); index += 4 {
		if r.(*defaultRenderer).frame.Pix[index] != 255 {
			t.Fatalf("expected pixel %d to be written", index/4)
		}
	}

	table := r.Stats().Table()
	for _, exp := range []string{"cpu-0", "cpu-1", "cpu-2", "MRays/s"} {
		if !strings.Contains(table, exp) {
			t.Fatalf("expected stats table to contain %q; got:\n%s", exp, table)
		}
	}

	// Camera updates are forwarded to the tracers
	sc.Camera.Yaw = 0.1
	r.UpdateCamera()
	if _, err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestRenderInterrupted(t *testing.T) {
	sc := scene.CubeRow(3, 2, 1, nil)
	sc.FrameCamera()
	tracers := []tracer.Tracer{
		cpu.NewTracer("cpu-0", cpu.PacketMode),
		cpu.NewTracer("cpu-1", cpu.PacketMode),
	}
	r, err := NewDefault(sc, accel.NewLinear(sc.Primitives), tracer.NaiveScheduler(), tracers, Options{FrameW: 16, FrameH: 16})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Render(ctx)
	if !errors.Is(err, ErrInterrupted) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected error %v; got %v", ErrInterrupted, err)
	}

	// The renderer can be reused after an interrupted frame
	if _, err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}
}
