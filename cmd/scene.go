package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/achilleasa/polaris-bvh/accel/bvh"
	"github.com/achilleasa/polaris-bvh/scene"
	"github.com/achilleasa/polaris-bvh/scene/reader"
	"github.com/urfave/cli"
)

// Parse BVH build options from the command flags.
func bvhOptions(ctx *cli.Context) (bvh.Options, error) {
	method, err := bvh.ParseSplitMethod(ctx.String("split"))
	if err != nil {
		return bvh.Options{}, err
	}

	return bvh.Options{
		MaxPrimsInNode: ctx.Int("max-prims"),
		SplitMethod:    method,
		Workers:        ctx.Int("workers"),
	}, nil
}

// Load the scene file passed as the command argument or, if no argument is
// specified, generate a procedural scene.
func loadScene(ctx *cli.Context, meshOpts bvh.Options) (*scene.Scene, error) {
	switch ctx.NArg() {
	case 0:
		name := ctx.String("generator")
		logger.Noticef("generating %q scene with %d elements (seed: %d)", name, ctx.Int("count"), ctx.Int64("seed"))
		sc, err := scene.Generate(name, ctx.Int("count"), ctx.Int64("seed"))
		if errors.Is(err, scene.ErrUnknownGenerator) {
			return nil, fmt.Errorf("%w; available generators: %s", err, strings.Join(scene.GeneratorNames(), ", "))
		}
		return sc, err
	case 1:
		return reader.ReadScene(ctx.Args().First(), meshOpts)
	default:
		return nil, errors.New("expected at most one scene file argument")
	}
}
