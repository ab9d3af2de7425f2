package cmd

import (
	"strings"

	"github.com/achilleasa/polaris-bvh/accel/bvh"
	"github.com/urfave/cli"
)

// Build a BVH for the scene using one or more split methods and display the
// build statistics for each one.
func ShowBVHInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := bvhOptions(ctx)
	if err != nil {
		return err
	}

	sc, err := loadScene(ctx, opts)
	if err != nil {
		return err
	}

	methods := []bvh.SplitMethod{opts.SplitMethod}
	if ctx.Bool("all") {
		methods = []bvh.SplitMethod{bvh.SplitSAH, bvh.SplitHLBVH, bvh.SplitMiddle, bvh.SplitEqualCounts}
	}

	for _, method := range methods {
		opts.SplitMethod = method
		tree, err := bvh.Build(sc.Primitives, opts)
		if err != nil {
			return err
		}

		stats := tree.Stats()
		logger.Noticef("BVH information (%s split)\n%s", method, strings.TrimRight(stats.Table(), "\n"))
	}

	return nil
}
