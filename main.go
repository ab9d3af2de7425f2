package main

import (
	"os"
	"runtime"

	"github.com/achilleasa/polaris-bvh/accel/bvh"
	"github.com/achilleasa/polaris-bvh/cmd"
	"github.com/urfave/cli"
)

// Flags for selecting the scene and configuring the BVH build. They are
// shared by all commands.
var sceneFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "generator, g",
		Value: "triangles",
		Usage: "procedural scene generator (cubes, triangles, grid) used when no scene file is specified",
	},
	cli.IntFlag{
		Name:  "count, n",
		Value: 10000,
		Usage: "number of elements created by the scene generator",
	},
	cli.Int64Flag{
		Name:  "seed",
		Value: 1,
		Usage: "random seed for scene and ray generation",
	},
	cli.StringFlag{
		Name:  "split, s",
		Value: bvh.SplitSAH.String(),
		Usage: "BVH split method (sah, hlbvh, middle, equal)",
	},
	cli.IntFlag{
		Name:  "max-prims",
		Value: bvh.DefaultMaxPrimsInNode,
		Usage: "max number of primitives in a BVH leaf",
	},
	cli.IntFlag{
		Name:  "workers",
		Value: 1,
		Usage: "number of workers for building HLBVH treelets",
	},
}

func withSceneFlags(flags ...cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, sceneFlags...), flags...)
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "polaris-bvh"
	app.Usage = "build and query bounding volume hierarchies for ray tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringSliceFlag{
			Name:  "log-module",
			Value: &cli.StringSlice{},
			Usage: "override the level of a single logger (e.g. \"bvh builder=debug\")",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "bvh-info",
			Usage: "build a BVH for a scene and display its statistics",
			Description: `
Load a scene from a wavefront obj file or generate a procedural scene, build a
BVH over its primitives and display build statistics such as the node count,
the tree depth and the memory used by the flattened tree.`,
			ArgsUsage: "[scene_file.obj]",
			Flags: withSceneFlags(
				cli.BoolFlag{
					Name:  "all",
					Usage: "build and compare the BVH for all split methods",
				},
			),
			Action: cmd.ShowBVHInfo,
		},
		{
			Name:  "verify",
			Usage: "compare BVH query results against a brute-force accelerator",
			Description: `
Trace random rays against the scene using the BVH and a brute-force
accelerator and report any differences in nearest hit, hinted nearest hit,
occlusion and packet queries.`,
			ArgsUsage: "[scene_file.obj]",
			Flags: withSceneFlags(
				cli.IntFlag{
					Name:  "rays",
					Value: 10000,
					Usage: "number of random rays to trace",
				},
			),
			Action: cmd.Verify,
		},
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:        "frame",
					Usage:       "render single frame",
					Description: `Render a single frame using the CPU tracers and save it as a PNG image.`,
					ArgsUsage:   "[scene_file.obj]",
					Flags: withSceneFlags(
						cli.IntFlag{
							Name:  "width",
							Value: 512,
							Usage: "frame width",
						},
						cli.IntFlag{
							Name:  "height",
							Value: 512,
							Usage: "frame height",
						},
						cli.IntFlag{
							Name:  "tracers, t",
							Value: runtime.NumCPU(),
							Usage: "number of cpu tracers",
						},
						cli.BoolFlag{
							Name:  "single-ray",
							Usage: "trace primary rays one at a time instead of using packets",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					),
					Action: cmd.RenderFrame,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		cmd.Fatal(err)
	}
}
