package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/accel/bvh"
	"github.com/achilleasa/polaris-bvh/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

var ErrVerificationFailed = errors.New("verify: accelerator results do not match the reference")

// The outcome of running one query type against both accelerators.
type verifyResult struct {
	query      string
	rays       int
	hits       int
	mismatches int
	accelTime  time.Duration
	refTime    time.Duration
}

// Build a BVH for the scene and compare the results of all query types
// against a brute-force accelerator for a set of random rays.
func Verify(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := bvhOptions(ctx)
	if err != nil {
		return err
	}

	sc, err := loadScene(ctx, opts)
	if err != nil {
		return err
	}

	tree, err := bvh.Build(sc.Primitives, opts)
	if err != nil {
		return err
	}
	stats := tree.Stats()
	logger.Infof("BVH information\n%s", stats.Table())

	rng := rand.New(rand.NewSource(ctx.Int64("seed")))
	rays, maxDistances := randomRays(rng, sc.Primitives.BBox(), ctx.Int("rays"))
	results := verifyAccelerator(tree, accel.NewLinear(sc.Primitives), rays, maxDistances)
	logger.Noticef("verification results (%s split)\n%s", opts.SplitMethod, verifyTable(results))

	for _, res := range results {
		if res.mismatches != 0 {
			return fmt.Errorf("%w: %d mismatches for %s queries", ErrVerificationFailed, res.mismatches, res.query)
		}
	}
	return nil
}

// Generate rays with origins inside an enlarged copy of the scene bbox and
// uniformly distributed directions. A random occlusion distance up to the
// bbox diagonal is generated for each ray.
func randomRays(rng *rand.Rand, bbox types.AABB, count int) ([]types.Ray, []float32) {
	if bbox.IsEmpty() {
		bbox = types.NewAABB(types.Vec3{-1, -1, -1}, types.Vec3{1, 1, 1})
	}
	center := bbox.Center()
	extent := bbox.Extent().Mul(2)
	diagonal := extent.Len()

	rays := make([]types.Ray, count)
	maxDistances := make([]float32, count)
	for index := range rays {
		origin := types.Vec3{
			center[0] + (rng.Float32()-0.5)*extent[0],
			center[1] + (rng.Float32()-0.5)*extent[1],
			center[2] + (rng.Float32()-0.5)*extent[2],
		}

		var dir types.Vec3
		for dir.Len() == 0 {
			dir = types.Vec3{float32(rng.NormFloat64()), float32(rng.NormFloat64()), float32(rng.NormFloat64())}
		}

		rays[index] = types.NewRay(origin, dir.Normalize())
		maxDistances[index] = rng.Float32() * diagonal
	}
	return rays, maxDistances
}

// Run all query types against the accelerator and the reference and count
// the rays where the results differ. Closest hits are compared by distance
// since different primitives may be reported for ties.
func verifyAccelerator(ac, ref accel.Accelerator, rays []types.Ray, maxDistances []float32) []verifyResult {
	refHits := make([]accel.PacketHit, len(rays))
	nearest := verifyResult{query: "nearest", rays: len(rays)}
	start := time.Now()
	for index, ray := range rays {
		refHits[index].Hit, refHits[index].Found = ref.Intersect(ray)
	}
	nearest.refTime = time.Since(start)

	hits := make([]accel.PacketHit, len(rays))
	start = time.Now()
	for index, ray := range rays {
		hits[index].Hit, hits[index].Found = ac.Intersect(ray)
	}
	nearest.accelTime = time.Since(start)
	for index := range rays {
		if hits[index].Found {
			nearest.hits++
		}
		if !sameHit(hits[index], refHits[index]) {
			nearest.mismatches++
		}
	}

	// Use the previous ray's hit as the hint for the next query
	resume := verifyResult{query: "nearest (hinted)", rays: len(rays), refTime: nearest.refTime}
	var hint uint32
	start = time.Now()
	for index, ray := range rays {
		hit, found := ac.IntersectFrom(ray, hint)
		if found {
			resume.hits++
			hint = hit.NodeInfo
		}
		if !sameHit(accel.PacketHit{Hit: hit, Found: found}, refHits[index]) {
			resume.mismatches++
		}
	}
	resume.accelTime = time.Since(start)

	occlusion := verifyResult{query: "occlusion", rays: len(rays)}
	occluded := make([]bool, len(rays))
	start = time.Now()
	for index, ray := range rays {
		occluded[index] = ref.IntersectP(ray, maxDistances[index])
	}
	occlusion.refTime = time.Since(start)
	start = time.Now()
	for index, ray := range rays {
		got := ac.IntersectP(ray, maxDistances[index])
		if got {
			occlusion.hits++
		}
		if got != occluded[index] {
			occlusion.mismatches++
		}
	}
	occlusion.accelTime = time.Since(start)

	packet := verifyResult{query: "packet", rays: len(rays), refTime: nearest.refTime}
	start = time.Now()
	packetHits := ac.IntersectPacket(rays)
	packet.accelTime = time.Since(start)
	for index := range rays {
		if packetHits[index].Found {
			packet.hits++
		}
		if !sameHit(packetHits[index], refHits[index]) {
			packet.mismatches++
		}
	}

	return []verifyResult{nearest, resume, occlusion, packet}
}

func sameHit(a, b accel.PacketHit) bool {
	if a.Found != b.Found {
		return false
	}
	return !a.Found || a.T == b.T
}

func verifyTable(results []verifyResult) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Query", "Rays", "Hits", "Mismatches", "Accelerator time", "Reference time", "Speedup"})
	for _, res := range results {
		speedup := "-"
		if res.accelTime > 0 {
			speedup = fmt.Sprintf("%.1fx", res.refTime.Seconds()/res.accelTime.Seconds())
		}
		table.Append([]string{
			res.query,
			fmt.Sprintf("%d", res.rays),
			fmt.Sprintf("%d", res.hits),
			fmt.Sprintf("%d", res.mismatches),
			res.accelTime.String(),
			res.refTime.String(),
			speedup,
		})
	}

	table.Render()
	return buf.String()
}
