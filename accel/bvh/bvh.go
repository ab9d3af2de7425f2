// Package bvh implements a bounding volume hierarchy accelerator.
//
// The tree is built top-down using one of the available split methods and
// then flattened into a compact array of 32-byte nodes stored in depth-first
// order. A built BVH is immutable and safe for concurrent queries. Since it
// also implements accel.Primitive, a BVH can be nested inside another BVH.
package bvh

import (
	"math"
	"time"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/types"
)

// Primitive counts are bounded so that the build arena handles and the
// flattened 32-bit offsets never overflow.
const maxPrimitives = math.MaxInt32 / 2

// BVH is a bounding volume hierarchy over a set of primitives.
type BVH struct {
	nodes []LinearNode

	// Primitives ordered so each leaf references a contiguous range.
	prims []accel.Primitive

	stats Stats
}

// Build a BVH over the primitives of a container. The container is not
// modified. Building an empty container yields an empty BVH that never
// reports any hits.
func Build(c accel.Container, opts Options) (*BVH, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	src := c.Primitives()
	if len(src) > maxPrimitives {
		return nil, ErrTooManyPrimitives
	}

	tree := &BVH{
		stats: Stats{
			SplitMethod: opts.SplitMethod,
			Primitives:  len(src),
		},
	}
	if len(src) == 0 {
		tree.updateMemoryStats()
		return tree, nil
	}

	prims := make([]accel.Primitive, len(src))
	copy(prims, src)

	start := time.Now()
	b := newBuilder(prims, opts)
	info := b.primitiveInfo()

	var root nodeRef
	if opts.SplitMethod == SplitHLBVH {
		root = b.buildHLBVH(info)
	} else {
		root = b.recursiveBuild(info)
	}

	nodes, err := flatten(b.arena, root, &tree.stats)
	if err != nil {
		return nil, err
	}

	tree.nodes = nodes
	tree.prims = b.orderedPrims
	tree.stats.Treelets = b.treelets
	tree.stats.BuildTime = time.Since(start)
	tree.updateMemoryStats()

	b.logger.Debugf(
		"BVH tree build time: %d ms, split: %s, maxDepth: %d, nodes: %d, leafs: %d",
		tree.stats.BuildTime.Nanoseconds()/1e6,
		opts.SplitMethod, tree.stats.MaxDepth, tree.stats.Nodes(), tree.stats.Leafs,
	)
	return tree, nil
}

func (t *BVH) updateMemoryStats() {
	t.stats.NodeBytes = fmtSize(t.nodes)
	t.stats.PrimitiveBytes = fmtSize(t.prims)
}

// Get the flattened node list.
func (t *BVH) Nodes() []LinearNode {
	return t.nodes
}

// Get the primitives in leaf order.
func (t *BVH) Primitives() []accel.Primitive {
	return t.prims
}

// Get build statistics.
func (t *BVH) Stats() Stats {
	return t.stats
}

// Get the bounding box of all indexed primitives.
func (t *BVH) BBox() types.AABB {
	if len(t.nodes) == 0 {
		return types.EmptyAABB()
	}
	return t.nodes[0].BBox()
}

// Get the center of the BVH bounding box.
func (t *BVH) Center() types.Vec3 {
	return t.BBox().Center()
}
