package bvh

import (
	"github.com/chewxy/math32"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/log"
	"github.com/achilleasa/polaris-bvh/types"
)

const (
	// The number of buckets used when evaluating SAH split candidates.
	sahBuckets = 12

	// Relative costs of a node traversal step and a primitive
	// intersection test.
	traversalCost float32 = 1
	intersectCost float32 = 1
)

// Build-time information about a single primitive.
type primitiveInfo struct {
	// Index into the unordered primitive list.
	index int

	bbox     types.AABB
	centroid types.Vec3
}

type bucketInfo struct {
	count int
	bbox  types.AABB
}

// A candidate split produced by the SAH.
type splitScore struct {
	bucket int
	score  float32
}

type builder struct {
	logger log.Logger

	opts Options

	// The primitives in the order that they were supplied.
	prims []accel.Primitive

	// Leafs reference ranges of this list.
	orderedPrims []accel.Primitive

	arena *buildArena

	// Populated when using HLBVH.
	treelets int
}

func newBuilder(prims []accel.Primitive, opts Options) *builder {
	return &builder{
		logger:       log.New("bvh builder"),
		opts:         opts,
		prims:        prims,
		orderedPrims: make([]accel.Primitive, 0, len(prims)),
		arena:        newBuildArena(2 * len(prims)),
	}
}

// Collect the bounding box and centroid of each primitive.
func (b *builder) primitiveInfo() []primitiveInfo {
	info := make([]primitiveInfo, len(b.prims))
	for index, prim := range b.prims {
		info[index] = primitiveInfo{
			index:    index,
			bbox:     prim.BBox(),
			centroid: prim.Center(),
		}
	}
	return info
}

// Partition info into a subtree and return the subtree root.
func (b *builder) recursiveBuild(info []primitiveInfo) nodeRef {
	bbox := types.EmptyAABB()
	centroidBBox := types.EmptyAABB()
	for i := range info {
		bbox = bbox.Union(info[i].bbox)
		centroidBBox = centroidBBox.UnionPoint(info[i].centroid)
	}

	if len(info) <= b.opts.MaxPrimsInNode {
		return b.createLeaf(info, bbox)
	}

	axis := centroidBBox.MaxExtentAxis()

	// If all centroids coincide no split can separate them.
	var mid int
	if centroidBBox.Max[axis] == centroidBBox.Min[axis] {
		if len(info) <= maxLeafPrimitives {
			return b.createLeaf(info, bbox)
		}
		mid = splitEqualCounts(info, axis)
	} else {
		switch b.opts.SplitMethod {
		case SplitMiddle:
			mid = splitMiddle(info, axis, centroidBBox)
		case SplitEqualCounts:
			mid = splitEqualCounts(info, axis)
		default:
			mid = splitSAH(info, axis, bbox, centroidBBox)
		}
	}

	left := b.recursiveBuild(info[:mid])
	right := b.recursiveBuild(info[mid:])
	return b.arena.newInterior(Axis(axis), left, right)
}

// Append the primitives referenced by info to the ordered list and allocate
// a leaf for them.
func (b *builder) createLeaf(info []primitiveInfo, bbox types.AABB) nodeRef {
	firstPrimOffset := len(b.orderedPrims)
	for i := range info {
		b.orderedPrims = append(b.orderedPrims, b.prims[info[i].index])
	}
	return b.arena.newLeaf(firstPrimOffset, len(info), bbox)
}

// Partition info around the midpoint of the centroid bounds along axis and
// return the index of the first item in the upper half. Falls back to
// splitEqualCounts if either half ends up empty.
func splitMiddle(info []primitiveInfo, axis int, centroidBBox types.AABB) int {
	pMid := 0.5 * (centroidBBox.Min[axis] + centroidBBox.Max[axis])
	mid := partition(info, func(pi *primitiveInfo) bool {
		return pi.centroid[axis] < pMid
	})

	if mid == 0 || mid == len(info) {
		return splitEqualCounts(info, axis)
	}
	return mid
}

// Reorder info so that the lower half contains the items with the smallest
// centroids along axis and return the index of the upper half.
func splitEqualCounts(info []primitiveInfo, axis int) int {
	mid := len(info) / 2
	nthElement(info, mid, axis)
	return mid
}

// Split info using the bucketed surface area heuristic and return the index
// of the first item in the upper half.
func splitSAH(info []primitiveInfo, axis int, bbox, centroidBBox types.AABB) int {
	if len(info) <= 4 {
		return splitEqualCounts(info, axis)
	}

	var buckets [sahBuckets]bucketInfo
	for i := range buckets {
		buckets[i].bbox = types.EmptyAABB()
	}
	for i := range info {
		bucket := &buckets[bucketIndex(info[i].centroid, centroidBBox, axis)]
		bucket.count++
		bucket.bbox = bucket.bbox.Union(info[i].bbox)
	}

	best := bestBucketSplit(buckets[:], bbox.SurfaceArea())
	mid := partition(info, func(pi *primitiveInfo) bool {
		return bucketIndex(pi.centroid, centroidBBox, axis) <= best.bucket
	})

	if mid == 0 || mid == len(info) {
		return splitEqualCounts(info, axis)
	}
	return mid
}

// Evaluate the split after each bucket and return the cheapest one.
func bestBucketSplit(buckets []bucketInfo, parentArea float32) splitScore {
	best := splitScore{score: math32.Inf(1)}
	for split := 0; split < len(buckets)-1; split++ {
		below, above := bucketInfo{bbox: types.EmptyAABB()}, bucketInfo{bbox: types.EmptyAABB()}
		for i := 0; i <= split; i++ {
			below.count += buckets[i].count
			below.bbox = below.bbox.Union(buckets[i].bbox)
		}
		for i := split + 1; i < len(buckets); i++ {
			above.count += buckets[i].count
			above.bbox = above.bbox.Union(buckets[i].bbox)
		}

		if score := sahCost(below, above, parentArea); score < best.score {
			best = splitScore{bucket: split, score: score}
		}
	}
	return best
}

// Calculate the expected cost of splitting a node into two children.
//
// cost = traversal + (countL * areaL + countR * areaR) / parentArea * intersect
//
// Splits that leave a child empty are assigned an infinite cost. A parent
// with zero area (all primitives are flat and coplanar along an axis) makes
// each child equally likely to be visited.
func sahCost(left, right bucketInfo, parentArea float32) float32 {
	if left.count == 0 || right.count == 0 {
		return math32.Inf(1)
	}

	if parentArea <= 0 {
		return traversalCost + float32(left.count+right.count)*intersectCost
	}

	return traversalCost + intersectCost*
		(float32(left.count)*left.bbox.SurfaceArea()+float32(right.count)*right.bbox.SurfaceArea())/parentArea
}

// Map a centroid to one of the SAH buckets along axis.
func bucketIndex(centroid types.Vec3, centroidBBox types.AABB, axis int) int {
	bucket := int(sahBuckets * centroidBBox.Offset(centroid)[axis])
	if bucket >= sahBuckets {
		bucket = sahBuckets - 1
	} else if bucket < 0 {
		bucket = 0
	}
	return bucket
}

// Reorder info so all items for which pred returns true come first and
// return the number of such items.
func partition(info []primitiveInfo, pred func(*primitiveInfo) bool) int {
	first := 0
	for i := range info {
		if pred(&info[i]) {
			info[first], info[i] = info[i], info[first]
			first++
		}
	}
	return first
}

// Reorder info so the item at index n is the one that would be there if info
// was sorted by centroid along axis, every item before it is not greater and
// every item after it is not smaller.
func nthElement(info []primitiveInfo, n, axis int) {
	lo, hi := 0, len(info)-1
	for lo < hi {
		pivot := medianOfThree(
			info[lo].centroid[axis],
			info[lo+(hi-lo)/2].centroid[axis],
			info[hi].centroid[axis],
		)

		i, j := lo, hi
		for i <= j {
			for info[i].centroid[axis] < pivot {
				i++
			}
			for info[j].centroid[axis] > pivot {
				j--
			}
			if i <= j {
				info[i], info[j] = info[j], info[i]
				i++
				j--
			}
		}

		switch {
		case n <= j:
			hi = j
		case n >= i:
			lo = i
		default:
			return
		}
	}
}

func medianOfThree(a, b, c float32) float32 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		return a
	}
	return b
}
