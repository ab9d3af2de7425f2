package bvh

import (
	"sort"
	"sync"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/types"
)

const (
	// Primitives whose Morton codes share the top treeletBits bits are
	// grouped in the same treelet.
	treeletBits = 12
	treeletMask = ((1 << treeletBits) - 1) << (mortonCodeBits - treeletBits)

	// The highest Morton code bit that is examined when splitting a
	// treelet.
	treeletFirstBit = mortonCodeBits - treeletBits - 1
)

// A run of Morton-sorted primitives sharing the same treelet prefix.
type treelet struct {
	start int
	count int
}

// Builds treelet subtrees into its own arena. Each worker goroutine owns a
// treeletBuilder so no locking is required while emitting nodes.
type treeletBuilder struct {
	arena *buildArena

	info           []primitiveInfo
	prims          []accel.Primitive
	orderedPrims   []accel.Primitive
	maxPrimsInNode int

	// Maps treelet indices to their root node in arena.
	roots map[int]nodeRef
}

// Build the tree using the hierarchical linear BVH algorithm: primitives are
// sorted along a Morton curve and clustered into treelets; each treelet is
// split by Morton code bits and the treelet roots are combined using SAH.
func (b *builder) buildHLBVH(info []primitiveInfo) nodeRef {
	centroidBBox := types.EmptyAABB()
	for i := range info {
		centroidBBox = centroidBBox.UnionPoint(info[i].centroid)
	}

	mortonPrims := make([]mortonPrimitive, len(info))
	for i := range info {
		offset := centroidBBox.Offset(info[i].centroid).Mul(mortonScale)
		mortonPrims[i] = mortonPrimitive{
			index: info[i].index,
			code:  encodeMorton3(offset[0], offset[1], offset[2]),
		}
	}
	radixSort(mortonPrims)

	treelets := findTreelets(mortonPrims)
	b.treelets = len(treelets)

	// Each treelet fills the ordered primitive range that matches its
	// position in the Morton-sorted list.
	b.orderedPrims = b.orderedPrims[:len(info)]

	roots := b.buildTreelets(info, mortonPrims, treelets)
	return b.buildUpperSAH(roots)
}

// Split the Morton-sorted primitive list into treelets.
func findTreelets(mortonPrims []mortonPrimitive) []treelet {
	treelets := make([]treelet, 0)
	start := 0
	for end := 1; end <= len(mortonPrims); end++ {
		if end == len(mortonPrims) || mortonPrims[start].code&treeletMask != mortonPrims[end].code&treeletMask {
			treelets = append(treelets, treelet{start: start, count: end - start})
			start = end
		}
	}
	return treelets
}

func (b *builder) newTreeletBuilder(info []primitiveInfo, arena *buildArena) *treeletBuilder {
	return &treeletBuilder{
		arena:          arena,
		info:           info,
		prims:          b.prims,
		orderedPrims:   b.orderedPrims,
		maxPrimsInNode: b.opts.MaxPrimsInNode,
		roots:          make(map[int]nodeRef),
	}
}

// Build the subtree of each treelet and return the treelet roots in treelet
// order. Treelets are distributed to b.opts.Workers goroutines; each worker
// emits nodes into a private arena which is merged into the builder arena
// once all treelets have been processed.
func (b *builder) buildTreelets(info []primitiveInfo, mortonPrims []mortonPrimitive, treelets []treelet) []nodeRef {
	workers := b.opts.Workers
	if workers > len(treelets) {
		workers = len(treelets)
	}

	if workers <= 1 {
		tb := b.newTreeletBuilder(info, b.arena)
		roots := make([]nodeRef, len(treelets))
		for index, tr := range treelets {
			roots[index] = tb.emitLBVH(mortonPrims[tr.start:tr.start+tr.count], tr.start, treeletFirstBit)
		}
		return roots
	}

	b.logger.Debugf("building %d treelets using %d workers", len(treelets), workers)

	jobChan := make(chan int, len(treelets))
	for index := range treelets {
		jobChan <- index
	}
	close(jobChan)

	resChan := make(chan *treeletBuilder, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			tb := b.newTreeletBuilder(info, newBuildArena(0))
			for index := range jobChan {
				tr := treelets[index]
				tb.roots[index] = tb.emitLBVH(mortonPrims[tr.start:tr.start+tr.count], tr.start, treeletFirstBit)
			}
			resChan <- tb
		}()
	}
	wg.Wait()
	close(resChan)

	roots := make([]nodeRef, len(treelets))
	for tb := range resChan {
		offset := b.arena.merge(tb.arena)
		for index, root := range tb.roots {
			roots[index] = root + offset
		}
	}
	return roots
}

// Recursively split a treelet at the first Morton code bit (starting from
// bitIndex) where its primitives differ and return the subtree root.
func (tb *treeletBuilder) emitLBVH(mortonPrims []mortonPrimitive, orderedOffset, bitIndex int) nodeRef {
	n := len(mortonPrims)
	if bitIndex < 0 || n <= tb.maxPrimsInNode {
		if n <= maxLeafPrimitives {
			return tb.createLeaf(mortonPrims, orderedOffset)
		}

		// All code bits are exhausted but the leaf would overflow.
		mid := n / 2
		left := tb.emitLBVH(mortonPrims[:mid], orderedOffset, -1)
		right := tb.emitLBVH(mortonPrims[mid:], orderedOffset+mid, -1)
		return tb.arena.newInterior(XAxis, left, right)
	}

	mask := uint32(1) << uint(bitIndex)
	if mortonPrims[0].code&mask == mortonPrims[n-1].code&mask {
		return tb.emitLBVH(mortonPrims, orderedOffset, bitIndex-1)
	}

	// The list is sorted so all codes with this bit cleared come first.
	split := sort.Search(n, func(i int) bool {
		return mortonPrims[i].code&mask != mortonPrims[0].code&mask
	})

	left := tb.emitLBVH(mortonPrims[:split], orderedOffset, bitIndex-1)
	right := tb.emitLBVH(mortonPrims[split:], orderedOffset+split, bitIndex-1)
	return tb.arena.newInterior(Axis(bitIndex%3), left, right)
}

func (tb *treeletBuilder) createLeaf(mortonPrims []mortonPrimitive, orderedOffset int) nodeRef {
	bbox := types.EmptyAABB()
	for i, mp := range mortonPrims {
		tb.orderedPrims[orderedOffset+i] = tb.prims[mp.index]
		bbox = bbox.Union(tb.info[mp.index].bbox)
	}
	return tb.arena.newLeaf(orderedOffset, len(mortonPrims), bbox)
}

// Combine the treelet roots into a single tree using SAH.
func (b *builder) buildUpperSAH(roots []nodeRef) nodeRef {
	if len(roots) == 1 {
		return roots[0]
	}

	bbox := types.EmptyAABB()
	centroidBBox := types.EmptyAABB()
	for _, ref := range roots {
		nodeBBox := b.arena.node(ref).bbox
		bbox = bbox.Union(nodeBBox)
		centroidBBox = centroidBBox.UnionPoint(nodeBBox.Center())
	}
	axis := centroidBBox.MaxExtentAxis()

	mid := len(roots) / 2
	if centroidBBox.Max[axis] > centroidBBox.Min[axis] {
		var buckets [sahBuckets]bucketInfo
		for i := range buckets {
			buckets[i].bbox = types.EmptyAABB()
		}
		for _, ref := range roots {
			nodeBBox := b.arena.node(ref).bbox
			bucket := &buckets[bucketIndex(nodeBBox.Center(), centroidBBox, axis)]
			bucket.count++
			bucket.bbox = bucket.bbox.Union(nodeBBox)
		}

		best := bestBucketSplit(buckets[:], bbox.SurfaceArea())
		mid = partitionRefs(roots, func(ref nodeRef) bool {
			return bucketIndex(b.arena.node(ref).bbox.Center(), centroidBBox, axis) <= best.bucket
		})

		if mid == 0 || mid == len(roots) {
			sort.Slice(roots, func(i, j int) bool {
				return b.arena.node(roots[i]).bbox.Center()[axis] < b.arena.node(roots[j]).bbox.Center()[axis]
			})
			mid = len(roots) / 2
		}
	}

	left := b.buildUpperSAH(roots[:mid])
	right := b.buildUpperSAH(roots[mid:])
	return b.arena.newInterior(Axis(axis), left, right)
}

func partitionRefs(refs []nodeRef, pred func(nodeRef) bool) int {
	first := 0
	for i := range refs {
		if pred(refs[i]) {
			refs[first], refs[i] = refs[i], refs[first]
			first++
		}
	}
	return first
}
