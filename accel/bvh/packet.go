package bvh

import (
	"github.com/chewxy/math32"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/types"
)

const (
	// The max number of rays traced together. Larger batches are split
	// into packets of this size.
	MaxPacketSize = 64

	// Relative slack added to the packet interval bounds so that the
	// combined test never rejects a node that the per-ray test accepts.
	packetBoundsSlack float32 = 1e-5
)

// Precomputed per-ray traversal data.
type packetRay struct {
	ray      types.Ray
	invDir   types.Vec3
	dirIsNeg [3]int
}

// Conservative bounds enclosing the origins and inverse directions of all
// valid rays in a packet. An axis is only constrained when all rays share
// the same non-zero direction sign along it and no inverse direction
// component is infinite.
type packetBounds struct {
	constrained [3]bool
	dirIsNeg    [3]int

	originMin, originMax types.Vec3
	invDirMin, invDirMax types.Vec3

	tMin, tMax float32
}

// A pending node visit. The active rays are stored in the shared index
// buffer at [start, start+count).
type packetStackEntry struct {
	nodeIndex uint32
	start     int
	count     int
}

// Find the closest intersection for each ray. The result for each ray is
// identical to calling Intersect with that ray. Invalid rays never report
// hits.
func (t *BVH) IntersectPacket(rays []types.Ray) []accel.PacketHit {
	out := make([]accel.PacketHit, len(rays))
	if len(t.nodes) == 0 {
		return out
	}

	for start := 0; start < len(rays); start += MaxPacketSize {
		end := start + MaxPacketSize
		if end > len(rays) {
			end = len(rays)
		}
		t.intersectPacket(rays[start:end], out[start:end])
	}
	return out
}

func (t *BVH) intersectPacket(rays []types.Ray, out []accel.PacketHit) {
	var packet [MaxPacketSize]packetRay
	initial := make([]uint8, 0, len(rays))
	for index, ray := range rays {
		if !ray.IsValid() {
			continue
		}
		packet[index] = packetRay{
			ray:      ray,
			invDir:   ray.InvDir(),
			dirIsNeg: ray.DirIsNeg(),
		}
		initial = append(initial, uint8(index))
	}
	if len(initial) == 0 {
		return
	}

	bounds := newPacketBounds(packet[:], initial)

	// Each visited node appends its surviving rays to activeBuf. Since
	// stack entries are processed in LIFO order, popping an entry releases
	// every range appended after it.
	activeBuf := make([]uint8, 0, 4*len(rays))
	activeBuf = append(activeBuf, initial...)

	stack := make([]packetStackEntry, 0, traversalStackSize)
	cur := packetStackEntry{nodeIndex: 0, start: 0, count: len(initial)}
	for {
		node := &t.nodes[cur.nodeIndex]
		bbox := node.BBox()
		if bounds.mayHit(bbox) {
			activeStart := len(activeBuf)
			for _, rayIndex := range activeBuf[cur.start : cur.start+cur.count] {
				pr := &packet[rayIndex]
				if bbox.IntersectP(pr.ray.Origin, pr.invDir, pr.dirIsNeg, pr.ray.TMin, pr.ray.TMax) {
					activeBuf = append(activeBuf, rayIndex)
				}
			}
			activeCount := len(activeBuf) - activeStart

			if activeCount > 0 && !node.IsLeaf() {
				// Visit children in the order preferred by the first active ray.
				near, far := cur.nodeIndex+1, node.SecondChild()
				if packet[activeBuf[activeStart]].dirIsNeg[node.Axis] == 1 {
					near, far = far, near
				}
				stack = append(stack, packetStackEntry{nodeIndex: far, start: activeStart, count: activeCount})
				cur = packetStackEntry{nodeIndex: near, start: activeStart, count: activeCount}
				continue
			}

			if activeCount > 0 {
				t.intersectPacketLeaf(cur.nodeIndex, packet[:], activeBuf[activeStart:], out)
			}
		}

		if len(stack) == 0 {
			return
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		activeBuf = activeBuf[:cur.start+cur.count]
	}
}

// Intersect the active rays with all primitives of a leaf, shrinking each
// ray's TMax to its closest hit.
func (t *BVH) intersectPacketLeaf(nodeIndex uint32, packet []packetRay, active []uint8, out []accel.PacketHit) {
	first, count := t.nodes[nodeIndex].Primitives()
	for primIndex := first; primIndex < first+uint32(count); primIndex++ {
		prim := t.prims[primIndex]
		for _, rayIndex := range active {
			pr := &packet[rayIndex]
			hit, ok := prim.Intersect(pr.ray)
			if !ok {
				continue
			}

			hit.NodeInfo = nodeIndex
			out[rayIndex] = accel.PacketHit{Hit: hit, Found: true}
			pr.ray.TMax = hit.T
		}
	}
}

func newPacketBounds(packet []packetRay, active []uint8) packetBounds {
	first := &packet[active[0]]
	pb := packetBounds{
		dirIsNeg:  first.dirIsNeg,
		originMin: first.ray.Origin,
		originMax: first.ray.Origin,
		invDirMin: first.invDir,
		invDirMax: first.invDir,
		tMin:      first.ray.TMin,
		tMax:      first.ray.TMax,
	}
	for axis := 0; axis < 3; axis++ {
		pb.constrained[axis] = first.ray.Dir[axis] != 0 && !math32.IsInf(first.invDir[axis], 0)
	}

	for _, rayIndex := range active[1:] {
		pr := &packet[rayIndex]
		pb.originMin = types.MinVec3(pb.originMin, pr.ray.Origin)
		pb.originMax = types.MaxVec3(pb.originMax, pr.ray.Origin)
		pb.invDirMin = types.MinVec3(pb.invDirMin, pr.invDir)
		pb.invDirMax = types.MaxVec3(pb.invDirMax, pr.invDir)
		pb.tMin = math32.Min(pb.tMin, pr.ray.TMin)
		pb.tMax = math32.Max(pb.tMax, pr.ray.TMax)
		for axis := 0; axis < 3; axis++ {
			if pr.ray.Dir[axis] == 0 || math32.IsInf(pr.invDir[axis], 0) || pr.dirIsNeg[axis] != pb.dirIsNeg[axis] {
				pb.constrained[axis] = false
			}
		}
	}
	return pb
}

// Returns false only if no ray of the packet can hit the box. Along each
// constrained axis the slab entry and exit distances are bounded using
// interval arithmetic over the packet origins and inverse directions.
func (pb *packetBounds) mayHit(bbox types.AABB) bool {
	if bbox.IsEmpty() {
		return false
	}

	tNear, tFar := pb.tMin, pb.tMax
	for axis := 0; axis < 3; axis++ {
		if !pb.constrained[axis] {
			continue
		}

		nearPlane, farPlane := bbox.Min[axis], bbox.Max[axis]
		if pb.dirIsNeg[axis] == 1 {
			nearPlane, farPlane = farPlane, nearPlane
		}

		entryMin, _ := intervalMul(
			nearPlane-pb.originMax[axis], nearPlane-pb.originMin[axis],
			pb.invDirMin[axis], pb.invDirMax[axis],
		)
		_, exitMax := intervalMul(
			farPlane-pb.originMax[axis], farPlane-pb.originMin[axis],
			pb.invDirMin[axis], pb.invDirMax[axis],
		)

		entryMin -= math32.Abs(entryMin) * packetBoundsSlack
		exitMax += math32.Abs(exitMax) * packetBoundsSlack

		if entryMin > tNear {
			tNear = entryMin
		}
		if exitMax < tFar {
			tFar = exitMax
		}
		if tNear > tFar {
			return false
		}
	}
	return true
}

// Get the range of x*y for x in [x0, x1] and y in [y0, y1].
func intervalMul(x0, x1, y0, y1 float32) (float32, float32) {
	p0, p1, p2, p3 := x0*y0, x0*y1, x1*y0, x1*y1
	return math32.Min(math32.Min(p0, p1), math32.Min(p2, p3)),
		math32.Max(math32.Max(p0, p1), math32.Max(p2, p3))
}
