package bvh

import (
	"math"

	"github.com/achilleasa/polaris-bvh/accel"
	"github.com/achilleasa/polaris-bvh/types"
)

const (
	// Initial capacity of the traversal stack. The stack grows if a tree
	// is deeper than this.
	traversalStackSize = 64

	// A node index that never matches a real node.
	noNode = math.MaxUint32
)

// Find the closest intersection along the ray. The NodeInfo of the
// returned hit is the index of the leaf that contains the hit primitive.
func (t *BVH) Intersect(ray types.Ray) (accel.Hit, bool) {
	if len(t.nodes) == 0 || !ray.IsValid() {
		return accel.Hit{}, false
	}
	return t.traverse(ray, noNode, accel.Hit{}, false)
}

// Find the closest intersection along the ray using the NodeInfo of a
// previous hit as a hint. The hinted leaf is tested first so its hit
// distance can prune the following traversal; the result always matches
// Intersect. Hints that do not reference a leaf are ignored.
func (t *BVH) IntersectFrom(ray types.Ray, nodeInfo uint32) (accel.Hit, bool) {
	if len(t.nodes) == 0 || !ray.IsValid() {
		return accel.Hit{}, false
	}

	if nodeInfo >= uint32(len(t.nodes)) || !t.nodes[nodeInfo].IsLeaf() {
		return t.traverse(ray, noNode, accel.Hit{}, false)
	}

	var closest accel.Hit
	found := t.intersectLeaf(&ray, nodeInfo, &closest)
	return t.traverse(ray, nodeInfo, closest, found)
}

// Returns true if the ray hits any primitive at a distance in
// [ray.TMin, maxDistance). The ray TMax is ignored.
func (t *BVH) IntersectP(ray types.Ray, maxDistance float32) bool {
	if len(t.nodes) == 0 || !ray.IsValid() || !(maxDistance > 0) {
		return false
	}

	invDir := ray.InvDir()
	dirIsNeg := ray.DirIsNeg()

	var stackBuf [traversalStackSize]uint32
	stack := stackBuf[:0]
	nodeIndex := uint32(0)
	for {
		node := &t.nodes[nodeIndex]
		if node.BBox().IntersectP(ray.Origin, invDir, dirIsNeg, ray.TMin, maxDistance) {
			if !node.IsLeaf() {
				nodeIndex, stack = pushChildren(nodeIndex, node, dirIsNeg, stack)
				continue
			}

			first, count := node.Primitives()
			for primIndex := first; primIndex < first+uint32(count); primIndex++ {
				if t.prims[primIndex].IntersectP(ray, maxDistance) {
					return true
				}
			}
		}

		if len(stack) == 0 {
			return false
		}
		nodeIndex = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	}
}

// Walk the tree looking for a hit closer than the one in closest (if found
// is true). The leaf at skipLeaf is not visited.
func (t *BVH) traverse(ray types.Ray, skipLeaf uint32, closest accel.Hit, found bool) (accel.Hit, bool) {
	invDir := ray.InvDir()
	dirIsNeg := ray.DirIsNeg()

	var stackBuf [traversalStackSize]uint32
	stack := stackBuf[:0]
	nodeIndex := uint32(0)
	for {
		node := &t.nodes[nodeIndex]
		if node.BBox().IntersectP(ray.Origin, invDir, dirIsNeg, ray.TMin, ray.TMax) {
			if !node.IsLeaf() {
				nodeIndex, stack = pushChildren(nodeIndex, node, dirIsNeg, stack)
				continue
			}

			if nodeIndex != skipLeaf && t.intersectLeaf(&ray, nodeIndex, &closest) {
				found = true
			}
		}

		if len(stack) == 0 {
			return closest, found
		}
		nodeIndex = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	}
}

// Select the child closest to the ray origin along the node split axis as
// the next node to visit and push the other child to the stack.
func pushChildren(nodeIndex uint32, node *LinearNode, dirIsNeg [3]int, stack []uint32) (uint32, []uint32) {
	if dirIsNeg[node.Axis] == 1 {
		return node.SecondChild(), append(stack, nodeIndex+1)
	}
	return nodeIndex + 1, append(stack, node.SecondChild())
}

// Intersect the ray with all primitives in a leaf. If a closer hit is found,
// closest is updated, ray.TMax is shrunk to the hit distance and the method
// returns true.
func (t *BVH) intersectLeaf(ray *types.Ray, nodeIndex uint32, closest *accel.Hit) bool {
	found := false
	first, count := t.nodes[nodeIndex].Primitives()
	for primIndex := first; primIndex < first+uint32(count); primIndex++ {
		hit, ok := t.prims[primIndex].Intersect(*ray)
		if !ok {
			continue
		}

		hit.NodeInfo = nodeIndex
		*closest = hit
		ray.TMax = hit.T
		found = true
	}
	return found
}
