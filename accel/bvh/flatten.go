package bvh

import "math"

// Convert the build tree rooted at root into a depth-first pre-order array
// and collect tree statistics.
func flatten(arena *buildArena, root nodeRef, stats *Stats) ([]LinearNode, error) {
	if uint64(arena.len()) > math.MaxUint32 {
		return nil, ErrNodeOverflow
	}

	nodes := make([]LinearNode, arena.len())
	offset := 0

	var flattenNode func(ref nodeRef, depth int) uint32
	flattenNode = func(ref nodeRef, depth int) uint32 {
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}

		buildNode := arena.node(ref)
		nodeIndex := offset
		offset++

		node := &nodes[nodeIndex]
		node.SetBBox(buildNode.bbox)
		if buildNode.nPrimitives > 0 {
			node.SetPrimitives(uint32(buildNode.firstPrimOffset), uint16(buildNode.nPrimitives))
			stats.Leafs++
			if buildNode.nPrimitives > stats.MaxLeafPrimitives {
				stats.MaxLeafPrimitives = buildNode.nPrimitives
			}
			return uint32(nodeIndex)
		}

		stats.InteriorNodes++
		flattenNode(buildNode.children[0], depth+1)
		secondChild := flattenNode(buildNode.children[1], depth+1)
		node.SetSecondChild(secondChild, buildNode.axis)
		return uint32(nodeIndex)
	}
	flattenNode(root, 0)

	// Only nodes reachable from root are emitted.
	return nodes[:offset], nil
}
