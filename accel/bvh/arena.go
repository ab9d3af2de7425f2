package bvh

import "github.com/achilleasa/polaris-bvh/types"

// A handle to a node stored in a buildArena.
type nodeRef int32

// A temporary tree node used while building the BVH. Leafs reference a
// range of the ordered primitive list; interior nodes reference their
// children by arena handle.
type buildNode struct {
	bbox     types.AABB
	children [2]nodeRef
	axis     Axis

	firstPrimOffset int
	nPrimitives     int
}

// The arena owns all build nodes of a single build pass. Nodes are never
// freed individually; the whole arena is dropped once the tree has been
// flattened.
type buildArena struct {
	nodes []buildNode
}

func newBuildArena(capacity int) *buildArena {
	return &buildArena{nodes: make([]buildNode, 0, capacity)}
}

// Allocate a leaf for nPrimitives primitives starting at firstPrimOffset.
func (a *buildArena) newLeaf(firstPrimOffset, nPrimitives int, bbox types.AABB) nodeRef {
	a.nodes = append(a.nodes, buildNode{
		bbox:            bbox,
		firstPrimOffset: firstPrimOffset,
		nPrimitives:     nPrimitives,
	})
	return nodeRef(len(a.nodes) - 1)
}

// Allocate an interior node. Its bounding box is the union of the child boxes.
func (a *buildArena) newInterior(axis Axis, left, right nodeRef) nodeRef {
	a.nodes = append(a.nodes, buildNode{
		bbox:     a.nodes[left].bbox.Union(a.nodes[right].bbox),
		children: [2]nodeRef{left, right},
		axis:     axis,
	})
	return nodeRef(len(a.nodes) - 1)
}

func (a *buildArena) node(ref nodeRef) *buildNode {
	return &a.nodes[ref]
}

// Get the number of allocated nodes.
func (a *buildArena) len() int {
	return len(a.nodes)
}

// Move all nodes from other into this arena and return the offset that
// must be added to handles that referenced nodes of other.
func (a *buildArena) merge(other *buildArena) nodeRef {
	offset := nodeRef(len(a.nodes))
	for _, n := range other.nodes {
		if n.nPrimitives == 0 {
			n.children[0] += offset
			n.children[1] += offset
		}
		a.nodes = append(a.nodes, n)
	}
	return offset
}
