package bvh

import "github.com/achilleasa/polaris-bvh/types"

// An axis identifier.
type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

// LinearNode is a flattened BVH node. Each node takes 32 bytes.
//
// Nodes are stored in depth-first pre-order so the first child of an
// interior node at index i is always located at index i+1. The meaning of
// Offset depends on NumPrimitives:
//
// - For interior nodes NumPrimitives is 0 and Offset is the index of the
// second child node.
// - For leafs NumPrimitives is > 0 and Offset is the index of the first leaf
// primitive in the ordered primitive list.
type LinearNode struct {
	Min types.Vec3
	Max types.Vec3

	Offset        uint32
	NumPrimitives uint16

	// The split axis of an interior node.
	Axis Axis

	_ uint8
}

// Returns true if this is a leaf node.
func (n *LinearNode) IsLeaf() bool {
	return n.NumPrimitives > 0
}

// Get the node bounding box.
func (n *LinearNode) BBox() types.AABB {
	return types.AABB{Min: n.Min, Max: n.Max}
}

// Set bounding box.
func (n *LinearNode) SetBBox(bbox types.AABB) {
	n.Min = bbox.Min
	n.Max = bbox.Max
}

// Setup node as a leaf containing count primitives starting at firstPrimIndex.
func (n *LinearNode) SetPrimitives(firstPrimIndex uint32, count uint16) {
	n.Offset = firstPrimIndex
	n.NumPrimitives = count
}

// Get leaf primitive index and count.
func (n *LinearNode) Primitives() (firstPrimIndex uint32, count uint16) {
	return n.Offset, n.NumPrimitives
}

// Setup node as an interior node.
func (n *LinearNode) SetSecondChild(index uint32, axis Axis) {
	n.Offset = index
	n.NumPrimitives = 0
	n.Axis = axis
}

// Get the index of the second child of an interior node.
func (n *LinearNode) SecondChild() uint32 {
	return n.Offset
}
