package accel

import "github.com/achilleasa/polaris-bvh/types"

// The Container interface is implemented by primitive collections that can be
// fed to an accelerator builder. Builders copy the primitive references once
// and never modify the container.
type Container interface {
	// Get the contained primitives.
	Primitives() []Primitive

	// Get the bounding box of all contained primitives.
	BBox() types.AABB
}

// List is an unordered primitive container.
type List struct {
	prims []Primitive
	bbox  types.AABB
}

// Create a new list populated with prims.
func NewList(prims ...Primitive) *List {
	l := &List{bbox: types.EmptyAABB()}
	l.Add(prims...)
	return l
}

// Append primitives to the list.
func (l *List) Add(prims ...Primitive) {
	for _, prim := range prims {
		l.prims = append(l.prims, prim)
		l.bbox = l.bbox.Union(prim.BBox())
	}
}

// Get the number of primitives in the list.
func (l *List) Len() int {
	return len(l.prims)
}

// Get the contained primitives. The returned slice is owned by the list.
func (l *List) Primitives() []Primitive {
	return l.prims
}

// Get the bounding box of all contained primitives.
func (l *List) BBox() types.AABB {
	return l.bbox
}
