package bvh

import (
	"fmt"
	"math"
	"strings"
)

// A strategy for partitioning primitives while building the tree.
type SplitMethod uint8

const (
	// Bucketed surface area heuristic.
	SplitSAH SplitMethod = iota

	// Split at the midpoint of the centroid bounds.
	SplitMiddle

	// Split into two halves with the same primitive count.
	SplitEqualCounts

	// Cluster primitives by Morton code into treelets and merge the
	// treelet roots using SAH.
	SplitHLBVH
)

const (
	// The default number of primitives per leaf.
	DefaultMaxPrimsInNode = 4

	// The largest leaf that fits the LinearNode primitive counter.
	maxLeafPrimitives = math.MaxUint16
)

var splitMethodNames = map[SplitMethod]string{
	SplitSAH:         "sah",
	SplitMiddle:      "middle",
	SplitEqualCounts: "equal",
	SplitHLBVH:       "hlbvh",
}

func (m SplitMethod) String() string {
	if name, exists := splitMethodNames[m]; exists {
		return name
	}
	return fmt.Sprintf("SplitMethod(%d)", uint8(m))
}

// Parse a split method name (sah, middle, equal, hlbvh).
func ParseSplitMethod(name string) (SplitMethod, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for method, methodName := range splitMethodNames {
		if methodName == name {
			return method, nil
		}
	}
	return SplitSAH, fmt.Errorf("%w: %q", ErrUnknownSplitMethod, name)
}

// Options control the BVH build.
type Options struct {
	// The max number of primitives in a leaf. Leafs may only exceed this
	// value when their primitive centroids coincide; they never exceed
	// 65535 primitives.
	MaxPrimsInNode int

	// The split strategy.
	SplitMethod SplitMethod

	// The number of goroutines that build HLBVH treelets. Values <= 1
	// build treelets sequentially. Ignored by the other split methods.
	Workers int
}

// Get the default build options.
func DefaultOptions() Options {
	return Options{
		MaxPrimsInNode: DefaultMaxPrimsInNode,
		SplitMethod:    SplitSAH,
		Workers:        1,
	}
}

func (o Options) validate() error {
	if o.MaxPrimsInNode < 1 || o.MaxPrimsInNode > maxLeafPrimitives {
		return fmt.Errorf("%w: %d", ErrInvalidMaxPrims, o.MaxPrimsInNode)
	}
	if _, known := splitMethodNames[o.SplitMethod]; !known {
		return fmt.Errorf("%w: %s", ErrUnknownSplitMethod, o.SplitMethod)
	}
	return nil
}
