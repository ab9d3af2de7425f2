package bvh

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/achilleasa/polaris-bvh/types"
)

func TestParseSplitMethod(t *testing.T) {
	specs := map[string]SplitMethod{
		"sah":     SplitSAH,
		"middle":  SplitMiddle,
		"equal":   SplitEqualCounts,
		" HLBVH ": SplitHLBVH,
	}
	for name, exp := range specs {
		method, err := ParseSplitMethod(name)
		if err != nil {
			t.Fatalf("[%q] unexpected error: %v", name, err)
		}
		if method != exp {
			t.Fatalf("[%q] expected split method %s; got %s", name, exp, method)
		}
		if method.String() != splitMethodNames[exp] {
			t.Fatalf("[%q] expected String() to return %q; got %q", name, splitMethodNames[exp], method.String())
		}
	}

	_, err := ParseSplitMethod("kd-tree")
	if !errors.Is(err, ErrUnknownSplitMethod) {
		t.Fatalf("expected error %v; got %v", ErrUnknownSplitMethod, err)
	}
}

func TestLeftShift3(t *testing.T) {
	specs := []struct {
		in  uint32
		exp uint32
	}{
		{0, 0},
		{1, 1},
		{2, 8},
		{3, 9},
		{0x3ff, 0x09249249},
		// Values at the upper edge of the quantization range are clamped
		{1024, 0x09249249},
	}

	for index, s := range specs {
		if got := leftShift3(s.in); got != s.exp {
			t.Fatalf("[spec %d] expected leftShift3(%d) to return %#x; got %#x", index, s.in, s.exp, got)
		}
	}
}

func TestEncodeMorton3(t *testing.T) {
	if code := encodeMorton3(1, 0, 0); code != 1 {
		t.Fatalf("expected x bit to map to bit 0; got %#x", code)
	}
	if code := encodeMorton3(0, 1, 0); code != 2 {
		t.Fatalf("expected y bit to map to bit 1; got %#x", code)
	}
	if code := encodeMorton3(0, 0, 1); code != 4 {
		t.Fatalf("expected z bit to map to bit 2; got %#x", code)
	}
	if code := encodeMorton3(1024, 1024, 1024); code != 1<<mortonCodeBits-1 {
		t.Fatalf("expected max coordinates to set all %d bits; got %#x", mortonCodeBits, code)
	}
	if code := encodeMorton3(-5, 2000, 0); code != encodeMorton3(0, 1024, 0) {
		t.Fatalf("expected out of range coordinates to be clamped")
	}
}

func TestRadixSort(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	prims := make([]mortonPrimitive, 1000)
	for index := range prims {
		prims[index] = mortonPrimitive{
			index: index,
			code:  rng.Uint32() & (1<<mortonCodeBits - 1),
		}
	}
	// Add duplicate codes to check that the sort is stable
	for index := 0; index < 100; index++ {
		prims[index].code = 42
	}

	radixSort(prims)
	for index := 1; index < len(prims); index++ {
		prev, cur := prims[index-1], prims[index]
		if prev.code > cur.code {
			t.Fatalf("[%d] expected codes to be sorted; got %#x before %#x", index, prev.code, cur.code)
		}
		if prev.code == cur.code && prev.index > cur.index {
			t.Fatalf("[%d] expected primitives with equal codes to keep their order", index)
		}
	}
}

func TestFindTreelets(t *testing.T) {
	top := uint32(1) << (mortonCodeBits - treeletBits)
	prims := []mortonPrimitive{
		{code: 0}, {code: 1}, {code: top - 1},
		{code: top}, {code: top + 5},
		{code: 3 * top},
	}

	treelets := findTreelets(prims)
	exp := []treelet{{0, 3}, {3, 2}, {5, 1}}
	if len(treelets) != len(exp) {
		t.Fatalf("expected %d treelets; got %d", len(exp), len(treelets))
	}
	for index := range exp {
		if treelets[index] != exp[index] {
			t.Fatalf("[treelet %d] expected %v; got %v", index, exp[index], treelets[index])
		}
	}
}

func TestNthElement(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, size := range []int{2, 3, 10, 101} {
		info := make([]primitiveInfo, size)
		for index := range info {
			// Use a small value range so duplicates are common
			info[index].centroid = types.XYZ(0, float32(rng.Intn(8)), 0)
		}

		mid := size / 2
		nthElement(info, mid, 1)
		pivot := info[mid].centroid[1]
		for index := range info {
			if index < mid && info[index].centroid[1] > pivot {
				t.Fatalf("[size %d] expected item %d to be <= %f; got %f", size, index, pivot, info[index].centroid[1])
			}
			if index > mid && info[index].centroid[1] < pivot {
				t.Fatalf("[size %d] expected item %d to be >= %f; got %f", size, index, pivot, info[index].centroid[1])
			}
		}
	}
}

func TestSAHCost(t *testing.T) {
	unit := bucketInfo{count: 1, bbox: types.NewAABB(types.XYZ(0, 0, 0), types.XYZ(1, 1, 1))}
	empty := bucketInfo{bbox: types.EmptyAABB()}

	if cost := sahCost(unit, empty, 6); cost < 1e30 {
		t.Fatalf("expected splits with an empty side to have infinite cost; got %f", cost)
	}

	// Each child covers half of the parent area
	if cost := sahCost(unit, unit, 12); cost != 2 {
		t.Fatalf("expected cost 2; got %f", cost)
	}

	// Zero parent area
	if cost := sahCost(unit, unit, 0); cost != 3 {
		t.Fatalf("expected cost 3 for zero area parent; got %f", cost)
	}
}

func TestArenaMerge(t *testing.T) {
	bbox := types.NewAABB(types.XYZ(0, 0, 0), types.XYZ(1, 1, 1))

	a := newBuildArena(0)
	a.newLeaf(0, 1, bbox)

	other := newBuildArena(0)
	l := other.newLeaf(1, 1, bbox)
	r := other.newLeaf(2, 1, bbox)
	root := other.newInterior(YAxis, l, r)

	offset := a.merge(other)
	if offset != 1 {
		t.Fatalf("expected merge offset 1; got %d", offset)
	}
	if a.len() != 4 {
		t.Fatalf("expected merged arena to contain 4 nodes; got %d", a.len())
	}

	merged := a.node(root + offset)
	if merged.children[0] != l+offset || merged.children[1] != r+offset {
		t.Fatalf("expected child handles to be offset by %d; got %v", offset, merged.children)
	}
	if merged.axis != YAxis {
		t.Fatalf("expected merged node to keep its split axis")
	}
	if a.node(merged.children[1]).firstPrimOffset != 2 {
		t.Fatalf("expected merged leaf to keep its primitive offset")
	}
}
