package bvh

const (
	// Bits used for quantizing each centroid coordinate.
	mortonBits  = 10
	mortonScale = 1 << mortonBits

	// Total number of bits in a Morton code.
	mortonCodeBits = 3 * mortonBits

	// Bits sorted by each radix sort pass.
	radixBitsPerPass = 6
	radixBuckets     = 1 << radixBitsPerPass
	radixPasses      = mortonCodeBits / radixBitsPerPass
)

// A primitive index tagged with the Morton code of its centroid.
type mortonPrimitive struct {
	index int
	code  uint32
}

// Spread the lower 10 bits of x so there are two zero bits between each
// pair of consecutive bits.
func leftShift3(x uint32) uint32 {
	if x == mortonScale {
		x--
	}
	x = (x | (x << 16)) & 0x030000ff
	x = (x | (x << 8)) & 0x0300f00f
	x = (x | (x << 4)) & 0x030c30c3
	x = (x | (x << 2)) & 0x09249249
	return x
}

// Interleave the quantized coordinates into a 30-bit Morton code. Each
// coordinate is clamped to the [0, 1024] range.
func encodeMorton3(x, y, z float32) uint32 {
	return leftShift3(quantize(z))<<2 | leftShift3(quantize(y))<<1 | leftShift3(quantize(x))
}

func quantize(v float32) uint32 {
	switch {
	case !(v > 0):
		return 0
	case v >= mortonScale:
		return mortonScale
	}
	return uint32(v)
}

// Sort primitives by Morton code using a least-significant digit radix sort.
// The sort is stable so primitives with the same code keep their order.
func radixSort(prims []mortonPrimitive) {
	tmp := make([]mortonPrimitive, len(prims))
	for pass := 0; pass < radixPasses; pass++ {
		lowBit := uint(pass * radixBitsPerPass)

		in, out := prims, tmp
		if pass&1 == 1 {
			in, out = tmp, prims
		}

		var bucketCount [radixBuckets]int
		for _, mp := range in {
			bucketCount[(mp.code>>lowBit)&(radixBuckets-1)]++
		}

		var outIndex [radixBuckets]int
		for bucket := 1; bucket < radixBuckets; bucket++ {
			outIndex[bucket] = outIndex[bucket-1] + bucketCount[bucket-1]
		}

		for _, mp := range in {
			bucket := (mp.code >> lowBit) & (radixBuckets - 1)
			out[outIndex[bucket]] = mp
			outIndex[bucket]++
		}
	}

	// An odd pass count leaves the sorted data in tmp.
	if radixPasses&1 == 1 {
		copy(prims, tmp)
	}
}
