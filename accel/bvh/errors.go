package bvh

import "errors"

var (
	ErrInvalidMaxPrims    = errors.New("bvh: max primitives per leaf must be in the [1, 65535] range")
	ErrUnknownSplitMethod = errors.New("bvh: unknown split method")
	ErrTooManyPrimitives  = errors.New("bvh: primitive count exceeds the 32-bit primitive offset range")
	ErrNodeOverflow       = errors.New("bvh: node count exceeds the 32-bit child offset range")
)
