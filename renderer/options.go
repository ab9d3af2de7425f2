package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32
}
