package cpu

import "errors"

var (
	ErrNotSetup        = errors.New("cpu tracer: tracer has not been set up")
	ErrBusy            = errors.New("cpu tracer: tracer is busy rendering another block")
	ErrNoAccelerator   = errors.New("cpu tracer: no accelerator defined")
	ErrNoSceneData     = errors.New("cpu tracer: no scene data defined")
	ErrInvalidBlock    = errors.New("cpu tracer: block exceeds frame bounds")
	ErrFrameBufferSize = errors.New("cpu tracer: frame buffer size does not match frame dimensions")
)
