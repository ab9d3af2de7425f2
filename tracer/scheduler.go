package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of tracers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each tracer
	// in the input list. Assignments always add up to frameH.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler splits the frame based on each tracer's speed estimate.
type naiveScheduler struct{}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return naiveScheduler{}
}

func (sch naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	blockAssignment := make([]uint32, len(tracers))
	scheduleBySpeed(tracers, frameH, blockAssignment)
	return blockAssignment
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool
// of tracers using feedback collected from previous frames.
//
// When previous frame information is available the scheduler
// uses the following formula for estimating the workload for tracer w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	// If this is the first time we try to schedule or the number of tracers
	// has changed we need to reset the block assignments
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = make([]uint32, len(tracers))
		scheduleBySpeed(tracers, frameH, sch.blockAssignment)
		return sch.blockAssignment
	}

	// Use last frame statistics
	var total float64
	for _, tr := range tracers {
		stats := tr.Stats()
		if stats.RenderTime <= 0 || stats.BlockH == 0 {
			// No usable feedback; fall back to the speed estimates
			scheduleBySpeed(tracers, frameH, sch.blockAssignment)
			return sch.blockAssignment
		}
		total += float64(stats.BlockH) / float64(stats.RenderTime)
	}

	scaler := float64(frameH) / total
	for idx, tr := range tracers {
		stats := tr.Stats()
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(stats.BlockH)/float64(stats.RenderTime)*scaler)))
	}

	fitToFrame(sch.blockAssignment, frameH)
	return sch.blockAssignment
}

// Distribute rows proportionally to the tracer speed estimates.
func scheduleBySpeed(tracers []Tracer, frameH uint32, blockAssignment []uint32) {
	var total float64
	for _, tr := range tracers {
		total += float64(tr.SpeedEstimate())
	}
	scaler := float64(frameH) / total

	for idx, tr := range tracers {
		blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(tr.SpeedEstimate())*scaler)))
	}

	fitToFrame(blockAssignment, frameH)
}

// Adjust block assignments so they add up to the frame height. Missing rows
// are appended to the first tracer; extra rows are removed from the largest
// blocks starting from the last tracer.
func fitToFrame(blockAssignment []uint32, frameH uint32) {
	if len(blockAssignment) == 0 {
		return
	}

	var scheduledRows uint32
	for _, rows := range blockAssignment {
		scheduledRows += rows
	}

	if scheduledRows <= frameH {
		blockAssignment[0] += frameH - scheduledRows
		return
	}

	for ; scheduledRows > frameH; scheduledRows-- {
		largest := 0
		for idx, rows := range blockAssignment {
			if rows >= blockAssignment[largest] {
				largest = idx
			}
		}
		blockAssignment[largest]--
	}
}
