package bench

import (
	mrand "math/rand"
	"time"
)

// Trial is one timed batch of reads at a fixed step bound.
type Trial struct {
	StepBound  uint64        `json:"step_bound"`
	Iterations uint64        `json:"iteration_count"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	// Checksum is the wrapping sum of every byte read. It only exists so
	// the reads have an observable result.
	Checksum    uint8     `json:"checksum"`
	StartTime   time.Time `json:"start_time"`
	EndPosition int       `json:"-"`
}

// StepsPerSecond returns the access rate of the trial.
func (t Trial) StepsPerSecond() float64 {
	secs := t.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}

	return float64(t.Iterations) / secs
}

// NanosPerAccess returns the mean time of one walk step and read.
func (t Trial) NanosPerAccess() float64 {
	if t.Iterations == 0 {
		return 0
	}

	return float64(t.Elapsed.Nanoseconds()) / float64(t.Iterations)
}

// RunTrial walks buf for iterations steps of at most bound bytes each,
// starting at start, and times the whole batch.
func RunTrial(
	buf *Buffer,
	rng *mrand.Rand,
	start int,
	bound, iterations uint64,
) Trial {
	var sum uint8

	pos := start
	n := buf.Len()
	data := buf.data

	startTime := time.Now()

	for i := uint64(0); i < iterations; i++ {
		pos = NextPosition(rng, pos, bound, n)
		sum += data[pos]
	}

	elapsed := time.Since(startTime)

	return Trial{
		StepBound:   bound,
		Iterations:  iterations,
		Elapsed:     elapsed,
		Checksum:    sum,
		StartTime:   startTime,
		EndPosition: pos,
	}
}
