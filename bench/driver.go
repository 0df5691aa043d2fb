// Package bench measures memory read latency as a function of access
// locality. A single random walk moves over a buffer of random bytes;
// each trial bounds the size of one step and times a fixed number of
// reads, and successive trials double the bound.
package bench

import (
	"errors"
	"fmt"
	mrand "math/rand"
)

const (
	// DefaultBufferSize is 1 GiB.
	DefaultBufferSize = 1 << 30
	// DefaultIterations is the number of reads per trial.
	DefaultIterations = 10_000_000
)

// ErrInvalidConfig is wrapped by every Config validation error.
var ErrInvalidConfig = errors.New("invalid config")

// Series holds trials in ascending step bound order.
type Series []Trial

// Config controls a benchmark run.
type Config struct {
	BufferSize       int
	InitialStepBound uint64
	// MaxStepBound of 0 means BufferSize. Larger values are clamped to
	// BufferSize because a step that can already reach the whole buffer
	// gains nothing from a wider bound.
	MaxStepBound uint64
	Iterations   uint64

	// OnTrial, if set, is called after each trial outside the timed
	// region.
	OnTrial func(Trial)
}

// DefaultConfig returns the configuration used by the CLI.
func DefaultConfig() Config {
	return Config{
		BufferSize:       DefaultBufferSize,
		InitialStepBound: 1,
		Iterations:       DefaultIterations,
	}
}

// Validate checks cfg and returns an error wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	if c.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer size %d must be positive",
			ErrInvalidConfig, c.BufferSize)
	}

	if c.InitialStepBound == 0 {
		return fmt.Errorf("%w: initial step bound must be at least 1",
			ErrInvalidConfig)
	}

	if c.Iterations == 0 {
		return fmt.Errorf("%w: iterations must be at least 1",
			ErrInvalidConfig)
	}

	if limit := c.maxStepBound(); limit < c.InitialStepBound {
		return fmt.Errorf("%w: max step bound %d is below initial step bound %d",
			ErrInvalidConfig, limit, c.InitialStepBound)
	}

	return nil
}

func (c Config) maxStepBound() uint64 {
	limit := uint64(c.BufferSize)
	if c.MaxStepBound == 0 || c.MaxStepBound > limit {
		return limit
	}

	return c.MaxStepBound
}

// Bounds returns the step bound progression cfg describes.
func (c Config) Bounds() ([]uint64, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return Progression(c.InitialStepBound, c.maxStepBound())
}

// Progression returns initial, 2*initial, 4*initial, ... up to and
// including the last value not above maxBound.
func Progression(initial, maxBound uint64) ([]uint64, error) {
	if initial == 0 {
		return nil, fmt.Errorf("%w: initial step bound must be at least 1",
			ErrInvalidConfig)
	}

	if maxBound < initial {
		return nil, fmt.Errorf("%w: max step bound %d is below initial step bound %d",
			ErrInvalidConfig, maxBound, initial)
	}

	var bounds []uint64

	for b := initial; b <= maxBound; b <<= 1 {
		bounds = append(bounds, b)

		// Stop before the shift overflows.
		if b > maxBound>>1 {
			break
		}
	}

	return bounds, nil
}

// RunAll runs one trial per step bound over buf. The walk is continuous:
// each trial starts where the previous one ended, and the first starts
// at position 0.
func RunAll(buf *Buffer, rng *mrand.Rand, cfg Config) (Series, error) {
	// The buffer decides how far a step can usefully reach.
	cfg.BufferSize = buf.Len()

	bounds, err := cfg.Bounds()
	if err != nil {
		return nil, err
	}

	series := make(Series, 0, len(bounds))
	pos := 0

	for _, bound := range bounds {
		trial := RunTrial(buf, rng, pos, bound, cfg.Iterations)
		pos = trial.EndPosition

		series = append(series, trial)

		if cfg.OnTrial != nil {
			cfg.OnTrial(trial)
		}
	}

	return series, nil
}

// Run allocates a buffer of cfg.BufferSize random bytes and runs the full
// step bound progression over it. rng drives both the buffer contents
// and the walk, so a seeded rng makes the run reproducible apart from
// timings.
func Run(cfg Config, rng *mrand.Rand) (Series, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	buf, err := NewBuffer(cfg.BufferSize, rng)
	if err != nil {
		return nil, err
	}

	return RunAll(buf, rng, cfg)
}
