package bench

import mrand "math/rand"

// NextPosition moves current by a random amount in [1, bound] in a
// random direction and wraps the result into [0, bufLen).
//
// A wrapped position stays close to its predecessor except at the two
// ends of the buffer. bound must be at least 1 and fit in an int64.
func NextPosition(rng *mrand.Rand, current int, bound uint64, bufLen int) int {
	if bound == 0 {
		panic("bench: step bound must be at least 1")
	}

	magnitude := int64(1)
	if bound > 1 {
		magnitude += rng.Int63n(int64(bound))
	}

	if rng.Int63()&1 == 0 {
		magnitude = -magnitude
	}

	n := int64(bufLen)
	candidate := int64(current) + magnitude

	return int(((candidate % n) + n) % n)
}
