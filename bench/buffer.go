package bench

import (
	"fmt"
	mrand "math/rand"

	"github.com/weiihann/walkbench/host"
)

// availableMemory is swapped out in tests.
var availableMemory = host.AvailableMemory

// AllocationError reports that the buffer could not be obtained.
type AllocationError struct {
	Requested int
	Available uint64
	Err       error
}

func (e *AllocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("allocate %d byte buffer: %v", e.Requested, e.Err)
	}

	return fmt.Sprintf("allocate %d byte buffer: only %d bytes available",
		e.Requested, e.Available)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// Buffer is a fixed-length region of random bytes. It is never written
// after NewBuffer returns.
type Buffer struct {
	data []byte
}

// NewBuffer allocates size bytes and fills every byte from rng.
func NewBuffer(size int, rng *mrand.Rand) (*Buffer, error) {
	if size <= 0 {
		return nil, &AllocationError{
			Requested: size,
			Err:       fmt.Errorf("size must be positive"),
		}
	}

	// A failed probe is not fatal; the allocation itself decides.
	if avail, err := availableMemory(); err == nil && avail < uint64(size) {
		return nil, &AllocationError{Requested: size, Available: avail}
	}

	data, err := allocate(size)
	if err != nil {
		return nil, &AllocationError{Requested: size, Err: err}
	}

	// rand.Rand.Read always fills the slice and never errors.
	rng.Read(data)

	return &Buffer{data: data}, nil
}

func allocate(size int) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	return make([]byte, size), nil
}

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// At returns the byte at pos. pos must be in [0, Len()).
func (b *Buffer) At(pos int) byte { return b.data[pos] }
