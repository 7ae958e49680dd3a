// Package workbuffer provides the arena that carves the renderer work buffer
// into the long-lived regions the renderer needs.
package workbuffer

import (
	"log"
	"math"
	"math/bits"
	"unsafe"
)

// An Allocator hands out non-overlapping, zeroed regions of a single backing
// block.
//
// The allocator is single-shot. The offset only moves forward and there is no
// way to free or reset a region. A request that does not fit the remaining
// capacity returns nil and leaves the allocator untouched.
type Allocator struct {
	backing []byte
	offset  uint64
}

// New creates an Allocator over the given backing block.
func New(backing []byte) *Allocator {
	return &Allocator{backing: backing}
}

// Backing returns the whole backing block.
func (a *Allocator) Backing() []byte {
	return a.backing
}

// Offset returns the first byte that has not been handed out yet.
func (a *Allocator) Offset() uint64 {
	return a.offset
}

// Remaining returns the number of bytes after the current offset.
func (a *Allocator) Remaining() uint64 {
	return uint64(len(a.backing)) - a.offset
}

// Allocate returns a zero-filled slice of size bytes that starts at an offset
// aligned to align. It returns nil if size is 0 or if the aligned region does
// not fit in the backing block.
func (a *Allocator) Allocate(size uint64, align uint64) []byte {
	if align == 0 {
		log.Panic("alignment cannot be 0")
	}

	if size == 0 || a.offset > math.MaxUint64-(align-1) {
		return nil
	}

	alignedOffset := AlignUp(a.offset, align)
	end := alignedOffset + size

	if end < alignedOffset || end > uint64(len(a.backing)) {
		return nil
	}

	region := a.backing[alignedOffset:end:end]
	clear(region)

	a.offset = end

	return region
}

// AllocateSlice allocates count elements of T. T must not contain pointers,
// as the elements live inside the byte backing block.
func AllocateSlice[T any](a *Allocator, count uint64, align uint64) []T {
	var zero T

	elemSize := uint64(unsafe.Sizeof(zero))
	if elemSize == 0 || count == 0 {
		return nil
	}

	hi, size := bits.Mul64(elemSize, count)
	if hi != 0 || count > math.MaxInt {
		return nil
	}

	region := a.Allocate(size, align)
	if region == nil {
		return nil
	}

	return unsafe.Slice((*T)(unsafe.Pointer(&region[0])), count)
}

// GetTargetSize returns the size a backing block must have to hold
// everything already accounted for in currentSize plus count elements of T
// at the given alignment.
func GetTargetSize[T any](currentSize uint64, count uint64, align uint64) uint64 {
	var zero T

	return AlignUp(currentSize, align) + uint64(unsafe.Sizeof(zero))*count
}

// AlignUp rounds value up to a multiple of align. The result wraps if the
// rounded value does not fit in a uint64.
func AlignUp(value uint64, align uint64) uint64 {
	if align == 0 {
		log.Panic("alignment cannot be 0")
	}

	return (value + align - 1) / align * align
}
