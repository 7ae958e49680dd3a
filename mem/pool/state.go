// Package pool tracks the guest memory pools and attaches guest buffers to
// the DSP address space.
package pool

import "sync/atomic"

// Location tells who owns a memory pool.
type Location uint8

// Pool locations.
const (
	LocationCPU Location = iota + 1
	LocationDSP
)

// StateAlignment is the alignment of State records in the work buffer.
const StateAlignment = 0x10

// A State is a guest memory region registered as a memory pool.
//
// The DSP address is published atomically. A pool is mapped as long as its
// DSP address is not 0, and a pool teardown running on another goroutine is
// observed by the next attach attempt. States live inside the renderer work
// buffer and must not be copied.
type State struct {
	CPUAddress uint64
	Size       uint64
	Location   Location

	dspAddress atomic.Uint64
	used       atomic.Bool
}

// SetCPUAddress sets the guest range covered by the pool.
func (s *State) SetCPUAddress(address, size uint64) {
	s.CPUAddress = address
	s.Size = size
}

// DSPAddress returns the DSP address of the start of the pool, or 0 if the
// pool is not mapped.
func (s *State) DSPAddress() uint64 {
	return s.dspAddress.Load()
}

func (s *State) setDSPAddress(address uint64) {
	s.dspAddress.Store(address)
}

// IsMapped tells if the pool is currently mapped into the DSP address space.
func (s *State) IsMapped() bool {
	return s.dspAddress.Load() != 0
}

// Contains tells if [address, address+size) is fully inside the pool.
func (s *State) Contains(address, size uint64) bool {
	if s.Size == 0 {
		return false
	}

	end := address + size
	if end < address {
		return false
	}

	return s.CPUAddress <= address && end <= s.CPUAddress+s.Size
}

// Translate converts a guest range inside the pool into a DSP address. It
// returns 0 if the pool is not mapped or if the range is outside of the
// pool.
func (s *State) Translate(address, size uint64) uint64 {
	dspAddress := s.dspAddress.Load()
	if dspAddress == 0 || !s.Contains(address, size) {
		return 0
	}

	return dspAddress + (address - s.CPUAddress)
}

// MarkUsed records that a command references the pool in this frame.
func (s *State) MarkUsed() {
	s.used.Store(true)
}

// IsUsed tells if a command referenced the pool since the last ClearUsage.
func (s *State) IsUsed() bool {
	return s.used.Load()
}

// ClearUsage resets the used flag of all the pools.
func ClearUsage(pools []State) {
	for i := range pools {
		pools[i].used.Store(false)
	}
}

// Init resets a pool record to an empty pool owned by location.
func (s *State) Init(location Location) {
	s.CPUAddress = 0
	s.Size = 0
	s.Location = location
	s.dspAddress.Store(0)
	s.used.Store(false)
}
