package pool

// AddressInfo describes a guest buffer and where it landed in the DSP
// address space.
type AddressInfo struct {
	CPUAddress uint64
	Size       uint64

	pool                  *State
	forceMappedDSPAddress uint64
}

// Setup points the descriptor at a new guest range and detaches it.
func (a *AddressInfo) Setup(address, size uint64) {
	a.CPUAddress = address
	a.Size = size
	a.pool = nil
	a.forceMappedDSPAddress = 0
}

// SetupMemoryPool binds the descriptor to the pool that contains it.
func (a *AddressInfo) SetupMemoryPool(pool *State) {
	a.pool = pool
	a.forceMappedDSPAddress = 0
}

// ForceMap binds the descriptor to a DSP address mapped outside of any pool.
func (a *AddressInfo) ForceMap(dspAddress uint64) {
	a.pool = nil
	a.forceMappedDSPAddress = dspAddress
}

// HasMemoryPool tells if the descriptor resolved into a memory pool.
func (a *AddressInfo) HasMemoryPool() bool {
	return a.pool != nil
}

// MemoryPool returns the pool the descriptor resolved into, if any.
func (a *AddressInfo) MemoryPool() *State {
	return a.pool
}

// ForceMappedDSPAddress returns the DSP address mapped outside of any pool.
func (a *AddressInfo) ForceMappedDSPAddress() uint64 {
	return a.forceMappedDSPAddress
}

// GetReference returns the DSP address of the buffer, or 0 if the buffer is
// not reachable from the DSP. With markUsed set, the owning pool is flagged
// as used by the current frame.
func (a *AddressInfo) GetReference(markUsed bool) uint64 {
	if a.pool == nil {
		return a.forceMappedDSPAddress
	}

	if markUsed {
		a.pool.MarkUsed()
	}

	return a.pool.Translate(a.CPUAddress, a.Size)
}

// IsMapped tells if the buffer currently has a DSP address.
func (a *AddressInfo) IsMapped() bool {
	return a.GetReference(false) != 0
}
