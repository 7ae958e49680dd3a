package pool

import (
	"github.com/sarchlab/audren/behaviour"
)

// UpdateResult is the outcome of a memory pool update request.
type UpdateResult int

// Memory pool update results.
const (
	UpdateSuccess UpdateResult = iota
	UpdateInvalidParameter
	UpdateMapError
	UpdateUnmapError
)

const guestPageSize = 0x1000

// A Mapper attaches guest buffers to the memory pools that contain them.
//
// Attaching never fails with a panic. An address outside of every mapped
// pool is an ordinary outcome that is reported through an ErrorInfo.
type Mapper struct {
	space             AddressSpace
	pools             []State
	isForceMapEnabled bool
}

// NewMapper creates a Mapper over the given pools.
func NewMapper(space AddressSpace, pools []State, forceMap bool) *Mapper {
	return &Mapper{
		space:             space,
		pools:             pools,
		isForceMapEnabled: forceMap,
	}
}

// IsForceMapEnabled tells if buffers outside of any pool are mapped directly.
func (m *Mapper) IsForceMapEnabled() bool {
	return m.isForceMapEnabled
}

// TryAttachBuffer points info at [address, address+size) and resolves its DSP
// address. It returns false and an InvalidAddressInfo descriptor naming the
// address if no mapped pool contains the whole range.
func (m *Mapper) TryAttachBuffer(
	info *AddressInfo,
	address, size uint64,
) (behaviour.ErrorInfo, bool) {
	m.releaseForceMapping(info)
	info.Setup(address, size)

	if m.attachToMemoryPool(info) {
		return behaviour.ErrorInfo{}, true
	}

	if m.isForceMapEnabled && address != 0 && size != 0 {
		dspAddress, err := m.space.Map(address, size)
		if err == nil {
			info.ForceMap(dspAddress)
			return behaviour.ErrorInfo{}, true
		}
	}

	return behaviour.NewErrorInfo(behaviour.InvalidAddressInfo, address), false
}

func (m *Mapper) attachToMemoryPool(info *AddressInfo) bool {
	pool := m.FindMemoryPool(info.CPUAddress, info.Size)
	if pool == nil {
		return false
	}

	info.SetupMemoryPool(pool)

	return true
}

// FindMemoryPool returns the mapped pool that contains the whole range, or
// nil.
func (m *Mapper) FindMemoryPool(address, size uint64) *State {
	if address == 0 || size == 0 {
		return nil
	}

	for i := range m.pools {
		pool := &m.pools[i]
		if pool.IsMapped() && pool.Contains(address, size) {
			return pool
		}
	}

	return nil
}

// ForceUnmap detaches info and releases any mapping made for it outside of
// a pool.
func (m *Mapper) ForceUnmap(info *AddressInfo) {
	m.releaseForceMapping(info)
	info.Setup(0, 0)
}

func (m *Mapper) releaseForceMapping(info *AddressInfo) {
	if info.HasMemoryPool() || info.ForceMappedDSPAddress() == 0 {
		return
	}

	_ = m.space.Unmap(info.ForceMappedDSPAddress(), info.Size)
	info.ForceMap(0)
}

// Map maps a pool into the DSP address space.
func (m *Mapper) Map(state *State) bool {
	dspAddress, err := m.space.Map(state.CPUAddress, state.Size)
	if err != nil {
		return false
	}

	state.setDSPAddress(dspAddress)

	return true
}

// Unmap removes a pool from the DSP address space. A pool that is still used
// by a command is not unmapped. The guest range is kept so that a teardown
// racing with an attach only ever changes the DSP address.
func (m *Mapper) Unmap(state *State) bool {
	if state.IsUsed() {
		return false
	}

	dspAddress := state.DSPAddress()
	if dspAddress != 0 {
		state.setDSPAddress(0)

		// Pages already gone leave nothing to release.
		_ = m.space.Unmap(dspAddress, state.Size)
	}

	return true
}

// InitializePool registers a guest range as a pool and maps it.
func (m *Mapper) InitializePool(state *State, address, size uint64) bool {
	state.SetCPUAddress(address, size)

	return m.Map(state)
}

// InitializeSystemPool registers the renderer's own work buffer as a pool
// owned by the DSP.
func (m *Mapper) InitializeSystemPool(state *State, address, size uint64) bool {
	state.Location = LocationDSP

	return m.InitializePool(state, address, size)
}

// Update applies the attach or detach request of a guest pool record.
func (m *Mapper) Update(
	state *State,
	in *InParameter,
	out *OutStatus,
) UpdateResult {
	if in.State != UserStateRequestAttach && in.State != UserStateRequestDetach {
		return UpdateSuccess
	}

	if in.CPUAddress == 0 || in.CPUAddress%guestPageSize != 0 {
		return UpdateInvalidParameter
	}

	if in.Size == 0 || in.Size%guestPageSize != 0 {
		return UpdateInvalidParameter
	}

	if in.State == UserStateRequestAttach {
		if state.IsMapped() &&
			state.CPUAddress == in.CPUAddress &&
			state.Size == in.Size {
			out.State = UserStateAttached
			return UpdateSuccess
		}

		if state.IsMapped() && !m.Unmap(state) {
			return UpdateMapError
		}

		if !m.InitializePool(state, in.CPUAddress, in.Size) {
			state.SetCPUAddress(0, 0)
			return UpdateMapError
		}

		out.State = UserStateAttached

		return UpdateSuccess
	}

	if state.CPUAddress != in.CPUAddress || state.Size != in.Size {
		return UpdateInvalidParameter
	}

	if !m.Unmap(state) {
		return UpdateUnmapError
	}

	out.State = UserStateDetached

	return UpdateSuccess
}
