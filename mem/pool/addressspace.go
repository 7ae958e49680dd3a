package pool

// An AddressSpace maps guest ranges into the DSP address space. It is
// implemented by PageTable.
type AddressSpace interface {
	// Map maps a guest range and returns the DSP address of its first byte.
	Map(cpuAddress, size uint64) (uint64, error)

	// Unmap releases the DSP range that starts at dspAddress.
	Unmap(dspAddress, size uint64) error
}
