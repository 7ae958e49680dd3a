package renderer

import "github.com/sarchlab/audren/mem/pool"

// Builder can build renderer systems.
type Builder struct {
	addressSpace pool.AddressSpace
}

// MakeBuilder creates a builder with a default DSP address space.
func MakeBuilder() Builder {
	return Builder{}
}

// WithAddressSpace sets the DSP address space pools are mapped into.
func (b Builder) WithAddressSpace(space pool.AddressSpace) Builder {
	b.addressSpace = space
	return b
}

// Build creates a System that still needs to be initialized.
func (b Builder) Build(name string) *System {
	space := b.addressSpace
	if space == nil {
		space = pool.NewDefaultPageTable()
	}

	return &System{
		name:  name,
		space: space,
	}
}
