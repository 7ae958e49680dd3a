package effect

import "github.com/sarchlab/audren/behaviour"

// Reverb3dParameter is the payload of the 3D reverb kind.
type Reverb3dParameter struct {
	Input           [6]uint8
	Output          [6]uint8
	ChannelCountMax uint16
	ChannelCount    uint16
	Reserved1       [4]uint8
	SampleRate      uint32
	RoomHf          float32
	HfReference     float32
	DecayTime       float32
	HfDecayRatio    float32
	RoomGain        float32
	ReflectionsGain float32
	ReverbGain      float32
	Diffusion       float32
	ReflectionDelay float32
	ReverbDelayTime float32
	Density         float32
	DryGain         float32
	Status          UsageState
	Reserved2       [3]uint8
}

func (p *Reverb3dParameter) channelCounts() (uint16, uint16) {
	return p.ChannelCountMax, p.ChannelCount
}

func (p *Reverb3dParameter) status() UsageState     { return p.Status }
func (p *Reverb3dParameter) setStatus(s UsageState) { p.Status = s }

// Reverb3dEffect is the I3DL2 reverb.
type Reverb3dEffect struct {
	BaseEffect

	Parameter Reverb3dParameter
}

// NewReverb3dEffect creates an inert 3D reverb slot.
func NewReverb3dEffect() *Reverb3dEffect {
	return &Reverb3dEffect{BaseEffect: makeBaseEffect(TypeReverb3d, 1)}
}

// Update applies a guest parameter record.
func (e *Reverb3dEffect) Update(
	p *InParameter,
	mapper BufferMapper,
) (behaviour.ErrorInfo, error) {
	return updateGated(&e.BaseEffect, &e.Parameter, p, mapper, 1)
}

// UpdateForCommandGeneration resolves the usage state.
func (e *Reverb3dEffect) UpdateForCommandGeneration() {
	resolveGated(&e.BaseEffect, &e.Parameter)
}

// GetWorkBuffer returns the DSP address of the delay lines while the slot is
// enabled.
func (e *Reverb3dEffect) GetWorkBuffer(_ int) uint64 {
	return e.singleBufferReference()
}
