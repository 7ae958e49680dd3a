package effect

import "github.com/sarchlab/audren/behaviour"

// ReverbEarlyMode selects the early reflection preset.
type ReverbEarlyMode uint32

// Early reflection presets.
const (
	ReverbEarlyModeSmallRoom ReverbEarlyMode = iota
	ReverbEarlyModeLargeRoom
	ReverbEarlyModeHall
	ReverbEarlyModeCathedral
	ReverbEarlyModeNoEarlyReflection
)

// ReverbLateMode selects the late reverberation preset.
type ReverbLateMode uint32

// Late reverberation presets.
const (
	ReverbLateModeRoom ReverbLateMode = iota
	ReverbLateModeHall
	ReverbLateModePlate
	ReverbLateModeCathedral
	ReverbLateModeNoDelay
	ReverbLateModeLimit
)

// ReverbParameter is the payload of the reverb kind. Gains and times are
// fixed point values in Q10.
type ReverbParameter struct {
	Input                   [6]uint8
	Output                  [6]uint8
	ChannelCountMax         uint16
	ChannelCount            uint16
	SampleRate              int32
	EarlyMode               ReverbEarlyMode
	EarlyGain               int32
	PreDelayTime            int32
	LateMode                ReverbLateMode
	LateGain                int32
	DecayTime               int32
	HighFrequencyDecayRatio int32
	Coloration              int32
	ReverbGain              int32
	OutGain                 int32
	DryGain                 int32
	Status                  UsageState
	Reserved                [3]uint8
}

func (p *ReverbParameter) channelCounts() (uint16, uint16) {
	return p.ChannelCountMax, p.ChannelCount
}

func (p *ReverbParameter) status() UsageState     { return p.Status }
func (p *ReverbParameter) setStatus(s UsageState) { p.Status = s }

// ReverbEffect is a room reverb that keeps its delay lines in one guest
// buffer.
type ReverbEffect struct {
	BaseEffect

	Parameter ReverbParameter
}

// NewReverbEffect creates an inert reverb slot.
func NewReverbEffect() *ReverbEffect {
	return &ReverbEffect{BaseEffect: makeBaseEffect(TypeReverb, 1)}
}

// Update applies a guest parameter record.
func (e *ReverbEffect) Update(
	p *InParameter,
	mapper BufferMapper,
) (behaviour.ErrorInfo, error) {
	return updateGated(&e.BaseEffect, &e.Parameter, p, mapper, 1)
}

// UpdateForCommandGeneration resolves the usage state.
func (e *ReverbEffect) UpdateForCommandGeneration() {
	resolveGated(&e.BaseEffect, &e.Parameter)
}

// GetWorkBuffer returns the DSP address of the delay lines while the slot is
// enabled.
func (e *ReverbEffect) GetWorkBuffer(_ int) uint64 {
	return e.singleBufferReference()
}
