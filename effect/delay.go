package effect

import "github.com/sarchlab/audren/behaviour"

// DelayParameter is the payload of the delay kind.
type DelayParameter struct {
	Input           [6]uint8
	Output          [6]uint8
	ChannelCountMax uint16
	ChannelCount    uint16
	DelayTimeMax    uint32
	DelayTime       uint32
	SampleRate      uint32
	InGain          int32
	FeedbackGain    int32
	OutGain         int32
	DryGain         int32
	ChannelSpread   int32
	LowPassAmount   int32
	Status          UsageState
	Reserved        [3]uint8
}

func (p *DelayParameter) channelCounts() (uint16, uint16) {
	return p.ChannelCountMax, p.ChannelCount
}

func (p *DelayParameter) status() UsageState     { return p.Status }
func (p *DelayParameter) setStatus(s UsageState) { p.Status = s }

// DelayEffect is a feedback delay.
type DelayEffect struct {
	BaseEffect

	Parameter DelayParameter
}

// NewDelayEffect creates an inert delay slot.
func NewDelayEffect() *DelayEffect {
	return &DelayEffect{BaseEffect: makeBaseEffect(TypeDelay, 1)}
}

// Update applies a guest parameter record.
func (e *DelayEffect) Update(
	p *InParameter,
	mapper BufferMapper,
) (behaviour.ErrorInfo, error) {
	return updateGated(&e.BaseEffect, &e.Parameter, p, mapper, 1)
}

// UpdateForCommandGeneration resolves the usage state.
func (e *DelayEffect) UpdateForCommandGeneration() {
	resolveGated(&e.BaseEffect, &e.Parameter)
}

// GetWorkBuffer returns the DSP address of the delay line while the slot is
// enabled.
func (e *DelayEffect) GetWorkBuffer(_ int) uint64 {
	return e.singleBufferReference()
}
